package controller

import (
	"errors"
	"strconv"

	"cryptoseven_backend/internal/service"
	"cryptoseven_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ForumController struct {
	ForumService *service.ForumService
}

func NewForumController(forumService *service.ForumService) *ForumController {
	return &ForumController{ForumService: forumService}
}

// ListPosts godoc
// @Summary 帖子列表
// @Tags 社区
// @Produce  json
// @Param   category query string false "分类筛选"
// @Param   page query int false "页码"
// @Param   limit query int false "每页条数"
// @Success 200 {object} util.Response{data=util.PageResponse} "成功"
// @Router /api/forum/posts [get]
func (c *ForumController) ListPosts(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	posts, total, err := c.ForumService.ListPosts(ctx.Query("category"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: posts, Total: total, Page: page, Limit: limit})
}

// GetPost godoc
// @Summary 帖子详情
// @Description 含评论列表与当前用户点赞态
// @Tags 社区
// @Produce  json
// @Param   id path string true "帖子ID"
// @Success 200 {object} util.Response{data=service.PostDetail} "成功"
// @Failure 404 {object} util.Response "帖子不存在"
// @Router /api/forum/posts/{id} [get]
func (c *ForumController) GetPost(ctx *gin.Context) {
	var viewerID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		viewerID = claims.UserID
	}

	detail, err := c.ForumService.GetPost(ctx.Param("id"), viewerID)
	if err != nil {
		if errors.Is(err, util.ErrPostNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// CreatePost godoc
// @Summary 发帖
// @Tags 社区
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.PostInput true "帖子内容"
// @Success 201 {object} util.Response{data=model.ForumPost} "创建成功"
// @Router /api/forum/posts [post]
func (c *ForumController) CreatePost(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.PostInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	post, err := c.ForumService.CreatePost(claims.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, post)
}

// DeletePost godoc
// @Summary 删帖
// @Description 仅作者本人或管理员可删
// @Tags 社区
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "帖子ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Failure 404 {object} util.Response "帖子不存在"
// @Router /api/forum/posts/{id} [delete]
func (c *ForumController) DeletePost(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.ForumService.DeletePost(ctx.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPostNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// CreateComment godoc
// @Summary 评论帖子
// @Tags 社区
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "帖子ID"
// @Param   body body service.CommentInput true "评论内容"
// @Success 201 {object} util.Response{data=model.ForumComment} "创建成功"
// @Failure 404 {object} util.Response "帖子不存在"
// @Router /api/forum/posts/{id}/comments [post]
func (c *ForumController) CreateComment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.CommentInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	comment, err := c.ForumService.CreateComment(ctx.Param("id"), claims.UserID, req)
	if err != nil {
		if errors.Is(err, util.ErrPostNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, comment)
}

// DeleteComment godoc
// @Summary 删除评论
// @Tags 社区
// @Produce  json
// @Security BearerAuth
// @Param   commentId path string true "评论ID"
// @Success 200 {object} util.Response "成功"
// @Failure 403 {object} util.Response "无权限"
// @Router /api/forum/comments/{commentId} [delete]
func (c *ForumController) DeleteComment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.ForumService.DeleteComment(ctx.Param("commentId"), claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPostNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

// ToggleLike godoc
// @Summary 点赞开关
// @Description 未点赞则点赞，已点赞则取消
// @Tags 社区
// @Produce  json
// @Security BearerAuth
// @Param   id path string true "帖子ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Failure 404 {object} util.Response "帖子不存在"
// @Router /api/forum/posts/{id}/like [post]
func (c *ForumController) ToggleLike(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	liked, likeCount, err := c.ForumService.ToggleLike(ctx.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrPostNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, gin.H{"liked": liked, "likeCount": likeCount})
}
