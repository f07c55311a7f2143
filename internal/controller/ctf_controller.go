package controller

import (
	"errors"

	"cryptoseven_backend/internal/service"
	"cryptoseven_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CTFController struct {
	CTFService *service.CTFService
}

func NewCTFController(ctfService *service.CTFService) *CTFController {
	return &CTFController{CTFService: ctfService}
}

// ListEvents godoc
// @Summary 赛事列表
// @Description 已登录时附带个人报名态与赛内得分
// @Tags CTF
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.CTFEventSummary} "成功"
// @Router /api/ctf [get]
func (c *CTFController) ListEvents(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	summaries, err := c.CTFService.ListEvents(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// GetEvent godoc
// @Summary 赛事详情
// @Description 题目按分类分组并附带解题标记，flag 不下发
// @Tags CTF
// @Produce  json
// @Param   id path int true "赛事ID"
// @Success 200 {object} util.Response{data=service.CTFEventDetail} "成功"
// @Failure 404 {object} util.Response "赛事不存在"
// @Router /api/ctf/{id} [get]
func (c *CTFController) GetEvent(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	id := util.MustParseUint(ctx.Param("id"))
	detail, err := c.CTFService.GetEvent(id, userID)
	if err != nil {
		if errors.Is(err, util.ErrCTFNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// Register godoc
// @Summary 报名赛事
// @Tags CTF
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "赛事ID"
// @Success 201 {object} util.Response{data=model.CTFRegistration} "报名成功"
// @Failure 404 {object} util.Response "赛事不存在"
// @Failure 409 {object} util.Response "已报名"
// @Failure 422 {object} util.Response "赛事已结束"
// @Router /api/ctf/{id}/register [post]
func (c *CTFController) Register(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	reg, err := c.CTFService.Register(claims.UserID, id)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCTFNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAlreadyRegistered):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrCTFNotActive):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, reg)
}

type SubmitFlagRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Flag       string `json:"flag" binding:"required"`
}

// SubmitFlag godoc
// @Summary 提交 flag
// @Description 哈希比对判题；答对一次性计分，重复提交不再加分
// @Tags CTF
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "赛事ID"
// @Param   body body SubmitFlagRequest true "flag 提交"
// @Success 200 {object} util.Response{data=service.SubmitFlagResult} "答对"
// @Failure 400 {object} util.Response "flag 错误"
// @Failure 403 {object} util.Response "未报名"
// @Failure 409 {object} util.Response "该题已解出"
// @Failure 422 {object} util.Response "赛事不在进行中"
// @Router /api/ctf/{id}/submit [post]
func (c *CTFController) SubmitFlag(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	result, err := c.CTFService.SubmitFlag(claims.UserID, id, req.QuestionID, req.Flag)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCTFNotFound), errors.Is(err, util.ErrQuestionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNotRegistered):
			util.Error(ctx, 403, err.Error())
		case errors.Is(err, util.ErrCTFNotActive):
			util.Error(ctx, 422, err.Error())
		case errors.Is(err, util.ErrAlreadySolved):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrWrongFlag):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// Finish godoc
// @Summary 交卷
// @Tags CTF
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "赛事ID"
// @Success 200 {object} util.Response{data=model.CTFRegistration} "成功"
// @Failure 403 {object} util.Response "未报名"
// @Router /api/ctf/{id}/finish [post]
func (c *CTFController) Finish(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	reg, err := c.CTFService.Finish(claims.UserID, id)
	if err != nil {
		if errors.Is(err, util.ErrNotRegistered) {
			util.Error(ctx, 403, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, reg)
}

// Scoreboard godoc
// @Summary 赛事榜单
// @Description 前 10 名；登录选手不在前 10 时以真实名次替换第 10 行
// @Tags CTF
// @Produce  json
// @Param   id path int true "赛事ID"
// @Success 200 {object} util.Response{data=[]service.ScoreboardRow} "成功"
// @Failure 404 {object} util.Response "赛事不存在"
// @Router /api/ctf/{id}/scoreboard [get]
func (c *CTFController) Scoreboard(ctx *gin.Context) {
	var viewerID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		viewerID = claims.UserID
	}

	id := util.MustParseUint(ctx.Param("id"))
	rows, err := c.CTFService.Scoreboard(id, viewerID)
	if err != nil {
		if errors.Is(err, util.ErrCTFNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, rows)
}

// CreateEvent godoc
// @Summary 新建赛事（管理员）
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.CTFEventInput true "赛事信息"
// @Success 201 {object} util.Response{data=model.CTFEvent} "创建成功"
// @Router /api/admin/ctf [post]
func (c *CTFController) CreateEvent(ctx *gin.Context) {
	var req service.CTFEventInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	event, err := c.CTFService.CreateEvent(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, event)
}

// UpdateEvent godoc
// @Summary 更新赛事（管理员）
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "赛事ID"
// @Param   body body service.CTFEventInput true "赛事信息"
// @Success 200 {object} util.Response{data=model.CTFEvent} "成功"
// @Router /api/admin/ctf/{id} [put]
func (c *CTFController) UpdateEvent(ctx *gin.Context) {
	var req service.CTFEventInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	event, err := c.CTFService.UpdateEvent(id, req)
	if err != nil {
		if errors.Is(err, util.ErrCTFNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, event)
}

// DeleteEvent godoc
// @Summary 删除赛事（管理员）
// @Tags 后台管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "赛事ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/ctf/{id} [delete]
func (c *CTFController) DeleteEvent(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.CTFService.DeleteEvent(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateQuestion godoc
// @Summary 新建赛题（管理员）
// @Description flag 明文只出现在请求里，落库前做 SHA-256
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "赛事ID"
// @Param   body body service.CTFQuestionInput true "赛题信息"
// @Success 201 {object} util.Response{data=model.CTFQuestion} "创建成功"
// @Router /api/admin/ctf/{id}/questions [post]
func (c *CTFController) CreateQuestion(ctx *gin.Context) {
	var req service.CTFQuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	ctfID := util.MustParseUint(ctx.Param("id"))
	q, err := c.CTFService.CreateQuestion(ctfID, req)
	if err != nil {
		if errors.Is(err, util.ErrCTFNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新赛题（管理员）
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   questionId path int true "赛题ID"
// @Param   body body service.CTFQuestionInput true "赛题信息"
// @Success 200 {object} util.Response{data=model.CTFQuestion} "成功"
// @Router /api/admin/ctf-questions/{questionId} [put]
func (c *CTFController) UpdateQuestion(ctx *gin.Context) {
	var req service.CTFQuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("questionId"))
	q, err := c.CTFService.UpdateQuestion(id, req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除赛题（管理员）
// @Tags 后台管理
// @Produce  json
// @Security BearerAuth
// @Param   questionId path int true "赛题ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/ctf-questions/{questionId} [delete]
func (c *CTFController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("questionId"))
	if err := c.CTFService.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
