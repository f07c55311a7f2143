package controller

import (
	"cryptoseven_backend/internal/service"
	"cryptoseven_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LeaderboardController struct {
	LeaderboardService *service.LeaderboardService
}

func NewLeaderboardController(leaderboardService *service.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{LeaderboardService: leaderboardService}
}

// GetGlobal godoc
// @Summary 全局积分榜
// @Description 前 10 名；登录用户不在前 10 时以真实名次替换第 10 行
// @Tags 排行榜
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.LeaderboardRow} "成功"
// @Router /api/leaderboard [get]
func (c *LeaderboardController) GetGlobal(ctx *gin.Context) {
	var viewerID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		viewerID = claims.UserID
	}

	rows, err := c.LeaderboardService.GetGlobalLeaderboard(viewerID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// Rebuild godoc
// @Summary 重建排行榜缓存（管理员）
// @Tags 后台管理
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/leaderboard/rebuild [post]
func (c *LeaderboardController) Rebuild(ctx *gin.Context) {
	if err := c.LeaderboardService.Rebuild(); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
