package controller

import (
	"errors"

	"cryptoseven_backend/internal/service"
	"cryptoseven_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReferralController struct {
	ReferralService *service.ReferralService
}

func NewReferralController(referralService *service.ReferralService) *ReferralController {
	return &ReferralController{ReferralService: referralService}
}

// GetInfo godoc
// @Summary 我的邀请面板
// @Description 邀请码、链接、点击数、已邀请人数与各档奖励状态
// @Tags 邀请
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ReferralInfo} "成功"
// @Router /api/referral [get]
func (c *ReferralController) GetInfo(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	info, err := c.ReferralService.GetInfo(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, info)
}

// RecordClick godoc
// @Summary 记录邀请链接点击
// @Description 匿名可调，按邀请码归因
// @Tags 邀请
// @Produce  json
// @Param   code path string true "邀请码"
// @Success 200 {object} util.Response "成功"
// @Failure 404 {object} util.Response "邀请码无效"
// @Router /api/referral/{code}/click [post]
func (c *ReferralController) RecordClick(ctx *gin.Context) {
	if err := c.ReferralService.RecordClick(ctx.Param("code")); err != nil {
		if errors.Is(err, util.ErrReferralCodeInvalid) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}

type ClaimTierRequest struct {
	Tier int `json:"tier" binding:"required"`
}

// ClaimTier godoc
// @Summary 领取邀请阶梯奖励
// @Description 1/5/10 人三档，各档只能领一次
// @Tags 邀请
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body ClaimTierRequest true "档位"
// @Success 200 {object} util.Response{data=service.TierState} "领取成功"
// @Failure 409 {object} util.Response "已领取"
// @Failure 422 {object} util.Response "未达门槛"
// @Router /api/referral/claim [post]
func (c *ReferralController) ClaimTier(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ClaimTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.ReferralService.ClaimTier(claims.UserID, req.Tier)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrTierAlreadyClaimed):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrTierNotReached):
			util.Error(ctx, 422, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, state)
}
