package controller

import (
	"errors"

	"cryptoseven_backend/internal/model"
	"cryptoseven_backend/internal/service"
	"cryptoseven_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

// ListQuizzes godoc
// @Summary 测验列表
// @Description 已登录时附带个人最高成绩
// @Tags 测验
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.QuizSummary} "成功"
// @Router /api/quizzes [get]
func (c *QuizController) ListQuizzes(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	summaries, err := c.QuizService.ListQuizzes(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// GetQuiz godoc
// @Summary 测验详情
// @Description 题目不含答案与解析，交卷后才下发
// @Tags 测验
// @Produce  json
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=model.Quiz} "成功"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id} [get]
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	quiz, err := c.QuizService.GetQuiz(id)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// Submit godoc
// @Summary 提交测验
// @Description 判卷并返回成绩；成绩取历史最高，仅首次答对的题计积分
// @Tags 测验
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Param   body body service.SubmitQuizInput true "答题卡"
// @Success 200 {object} util.Response{data=service.SubmitQuizResult} "成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "测验不存在"
// @Router /api/quizzes/{id}/submit [post]
func (c *QuizController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.SubmitQuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	result, err := c.QuizService.Submit(claims.UserID, id, req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, result)
}

// GetProgress godoc
// @Summary 我的测验进度
// @Tags 测验
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.QuizProgress} "成功"
// @Router /api/quizzes/progress [get]
func (c *QuizController) GetProgress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, err := c.QuizService.GetProgress(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CreateQuiz godoc
// @Summary 新建测验（管理员）
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.QuizInput true "测验信息"
// @Success 201 {object} util.Response{data=model.Quiz} "创建成功"
// @Router /api/admin/quizzes [post]
func (c *QuizController) CreateQuiz(ctx *gin.Context) {
	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.CreateQuiz(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// UpdateQuiz godoc
// @Summary 更新测验（管理员）
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Param   body body service.QuizInput true "测验信息"
// @Success 200 {object} util.Response{data=model.Quiz} "成功"
// @Router /api/admin/quizzes/{id} [put]
func (c *QuizController) UpdateQuiz(ctx *gin.Context) {
	var req service.QuizInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("id"))
	quiz, err := c.QuizService.UpdateQuiz(id, req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, quiz)
}

// DeleteQuiz godoc
// @Summary 删除测验（管理员）
// @Tags 后台管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/quizzes/{id} [delete]
func (c *QuizController) DeleteQuiz(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if err := c.QuizService.DeleteQuiz(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// AdminGetQuiz godoc
// @Summary 测验详情含答案（管理员）
// @Tags 后台管理
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Success 200 {object} util.Response{data=object} "成功"
// @Router /api/admin/quizzes/{id} [get]
func (c *QuizController) AdminGetQuiz(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	quiz, err := c.QuizService.GetQuiz(id)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	// 后台视图下发答案与解析
	type adminQuestion struct {
		model.QuizQuestion
		Answer      int    `json:"answer"`
		Explanation string `json:"explanation"`
	}
	questions := make([]adminQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, adminQuestion{
			QuizQuestion: q,
			Answer:       q.Answer,
			Explanation:  q.Explanation,
		})
	}
	util.Success(ctx, gin.H{"quiz": quiz, "questions": questions})
}

// CreateQuestion godoc
// @Summary 新建测验题目（管理员）
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id path int true "测验ID"
// @Param   body body service.QuizQuestionInput true "题目信息"
// @Success 201 {object} util.Response{data=model.QuizQuestion} "创建成功"
// @Router /api/admin/quizzes/{id}/questions [post]
func (c *QuizController) CreateQuestion(ctx *gin.Context) {
	var req service.QuizQuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quizID := util.MustParseUint(ctx.Param("id"))
	q, err := c.QuizService.CreateQuestion(quizID, req)
	if err != nil {
		if errors.Is(err, util.ErrQuizNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary 更新测验题目（管理员）
// @Tags 后台管理
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   questionId path int true "题目ID"
// @Param   body body service.QuizQuestionInput true "题目信息"
// @Success 200 {object} util.Response{data=model.QuizQuestion} "成功"
// @Router /api/admin/quiz-questions/{questionId} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuizQuestionInput
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id := util.MustParseUint(ctx.Param("questionId"))
	q, err := c.QuizService.UpdateQuestion(id, req)
	if err != nil {
		if errors.Is(err, util.ErrQuestionNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}
	util.Success(ctx, q)
}

// DeleteQuestion godoc
// @Summary 删除测验题目（管理员）
// @Tags 后台管理
// @Produce  json
// @Security BearerAuth
// @Param   questionId path int true "题目ID"
// @Success 200 {object} util.Response "成功"
// @Router /api/admin/quiz-questions/{questionId} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("questionId"))
	if err := c.QuizService.DeleteQuestion(id); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
