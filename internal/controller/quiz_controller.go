package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type questionRequest struct {
	Text    string                  `json:"text" binding:"required"`
	Options []service.OptionRequest `json:"options"`
}

// @Summary 测验详情（含题目与选项）
// @Tags 测验管理
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/quizzes/{id} [get]
func (c *QuizController) GetDetail(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	detail, err := c.QuizService.GetDetail(util.GetUserFromContext(ctx), quizID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, detail)
}

// @Summary 添加题目
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param question body questionRequest true "题目信息"
// @Success 201 {object} util.Response
// @Router /api/instructor/quizzes/{id}/questions [post]
func (c *QuizController) AddQuestion(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	var req questionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuizService.AddQuestion(util.GetUserFromContext(ctx), quizID, req.Text, req.Options)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// @Summary 更新题目（整体替换选项）
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param qid path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/questions/{qid} [put]
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	questionID := util.MustParseUint(ctx.Param("qid"))
	if questionID == 0 {
		util.BadRequest(ctx, "invalid question id")
		return
	}
	var req questionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	question, err := c.QuizService.UpdateQuestion(util.GetUserFromContext(ctx), questionID, req.Text, req.Options)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// @Summary 删除题目
// @Tags 测验管理
// @Security ApiKeyAuth
// @Produce json
// @Param qid path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/questions/{qid} [delete]
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	questionID := util.MustParseUint(ctx.Param("qid"))
	if questionID == 0 {
		util.BadRequest(ctx, "invalid question id")
		return
	}

	if err := c.QuizService.DeleteQuestion(util.GetUserFromContext(ctx), questionID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// @Summary 更新奖励档位
// @Tags 测验管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param schedule body service.RewardScheduleRequest true "四档奖励"
// @Success 200 {object} util.Response
// @Router /api/instructor/quizzes/{id}/reward-schedule [put]
func (c *QuizController) UpdateRewardSchedule(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	var req service.RewardScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.QuizService.UpdateRewardSchedule(util.GetUserFromContext(ctx), quizID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, quiz)
}

type attemptRequest struct {
	// 题目ID -> 所选选项ID集合
	Answers map[uint][]uint `json:"answers" binding:"required"`
}

// @Summary 提交测验答案并评分
// @Tags 测验
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "测验ID"
// @Param body body attemptRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{id}/attempts [post]
func (c *QuizController) SubmitAttempt(ctx *gin.Context) {
	quizID := util.MustParseUint(ctx.Param("id"))
	if quizID == 0 {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	var req attemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.ScoreAttempt(util.GetUserFromContext(ctx), quizID, req.Answers)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
