package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

// @Summary 自助报名（仅 open 课程）
// @Tags 报名
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 201 {object} util.Response
// @Router /api/courses/{id}/enroll [post]
func (c *EnrollmentController) SelfEnroll(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	attendee, err := c.EnrollmentService.SelfEnroll(util.GetUserFromContext(ctx), courseID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, attendee)
}

type inviteRequest struct {
	LearnerID    uint   `json:"learnerId"`
	LearnerEmail string `json:"learnerEmail"`
}

// @Summary 邀请学员
// @Tags 报名
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body inviteRequest true "学员ID或邮箱"
// @Success 201 {object} util.Response
// @Router /api/instructor/courses/{id}/attendees [post]
func (c *EnrollmentController) Invite(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	var req inviteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attendee, err := c.EnrollmentService.Invite(util.GetUserFromContext(ctx), courseID, req.LearnerEmail, req.LearnerID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, attendee)
}

// @Summary 课程学员名单
// @Tags 报名
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id}/attendees [get]
func (c *EnrollmentController) ListAttendees(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	attendees, err := c.EnrollmentService.ListAttendees(util.GetUserFromContext(ctx), courseID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attendees)
}

// @Summary 可邀请学员列表（尚未报名该课程的用户）
// @Tags 报名
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id}/eligible-learners [get]
func (c *EnrollmentController) ListEligibleLearners(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	users, err := c.EnrollmentService.ListEligibleLearners(util.GetUserFromContext(ctx), courseID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, users)
}

// @Summary 我报名的课程
// @Tags 报名
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/my-courses [get]
func (c *EnrollmentController) ListMyCourses(ctx *gin.Context) {
	courses, err := c.EnrollmentService.ListMyCourses(util.GetUserFromContext(ctx))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
