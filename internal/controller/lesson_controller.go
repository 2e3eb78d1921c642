package controller

import (
	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService *service.LessonService
}

func NewLessonController(lessonService *service.LessonService) *LessonController {
	return &LessonController{LessonService: lessonService}
}

// @Summary 追加课时
// @Tags 课时管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param lesson body service.LessonCreateRequest true "课时信息"
// @Success 201 {object} util.Response
// @Router /api/instructor/courses/{id}/lessons [post]
func (c *LessonController) Append(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	var req service.LessonCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Append(util.GetUserFromContext(ctx), courseID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// @Summary 更新课时
// @Tags 课时管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/lessons/{lessonId} [put]
func (c *LessonController) Update(ctx *gin.Context) {
	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if lessonID == 0 {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}
	var req service.LessonPatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lesson, err := c.LessonService.Update(util.GetUserFromContext(ctx), lessonID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// @Summary 删除课时（后续课时自动前移）
// @Tags 课时管理
// @Security ApiKeyAuth
// @Produce json
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/lessons/{lessonId} [delete]
func (c *LessonController) Delete(ctx *gin.Context) {
	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	if lessonID == 0 {
		util.BadRequest(ctx, "invalid lesson id")
		return
	}

	if err := c.LessonService.Delete(util.GetUserFromContext(ctx), lessonID); err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type reorderRequest struct {
	LessonIDs []uint `json:"lessonIds" binding:"required"`
}

// @Summary 重排课时（需提供完整排列）
// @Tags 课时管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id}/lessons/reorder [put]
func (c *LessonController) Reorder(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}
	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	lessons, err := c.LessonService.Reorder(util.GetUserFromContext(ctx), courseID, req.LessonIDs)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// @Summary 课程课时列表
// @Tags 课时管理
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id}/lessons [get]
func (c *LessonController) List(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("id"))
	if courseID == 0 {
		util.BadRequest(ctx, "invalid course id")
		return
	}

	lessons, err := c.LessonService.List(util.GetUserFromContext(ctx), courseID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}
