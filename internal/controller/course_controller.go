package controller

import (
	"strconv"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// @Summary 创建课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param course body service.CourseCreateRequest true "课程信息"
// @Success 201 {object} util.Response
// @Router /api/instructor/courses [post]
func (c *CourseController) Create(ctx *gin.Context) {
	var req service.CourseCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Create(util.GetUserFromContext(ctx), req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 更新课程
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param patch body service.CoursePatchRequest true "变更字段"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id} [put]
func (c *CourseController) Update(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}
	var req service.CoursePatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.Update(util.GetUserFromContext(ctx), id, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// @Summary 发布/下架课程（幂等）
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id}/publish [post]
func (c *CourseController) TogglePublish(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}
	var req publishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.TogglePublish(util.GetUserFromContext(ctx), id, *req.Published)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

type tagsRequest struct {
	Tags []string `json:"tags"`
}

// @Summary 设置课程标签
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id}/tags [put]
func (c *CourseController) SetTags(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}
	var req tagsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.SetTags(util.GetUserFromContext(ctx), id, req.Tags)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"course": course, "tags": course.TagList()})
}

// @Summary 课程详情
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{id} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	id := util.MustParseUint(ctx.Param("id"))
	if id == 0 {
		util.BadRequest(ctx, "invalid id")
		return
	}
	course, err := c.CourseService.Get(util.GetUserFromContext(ctx), id)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"course": course, "tags": course.TagList()})
}

// @Summary 我负责的课程
// @Tags 课程管理
// @Security ApiKeyAuth
// @Produce json
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/instructor/courses [get]
func (c *CourseController) ListMine(ctx *gin.Context) {
	page := 1
	limit := 20
	if p := ctx.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := ctx.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	courses, total, err := c.CourseService.ListMine(util.GetUserFromContext(ctx), page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"items": courses, "total": total})
}

// @Summary 公共课程目录
// @Tags 目录
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/catalog [get]
func (c *CourseController) Catalog(ctx *gin.Context) {
	signedIn := util.GetUserFromContext(ctx) != nil
	courses, err := c.CourseService.Catalog(ctx.Request.Context(), signedIn)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}
