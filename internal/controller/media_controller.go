package controller

import (
	"path/filepath"

	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 课时媒体允许的类型：视频、图片、PDF 文档
var allowedLessonMimeTypes = []string{util.MimeVideo, util.MimeImage, util.MimePDF}

type MediaController struct {
	StorageService *service.StorageService
}

func NewMediaController(storageService *service.StorageService) *MediaController {
	return &MediaController{StorageService: storageService}
}

// @Summary 上传课时媒体文件
// @Description 上传视频/图片/文档，返回可写入课时 contentUrl 的地址；视频会探测时长
// @Tags 媒体
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "媒体文件"
// @Success 201 {object} util.Response
// @Router /api/instructor/media [post]
func (c *MediaController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}
	defer file.Close()

	mimeType, err := util.ValidateMimeType(file, allowedLessonMimeTypes)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	// ValidateMimeType 读掉了文件头，回到起始位置再上传
	if _, err := file.Seek(0, 0); err != nil {
		util.InternalServerError(ctx)
		return
	}

	objectName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	url, err := c.StorageService.Upload(ctx.Request.Context(), objectName, file, fileHeader.Size, mimeType)
	if err != nil {
		logger.Log.Error("media upload failed", zap.String("object", objectName), zap.Error(err))
		util.InternalServerError(ctx)
		return
	}

	result := gin.H{
		"url":      url,
		"mimeType": mimeType,
		"size":     fileHeader.Size,
	}

	// 本地存储的视频可以直接探测时长，前端建课时带上 durationSeconds
	if util.IsVideo(mimeType) {
		if localPath := c.StorageService.LocalPathFor(objectName); localPath != "" {
			if info, err := util.ProbeVideo(localPath); err == nil {
				result["durationSeconds"] = int(info.Duration)
				result["width"] = info.Width
				result["height"] = info.Height
			} else {
				logger.Log.Warn("video probe failed", zap.String("path", localPath), zap.Error(err))
			}
		}
	}

	util.Created(ctx, result)
}
