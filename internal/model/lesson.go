package model

import (
	"fmt"
	"strings"
)

type LessonType string

const (
	LessonVideo    LessonType = "video"
	LessonDocument LessonType = "document"
	LessonImage    LessonType = "image"
	LessonQuiz     LessonType = "quiz"
)

func ParseLessonType(s string) (LessonType, error) {
	switch LessonType(strings.ToLower(strings.TrimSpace(s))) {
	case LessonVideo:
		return LessonVideo, nil
	case LessonDocument:
		return LessonDocument, nil
	case LessonImage:
		return LessonImage, nil
	case LessonQuiz:
		return LessonQuiz, nil
	}
	return "", fmt.Errorf("unknown lesson type %q", s)
}

// Lesson 的载荷按类型二选一：媒体类型使用 ContentURL，quiz 类型使用 QuizID。
// 两个字段不会同时有值。
// swagger:model Lesson
type Lesson struct {
	BaseModel

	CourseID uint       `gorm:"index;not null" json:"courseId"`
	Title    string     `gorm:"size:255;not null" json:"title"`
	Type     LessonType `gorm:"size:20;not null" json:"type"`

	ContentURL string `gorm:"size:512" json:"contentUrl,omitempty"`
	QuizID     *uint  `gorm:"index" json:"quizId,omitempty"`

	// 视频课时上传时由 ffmpeg 探测写入
	DurationSeconds int `gorm:"default:0" json:"durationSeconds,omitempty"`

	// 同一课程内恒为 {1..N}，由 LessonService 维护
	LessonOrder int `gorm:"not null" json:"lessonOrder"`
}

func (Lesson) TableName() string {
	return "lessons"
}
