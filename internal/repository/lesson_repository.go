package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *LessonRepository) ListByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).Order("lesson_order asc").Find(&lessons).Error
	return lessons, err
}

// MaxOrder 返回课程内当前最大的 lesson_order，空课程为 0
func (r *LessonRepository) MaxOrder(tx *gorm.DB, courseID uint) (int, error) {
	var max int
	err := tx.Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(lesson_order), 0)").
		Scan(&max).Error
	return max, err
}

// ShiftDownAfter 将课程内 lesson_order 大于 order 的课时整体前移一位，
// 必须与删除处于同一事务，外部不可观察到带空洞的中间状态。
func (r *LessonRepository) ShiftDownAfter(tx *gorm.DB, courseID uint, order int) error {
	return tx.Model(&model.Lesson{}).
		Where("course_id = ? AND lesson_order > ?", courseID, order).
		UpdateColumn("lesson_order", gorm.Expr("lesson_order - 1")).
		Error
}

func (r *LessonRepository) UpdateOrder(tx *gorm.DB, lessonID uint, order int) error {
	return tx.Model(&model.Lesson{}).
		Where("id = ?", lessonID).
		UpdateColumn("lesson_order", order).
		Error
}
