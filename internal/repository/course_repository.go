package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// LockByID 在事务内锁定课程行，串行化同一课程上的课时序列变更。
// sqlite 不支持 FOR UPDATE，单测下退化为普通读取。
func (r *CourseRepository) LockByID(tx *gorm.DB, id uint) (*model.Course, error) {
	var course model.Course
	q := tx
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) ListByResponsible(userID uint, page, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64
	query := r.DB.Model(&model.Course{}).Where("responsible_user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&courses).Error
	return courses, total, err
}

// ListPublished 公共目录：已发布课程，按可见性过滤
func (r *CourseRepository) ListPublished(signedIn bool) ([]model.Course, error) {
	var courses []model.Course
	query := r.DB.Where("published = ?", true)
	if !signedIn {
		query = query.Where("visibility = ?", model.VisibilityEveryone)
	}
	err := query.Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListByIDs(ids []uint) ([]model.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var courses []model.Course
	err := r.DB.Where("id IN ?", ids).Find(&courses).Error
	return courses, err
}
