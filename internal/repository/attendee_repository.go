package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type AttendeeRepository struct {
	DB *gorm.DB
}

func NewAttendeeRepository(db *gorm.DB) *AttendeeRepository {
	return &AttendeeRepository{DB: db}
}

func (r *AttendeeRepository) Create(attendee *model.Attendee) error {
	return r.DB.Create(attendee).Error
}

func (r *AttendeeRepository) Exists(courseID, learnerID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Attendee{}).
		Where("course_id = ? AND learner_id = ?", courseID, learnerID).
		Count(&count).Error
	return count > 0, err
}

func (r *AttendeeRepository) ListByCourse(courseID uint) ([]model.Attendee, error) {
	var attendees []model.Attendee
	err := r.DB.Where("course_id = ?", courseID).Order("enrolled_at asc").Find(&attendees).Error
	return attendees, err
}

func (r *AttendeeRepository) ListByLearner(learnerID uint) ([]model.Attendee, error) {
	var attendees []model.Attendee
	err := r.DB.Where("learner_id = ?", learnerID).Order("enrolled_at desc").Find(&attendees).Error
	return attendees, err
}
