package model

import "time"

// Attendee 是学生与课程之间的准入记录，(course_id, learner_id) 全局唯一。
// swagger:model Attendee
type Attendee struct {
	BaseModel

	CourseID   uint      `gorm:"uniqueIndex:idx_attendee_course_learner;not null" json:"courseId"`
	LearnerID  uint      `gorm:"uniqueIndex:idx_attendee_course_learner;not null" json:"learnerId"`
	EnrolledAt time.Time `json:"enrolledAt"`

	// true 表示由教师/管理员邀请加入，false 表示自助报名
	Invited bool `gorm:"default:false" json:"invited"`
}

func (Attendee) TableName() string {
	return "attendees"
}
