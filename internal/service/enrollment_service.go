package service

import (
	"errors"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type EnrollmentService struct {
	AttendeeRepo *repository.AttendeeRepository
	CourseRepo   *repository.CourseRepository
	UserRepo     *repository.UserRepository
	Gate         *AccessGate
}

func NewEnrollmentService(attendeeRepo *repository.AttendeeRepository, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, gate *AccessGate) *EnrollmentService {
	return &EnrollmentService{
		AttendeeRepo: attendeeRepo,
		CourseRepo:   courseRepo,
		UserRepo:     userRepo,
		Gate:         gate,
	}
}

// AttendeeInfo 报名记录连同学员信息，供名单展示
type AttendeeInfo struct {
	UserID     uint      `json:"userId"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Invited    bool      `json:"invited"`
}

func (s *EnrollmentService) findCourse(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.WrapStorage(err)
	}
	return course, nil
}

// SelfEnroll 自助报名，仅对 access_rule=open 的课程开放。
// invitation 与 payment 课程一律 Forbidden，只能走邀请通道。
func (s *EnrollmentService) SelfEnroll(claims *util.Claims, courseID uint) (*model.Attendee, error) {
	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(claims, CapEnrollSelf, 0); err != nil {
		return nil, err
	}
	if course.AccessRule != model.AccessOpen {
		return nil, util.ErrForbidden
	}

	exists, err := s.AttendeeRepo.Exists(courseID, claims.UserID)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	if exists {
		return nil, util.ErrAlreadyEnrolled
	}

	attendee := &model.Attendee{
		CourseID:   courseID,
		LearnerID:  claims.UserID,
		EnrolledAt: time.Now(),
		Invited:    false,
	}
	if err := s.AttendeeRepo.Create(attendee); err != nil {
		// 并发重复报名由唯一索引兜住，翻译成冲突而不是 500
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, util.WrapStorage(err)
	}
	return attendee, nil
}

// Invite 教师/管理员邀请学员，对任何 access_rule 有效。
// 已有记录时返回 ErrAlreadyEnrolled，调用方能区分"新增"与"已存在"。
func (s *EnrollmentService) Invite(claims *util.Claims, courseID uint, learnerEmail string, learnerID uint) (*model.Attendee, error) {
	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(claims, CapInviteAttendee, course.ResponsibleUserID); err != nil {
		return nil, err
	}

	var learner *model.User
	if learnerID != 0 {
		learner, err = s.UserRepo.FindByID(learnerID)
	} else if learnerEmail != "" {
		learner, err = s.UserRepo.FindByEmail(learnerEmail)
	} else {
		return nil, util.Validationf("learner id or email is required")
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.WrapStorage(err)
	}

	exists, err := s.AttendeeRepo.Exists(courseID, learner.ID)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	if exists {
		return nil, util.ErrAlreadyEnrolled
	}

	attendee := &model.Attendee{
		CourseID:   courseID,
		LearnerID:  learner.ID,
		EnrolledAt: time.Now(),
		Invited:    true,
	}
	if err := s.AttendeeRepo.Create(attendee); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, util.ErrAlreadyEnrolled
		}
		return nil, util.WrapStorage(err)
	}
	return attendee, nil
}

func (s *EnrollmentService) ListAttendees(claims *util.Claims, courseID uint) ([]AttendeeInfo, error) {
	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(claims, CapListAttendees, course.ResponsibleUserID); err != nil {
		return nil, err
	}

	attendees, err := s.AttendeeRepo.ListByCourse(courseID)
	if err != nil {
		return nil, util.WrapStorage(err)
	}

	infos := make([]AttendeeInfo, 0, len(attendees))
	for _, a := range attendees {
		info := AttendeeInfo{
			UserID:     a.LearnerID,
			EnrolledAt: a.EnrolledAt,
			Invited:    a.Invited,
		}
		if user, err := s.UserRepo.FindByID(a.LearnerID); err == nil {
			info.Name = user.Name
			info.Email = user.Email
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ListEligibleLearners 返回尚未报名该课程的用户，不区分角色，填充邀请选择器
func (s *EnrollmentService) ListEligibleLearners(claims *util.Claims, courseID uint) ([]model.User, error) {
	course, err := s.findCourse(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.Gate.Authorize(claims, CapListAttendees, course.ResponsibleUserID); err != nil {
		return nil, err
	}

	users, err := s.UserRepo.ListNotEnrolled(courseID)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	return users, nil
}

// ListMyCourses 学员已报名的课程
func (s *EnrollmentService) ListMyCourses(claims *util.Claims) ([]model.Course, error) {
	if claims == nil {
		return nil, util.ErrUnauthenticated
	}
	attendees, err := s.AttendeeRepo.ListByLearner(claims.UserID)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	ids := make([]uint, len(attendees))
	for i, a := range attendees {
		ids[i] = a.CourseID
	}
	courses, err := s.CourseRepo.ListByIDs(ids)
	if err != nil {
		return nil, util.WrapStorage(err)
	}
	return courses, nil
}
