package service

import (
	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

// Capability 是绑定到具体资源实例的权限检查项，按路由族划分。
type Capability string

const (
	CapManageCourse   Capability = "manage_course"
	CapManageUsers    Capability = "manage_users"
	CapEnrollSelf     Capability = "enroll_self"
	CapInviteAttendee Capability = "invite_attendee"
	CapListAttendees  Capability = "list_attendees"
	CapEditQuiz       Capability = "edit_quiz"
	CapViewDashboard  Capability = "view_dashboard"
)

// AccessGate 是所有受保护操作的唯一入口：
//   - 未认证一律返回 ErrUnauthenticated（区别于已认证但无权限的 ErrForbidden）
//   - 管理员无条件通过
//   - 教师仅在自己是课程负责人时通过 manage_course / edit_quiz / invite_attendee / list_attendees
//   - 学生仅有 enroll_self 和 view_dashboard
//
// 能力授权不跨资源传递：归属检查按每次调用的 resourceOwnerID 进行。
type AccessGate struct{}

func NewAccessGate() *AccessGate {
	return &AccessGate{}
}

func (g *AccessGate) Authorize(claims *util.Claims, cap Capability, resourceOwnerID uint) error {
	if claims == nil {
		return util.ErrUnauthenticated
	}

	if claims.Role == model.Admin {
		return nil
	}

	switch claims.Role {
	case model.Instructor:
		switch cap {
		case CapManageCourse, CapEditQuiz, CapInviteAttendee, CapListAttendees:
			if claims.UserID == resourceOwnerID {
				return nil
			}
			return util.ErrForbidden
		case CapViewDashboard:
			return nil
		}
	case model.Learner:
		switch cap {
		case CapEnrollSelf, CapViewDashboard:
			return nil
		}
	}

	return util.ErrForbidden
}
