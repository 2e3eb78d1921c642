package service

import (
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

func TestAccessGateAuthorize(t *testing.T) {
	gate := NewAccessGate()

	instructor := &util.Claims{UserID: 10, Role: model.Instructor}
	learner := &util.Claims{UserID: 20, Role: model.Learner}
	admin := &util.Claims{UserID: 30, Role: model.Admin}

	tests := []struct {
		name    string
		claims  *util.Claims
		cap     Capability
		ownerID uint
		want    error
	}{
		{"nil claims is unauthenticated", nil, CapManageCourse, 10, util.ErrUnauthenticated},
		{"admin passes any capability", admin, CapManageUsers, 0, nil},
		{"admin passes others courses", admin, CapManageCourse, 10, nil},
		{"instructor manages own course", instructor, CapManageCourse, 10, nil},
		{"instructor cannot manage others course", instructor, CapManageCourse, 99, util.ErrForbidden},
		{"instructor edits own quiz", instructor, CapEditQuiz, 10, nil},
		{"instructor cannot edit others quiz", instructor, CapEditQuiz, 99, util.ErrForbidden},
		{"instructor invites to own course", instructor, CapInviteAttendee, 10, nil},
		{"instructor lists own attendees", instructor, CapListAttendees, 10, nil},
		{"instructor cannot manage users", instructor, CapManageUsers, 0, util.ErrForbidden},
		{"instructor cannot self enroll", instructor, CapEnrollSelf, 0, util.ErrForbidden},
		{"instructor views dashboard", instructor, CapViewDashboard, 0, nil},
		{"learner self enrolls", learner, CapEnrollSelf, 0, nil},
		{"learner views dashboard", learner, CapViewDashboard, 0, nil},
		{"learner cannot manage course", learner, CapManageCourse, 20, util.ErrForbidden},
		{"learner cannot manage own-id course", learner, CapManageCourse, 20, util.ErrForbidden},
		{"learner cannot invite", learner, CapInviteAttendee, 20, util.ErrForbidden},
		{"learner cannot manage users", learner, CapManageUsers, 0, util.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := gate.Authorize(tt.claims, tt.cap, tt.ownerID)
			if !errors.Is(err, tt.want) {
				t.Errorf("Authorize(%v, %s, %d) = %v, want %v", tt.claims, tt.cap, tt.ownerID, err, tt.want)
			}
		})
	}
}

func TestAccessGateDistinguishesUnauthenticatedFromForbidden(t *testing.T) {
	gate := NewAccessGate()

	if err := gate.Authorize(nil, CapManageCourse, 1); !errors.Is(err, util.ErrUnauthenticated) {
		t.Errorf("nil claims: got %v, want ErrUnauthenticated", err)
	}
	learner := &util.Claims{UserID: 1, Role: model.Learner}
	if err := gate.Authorize(learner, CapManageCourse, 1); !errors.Is(err, util.ErrForbidden) {
		t.Errorf("learner: got %v, want ErrForbidden", err)
	}
	if errors.Is(util.ErrUnauthenticated, util.ErrForbidden) {
		t.Error("ErrUnauthenticated must not match ErrForbidden")
	}
}
