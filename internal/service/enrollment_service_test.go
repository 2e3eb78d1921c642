package service

import (
	"errors"
	"testing"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

func TestSelfEnroll(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	learner := env.seedUser(t, "student", model.Learner)

	open := env.seedCourse(t, owner, model.AccessOpen)
	invitation := env.seedCourse(t, owner, model.AccessInvitation)
	payment := env.seedCourse(t, owner, model.AccessPayment)

	t.Run("open course accepts self enrollment", func(t *testing.T) {
		attendee, err := env.enrollment.SelfEnroll(claimsFor(learner), open.ID)
		if err != nil {
			t.Fatalf("SelfEnroll: %v", err)
		}
		if attendee.Invited {
			t.Error("self enrollment must not be marked invited")
		}
		if attendee.LearnerID != learner.ID || attendee.CourseID != open.ID {
			t.Errorf("attendee = %+v", attendee)
		}
	})

	t.Run("duplicate enrollment conflicts", func(t *testing.T) {
		if _, err := env.enrollment.SelfEnroll(claimsFor(learner), open.ID); !errors.Is(err, util.ErrAlreadyEnrolled) {
			t.Errorf("got %v, want ErrAlreadyEnrolled", err)
		}
	})

	t.Run("invitation course rejects self enrollment", func(t *testing.T) {
		if _, err := env.enrollment.SelfEnroll(claimsFor(learner), invitation.ID); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("payment course rejects self enrollment", func(t *testing.T) {
		if _, err := env.enrollment.SelfEnroll(claimsFor(learner), payment.ID); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("anonymous cannot enroll", func(t *testing.T) {
		if _, err := env.enrollment.SelfEnroll(nil, open.ID); !errors.Is(err, util.ErrUnauthenticated) {
			t.Errorf("got %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("instructor cannot self enroll", func(t *testing.T) {
		if _, err := env.enrollment.SelfEnroll(claimsFor(owner), open.ID); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("missing course is not found", func(t *testing.T) {
		if _, err := env.enrollment.SelfEnroll(claimsFor(learner), 9999); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

// 并发报名时 exists 检查可能双双通过，最终由唯一索引兜底。
// 验证重复键错误被驱动翻译成 gorm.ErrDuplicatedKey，业务层才能映射为冲突。
func TestEnrollDuplicateKeyTranslated(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	learner := env.seedUser(t, "student", model.Learner)
	course := env.seedCourse(t, owner, model.AccessOpen)

	if _, err := env.enrollment.SelfEnroll(claimsFor(learner), course.ID); err != nil {
		t.Fatalf("SelfEnroll: %v", err)
	}

	dup := &model.Attendee{
		CourseID:   course.ID,
		LearnerID:  learner.ID,
		EnrolledAt: time.Now(),
	}
	err := env.attendees.Create(dup)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("got %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestInvite(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	other := env.seedUser(t, "other", model.Instructor)
	learner := env.seedUser(t, "student", model.Learner)

	// 邀请对任何访问规则都有效，包括 invitation 和 payment
	invitation := env.seedCourse(t, owner, model.AccessInvitation)
	payment := env.seedCourse(t, owner, model.AccessPayment)

	t.Run("owner invites by id", func(t *testing.T) {
		attendee, err := env.enrollment.Invite(claimsFor(owner), invitation.ID, "", learner.ID)
		if err != nil {
			t.Fatalf("Invite: %v", err)
		}
		if !attendee.Invited {
			t.Error("invited enrollment must be marked invited")
		}
	})

	t.Run("owner invites by email", func(t *testing.T) {
		attendee, err := env.enrollment.Invite(claimsFor(owner), payment.ID, learner.Email, 0)
		if err != nil {
			t.Fatalf("Invite: %v", err)
		}
		if attendee.LearnerID != learner.ID {
			t.Errorf("learner = %d, want %d", attendee.LearnerID, learner.ID)
		}
	})

	t.Run("duplicate invite conflicts", func(t *testing.T) {
		if _, err := env.enrollment.Invite(claimsFor(owner), invitation.ID, "", learner.ID); !errors.Is(err, util.ErrAlreadyEnrolled) {
			t.Errorf("got %v, want ErrAlreadyEnrolled", err)
		}
	})

	t.Run("non-owner instructor forbidden", func(t *testing.T) {
		if _, err := env.enrollment.Invite(claimsFor(other), invitation.ID, "", learner.ID); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("unknown learner is not found", func(t *testing.T) {
		if _, err := env.enrollment.Invite(claimsFor(owner), invitation.ID, "ghost@example.com", 0); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("neither id nor email rejected", func(t *testing.T) {
		if _, err := env.enrollment.Invite(claimsFor(owner), invitation.ID, "", 0); !errors.Is(err, util.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}
	})
}

func TestListAttendees(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	learner := env.seedUser(t, "student", model.Learner)
	course := env.seedCourse(t, owner, model.AccessOpen)

	if _, err := env.enrollment.SelfEnroll(claimsFor(learner), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	infos, err := env.enrollment.ListAttendees(claimsFor(owner), course.ID)
	if err != nil {
		t.Fatalf("ListAttendees: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("attendees = %d, want 1", len(infos))
	}
	if infos[0].UserID != learner.ID || infos[0].Email != learner.Email || infos[0].Name != learner.Name {
		t.Errorf("attendee info = %+v", infos[0])
	}

	t.Run("learner cannot list attendees", func(t *testing.T) {
		if _, err := env.enrollment.ListAttendees(claimsFor(learner), course.ID); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})
}

func TestListEligibleLearners(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	enrolled := env.seedUser(t, "enrolled", model.Learner)
	free := env.seedUser(t, "free", model.Learner)
	course := env.seedCourse(t, owner, model.AccessOpen)

	if _, err := env.enrollment.SelfEnroll(claimsFor(enrolled), course.ID); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	users, err := env.enrollment.ListEligibleLearners(claimsFor(owner), course.ID)
	if err != nil {
		t.Fatalf("ListEligibleLearners: %v", err)
	}

	ids := make(map[uint]bool, len(users))
	for _, u := range users {
		ids[u.ID] = true
	}
	if ids[enrolled.ID] {
		t.Error("enrolled learner must not be eligible")
	}
	if !ids[free.ID] {
		t.Error("unenrolled learner must be eligible")
	}
}

func TestListMyCourses(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	learner := env.seedUser(t, "student", model.Learner)

	first := env.seedCourse(t, owner, model.AccessOpen)
	second := env.seedCourse(t, owner, model.AccessOpen)
	_ = env.seedCourse(t, owner, model.AccessOpen) // 未报名

	for _, id := range []uint{first.ID, second.ID} {
		if _, err := env.enrollment.SelfEnroll(claimsFor(learner), id); err != nil {
			t.Fatalf("enroll %d: %v", id, err)
		}
	}

	courses, err := env.enrollment.ListMyCourses(claimsFor(learner))
	if err != nil {
		t.Fatalf("ListMyCourses: %v", err)
	}
	if len(courses) != 2 {
		t.Errorf("courses = %d, want 2", len(courses))
	}

	t.Run("no enrollments yields empty list", func(t *testing.T) {
		fresh := env.seedUser(t, "fresh", model.Learner)
		courses, err := env.enrollment.ListMyCourses(claimsFor(fresh))
		if err != nil {
			t.Fatalf("ListMyCourses: %v", err)
		}
		if len(courses) != 0 {
			t.Errorf("courses = %d, want 0", len(courses))
		}
	})
}
