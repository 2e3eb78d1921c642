package service

import (
	"errors"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t)
	admin := env.seedUser(t, "admin", model.Admin)
	instructor := env.seedUser(t, "teacher", model.Instructor)
	learner := env.seedUser(t, "student", model.Learner)

	t.Run("only admin may manage users", func(t *testing.T) {
		if _, _, err := env.users.List(claimsFor(instructor), 1, 20); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("instructor: got %v, want ErrForbidden", err)
		}
		if _, _, err := env.users.List(claimsFor(learner), 1, 20); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("learner: got %v, want ErrForbidden", err)
		}
		if _, _, err := env.users.List(nil, 1, 20); !errors.Is(err, util.ErrUnauthenticated) {
			t.Errorf("anonymous: got %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("admin promotes learner to instructor", func(t *testing.T) {
		role := "instructor"
		updated, err := env.users.Update(claimsFor(admin), learner.ID, UserPatchRequest{Role: &role})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Role != model.Instructor {
			t.Errorf("role = %s, want instructor", updated.Role)
		}
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		role := "wizard"
		if _, err := env.users.Update(claimsFor(admin), learner.ID, UserPatchRequest{Role: &role}); !errors.Is(err, util.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		if err := env.users.ResetPassword(claimsFor(admin), learner.ID, "abc"); !errors.Is(err, util.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}
	})

	t.Run("admin cannot delete own account", func(t *testing.T) {
		if err := env.users.Delete(claimsFor(admin), admin.ID); !errors.Is(err, util.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}
	})

	t.Run("admin deletes another user", func(t *testing.T) {
		victim := env.seedUser(t, "victim", model.Learner)
		if err := env.users.Delete(claimsFor(admin), victim.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := env.users.Get(claimsFor(admin), victim.ID); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound after delete", err)
		}
	})
}
