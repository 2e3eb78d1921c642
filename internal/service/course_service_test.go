package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/util"
)

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestCourseCreate(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.seedUser(t, "teacher", model.Instructor)
	learner := env.seedUser(t, "student", model.Learner)
	admin := env.seedUser(t, "boss", model.Admin)

	t.Run("instructor creates own course", func(t *testing.T) {
		course, err := env.courses.Create(claimsFor(instructor), CourseCreateRequest{Title: "Go Basics"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if course.ResponsibleUserID != instructor.ID {
			t.Errorf("responsible = %d, want %d", course.ResponsibleUserID, instructor.ID)
		}
		if course.Visibility != model.VisibilityEveryone || course.AccessRule != model.AccessOpen {
			t.Errorf("defaults not applied: %s / %s", course.Visibility, course.AccessRule)
		}
		if course.Published {
			t.Error("new course must start unpublished")
		}
	})

	t.Run("learner cannot create", func(t *testing.T) {
		if _, err := env.courses.Create(claimsFor(learner), CourseCreateRequest{Title: "Nope"}); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("anonymous cannot create", func(t *testing.T) {
		if _, err := env.courses.Create(nil, CourseCreateRequest{Title: "Nope"}); !errors.Is(err, util.ErrUnauthenticated) {
			t.Errorf("got %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("instructor cannot assign another responsible user", func(t *testing.T) {
		req := CourseCreateRequest{Title: "Nope", ResponsibleUserID: admin.ID}
		if _, err := env.courses.Create(claimsFor(instructor), req); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("admin assigns responsible user", func(t *testing.T) {
		req := CourseCreateRequest{Title: "Delegated", ResponsibleUserID: instructor.ID}
		course, err := env.courses.Create(claimsFor(admin), req)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if course.ResponsibleUserID != instructor.ID {
			t.Errorf("responsible = %d, want %d", course.ResponsibleUserID, instructor.ID)
		}
	})

	t.Run("tags are deduplicated preserving first occurrence", func(t *testing.T) {
		req := CourseCreateRequest{Title: "Tagged", Tags: []string{"go", "web", "go", "", "Web", "web"}}
		course, err := env.courses.Create(claimsFor(instructor), req)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		want := []string{"go", "web", "Web"}
		if got := course.TagList(); !reflect.DeepEqual(got, want) {
			t.Errorf("tags = %v, want %v", got, want)
		}
	})

	t.Run("payment rule requires a price", func(t *testing.T) {
		req := CourseCreateRequest{Title: "Paid", AccessRule: "payment"}
		if _, err := env.courses.Create(claimsFor(instructor), req); !errors.Is(err, util.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}

		req.Price = int64Ptr(-100)
		if _, err := env.courses.Create(claimsFor(instructor), req); !errors.Is(err, util.ErrValidation) {
			t.Errorf("negative price: got %v, want ErrValidation", err)
		}

		req.Price = int64Ptr(4900)
		course, err := env.courses.Create(claimsFor(instructor), req)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if course.Price != 4900 {
			t.Errorf("price = %d, want 4900", course.Price)
		}
	})

	t.Run("price is zeroed for non-payment rule", func(t *testing.T) {
		req := CourseCreateRequest{Title: "Free", AccessRule: "open", Price: int64Ptr(999)}
		course, err := env.courses.Create(claimsFor(instructor), req)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if course.Price != 0 {
			t.Errorf("price = %d, want 0", course.Price)
		}
	})

	t.Run("invalid enum values rejected", func(t *testing.T) {
		if _, err := env.courses.Create(claimsFor(instructor), CourseCreateRequest{Title: "X", Visibility: "public"}); !errors.Is(err, util.ErrValidation) {
			t.Errorf("visibility: got %v, want ErrValidation", err)
		}
		if _, err := env.courses.Create(claimsFor(instructor), CourseCreateRequest{Title: "X", AccessRule: "free"}); !errors.Is(err, util.ErrValidation) {
			t.Errorf("access rule: got %v, want ErrValidation", err)
		}
	})
}

func TestCourseUpdate(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	other := env.seedUser(t, "other", model.Instructor)
	course := env.seedCourse(t, owner, model.AccessOpen)

	t.Run("non-owner instructor forbidden", func(t *testing.T) {
		patch := CoursePatchRequest{Title: strPtr("Hijacked")}
		if _, err := env.courses.Update(claimsFor(other), course.ID, patch); !errors.Is(err, util.ErrForbidden) {
			t.Errorf("got %v, want ErrForbidden", err)
		}
	})

	t.Run("missing course is not found", func(t *testing.T) {
		if _, err := env.courses.Update(claimsFor(owner), 9999, CoursePatchRequest{}); !errors.Is(err, util.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("patch only touches provided fields", func(t *testing.T) {
		patch := CoursePatchRequest{Description: strPtr("updated")}
		updated, err := env.courses.Update(claimsFor(owner), course.ID, patch)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Description != "updated" {
			t.Errorf("description = %q", updated.Description)
		}
		if updated.Title != course.Title {
			t.Errorf("title changed unexpectedly: %q", updated.Title)
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		if _, err := env.courses.Update(claimsFor(owner), course.ID, CoursePatchRequest{Title: strPtr("")}); !errors.Is(err, util.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}
	})

	t.Run("switching to payment requires price", func(t *testing.T) {
		patch := CoursePatchRequest{AccessRule: strPtr("payment")}
		if _, err := env.courses.Update(claimsFor(owner), course.ID, patch); !errors.Is(err, util.ErrValidation) {
			t.Errorf("got %v, want ErrValidation", err)
		}

		patch.Price = int64Ptr(1500)
		updated, err := env.courses.Update(claimsFor(owner), course.ID, patch)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.AccessRule != model.AccessPayment || updated.Price != 1500 {
			t.Errorf("got %s/%d, want payment/1500", updated.AccessRule, updated.Price)
		}
	})

	t.Run("payment course keeps price when patch omits it", func(t *testing.T) {
		paid := env.seedCourse(t, owner, model.AccessPayment)
		paid.Price = 2000
		if err := env.courseRepo.Update(paid); err != nil {
			t.Fatalf("seed price: %v", err)
		}

		patch := CoursePatchRequest{AccessRule: strPtr("payment"), Description: strPtr("still paid")}
		updated, err := env.courses.Update(claimsFor(owner), paid.ID, patch)
		if err != nil {
			t.Fatalf("Update: %v", err)
		}
		if updated.Price != 2000 {
			t.Errorf("price = %d, want 2000 carried over", updated.Price)
		}
	})
}

func TestCourseTogglePublish(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)
	course := env.seedCourse(t, owner, model.AccessOpen)

	published, err := env.courses.TogglePublish(claimsFor(owner), course.ID, true)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !published.Published {
		t.Fatal("course should be published")
	}

	// 重复发布是幂等的
	again, err := env.courses.TogglePublish(claimsFor(owner), course.ID, true)
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if !again.Published {
		t.Error("course should remain published")
	}

	unpublished, err := env.courses.TogglePublish(claimsFor(owner), course.ID, false)
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if unpublished.Published {
		t.Error("course should be unpublished")
	}
}

func TestCourseCatalog(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner", model.Instructor)

	everyone := env.seedCourse(t, owner, model.AccessOpen)
	signedIn := &model.Course{
		Title:             "Members Only",
		Visibility:        model.VisibilitySignedIn,
		AccessRule:        model.AccessOpen,
		ResponsibleUserID: owner.ID,
	}
	if err := env.db.Create(signedIn).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	draft := env.seedCourse(t, owner, model.AccessOpen)
	_ = draft // 未发布课程永远不进目录

	for _, id := range []uint{everyone.ID, signedIn.ID} {
		if _, err := env.courses.TogglePublish(claimsFor(owner), id, true); err != nil {
			t.Fatalf("publish %d: %v", id, err)
		}
	}

	guest, err := env.courses.Catalog(context.Background(), false)
	if err != nil {
		t.Fatalf("guest catalog: %v", err)
	}
	if len(guest) != 1 || guest[0].ID != everyone.ID {
		t.Errorf("guest catalog = %d courses, want only the everyone course", len(guest))
	}

	member, err := env.courses.Catalog(context.Background(), true)
	if err != nil {
		t.Fatalf("signed-in catalog: %v", err)
	}
	if len(member) != 2 {
		t.Errorf("signed-in catalog = %d courses, want 2", len(member))
	}
}
