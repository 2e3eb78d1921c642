package service

import (
	"fmt"
	"strings"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 每个测试用独立的内存 sqlite，表结构与生产迁移保持一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	courseRepo *repository.CourseRepository
	lessonRepo *repository.LessonRepository
	quizRepo   *repository.QuizRepository
	attendees  *repository.AttendeeRepository

	gate       *AccessGate
	courses    *CourseService
	lessons    *LessonService
	quizzes    *QuizService
	enrollment *EnrollmentService
	users      *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:         db,
		userRepo:   repository.NewUserRepository(db),
		courseRepo: repository.NewCourseRepository(db),
		lessonRepo: repository.NewLessonRepository(db),
		quizRepo:   repository.NewQuizRepository(db),
		attendees:  repository.NewAttendeeRepository(db),
		gate:       NewAccessGate(),
	}
	env.courses = NewCourseService(env.courseRepo, env.gate, nil)
	env.lessons = NewLessonService(env.lessonRepo, env.courseRepo, env.quizRepo, env.gate, db)
	env.quizzes = NewQuizService(env.quizRepo, env.courseRepo, env.attendees, env.gate, db)
	env.enrollment = NewEnrollmentService(env.attendees, env.courseRepo, env.userRepo, env.gate)
	env.users = NewUserService(env.userRepo, env.gate)
	return env
}

func (e *testEnv) seedUser(t *testing.T, name string, role model.Role) *model.User {
	t.Helper()

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	user := &model.User{
		Name:     name,
		Email:    name + "@example.com",
		Password: string(hashed),
		Role:     role,
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

func (e *testEnv) seedCourse(t *testing.T, owner *model.User, rule model.AccessRule) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:             "Test Course",
		Visibility:        model.VisibilityEveryone,
		AccessRule:        rule,
		ResponsibleUserID: owner.ID,
	}
	course.SetTagList(nil)
	if err := e.db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	return course
}

func claimsFor(user *model.User) *util.Claims {
	return &util.Claims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
	}
}
