package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const catalogCacheTTL = 5 * time.Minute

type CourseService struct {
	CourseRepo *repository.CourseRepository
	Gate       *AccessGate
	Redis      *redis.Client
}

func NewCourseService(courseRepo *repository.CourseRepository, gate *AccessGate, rdb *redis.Client) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		Gate:       gate,
		Redis:      rdb,
	}
}

type CourseCreateRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description"`
	Tags              []string `json:"tags"`
	Visibility        string   `json:"visibility"`
	AccessRule        string   `json:"accessRule"`
	Price             *int64   `json:"price"`
	ResponsibleUserID uint     `json:"responsibleUserId"` // 仅管理员可代他人创建
}

type CoursePatchRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Visibility  *string  `json:"visibility"`
	AccessRule  *string  `json:"accessRule"`
	Price       *int64   `json:"price"`
}

func parseVisibility(s string) (model.Visibility, error) {
	switch model.Visibility(s) {
	case model.VisibilityEveryone, model.VisibilitySignedIn:
		return model.Visibility(s), nil
	case "":
		return model.VisibilityEveryone, nil
	}
	return "", util.Validationf("invalid visibility %q", s)
}

func parseAccessRule(s string) (model.AccessRule, error) {
	switch model.AccessRule(s) {
	case model.AccessOpen, model.AccessInvitation, model.AccessPayment:
		return model.AccessRule(s), nil
	case "":
		return model.AccessOpen, nil
	}
	return "", util.Validationf("invalid access rule %q", s)
}

// validateAccessRule 付费课程必须带非负价格，其余规则下价格归零
func validateAccessRule(rule model.AccessRule, price *int64) (int64, error) {
	if rule == model.AccessPayment {
		if price == nil {
			return 0, util.Validationf("price is required for payment access rule")
		}
		if *price < 0 {
			return 0, util.Validationf("price must be non-negative")
		}
		return *price, nil
	}
	return 0, nil
}

// dedupTags 大小写敏感去重，保留首次出现顺序
func dedupTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func (s *CourseService) Create(claims *util.Claims, req CourseCreateRequest) (*model.Course, error) {
	if claims == nil {
		return nil, util.ErrUnauthenticated
	}
	if claims.Role != model.Instructor && claims.Role != model.Admin {
		return nil, util.ErrForbidden
	}

	responsible := claims.UserID
	if req.ResponsibleUserID != 0 && req.ResponsibleUserID != claims.UserID {
		if claims.Role != model.Admin {
			return nil, util.ErrForbidden
		}
		responsible = req.ResponsibleUserID
	}

	visibility, err := parseVisibility(req.Visibility)
	if err != nil {
		return nil, err
	}
	rule, err := parseAccessRule(req.AccessRule)
	if err != nil {
		return nil, err
	}
	price, err := validateAccessRule(rule, req.Price)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:             req.Title,
		Description:       req.Description,
		Visibility:        visibility,
		AccessRule:        rule,
		Price:             price,
		ResponsibleUserID: responsible,
	}
	course.SetTagList(dedupTags(req.Tags))

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, util.WrapStorage(err)
	}
	return course, nil
}

func (s *CourseService) findAndAuthorize(claims *util.Claims, courseID uint, cap Capability) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.WrapStorage(err)
	}
	if err := s.Gate.Authorize(claims, cap, course.ResponsibleUserID); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Update(claims *util.Claims, courseID uint, patch CoursePatchRequest) (*model.Course, error) {
	course, err := s.findAndAuthorize(claims, courseID, CapManageCourse)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, util.Validationf("title must not be empty")
		}
		course.Title = *patch.Title
	}
	if patch.Description != nil {
		course.Description = *patch.Description
	}
	if patch.Visibility != nil {
		v, err := parseVisibility(*patch.Visibility)
		if err != nil {
			return nil, err
		}
		course.Visibility = v
	}
	rule := course.AccessRule
	if patch.AccessRule != nil {
		rule, err = parseAccessRule(*patch.AccessRule)
		if err != nil {
			return nil, err
		}
	}
	if patch.AccessRule != nil || patch.Price != nil {
		price := patch.Price
		// 价格只在课程原本就是付费时才沿用旧值；从 open/invitation 切换到
		// payment 必须显式携带价格，否则会把被忽略的 0 当成售价
		if price == nil && rule == model.AccessPayment && course.AccessRule == model.AccessPayment {
			price = &course.Price
		}
		p, err := validateAccessRule(rule, price)
		if err != nil {
			return nil, err
		}
		course.AccessRule = rule
		course.Price = p
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, util.WrapStorage(err)
	}
	s.invalidateCatalog()
	return course, nil
}

// TogglePublish 幂等：目标状态与当前一致时不产生可观察变化，也不报错
func (s *CourseService) TogglePublish(claims *util.Claims, courseID uint, target bool) (*model.Course, error) {
	course, err := s.findAndAuthorize(claims, courseID, CapManageCourse)
	if err != nil {
		return nil, err
	}

	if course.Published == target {
		return course, nil
	}

	course.Published = target
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, util.WrapStorage(err)
	}
	s.invalidateCatalog()
	return course, nil
}

func (s *CourseService) SetTags(claims *util.Claims, courseID uint, tags []string) (*model.Course, error) {
	course, err := s.findAndAuthorize(claims, courseID, CapManageCourse)
	if err != nil {
		return nil, err
	}

	course.SetTagList(dedupTags(tags))
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, util.WrapStorage(err)
	}
	s.invalidateCatalog()
	return course, nil
}

func (s *CourseService) Get(claims *util.Claims, courseID uint) (*model.Course, error) {
	return s.findAndAuthorize(claims, courseID, CapManageCourse)
}

func (s *CourseService) ListMine(claims *util.Claims, page, limit int) ([]model.Course, int64, error) {
	if claims == nil {
		return nil, 0, util.ErrUnauthenticated
	}
	return s.CourseRepo.ListByResponsible(claims.UserID, page, limit)
}

// Catalog 公共课程目录。游客只看到 visibility=everyone 的已发布课程，
// 登录用户额外看到 signed_in 的。结果走 Redis 缓存。
func (s *CourseService) Catalog(ctx context.Context, signedIn bool) ([]model.Course, error) {
	key := "catalog:guest"
	if signedIn {
		key = "catalog:signed_in"
	}

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var courses []model.Course
			if json.Unmarshal([]byte(cached), &courses) == nil {
				return courses, nil
			}
		}
	}

	courses, err := s.CourseRepo.ListPublished(signedIn)
	if err != nil {
		return nil, util.WrapStorage(err)
	}

	if s.Redis != nil {
		if b, err := json.Marshal(courses); err == nil {
			if err := s.Redis.Set(ctx, key, b, catalogCacheTTL).Err(); err != nil {
				logger.Log.Warn("catalog cache write failed", zap.Error(err))
			}
		}
	}
	return courses, nil
}

func (s *CourseService) invalidateCatalog() {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Redis.Del(ctx, "catalog:guest", "catalog:signed_in").Err(); err != nil {
		logger.Log.Warn(fmt.Sprintf("catalog cache invalidation failed: %v", err))
	}
}
