package service

import (
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Cfg:      cfg,
	}
}

// Register 注册新用户。角色来自请求但只接受 learner/instructor，
// 管理员账号只能由管理员在用户管理里提升。
func (s *AuthService) Register(name, email, password, roleStr string) (*model.User, error) {
	role := model.Learner
	if roleStr != "" {
		parsed, err := model.ParseRole(roleStr)
		if err != nil {
			return nil, util.Validationf("invalid role %q", roleStr)
		}
		if parsed == model.Admin {
			return nil, util.ErrForbidden
		}
		role = parsed
	}

	_, err := s.UserRepo.FindByEmail(email)
	if err == nil {
		return nil, util.ErrEmailRegistered
	} else if err != gorm.ErrRecordNotFound {
		return nil, util.WrapStorage(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, util.WrapStorage(err)
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (string, error) {
	user, err := s.UserRepo.FindByEmail(email)
	if err != nil {
		return "", util.ErrInvalidCredentials
	}

	if user.Disabled {
		return "", util.ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}

	user.LastLogin = time.Now()
	s.UserRepo.Update(user)

	return util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) GetUser(claims *util.Claims) (*model.User, error) {
	if claims == nil {
		return nil, util.ErrUnauthenticated
	}
	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, util.ErrNotFound
	}
	return user, nil
}
