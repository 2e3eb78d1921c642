package service

import (
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService 管理员的用户管理入口，全部走 manage_users 能力检查。
type UserService struct {
	UserRepo *repository.UserRepository
	Gate     *AccessGate
}

func NewUserService(userRepo *repository.UserRepository, gate *AccessGate) *UserService {
	return &UserService{
		UserRepo: userRepo,
		Gate:     gate,
	}
}

type UserPatchRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Disabled *bool   `json:"disabled"`
}

func (s *UserService) List(claims *util.Claims, page, limit int) ([]model.User, int64, error) {
	if err := s.Gate.Authorize(claims, CapManageUsers, 0); err != nil {
		return nil, 0, err
	}
	return s.UserRepo.List(page, limit)
}

func (s *UserService) Get(claims *util.Claims, userID uint) (*model.User, error) {
	if err := s.Gate.Authorize(claims, CapManageUsers, 0); err != nil {
		return nil, err
	}
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.WrapStorage(err)
	}
	return user, nil
}

func (s *UserService) Update(claims *util.Claims, userID uint, patch UserPatchRequest) (*model.User, error) {
	user, err := s.Get(claims, userID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Role != nil {
		role, err := model.ParseRole(*patch.Role)
		if err != nil {
			return nil, util.Validationf("invalid role %q", *patch.Role)
		}
		user.Role = role
	}
	if patch.Disabled != nil {
		user.Disabled = *patch.Disabled
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, util.WrapStorage(err)
	}
	return user, nil
}

func (s *UserService) ResetPassword(claims *util.Claims, userID uint, newPassword string) error {
	user, err := s.Get(claims, userID)
	if err != nil {
		return err
	}
	if len(newPassword) < 6 {
		return util.Validationf("password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	if err := s.UserRepo.Update(user); err != nil {
		return util.WrapStorage(err)
	}
	return nil
}

func (s *UserService) Delete(claims *util.Claims, userID uint) error {
	if err := s.Gate.Authorize(claims, CapManageUsers, 0); err != nil {
		return err
	}
	if claims.UserID == userID {
		return util.Validationf("cannot delete your own account")
	}
	if err := s.UserRepo.Delete(userID); err != nil {
		return util.WrapStorage(err)
	}
	return nil
}
