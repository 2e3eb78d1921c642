package util

import (
	"errors"
	"fmt"
)

// 核心错误分类，controller 层用 errors.Is 映射为 HTTP 状态码。
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidOrder    = errors.New("lesson id set does not match course")
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrValidation      = errors.New("validation failed")
	ErrStorage         = errors.New("storage error")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
)

func Validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// WrapStorage 将底层存储错误归入 ErrStorage。写操作一律不重试，避免重复创建。
func WrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
