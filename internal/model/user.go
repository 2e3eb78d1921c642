package model

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	Learner    Role = "learner"
	Instructor Role = "instructor"
	Admin      Role = "admin"
)

// ParseRole 是角色字符串进入核心的唯一入口，大小写在这里统一。
// 核心内部只比较 Role 枚举值，不比较原始字符串。
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case Learner:
		return Learner, nil
	case Instructor:
		return Instructor, nil
	case Admin:
		return Admin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// swagger:model User
type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      Role      `gorm:"size:20;default:'learner'" json:"role"`
	Avatar    string    `gorm:"size:255" json:"avatar"`
	Disabled  bool      `gorm:"default:false" json:"disabled"`
	LastLogin time.Time `json:"lastLogin"`
	LastSeen  time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
