package model

import "encoding/json"

type Visibility string

const (
	VisibilityEveryone Visibility = "everyone"
	VisibilitySignedIn Visibility = "signed_in"
)

type AccessRule string

const (
	AccessOpen       AccessRule = "open"
	AccessInvitation AccessRule = "invitation"
	AccessPayment    AccessRule = "payment"
)

// swagger:model Course
type Course struct {
	BaseModel

	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Tags        string     `gorm:"type:json" json:"-"` // JSON array，通过 TagList 读写
	Published   bool       `gorm:"default:false" json:"published"`
	Visibility  Visibility `gorm:"size:20;default:'everyone'" json:"visibility"`
	AccessRule  AccessRule `gorm:"size:20;default:'open'" json:"accessRule"`

	// 单位为分，仅在 AccessRule 为 payment 时有意义
	Price int64 `gorm:"default:0" json:"price"`

	ResponsibleUserID uint `gorm:"index;not null" json:"responsibleUserId"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) TagList() []string {
	if c.Tags == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(c.Tags), &tags); err != nil {
		return nil
	}
	return tags
}

func (c *Course) SetTagList(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	b, _ := json.Marshal(tags)
	c.Tags = string(b)
}
