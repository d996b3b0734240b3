package models

import (
	"time"
)

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"uniqueIndex;not null" json:"username"`
	Email      string    `gorm:"uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"not null" json:"-"` // bcrypt hash
	Firstname  string    `gorm:"not null" json:"firstname"`
	Lastname   string    `gorm:"not null" json:"lastname"`
	ProfilePic string    `json:"profile_pic"`
	JWTToken   string    `gorm:"column:jwt_token" json:"-"` // last issued token
	PostsCount int       `gorm:"default:0" json:"posts_count"`
	SubsCount  int       `gorm:"default:0" json:"subs_count"`
	Credit     int       `gorm:"default:0" json:"credit"` // may go negative
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
