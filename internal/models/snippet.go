package models

import (
	"time"
)

// Snippet 是用户的私有草稿，发布后生成 Post 并标记 is_posted
type Snippet struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Language   string    `gorm:"not null" json:"language"`
	IsPosted   bool      `gorm:"default:false" json:"is_posted"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `gorm:"column:modified_at;autoUpdateTime" json:"modified_at"`
}
