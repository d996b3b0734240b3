package models

import (
	"time"
)

// DefaultCollection 是未指定收藏夹时的占位值
const DefaultCollection = "no collection"

// Save 收藏关系 - 用户把帖子存进一个收藏夹
type Save struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index;uniqueIndex:idx_saves_pair" json:"user_id"`
	PostID     uint      `gorm:"not null;index;uniqueIndex:idx_saves_pair" json:"post_id"`
	Collection string    `gorm:"not null;default:'no collection'" json:"collection"`
	SavedAt    time.Time `gorm:"column:saved_at;autoCreateTime" json:"saved_at"`
}
