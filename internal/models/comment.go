package models

import (
	"time"
)

type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PostID       uint      `gorm:"not null;index" json:"post_id"`
	Post         Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	User         User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	IsReply      bool      `gorm:"default:false;index" json:"is_reply"`
	ReplyToID    *uint     `gorm:"index" json:"reply_to_id"` // nil for top-level comments
	LikeCount    int       `gorm:"default:0" json:"like_count"`
	DislikeCount int       `gorm:"default:0" json:"dislike_count"`
	CommentedAt  time.Time `gorm:"column:commented_at;autoCreateTime" json:"commented_at"`
}
