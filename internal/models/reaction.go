package models

import (
	"time"
)

// 反应关系表。每张表对 (user, target) 组合加唯一索引，
// 插入端用 ON CONFLICT DO NOTHING 吸收重复请求。

type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_likes_pair" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Dislike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index;uniqueIndex:idx_dislikes_pair" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_dislikes_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index;uniqueIndex:idx_comment_likes_pair" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_likes_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentDislike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;index;uniqueIndex:idx_comment_dislikes_pair" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_dislikes_pair" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
