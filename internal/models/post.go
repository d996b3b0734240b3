package models

import (
	"time"
)

type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PosterID     uint      `gorm:"not null;index" json:"poster_id"`
	Poster       User      `gorm:"foreignKey:PosterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title        string    `gorm:"not null" json:"title"`
	Snippet      string    `gorm:"type:text;not null" json:"snippet"` // the code body, stored verbatim
	Language     string    `gorm:"not null" json:"language"`
	Description  string    `gorm:"type:text" json:"description"`
	GithubLink   string    `gorm:"column:github_link" json:"github_link"`
	LikeCount    int       `gorm:"default:0" json:"like_count"`
	DislikeCount int       `gorm:"default:0" json:"dislike_count"`
	CommentCount int       `gorm:"default:0" json:"comment_count"`
	PostedAt     time.Time `gorm:"column:posted_at;autoCreateTime" json:"posted_at"`
}
