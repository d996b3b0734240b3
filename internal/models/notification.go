package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeCommentPost  NotificationType = "comment_post"
	NotificationTypeReplyComment NotificationType = "reply_comment"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ToID      uint             `gorm:"not null;index" json:"to_id"` // Receiver
	To        User             `gorm:"foreignKey:ToID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	FromID    *uint            `gorm:"index" json:"from_id"` // Sender
	PostID    *uint            `gorm:"index" json:"post_id"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	CreatedAt time.Time        `gorm:"column:time" json:"time"`
}
