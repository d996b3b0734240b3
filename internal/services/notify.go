package services

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"snipnet/internal/models"
)

// Notifier 写入站内通知。评论和回复提交之后在后台调用。
type Notifier struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewNotifier(db *gorm.DB, logger *zap.Logger) *Notifier {
	return &Notifier{db: db, logger: logger}
}

// NotifyCommented 帖子被评论时通知作者，自己评论自己不通知
func (n *Notifier) NotifyCommented(postID, fromID uint) {
	var posterID uint
	if err := n.db.Model(&models.Post{}).Where("id = ?", postID).
		Select("poster_id").Scan(&posterID).Error; err != nil {
		n.logger.Warn("load post owner for notification failed",
			zap.Uint("post_id", postID), zap.Error(err))
		return
	}
	if posterID == 0 || posterID == fromID {
		return
	}
	n.create(models.Notification{
		ToID:   posterID,
		FromID: &fromID,
		PostID: &postID,
		Type:   models.NotificationTypeCommentPost,
	})
}

// NotifyReplied 评论被回复时通知评论作者
func (n *Notifier) NotifyReplied(commentID, postID, fromID uint) {
	var ownerID uint
	if err := n.db.Model(&models.Comment{}).Where("id = ?", commentID).
		Select("user_id").Scan(&ownerID).Error; err != nil {
		n.logger.Warn("load comment owner for notification failed",
			zap.Uint("comment_id", commentID), zap.Error(err))
		return
	}
	if ownerID == 0 || ownerID == fromID {
		return
	}
	n.create(models.Notification{
		ToID:   ownerID,
		FromID: &fromID,
		PostID: &postID,
		Type:   models.NotificationTypeReplyComment,
	})
}

func (n *Notifier) create(notification models.Notification) {
	if err := n.db.Create(&notification).Error; err != nil {
		n.logger.Warn("create notification failed",
			zap.Uint("to_id", notification.ToID), zap.Error(err))
	}
}
