package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"snipnet/internal/models"
	"snipnet/internal/services"
	"snipnet/internal/utils"
)

type CommentHandler struct {
	db       *gorm.DB
	ledger   *services.Ledger
	notifier *services.Notifier
}

func NewCommentHandler(db *gorm.DB, ledger *services.Ledger, notifier *services.Notifier) *CommentHandler {
	return &CommentHandler{db: db, ledger: ledger, notifier: notifier}
}

// commentRow 评论列表的一行，liked/disliked 是请求用户自己的反应
type commentRow struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	Content      string    `json:"content"`
	IsReply      bool      `json:"is_reply"`
	ReplyToID    *uint     `json:"reply_to_id"`
	LikeCount    int       `json:"like_count"`
	DislikeCount int       `json:"dislike_count"`
	CommentedAt  time.Time `json:"commented_at"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Username     string    `json:"username"`
	ProfilePic   string    `json:"profile_pic"`
	Liked        bool      `json:"liked"`
	Disliked     bool      `json:"disliked"`
}

// List 帖子的顶级评论，最新的在前
func (h *CommentHandler) List(c *gin.Context) {
	postID := utils.StringToUint(c.Param("postId"))
	userID := utils.StringToUint(c.Param("userId"))
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit := utils.StringToInt(c.DefaultQuery("limit", "20"))
	if limit <= 0 {
		limit = 20
	}
	offset := (page - 1) * limit

	var rows []commentRow
	err := h.db.Raw(`
SELECT c.id, c.user_id, c.content, c.is_reply, c.reply_to_id,
       c.like_count, c.dislike_count, c.commented_at,
       u.firstname, u.lastname, u.username, u.profile_pic,
       CASE WHEN cl.id IS NOT NULL THEN TRUE ELSE FALSE END AS liked,
       CASE WHEN cd.id IS NOT NULL THEN TRUE ELSE FALSE END AS disliked
FROM comments c
JOIN users u ON c.user_id = u.id
LEFT JOIN comment_likes cl ON cl.comment_id = c.id AND cl.user_id = ?
LEFT JOIN comment_dislikes cd ON cd.comment_id = c.id AND cd.user_id = ?
WHERE c.post_id = ? AND c.is_reply = ?
ORDER BY c.commented_at DESC
LIMIT ? OFFSET ?`, userID, userID, postID, false, limit, offset).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching comments"})
		return
	}
	if rows == nil {
		rows = []commentRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// Replies 某条评论下的回复，老的在前
func (h *CommentHandler) Replies(c *gin.Context) {
	commentID := utils.StringToUint(c.Param("commentId"))
	userID := utils.StringToUint(c.Query("uid"))
	limit := utils.StringToInt(c.DefaultQuery("limit", "2"))
	if limit <= 0 {
		limit = 2
	}
	offset := utils.StringToInt(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var rows []commentRow
	err := h.db.Raw(`
SELECT c.id, c.user_id, c.content, c.is_reply, c.reply_to_id,
       c.like_count, c.dislike_count, c.commented_at,
       u.firstname, u.lastname, u.username, u.profile_pic,
       CASE WHEN cl.id IS NOT NULL THEN TRUE ELSE FALSE END AS liked,
       CASE WHEN cd.id IS NOT NULL THEN TRUE ELSE FALSE END AS disliked
FROM comments c
JOIN users u ON c.user_id = u.id
LEFT JOIN comment_likes cl ON cl.comment_id = c.id AND cl.user_id = ?
LEFT JOIN comment_dislikes cd ON cd.comment_id = c.id AND cd.user_id = ?
WHERE c.is_reply = ? AND c.reply_to_id = ?
ORDER BY c.commented_at ASC
LIMIT ? OFFSET ?`, userID, userID, true, commentID, limit, offset).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching replies"})
		return
	}
	if rows == nil {
		rows = []commentRow{}
	}

	var total int64
	if err := h.db.Model(&models.Comment{}).
		Where("is_reply = ? AND reply_to_id = ?", true, commentID).
		Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching replies"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalReplies": total, "replies": rows})
}

// RepliesCount 回复条数
func (h *CommentHandler) RepliesCount(c *gin.Context) {
	commentID := utils.StringToUint(c.Param("commentId"))

	var total int64
	if err := h.db.Model(&models.Comment{}).
		Where("is_reply = ? AND reply_to_id = ?", true, commentID).
		Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching replies count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"totalReplies": total})
}

type addCommentRequest struct {
	UserID    uint   `json:"userId"`
	PostID    uint   `json:"postId"`
	Content   string `json:"content"`
	IsReply   bool   `json:"isReply"`
	ReplyToID *uint  `json:"replyToId"`
}

// Add 发表评论或回复，提交后在后台通知被评论方
func (h *CommentHandler) Add(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}
	if req.UserID == 0 || req.PostID == 0 || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	comment, err := h.ledger.AddComment(c.Request.Context(), req.UserID, req.PostID, req.Content, req.IsReply, req.ReplyToID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error adding comment"})
		return
	}

	if req.IsReply && req.ReplyToID != nil {
		go h.notifier.NotifyReplied(*req.ReplyToID, req.PostID, req.UserID)
	} else {
		go h.notifier.NotifyCommented(req.PostID, req.UserID)
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Comment added successfully", "comment": comment})
}

// Delete 删除顶级评论和它的整棵回复树
func (h *CommentHandler) Delete(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	commentID := utils.StringToUint(c.Param("commentId"))
	if userID == 0 || commentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	if err := h.ledger.DeleteComment(c.Request.Context(), userID, commentID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found or unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting comment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment, replies, and associated likes/dislikes deleted successfully"})
}

// DeleteReply 删除单条回复
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	commentID := utils.StringToUint(c.Param("commentId"))
	if userID == 0 || commentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	if err := h.ledger.DeleteReply(c.Request.Context(), userID, commentID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Reply not found or unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error deleting reply"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reply and associated likes/dislikes deleted successfully"})
}

// Edit 只改内容，计数不动
func (h *CommentHandler) Edit(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	commentID := utils.StringToUint(c.Param("commentId"))
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" || userID == 0 || commentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing required fields"})
		return
	}

	if err := h.db.Model(&models.Comment{}).
		Where("id = ? AND user_id = ?", commentID, userID).
		Update("content", req.Content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error updating comment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Comment updated successfully"})
}
