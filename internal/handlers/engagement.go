package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"snipnet/internal/services"
	"snipnet/internal/utils"
)

// EngagementHandler 把反应类路由转给账本服务，响应统一是 {success}
type EngagementHandler struct {
	ledger *services.Ledger
}

func NewEngagementHandler(ledger *services.Ledger) *EngagementHandler {
	return &EngagementHandler{ledger: ledger}
}

func (h *EngagementHandler) respond(c *gin.Context, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EngagementHandler) Like(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))
	h.respond(c, h.ledger.LikePost(c.Request.Context(), userID, postID))
}

func (h *EngagementHandler) Unlike(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))
	h.respond(c, h.ledger.UnlikePost(c.Request.Context(), userID, postID))
}

func (h *EngagementHandler) Dislike(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))
	h.respond(c, h.ledger.DislikePost(c.Request.Context(), userID, postID))
}

func (h *EngagementHandler) Undislike(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))
	h.respond(c, h.ledger.UndislikePost(c.Request.Context(), userID, postID))
}

// Save 收藏夹名从 query 里取，留空落入默认收藏夹
func (h *EngagementHandler) Save(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))
	collection := c.Query("collection")
	h.respond(c, h.ledger.SavePost(c.Request.Context(), userID, postID, collection))
}

func (h *EngagementHandler) Unsave(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))
	h.respond(c, h.ledger.UnsavePost(c.Request.Context(), userID, postID))
}

func (h *EngagementHandler) Interested(c *gin.Context) {
	interestedID := utils.StringToUint(c.Param("userId"))
	interestingID := utils.StringToUint(c.Param("interestingId"))
	h.respond(c, h.ledger.AddInterest(c.Request.Context(), interestedID, interestingID))
}

// Uninterested 解除订阅。没有订阅关系时明确告知。
func (h *EngagementHandler) Uninterested(c *gin.Context) {
	interestedID := utils.StringToUint(c.Param("userId"))
	interestingID := utils.StringToUint(c.Param("interestingId"))

	removed, err := h.ledger.RemoveInterest(c.Request.Context(), interestedID, interestingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}
	if !removed {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "No subscription found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *EngagementHandler) LikeComment(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	commentID := utils.StringToUint(c.Param("commentId"))
	h.respond(c, h.ledger.LikeComment(c.Request.Context(), userID, commentID))
}

func (h *EngagementHandler) UnlikeComment(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	commentID := utils.StringToUint(c.Param("commentId"))
	h.respond(c, h.ledger.UnlikeComment(c.Request.Context(), userID, commentID))
}

func (h *EngagementHandler) DislikeComment(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	commentID := utils.StringToUint(c.Param("commentId"))
	h.respond(c, h.ledger.DislikeComment(c.Request.Context(), userID, commentID))
}

func (h *EngagementHandler) UndislikeComment(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	commentID := utils.StringToUint(c.Param("commentId"))
	h.respond(c, h.ledger.UndislikeComment(c.Request.Context(), userID, commentID))
}
