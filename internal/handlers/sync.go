package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"snipnet/internal/models"
	"snipnet/internal/services"
)

// SyncHandler 全量重建搜索索引的运维入口
type SyncHandler struct {
	db     *gorm.DB
	search *services.SearchService
}

func NewSyncHandler(db *gorm.DB, search *services.SearchService) *SyncHandler {
	return &SyncHandler{db: db, search: search}
}

func (h *SyncHandler) SyncPosts(c *gin.Context) {
	var posts []models.Post
	if err := h.db.Order("id").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if len(posts) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No posts found in the database"})
		return
	}

	synced := h.search.SyncPosts(posts)
	c.JSON(http.StatusOK, gin.H{
		"message": "All posts have been synchronized and uploaded to the search index",
		"synced":  synced,
	})
}

func (h *SyncHandler) SyncUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if len(users) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No users found in the database"})
		return
	}

	synced := h.search.SyncUsers(users)
	c.JSON(http.StatusOK, gin.H{
		"message": "All users have been synchronized and uploaded to the search index",
		"synced":  synced,
	})
}
