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

type ProfileHandler struct {
	db      *gorm.DB
	search  *services.SearchService
	storage *services.FileStorage
	cache   *utils.Cache
}

func NewProfileHandler(db *gorm.DB, search *services.SearchService, storage *services.FileStorage, cache *utils.Cache) *ProfileHandler {
	return &ProfileHandler{db: db, search: search, storage: storage, cache: cache}
}

type profileView struct {
	ID         uint      `json:"id"`
	Firstname  string    `json:"firstname"`
	Lastname   string    `json:"lastname"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	ProfilePic string    `json:"profile_pic"`
	SubsCount  int       `json:"subs_count"`
	PostsCount int       `json:"posts_count"`
	Credit     int       `json:"credit"`
}

// Profile 个人主页。用户信息本身走缓存，is_subscribed
// 跟浏览者有关所以每次现查。
func (h *ProfileHandler) Profile(c *gin.Context) {
	username := c.Param("username")
	uid := utils.StringToUint(c.Query("uid"))
	if uid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User ID (uid) is required as a query parameter"})
		return
	}

	cacheKey := "profile:" + username
	var view profileView
	if cached := h.cache.Get(cacheKey); cached != nil {
		view = cached.(profileView)
	} else {
		var user models.User
		if err := h.db.Where("username = ?", username).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred while fetching the profile"})
			return
		}
		view = profileView{
			ID:         user.ID,
			Firstname:  user.Firstname,
			Lastname:   user.Lastname,
			Username:   user.Username,
			Email:      user.Email,
			CreatedAt:  user.CreatedAt,
			ProfilePic: user.ProfilePic,
			SubsCount:  user.SubsCount,
			PostsCount: user.PostsCount,
			Credit:     user.Credit,
		}
		h.cache.Set(cacheKey, view, time.Minute)
	}

	var subCount int64
	if err := h.db.Model(&models.Interest{}).
		Where("interested_id = ? AND interesting_id = ?", uid, view.ID).
		Count(&subCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred while fetching the profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            view.ID,
		"firstname":     view.Firstname,
		"lastname":      view.Lastname,
		"username":      view.Username,
		"email":         view.Email,
		"created_at":    view.CreatedAt,
		"profile_pic":   view.ProfilePic,
		"subs_count":    view.SubsCount,
		"posts_count":   view.PostsCount,
		"credit":        view.Credit,
		"is_subscribed": subCount > 0,
	})
}

type notificationRow struct {
	ID            uint      `json:"id"`
	ToID          uint      `json:"to_id"`
	FromID        *uint     `json:"from_id"`
	PostID        *uint     `json:"post_id"`
	Type          string    `json:"type"`
	Time          time.Time `json:"time"`
	PostTitle     string    `json:"post_title"`
	FromFirstname string    `json:"from_firstname"`
	FromLastname  string    `json:"from_lastname"`
}

// Notifications 通知列表，带上帖子标题和发起人姓名
func (h *ProfileHandler) Notifications(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	limit := utils.StringToInt(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	offset := utils.StringToInt(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	var rows []notificationRow
	err := h.db.Raw(`
SELECT n.id, n.to_id, n.from_id, n.post_id, n.type, n.time,
       p.title AS post_title,
       u.firstname AS from_firstname,
       u.lastname AS from_lastname
FROM notifications n
LEFT JOIN posts p ON n.post_id = p.id
LEFT JOIN users u ON n.from_id = u.id
WHERE n.to_id = ?
ORDER BY n.time DESC
LIMIT ? OFFSET ?`, userID, limit, offset).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching notifications"})
		return
	}
	if rows == nil {
		rows = []notificationRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// Upload 上传头像到对象存储，并把 URL 写回用户表和搜索索引
func (h *ProfileHandler) Upload(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "file storage not configured"})
		return
	}
	userID := utils.StringToUint(c.Param("userId"))

	fileHeader, err := c.FormFile("profilePic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profilePic file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	defer file.Close()

	url, err := h.storage.Upload(c.Request.Context(), file, fileHeader.Size,
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := h.db.Model(&models.User{}).Where("id = ?", userID).
		Update("profile_pic", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err == nil {
		h.cache.Delete("profile:" + user.Username)
		go h.search.SaveUser(&user)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": url})
}
