package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"snipnet/internal/models"
	"snipnet/internal/services"
	"snipnet/internal/utils"
)

// FeedHandler 负责帖子流、单帖详情、草稿和发布
type FeedHandler struct {
	db     *gorm.DB
	ledger *services.Ledger
	search *services.SearchService
}

func NewFeedHandler(db *gorm.DB, ledger *services.Ledger, search *services.SearchService) *FeedHandler {
	return &FeedHandler{db: db, ledger: ledger, search: search}
}

// feedPost 帖子流的一行：帖子字段 + 作者信息 + 当前用户的反应标记
type feedPost struct {
	ID               uint      `json:"id"`
	PosterID         uint      `json:"poster_id"`
	Title            string    `json:"title"`
	Snippet          string    `json:"snippet"`
	Language         string    `json:"language"`
	Description      string    `json:"description"`
	GithubLink       string    `json:"github_link"`
	LikeCount        int       `json:"like_count"`
	DislikeCount     int       `json:"dislike_count"`
	CommentCount     int       `json:"comment_count"`
	PostedAt         time.Time `json:"posted_at"`
	PosterFirstname  string    `json:"poster_firstname"`
	PosterLastname   string    `json:"poster_lastname"`
	PosterUsername   string    `json:"poster_username"`
	PosterProfilePic string    `json:"poster_profile_pic"`
	IsLiked          bool      `json:"isLiked"`
	IsDisliked       bool      `json:"isDisliked"`
	IsSaved          bool      `json:"isSaved"`
	IsInterested     bool      `json:"isInterested"`
}

// 反应标记通过 LEFT JOIN 算出：关系行存在即为 true。
// 标记的数据源就是关系表本身，和计数字段无关。
const feedSelect = `
SELECT p.id, p.poster_id, p.title, p.snippet, p.language, p.description,
       p.github_link, p.like_count, p.dislike_count, p.comment_count, p.posted_at,
       u.firstname AS poster_firstname,
       u.lastname AS poster_lastname,
       u.username AS poster_username,
       u.profile_pic AS poster_profile_pic,
       CASE WHEN l.post_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_liked,
       CASE WHEN d.post_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_disliked,
       CASE WHEN s.post_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_saved,
       CASE WHEN i.interested_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_interested
FROM posts p
LEFT JOIN users u ON p.poster_id = u.id
LEFT JOIN likes l ON l.post_id = p.id AND l.user_id = ?
LEFT JOIN dislikes d ON d.post_id = p.id AND d.user_id = ?
LEFT JOIN saves s ON s.post_id = p.id AND s.user_id = ?
LEFT JOIN interests i ON i.interested_id = ? AND i.interesting_id = p.poster_id`

// Feed 随机取一批帖子，带上请求用户的反应标记
func (h *FeedHandler) Feed(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	limit := utils.StringToInt(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}

	var rows []feedPost
	err := h.db.Raw(feedSelect+`
ORDER BY RANDOM()
LIMIT ?`, userID, userID, userID, userID, limit).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred"})
		return
	}
	if rows == nil {
		rows = []feedPost{}
	}
	c.JSON(http.StatusOK, rows)
}

// GetPost 单帖详情，附作者信息
func (h *FeedHandler) GetPost(c *gin.Context) {
	postID := utils.StringToUint(c.Param("postId"))

	var row struct {
		ID           uint      `json:"id"`
		PosterID     uint      `json:"poster_id"`
		Title        string    `json:"title"`
		Snippet      string    `json:"snippet"`
		Language     string    `json:"language"`
		Description  string    `json:"description"`
		GithubLink   string    `json:"github_link"`
		LikeCount    int       `json:"like_count"`
		DislikeCount int       `json:"dislike_count"`
		CommentCount int       `json:"comment_count"`
		PostedAt     time.Time `json:"posted_at"`
		Username     string    `json:"username"`
		Firstname    string    `json:"firstname"`
		Lastname     string    `json:"lastname"`
		ProfilePic   string    `json:"profile_pic"`
	}
	res := h.db.Raw(`
SELECT p.id, p.poster_id, p.title, p.snippet, p.language, p.description,
       p.github_link, p.like_count, p.dislike_count, p.comment_count, p.posted_at,
       u.username, u.firstname, u.lastname, u.profile_pic
FROM posts p
JOIN users u ON p.poster_id = u.id
WHERE p.id = ?`, postID).Scan(&row)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// PublishedPosts 某个用户公开发布的帖子，uid 是浏览者
func (h *FeedHandler) PublishedPosts(c *gin.Context) {
	username := c.Param("username")
	uid := utils.StringToUint(c.Query("uid"))
	if uid == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing logged-in user ID (uid)"})
		return
	}
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit := utils.StringToInt(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var profileUser models.User
	if err := h.db.Select("id").Where("username = ?", username).First(&profileUser).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var rows []feedPost
	err := h.db.Raw(feedSelect+`
WHERE p.poster_id = ?
ORDER BY p.posted_at DESC
LIMIT ? OFFSET ?`, uid, uid, uid, uid, profileUser.ID, limit, offset).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if rows == nil {
		rows = []feedPost{}
	}

	var total int64
	if err := h.db.Model(&models.Post{}).Where("poster_id = ?", profileUser.ID).
		Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalPages": int(math.Ceil(float64(total) / float64(limit))),
		"posts":      rows,
	})
}

// ListSnippets 当前用户的草稿，按创建时间倒序分页
func (h *FeedHandler) ListSnippets(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	limit := utils.StringToInt(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = 10
	}
	offset := (page - 1) * limit

	var snippets []models.Snippet
	if err := h.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&snippets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	var total int64
	if err := h.db.Model(&models.Snippet{}).Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalPages": int(math.Ceil(float64(total) / float64(limit))),
		"snippets":   snippets,
	})
}

type snippetRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

func (r *snippetRequest) valid() bool {
	return strings.TrimSpace(r.Title) != "" &&
		strings.TrimSpace(r.Content) != "" &&
		strings.TrimSpace(r.Language) != ""
}

// AddSnippet 保存一条草稿
func (h *FeedHandler) AddSnippet(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	var req snippetRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	snippet := models.Snippet{
		UserID:   userID,
		Title:    req.Title,
		Content:  req.Content,
		Language: req.Language,
	}
	if err := h.db.Create(&snippet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Snippet Added successfully"})
}

// EditSnippet 修改草稿，只动自己的
func (h *FeedHandler) EditSnippet(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	snippetID := utils.StringToUint(c.Param("snippetId"))
	var req snippetRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := h.db.Model(&models.Snippet{}).
		Where("id = ? AND user_id = ?", snippetID, userID).
		Updates(map[string]interface{}{
			"title":    req.Title,
			"content":  req.Content,
			"language": req.Language,
		}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Snippet Updated successfully"})
}

// DeleteSnippet 删除草稿
func (h *FeedHandler) DeleteSnippet(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	snippetID := utils.StringToUint(c.Param("snippetId"))

	if err := h.db.Where("id = ? AND user_id = ?", snippetID, userID).
		Delete(&models.Snippet{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Snippet deleted successfully"})
}

type postRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Language    string `json:"language"`
	Description string `json:"description"`
	GithubLink  string `json:"gitHubLink"`
}

func (r *postRequest) valid() bool {
	return strings.TrimSpace(r.Title) != "" &&
		strings.TrimSpace(r.Content) != "" &&
		strings.TrimSpace(r.Language) != ""
}

func (r *postRequest) input() services.PostInput {
	return services.PostInput{
		Title:       r.Title,
		Content:     r.Content,
		Language:    r.Language,
		Description: r.Description,
		GithubLink:  r.GithubLink,
	}
}

// CreatePost 直接发布一篇帖子
func (h *FeedHandler) CreatePost(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	post, err := h.ledger.CreatePost(c.Request.Context(), userID, nil, req.input())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	go h.search.SavePost(post)

	c.JSON(http.StatusOK, gin.H{"message": "Post uploaded successfully", "post": post})
}

// CreatePostFromSnippet 把一条草稿发布成帖子并标记 is_posted
func (h *FeedHandler) CreatePostFromSnippet(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	snippetID := utils.StringToUint(c.Param("snippetId"))
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	post, err := h.ledger.CreatePost(c.Request.Context(), userID, &snippetID, req.input())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	go h.search.SavePost(post)

	c.JSON(http.StatusOK, gin.H{"message": "Post uploaded successfully", "post": post})
}

// EditPost 更新帖子并刷新搜索索引
func (h *FeedHandler) EditPost(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.valid() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	post, err := h.ledger.EditPost(c.Request.Context(), userID, postID, req.input())
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found or you do not have permission to edit it."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	go h.search.SavePost(post)

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully", "post": post})
}

// DeletePost 级联删除帖子并从搜索索引移除
func (h *FeedHandler) DeletePost(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	postID := utils.StringToUint(c.Param("postId"))

	post, err := h.ledger.DeletePost(c.Request.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found or unauthorized action"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	go h.search.DeletePost(post.ID)

	c.JSON(http.StatusOK, gin.H{"message": "Post and related data deleted successfully, user stats updated"})
}
