package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"snipnet/internal/models"
	"snipnet/internal/utils"
)

// SavedHandler 收藏夹相关的查询
type SavedHandler struct {
	db *gorm.DB
}

func NewSavedHandler(db *gorm.DB) *SavedHandler {
	return &SavedHandler{db: db}
}

// savedPost 收藏列表的一行，比帖子流多一个 saved_at
type savedPost struct {
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
	SavedAt          time.Time `json:"saved_at"`
	IsLiked          bool      `json:"is_liked"`
	IsDisliked       bool      `json:"is_disliked"`
	IsSaved          bool      `json:"is_saved"`
	IsInterested     bool      `json:"is_interested"`
}

// 收藏列表从 saves 出发 JOIN 帖子，is_saved 恒为 true，
// 保留这列是为了前端复用同一套帖子卡片。
const savedSelect = `
SELECT p.id, p.poster_id, p.title, p.snippet, p.language, p.description,
       p.github_link, p.like_count, p.dislike_count, p.comment_count, p.posted_at,
       u.firstname AS poster_firstname,
       u.lastname AS poster_lastname,
       u.username AS poster_username,
       u.profile_pic AS poster_profile_pic,
       s.saved_at,
       CASE WHEN l.post_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_liked,
       CASE WHEN d.post_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_disliked,
       CASE WHEN s.post_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_saved,
       CASE WHEN i.interested_id IS NOT NULL THEN TRUE ELSE FALSE END AS is_interested
FROM saves s
JOIN posts p ON p.id = s.post_id
LEFT JOIN users u ON p.poster_id = u.id
LEFT JOIN likes l ON l.post_id = p.id AND l.user_id = ?
LEFT JOIN dislikes d ON d.post_id = p.id AND d.user_id = ?
LEFT JOIN interests i ON i.interested_id = ? AND i.interesting_id = p.poster_id
WHERE s.user_id = ?`

func pageParams(c *gin.Context, defaultLimit int) (limit, offset int) {
	limit = utils.StringToInt(c.DefaultQuery("limit", "10"))
	if limit <= 0 {
		limit = defaultLimit
	}
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	return limit, (page - 1) * limit
}

// List 用户的全部收藏，按收藏时间倒序
func (h *SavedHandler) List(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	limit, offset := pageParams(c, 10)

	var rows []savedPost
	err := h.db.Raw(savedSelect+`
ORDER BY s.saved_at DESC
LIMIT ? OFFSET ?`, userID, userID, userID, userID, limit, offset).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching saved posts"})
		return
	}
	if rows == nil {
		rows = []savedPost{}
	}
	c.JSON(http.StatusOK, rows)
}

// Search 按标题关键字搜索收藏
func (h *SavedHandler) Search(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	keyword := c.Query("keyword")
	limit, offset := pageParams(c, 10)

	var rows []savedPost
	err := h.db.Raw(savedSelect+`
AND p.title ILIKE ?
ORDER BY s.saved_at DESC
LIMIT ? OFFSET ?`, userID, userID, userID, userID, "%"+keyword+"%", limit, offset).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching search results for saved posts"})
		return
	}
	if rows == nil {
		rows = []savedPost{}
	}
	c.JSON(http.StatusOK, rows)
}

// Filter 按标题/语言/代码内容组合过滤收藏
func (h *SavedHandler) Filter(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	limit, offset := pageParams(c, 10)

	query := savedSelect
	args := []interface{}{userID, userID, userID, userID}

	if title := c.Query("title"); title != "" {
		query += ` AND p.title ILIKE ?`
		args = append(args, "%"+title+"%")
	}
	if language := c.Query("language"); language != "" {
		query += ` AND p.language ILIKE ?`
		args = append(args, "%"+language+"%")
	}
	if content := c.Query("content"); content != "" {
		query += ` AND p.snippet ILIKE ?`
		args = append(args, "%"+content+"%")
	}

	query += `
ORDER BY s.saved_at DESC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	var rows []savedPost
	if err := h.db.Raw(query, args...).Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error filtering saved posts"})
		return
	}
	if rows == nil {
		rows = []savedPost{}
	}
	c.JSON(http.StatusOK, rows)
}

// Collections 用户的收藏夹名单，默认收藏夹排最前
func (h *SavedHandler) Collections(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))

	var collections []string
	err := h.db.Raw(`
SELECT DISTINCT collection
FROM saves
WHERE user_id = ?
ORDER BY CASE WHEN collection = ? THEN 0 ELSE 1 END, collection ASC`,
		userID, models.DefaultCollection).Scan(&collections).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error, please try again later."})
		return
	}
	if len(collections) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No collections found for this user."})
		return
	}
	c.JSON(http.StatusOK, collections)
}

// CollectionPosts 某个收藏夹里的帖子
func (h *SavedHandler) CollectionPosts(c *gin.Context) {
	userID := utils.StringToUint(c.Param("userId"))
	collection := c.Param("collectionName")
	limit, offset := pageParams(c, 10)

	var rows []savedPost
	err := h.db.Raw(savedSelect+`
AND s.collection = ?
ORDER BY s.saved_at DESC
LIMIT ? OFFSET ?`, userID, userID, userID, userID, collection, limit, offset).Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred while fetching saved posts by collection"})
		return
	}
	if rows == nil {
		rows = []savedPost{}
	}
	c.JSON(http.StatusOK, rows)
}
