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

type AuthHandler struct {
	db            *gorm.DB
	search        *services.SearchService
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthHandler(db *gorm.DB, search *services.SearchService, jwtSecret string, jwtExpiration time.Duration) *AuthHandler {
	return &AuthHandler{
		db:            db,
		search:        search,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Register 注册新用户。所有校验问题一次性收集进 alerts 返回，
// 前端按条展示。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var alerts []gin.H
	if req.Username == "" || req.Email == "" || req.Password == "" || req.Firstname == "" || req.Lastname == "" {
		alerts = append(alerts, gin.H{"error": "Some fields are missing"})
	}
	if used, err := h.isUsernameUsed(req.Username); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	} else if used {
		alerts = append(alerts, gin.H{"error": "Username already used"})
	}
	if !utils.IsValidUsername(req.Username) {
		alerts = append(alerts, gin.H{"error": "Invalid username: Username must be 6 characters long and can only contain letters, numbers, underscores (_) and dots (.)"})
	}
	if !utils.IsStrongPassword(req.Password) {
		alerts = append(alerts, gin.H{"error": "Password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, and one number"})
	}
	if len(alerts) > 0 {
		c.JSON(http.StatusUnauthorized, alerts)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	user := models.User{
		Username:  req.Username,
		Email:     req.Email,
		Password:  hash,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
	}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	// 提交之后镜像到搜索索引，失败不影响注册结果
	go h.search.SaveUser(&user)

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 校验邮箱密码并签发 token。密码错误和邮箱不存在返回同一个提示。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"error": "Wrong Email or Password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusOK, gin.H{"error": "Wrong Email or Password"})
		return
	}

	token, err := utils.GenerateToken(h.jwtSecret, h.jwtExpiration, user.ID, user.Username, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	// 记录最近一次签发的 token
	if err := h.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("jwt_token", token).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// CheckToken 配合 Auth 中间件使用，走到这里说明 token 有效
func (h *AuthHandler) CheckToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// UsernameUsed 注册页实时查询用户名是否已占用
func (h *AuthHandler) UsernameUsed(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	used, err := h.isUsernameUsed(req.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_username_used": used})
}

// ResetPassword 重设指定用户的密码
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	id := utils.StringToUint(c.Param("userId"))
	if id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid Password"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if err := h.db.Model(&models.User{}).Where("id = ?", id).
		Update("password", hash).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) isUsernameUsed(username string) (bool, error) {
	var count int64
	err := h.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
