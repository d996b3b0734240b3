package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"snipnet/internal/db"
	"snipnet/internal/models"
	"snipnet/internal/services"
	"snipnet/internal/utils"
)

func newAuthTestEnv(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	search := services.NewSearchService("", "", zap.NewNop())
	h := NewAuthHandler(conn, search, "test-secret", time.Hour)

	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/username-used", h.UsernameUsed)
	return conn, r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	conn, r := newAuthTestEnv(t)

	w := postJSON(t, r, "/register", gin.H{
		"username":  "ab", // 太短
		"email":     "ab@example.com",
		"password":  "weak",
		"firstname": "A",
		"lastname":  "B",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var alerts []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Len(t, alerts, 2) // 用户名和密码各一条

	// 校验失败不能落库
	var count int64
	require.NoError(t, conn.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestRegisterAndLogin(t *testing.T) {
	conn, r := newAuthTestEnv(t)

	w := postJSON(t, r, "/register", gin.H{
		"username":  "gopher01",
		"email":     "gopher@example.com",
		"password":  "Secret123",
		"firstname": "Go",
		"lastname":  "Pher",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, conn.Where("username = ?", "gopher01").First(&user).Error)
	require.NotEqual(t, "Secret123", user.Password)
	require.True(t, utils.CheckPasswordHash("Secret123", user.Password))

	w = postJSON(t, r, "/login", gin.H{
		"email":    "gopher@example.com",
		"password": "Secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Token)

	claims, err := utils.ParseToken("test-secret", resp.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)

	// 最近一次 token 落在用户行上
	require.NoError(t, conn.First(&user, user.ID).Error)
	require.Equal(t, resp.Token, user.JWTToken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, r := newAuthTestEnv(t)

	body := gin.H{
		"username":  "gopher01",
		"email":     "gopher@example.com",
		"password":  "Secret123",
		"firstname": "Go",
		"lastname":  "Pher",
	}
	require.Equal(t, http.StatusOK, postJSON(t, r, "/register", body).Code)

	body["email"] = "other@example.com"
	w := postJSON(t, r, "/register", body)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var alerts []map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &alerts))
	require.Equal(t, "Username already used", alerts[0]["error"])
}

func TestLoginWrongPassword(t *testing.T) {
	_, r := newAuthTestEnv(t)

	require.Equal(t, http.StatusOK, postJSON(t, r, "/register", gin.H{
		"username":  "gopher01",
		"email":     "gopher@example.com",
		"password":  "Secret123",
		"firstname": "Go",
		"lastname":  "Pher",
	}).Code)

	w := postJSON(t, r, "/login", gin.H{
		"email":    "gopher@example.com",
		"password": "WrongPass1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Wrong Email or Password", resp["error"])

	// 不存在的邮箱返回同一个提示
	w = postJSON(t, r, "/login", gin.H{
		"email":    "nobody@example.com",
		"password": "Secret123",
	})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Wrong Email or Password", resp["error"])
}

func TestUsernameUsed(t *testing.T) {
	_, r := newAuthTestEnv(t)

	require.Equal(t, http.StatusOK, postJSON(t, r, "/register", gin.H{
		"username":  "gopher01",
		"email":     "gopher@example.com",
		"password":  "Secret123",
		"firstname": "Go",
		"lastname":  "Pher",
	}).Code)

	w := postJSON(t, r, "/username-used", gin.H{"username": "gopher01"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp["is_username_used"])

	w = postJSON(t, r, "/username-used", gin.H{"username": "someoneelse"})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp["is_username_used"])
}
