package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"snipnet/internal/models"
)

// SearchService 把帖子和用户镜像到外部搜索索引。
// 调用方在事务提交之后异步调用，失败只记日志不回滚。
type SearchService struct {
	appID  string
	apiKey string
	client *http.Client
	logger *zap.Logger

	// BaseURL 留空时按 appID 拼接正式地址，测试时可以指向本地
	BaseURL string
}

func NewSearchService(appID, apiKey string, logger *zap.Logger) *SearchService {
	return &SearchService{
		appID:  appID,
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// Enabled 未配置凭证时整个镜像层关闭
func (s *SearchService) Enabled() bool {
	return s.appID != "" && s.apiKey != ""
}

func (s *SearchService) baseURL() string {
	if s.BaseURL != "" {
		return s.BaseURL
	}
	return fmt.Sprintf("https://%s.algolia.net", s.appID)
}

func (s *SearchService) do(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.baseURL()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Algolia-Application-Id", s.appID)
	req.Header.Set("X-Algolia-API-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("search index: %s %s returned %d: %s", method, path, resp.StatusCode, data)
	}
	return nil
}

// postRecord 索引里的帖子文档，objectID 就是帖子主键
type postRecord struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet"`
	Language    string `json:"language"`
	Description string `json:"description"`
	PosterID    uint   `json:"posterId"`
}

type userRecord struct {
	ObjectID   string `json:"objectID"`
	Username   string `json:"username"`
	Firstname  string `json:"firstname"`
	Lastname   string `json:"lastname"`
	ProfilePic string `json:"profile_pic"`
}

// SavePost 新建或覆盖帖子文档
func (s *SearchService) SavePost(post *models.Post) {
	if !s.Enabled() {
		return
	}
	rec := postRecord{
		ObjectID:    fmt.Sprintf("%d", post.ID),
		Title:       post.Title,
		Snippet:     post.Snippet,
		Language:    post.Language,
		Description: post.Description,
		PosterID:    post.PosterID,
	}
	if err := s.do(http.MethodPut, "/1/indexes/posts/"+rec.ObjectID, rec); err != nil {
		s.logger.Warn("mirror post to search index failed",
			zap.Uint("post_id", post.ID), zap.Error(err))
	}
}

func (s *SearchService) DeletePost(postID uint) {
	if !s.Enabled() {
		return
	}
	if err := s.do(http.MethodDelete, fmt.Sprintf("/1/indexes/posts/%d", postID), nil); err != nil {
		s.logger.Warn("delete post from search index failed",
			zap.Uint("post_id", postID), zap.Error(err))
	}
}

func (s *SearchService) SaveUser(user *models.User) {
	if !s.Enabled() {
		return
	}
	rec := userRecord{
		ObjectID:   fmt.Sprintf("%d", user.ID),
		Username:   user.Username,
		Firstname:  user.Firstname,
		Lastname:   user.Lastname,
		ProfilePic: user.ProfilePic,
	}
	if err := s.do(http.MethodPut, "/1/indexes/users/"+rec.ObjectID, rec); err != nil {
		s.logger.Warn("mirror user to search index failed",
			zap.Uint("user_id", user.ID), zap.Error(err))
	}
}

// SyncPosts 全量重推帖子索引，返回成功条数
func (s *SearchService) SyncPosts(posts []models.Post) int {
	n := 0
	for i := range posts {
		rec := postRecord{
			ObjectID:    fmt.Sprintf("%d", posts[i].ID),
			Title:       posts[i].Title,
			Snippet:     posts[i].Snippet,
			Language:    posts[i].Language,
			Description: posts[i].Description,
			PosterID:    posts[i].PosterID,
		}
		if err := s.do(http.MethodPut, "/1/indexes/posts/"+rec.ObjectID, rec); err != nil {
			s.logger.Warn("sync post failed", zap.Uint("post_id", posts[i].ID), zap.Error(err))
			continue
		}
		n++
	}
	return n
}

// SyncUsers 全量重推用户索引，返回成功条数
func (s *SearchService) SyncUsers(users []models.User) int {
	n := 0
	for i := range users {
		rec := userRecord{
			ObjectID:   fmt.Sprintf("%d", users[i].ID),
			Username:   users[i].Username,
			Firstname:  users[i].Firstname,
			Lastname:   users[i].Lastname,
			ProfilePic: users[i].ProfilePic,
		}
		if err := s.do(http.MethodPut, "/1/indexes/users/"+rec.ObjectID, rec); err != nil {
			s.logger.Warn("sync user failed", zap.Uint("user_id", users[i].ID), zap.Error(err))
			continue
		}
		n++
	}
	return n
}
