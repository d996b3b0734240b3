package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"snipnet/internal/models"
)

func TestSearchServiceDisabledWithoutCredentials(t *testing.T) {
	s := NewSearchService("", "", zap.NewNop())
	if s.Enabled() {
		t.Fatal("expected search service to be disabled without credentials")
	}
	// 未配置时调用是空操作，不应该 panic
	s.SavePost(&models.Post{ID: 1})
	s.DeletePost(1)
}

func TestSearchServiceSavePost(t *testing.T) {
	var gotMethod, gotPath, gotAppID, gotKey string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAppID = r.Header.Get("X-Algolia-Application-Id")
		gotKey = r.Header.Get("X-Algolia-API-Key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSearchService("APP", "KEY", zap.NewNop())
	s.BaseURL = server.URL

	s.SavePost(&models.Post{
		ID:       42,
		PosterID: 7,
		Title:    "binary search",
		Snippet:  "func bs() {}",
		Language: "go",
	})

	if gotMethod != http.MethodPut {
		t.Fatalf("expected PUT, got %s", gotMethod)
	}
	if gotPath != "/1/indexes/posts/42" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAppID != "APP" || gotKey != "KEY" {
		t.Fatalf("credentials not forwarded: %s %s", gotAppID, gotKey)
	}
	if gotBody["objectID"] != "42" || gotBody["title"] != "binary search" {
		t.Fatalf("unexpected body: %v", gotBody)
	}
}

func TestSearchServiceDeletePost(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSearchService("APP", "KEY", zap.NewNop())
	s.BaseURL = server.URL

	s.DeletePost(42)

	if gotMethod != http.MethodDelete || gotPath != "/1/indexes/posts/42" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
}

func TestSearchServiceSyncCountsFailures(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSearchService("APP", "KEY", zap.NewNop())
	s.BaseURL = server.URL

	n := s.SyncPosts([]models.Post{{ID: 1}, {ID: 2}, {ID: 3}})
	if n != 2 {
		t.Fatalf("expected 2 successful syncs, got %d", n)
	}
}
