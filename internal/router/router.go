package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"snipnet/internal/handlers"
	"snipnet/internal/middleware"
)

// Handlers 路由需要的全部处理器
type Handlers struct {
	Auth       *handlers.AuthHandler
	Feed       *handlers.FeedHandler
	Engagement *handlers.EngagementHandler
	Comment    *handlers.CommentHandler
	Saved      *handlers.SavedHandler
	Profile    *handlers.ProfileHandler
	Sync       *handlers.SyncHandler
}

// New 组装路由。第一段是字面量的路由和以 :userId 开头的
// 用户态路由共存，用户态路由的首段参数名必须统一。
func New(h Handlers, jwtSecret string, corsOrigins []string) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})

	// 认证
	r.POST("/register", h.Auth.Register)
	r.POST("/login", h.Auth.Login)
	r.POST("/username-used", h.Auth.UsernameUsed)
	r.GET("/check/token", middleware.Auth(jwtSecret), h.Auth.CheckToken)
	r.POST("/reset/password/:userId", h.Auth.ResetPassword)

	// 帖子流和单帖
	r.GET("/:userId/posts", h.Feed.Feed)
	r.GET("/post/:postId", h.Feed.GetPost)
	r.GET("/post/:postId/comments/:userId", h.Comment.List)
	r.GET("/published/posts/:username", h.Feed.PublishedPosts)

	// 帖子反应
	r.GET("/like/:userId/:postId", h.Engagement.Like)
	r.GET("/unlike/:userId/:postId", h.Engagement.Unlike)
	r.GET("/dislike/:userId/:postId", h.Engagement.Dislike)
	r.GET("/undislike/:userId/:postId", h.Engagement.Undislike)
	r.GET("/save/:userId/:postId", h.Engagement.Save)
	r.GET("/unsave/:userId/:postId", h.Engagement.Unsave)
	r.GET("/interested/:userId/:interestingId", h.Engagement.Interested)
	r.GET("/uninterested/:userId/:interestingId", h.Engagement.Uninterested)

	// 评论反应
	r.GET("/likeComment/:userId/:commentId", h.Engagement.LikeComment)
	r.GET("/unlikeComment/:userId/:commentId", h.Engagement.UnlikeComment)
	r.GET("/dislikeComment/:userId/:commentId", h.Engagement.DislikeComment)
	r.GET("/undislikeComment/:userId/:commentId", h.Engagement.UndislikeComment)

	// 评论
	r.POST("/add/comment", h.Comment.Add)
	r.GET("/comments/:commentId/replies", h.Comment.Replies)
	r.GET("/comments/:commentId/repliesCount", h.Comment.RepliesCount)
	r.DELETE("/:userId/delete-comment/:commentId", h.Comment.Delete)
	r.DELETE("/:userId/delete-reply/:commentId", h.Comment.DeleteReply)
	r.PUT("/:userId/edit-comment/:commentId", h.Comment.Edit)

	// 收藏
	r.GET("/:userId/saved-posts", h.Saved.List)
	r.GET("/:userId/saved-posts/filter", h.Saved.Filter)
	r.GET("/:userId/search-saved-posts", h.Saved.Search)
	r.GET("/:userId/collections", h.Saved.Collections)
	r.GET("/:userId/collection/posts/:collectionName", h.Saved.CollectionPosts)

	// 草稿和发布
	r.GET("/:userId/snippets", h.Feed.ListSnippets)
	r.POST("/:userId/add/snippet", h.Feed.AddSnippet)
	r.PUT("/:userId/edit/snippet/:snippetId", h.Feed.EditSnippet)
	r.DELETE("/:userId/delete/snippet/:snippetId", h.Feed.DeleteSnippet)
	r.POST("/:userId/add-post", h.Feed.CreatePost)
	r.POST("/:userId/add/post/:snippetId", h.Feed.CreatePostFromSnippet)
	r.PUT("/:userId/edit-post/:postId", h.Feed.EditPost)
	r.DELETE("/:userId/delete-post/:postId", h.Feed.DeletePost)

	// 个人主页
	r.GET("/profile/:username", h.Profile.Profile)
	r.GET("/notifications/:userId", h.Profile.Notifications)
	r.POST("/:userId/upload", h.Profile.Upload)

	// 搜索索引全量同步
	r.GET("/sync-posts", h.Sync.SyncPosts)
	r.GET("/sync-users", h.Sync.SyncUsers)

	return r
}
