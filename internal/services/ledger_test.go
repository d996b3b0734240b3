package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"snipnet/internal/db"
	"snipnet/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func newTestUser(t *testing.T, conn *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "x",
		Firstname: "Test",
		Lastname:  "User",
	}
	require.NoError(t, conn.Create(user).Error)
	return user
}

func creditOf(t *testing.T, conn *gorm.DB, userID uint) int {
	t.Helper()
	var user models.User
	require.NoError(t, conn.First(&user, userID).Error)
	return user.Credit
}

func TestCreatePostAwardsCredit(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title:    "quicksort",
		Content:  "func qs(a []int) {}",
		Language: "go",
	})
	require.NoError(t, err)
	require.NotZero(t, post.ID)

	var user models.User
	require.NoError(t, conn.First(&user, poster.ID).Error)
	require.Equal(t, 1, user.PostsCount)
	require.Equal(t, CreditPostCreate, user.Credit)

	var logs int64
	require.NoError(t, conn.Model(&models.CreditLog{}).
		Where("user_id = ? AND action = ?", poster.ID, ActionPostCreate).
		Count(&logs).Error)
	require.EqualValues(t, 1, logs)
}

func TestCreatePostMarksSnippetPosted(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")

	snippet := models.Snippet{UserID: poster.ID, Title: "draft", Content: "x", Language: "go"}
	require.NoError(t, conn.Create(&snippet).Error)

	_, err := ledger.CreatePost(context.Background(), poster.ID, &snippet.ID, PostInput{
		Title: "draft", Content: "x", Language: "go",
	})
	require.NoError(t, err)

	var stored models.Snippet
	require.NoError(t, conn.First(&stored, snippet.ID).Error)
	require.True(t, stored.IsPosted)
}

func TestLikePostIsIdempotent(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	liker := newTestUser(t, conn, "liker001")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.LikePost(context.Background(), liker.ID, post.ID))
	require.NoError(t, ledger.LikePost(context.Background(), liker.ID, post.ID))

	var stored models.Post
	require.NoError(t, conn.First(&stored, post.ID).Error)
	require.Equal(t, 1, stored.LikeCount)

	var edges int64
	require.NoError(t, conn.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&edges).Error)
	require.EqualValues(t, 1, edges)

	// 重复请求不能二次加分
	require.Equal(t, CreditPostCreate+CreditPostLiked, creditOf(t, conn, poster.ID))
}

func TestLikeUnlikeRoundTrip(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	liker := newTestUser(t, conn, "liker001")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.LikePost(context.Background(), liker.ID, post.ID))
	require.NoError(t, ledger.UnlikePost(context.Background(), liker.ID, post.ID))

	var stored models.Post
	require.NoError(t, conn.First(&stored, post.ID).Error)
	require.Equal(t, 0, stored.LikeCount)
	require.Equal(t, CreditPostCreate, creditOf(t, conn, poster.ID))

	// 没有关系行时 unlike 是空操作
	require.NoError(t, ledger.UnlikePost(context.Background(), liker.ID, post.ID))
	require.NoError(t, conn.First(&stored, post.ID).Error)
	require.Equal(t, 0, stored.LikeCount)
	require.Equal(t, CreditPostCreate, creditOf(t, conn, poster.ID))
}

func TestDislikeAdjustsCredit(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	hater := newTestUser(t, conn, "hater001")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.DislikePost(context.Background(), hater.ID, post.ID))
	require.Equal(t, CreditPostCreate+CreditPostDisliked, creditOf(t, conn, poster.ID))

	require.NoError(t, ledger.UndislikePost(context.Background(), hater.ID, post.ID))
	require.Equal(t, CreditPostCreate, creditOf(t, conn, poster.ID))
}

func TestSavePostDefaultsCollection(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	saver := newTestUser(t, conn, "saver001")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.SavePost(context.Background(), saver.ID, post.ID, "  Algo  "))

	var save models.Save
	require.NoError(t, conn.Where("user_id = ? AND post_id = ?", saver.ID, post.ID).First(&save).Error)
	require.Equal(t, "algo", save.Collection)

	// 已收藏的重复请求不改收藏夹
	require.NoError(t, ledger.SavePost(context.Background(), saver.ID, post.ID, ""))
	require.NoError(t, conn.Where("user_id = ? AND post_id = ?", saver.ID, post.ID).First(&save).Error)
	require.Equal(t, "algo", save.Collection)

	require.NoError(t, ledger.UnsavePost(context.Background(), saver.ID, post.ID))
	var saves int64
	require.NoError(t, conn.Model(&models.Save{}).Where("user_id = ?", saver.ID).Count(&saves).Error)
	require.EqualValues(t, 0, saves)
}

func TestInterestSubsCount(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	fan := newTestUser(t, conn, "fan00001")
	star := newTestUser(t, conn, "star0001")

	require.NoError(t, ledger.AddInterest(context.Background(), fan.ID, star.ID))
	require.NoError(t, ledger.AddInterest(context.Background(), fan.ID, star.ID))

	var stored models.User
	require.NoError(t, conn.First(&stored, star.ID).Error)
	require.Equal(t, 1, stored.SubsCount)

	removed, err := ledger.RemoveInterest(context.Background(), fan.ID, star.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = ledger.RemoveInterest(context.Background(), fan.ID, star.ID)
	require.NoError(t, err)
	require.False(t, removed)

	require.NoError(t, conn.First(&stored, star.ID).Error)
	require.Equal(t, 0, stored.SubsCount)
}

func TestDeleteCommentCascadesReplies(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	commenter := newTestUser(t, conn, "commie01")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	comment, err := ledger.AddComment(context.Background(), commenter.ID, post.ID, "top", false, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := ledger.AddComment(context.Background(), poster.ID, post.ID, "reply", true, &comment.ID)
		require.NoError(t, err)
	}

	var replies []models.Comment
	require.NoError(t, conn.Where("reply_to_id = ?", comment.ID).Find(&replies).Error)
	require.Len(t, replies, 3)

	require.NoError(t, ledger.LikeComment(context.Background(), poster.ID, comment.ID))
	require.NoError(t, ledger.LikeComment(context.Background(), commenter.ID, replies[0].ID))
	require.NoError(t, ledger.DislikeComment(context.Background(), commenter.ID, replies[1].ID))

	var stored models.Post
	require.NoError(t, conn.First(&stored, post.ID).Error)
	require.Equal(t, 4, stored.CommentCount)

	require.NoError(t, ledger.DeleteComment(context.Background(), commenter.ID, comment.ID))

	require.NoError(t, conn.First(&stored, post.ID).Error)
	require.Equal(t, 0, stored.CommentCount)

	var count int64
	require.NoError(t, conn.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.NoError(t, conn.Model(&models.CommentLike{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.NoError(t, conn.Model(&models.CommentDislike{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestDeleteCommentRequiresOwner(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	commenter := newTestUser(t, conn, "commie01")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	comment, err := ledger.AddComment(context.Background(), commenter.ID, post.ID, "top", false, nil)
	require.NoError(t, err)

	err = ledger.DeleteComment(context.Background(), poster.ID, comment.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// 失败的删除不能动计数
	var stored models.Post
	require.NoError(t, conn.First(&stored, post.ID).Error)
	require.Equal(t, 1, stored.CommentCount)
}

func TestDeleteReply(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	comment, err := ledger.AddComment(context.Background(), poster.ID, post.ID, "top", false, nil)
	require.NoError(t, err)
	reply, err := ledger.AddComment(context.Background(), poster.ID, post.ID, "reply", true, &comment.ID)
	require.NoError(t, err)

	// 顶级评论不能走回复删除
	require.ErrorIs(t, ledger.DeleteReply(context.Background(), poster.ID, comment.ID), ErrNotFound)

	require.NoError(t, ledger.DeleteReply(context.Background(), poster.ID, reply.ID))

	var stored models.Post
	require.NoError(t, conn.First(&stored, post.ID).Error)
	require.Equal(t, 1, stored.CommentCount)
}

func TestDeletePostReversesCredit(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	fan1 := newTestUser(t, conn, "fan00001")
	fan2 := newTestUser(t, conn, "fan00002")
	hater := newTestUser(t, conn, "hater001")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	require.NoError(t, ledger.LikePost(context.Background(), fan1.ID, post.ID))
	require.NoError(t, ledger.LikePost(context.Background(), fan2.ID, post.ID))
	require.NoError(t, ledger.DislikePost(context.Background(), hater.ID, post.ID))
	require.NoError(t, ledger.SavePost(context.Background(), fan1.ID, post.ID, ""))
	comment, err := ledger.AddComment(context.Background(), fan1.ID, post.ID, "nice", false, nil)
	require.NoError(t, err)
	require.NoError(t, ledger.LikeComment(context.Background(), fan2.ID, comment.ID))

	// 20 + 3 + 3 - 1
	require.Equal(t, 25, creditOf(t, conn, poster.ID))

	deleted, err := ledger.DeletePost(context.Background(), poster.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, post.ID, deleted.ID)

	// 积分回到发帖前，posts_count 归零
	require.Equal(t, 0, creditOf(t, conn, poster.ID))
	var user models.User
	require.NoError(t, conn.First(&user, poster.ID).Error)
	require.Equal(t, 0, user.PostsCount)

	// 不留任何孤儿关系行
	for _, model := range []interface{}{
		&models.Post{}, &models.Comment{}, &models.Like{}, &models.Dislike{},
		&models.Save{}, &models.CommentLike{}, &models.CommentDislike{},
	} {
		var count int64
		require.NoError(t, conn.Model(model).Count(&count).Error)
		require.EqualValues(t, 0, count)
	}
}

func TestDeletePostRequiresOwner(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	other := newTestUser(t, conn, "other001")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	_, err = ledger.DeletePost(context.Background(), other.ID, post.ID)
	require.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, conn.Model(&models.Post{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEditPostRequiresOwner(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	other := newTestUser(t, conn, "other001")

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	_, err = ledger.EditPost(context.Background(), other.ID, post.ID, PostInput{
		Title: "hacked", Content: "c", Language: "go",
	})
	require.ErrorIs(t, err, ErrNotFound)

	updated, err := ledger.EditPost(context.Background(), poster.ID, post.ID, PostInput{
		Title: "t2", Content: "c2", Language: "go",
	})
	require.NoError(t, err)
	require.Equal(t, "t2", updated.Title)
	require.Equal(t, "c2", updated.Snippet)
}

func TestCountersMatchMembership(t *testing.T) {
	conn := newTestDB(t)
	ledger := NewLedger(conn)
	poster := newTestUser(t, conn, "poster01")
	users := []*models.User{
		newTestUser(t, conn, "user0001"),
		newTestUser(t, conn, "user0002"),
		newTestUser(t, conn, "user0003"),
	}

	post, err := ledger.CreatePost(context.Background(), poster.ID, nil, PostInput{
		Title: "t", Content: "c", Language: "go",
	})
	require.NoError(t, err)

	ctx := context.Background()
	for _, u := range users {
		require.NoError(t, ledger.LikePost(ctx, u.ID, post.ID))
	}
	require.NoError(t, ledger.UnlikePost(ctx, users[0].ID, post.ID))
	require.NoError(t, ledger.DislikePost(ctx, users[0].ID, post.ID))
	require.NoError(t, ledger.DislikePost(ctx, users[0].ID, post.ID))
	_, err = ledger.AddComment(ctx, users[1].ID, post.ID, "hi", false, nil)
	require.NoError(t, err)

	var stored models.Post
	require.NoError(t, conn.First(&stored, post.ID).Error)

	var likes, dislikes, comments int64
	require.NoError(t, conn.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes).Error)
	require.NoError(t, conn.Model(&models.Dislike{}).Where("post_id = ?", post.ID).Count(&dislikes).Error)
	require.NoError(t, conn.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments).Error)

	require.EqualValues(t, likes, stored.LikeCount)
	require.EqualValues(t, dislikes, stored.DislikeCount)
	require.EqualValues(t, comments, stored.CommentCount)

	// 积分与计数对得上：20 + 2*3 - 1
	require.Equal(t, CreditPostCreate+stored.LikeCount*CreditPostLiked+stored.DislikeCount*CreditPostDisliked,
		creditOf(t, conn, poster.ID))
}
