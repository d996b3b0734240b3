package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"snipnet/internal/models"
)

// 积分动作常量
const (
	ActionPostCreate     = "post created"
	ActionPostLiked      = "post liked"
	ActionPostUnliked    = "post unliked"
	ActionPostDisliked   = "post disliked"
	ActionPostUndisliked = "post undisliked"
	ActionPostDeleted    = "post deleted"
)

// 积分值常量
const (
	CreditPostCreate   = 20
	CreditPostLiked    = 3
	CreditPostDisliked = -1
)

// ErrNotFound 目标行不存在或不属于请求用户
var ErrNotFound = errors.New("record not found or not owned by user")

// Ledger 维护反应关系表、聚合计数和作者积分的一致性。
// 每个操作是一个事务：关系行、计数、积分要么一起提交，要么一起回滚。
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// adjustCredit 在调用方事务内记录积分明细并更新用户余额
func adjustCredit(tx *gorm.DB, userID uint, amount int, action string) error {
	entry := models.CreditLog{
		UserID: userID,
		Amount: amount,
		Action: action,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return err
	}
	return tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("credit", gorm.Expr("credit + ?", amount)).
		Error
}

// adjustOwnerCredit 调整帖子作者的积分
func adjustOwnerCredit(tx *gorm.DB, postID uint, amount int, action string) error {
	var posterID uint
	if err := tx.Model(&models.Post{}).
		Where("id = ?", postID).
		Select("poster_id").
		Scan(&posterID).Error; err != nil {
		return err
	}
	if posterID == 0 {
		return nil
	}
	return adjustCredit(tx, posterID, amount, action)
}

// LikePost 插入点赞关系，计数和积分只在真正插入时调整。
// 重复点赞被唯一索引吸收，不会二次计数。
func (l *Ledger) LikePost(ctx context.Context, userID, postID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{PostID: postID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
			return err
		}
		return adjustOwnerCredit(tx, postID, CreditPostLiked, ActionPostLiked)
	})
}

// UnlikePost 删除点赞关系。关系行不存在时整个操作是空操作。
func (l *Ledger) UnlikePost(ctx context.Context, userID, postID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error; err != nil {
			return err
		}
		return adjustOwnerCredit(tx, postID, -CreditPostLiked, ActionPostUnliked)
	})
}

func (l *Ledger) DislikePost(ctx context.Context, userID, postID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Dislike{PostID: postID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("dislike_count", gorm.Expr("dislike_count + ?", 1)).Error; err != nil {
			return err
		}
		return adjustOwnerCredit(tx, postID, CreditPostDisliked, ActionPostDisliked)
	})
}

func (l *Ledger) UndislikePost(ctx context.Context, userID, postID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("post_id = ? AND user_id = ?", postID, userID).
			Delete(&models.Dislike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("dislike_count", gorm.Expr("dislike_count - ?", 1)).Error; err != nil {
			return err
		}
		return adjustOwnerCredit(tx, postID, -CreditPostDisliked, ActionPostUndisliked)
	})
}

// SavePost 收藏帖子。collection 为空时落入占位收藏夹。
func (l *Ledger) SavePost(ctx context.Context, userID, postID uint, collection string) error {
	collection = strings.ToLower(strings.TrimSpace(collection))
	if collection == "" {
		collection = models.DefaultCollection
	}
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Save{UserID: userID, PostID: postID, Collection: collection}).
		Error
}

func (l *Ledger) UnsavePost(ctx context.Context, userID, postID uint) error {
	return l.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Save{}).
		Error
}

// AddInterest 建立订阅关系，只有真正插入时才增加目标用户的 subs_count
func (l *Ledger) AddInterest(ctx context.Context, interestedID, interestingID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Interest{InterestedID: interestedID, InterestingID: interestingID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", interestingID).
			UpdateColumn("subs_count", gorm.Expr("subs_count + ?", 1)).Error
	})
}

// RemoveInterest 解除订阅。返回是否真的删除了一条边。
func (l *Ledger) RemoveInterest(ctx context.Context, interestedID, interestingID uint) (bool, error) {
	removed := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("interested_id = ? AND interesting_id = ?", interestedID, interestingID).
			Delete(&models.Interest{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		return tx.Model(&models.User{}).Where("id = ?", interestingID).
			UpdateColumn("subs_count", gorm.Expr("subs_count - ?", 1)).Error
	})
	return removed, err
}

func (l *Ledger) LikeComment(ctx context.Context, userID, commentID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.CommentLike{CommentID: commentID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
	})
}

func (l *Ledger) UnlikeComment(ctx context.Context, userID, commentID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
	})
}

func (l *Ledger) DislikeComment(ctx context.Context, userID, commentID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.CommentDislike{CommentID: commentID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("dislike_count", gorm.Expr("dislike_count + ?", 1)).Error
	})
}

func (l *Ledger) UndislikeComment(ctx context.Context, userID, commentID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).
			Delete(&models.CommentDislike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("dislike_count", gorm.Expr("dislike_count - ?", 1)).Error
	})
}

// AddComment 插入评论并同步增加帖子的 comment_count
func (l *Ledger) AddComment(ctx context.Context, userID, postID uint, content string, isReply bool, replyToID *uint) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		IsReply:   isReply,
		ReplyToID: replyToID,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment 删除顶级评论：连带删除它的回复、双方的点赞/点踩关系，
// 并把帖子的 comment_count 减去 1 + 回复数
func (l *Ledger) DeleteComment(ctx context.Context, userID, commentID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var comment models.Comment
		if err := tx.Where("id = ? AND user_id = ? AND is_reply = ?", commentID, userID, false).
			First(&comment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var replyCount int64
		if err := tx.Model(&models.Comment{}).
			Where("reply_to_id = ? AND is_reply = ?", commentID, true).
			Count(&replyCount).Error; err != nil {
			return err
		}

		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentDislike{}).Error; err != nil {
			return err
		}

		// 回复的反应关系
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("reply_to_id = ?", commentID)).
			Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("reply_to_id = ?", commentID)).
			Delete(&models.CommentDislike{}).Error; err != nil {
			return err
		}

		if err := tx.Where("reply_to_id = ? AND is_reply = ?", commentID, true).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, comment.ID).Error; err != nil {
			return err
		}

		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", replyCount+1)).Error
	})
}

// DeleteReply 删除单条回复及其反应关系，comment_count 减 1
func (l *Ledger) DeleteReply(ctx context.Context, userID, commentID uint) error {
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reply models.Comment
		if err := tx.Where("id = ? AND user_id = ? AND is_reply = ?", commentID, userID, true).
			First(&reply).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", commentID).Delete(&models.CommentDislike{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Comment{}, reply.ID).Error; err != nil {
			return err
		}

		return tx.Model(&models.Post{}).Where("id = ?", reply.PostID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", 1)).Error
	})
}

// PostInput 发布/编辑帖子的字段
type PostInput struct {
	Title       string
	Content     string
	Language    string
	Description string
	GithubLink  string
}

// CreatePost 发布帖子：作者 posts_count +1、credit +20。
// snippetID 非空时把对应草稿标记为已发布。
// 搜索索引的镜像由调用方在提交之后自行处理。
func (l *Ledger) CreatePost(ctx context.Context, userID uint, snippetID *uint, in PostInput) (*models.Post, error) {
	post := &models.Post{
		PosterID:    userID,
		Title:       in.Title,
		Snippet:     in.Content,
		Language:    in.Language,
		Description: in.Description,
		GithubLink:  in.GithubLink,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if snippetID != nil {
			if err := tx.Model(&models.Snippet{}).
				Where("id = ? AND user_id = ?", *snippetID, userID).
				Update("is_posted", true).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + ?", 1)).Error; err != nil {
			return err
		}
		return adjustCredit(tx, userID, CreditPostCreate, ActionPostCreate)
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// EditPost 更新帖子内容，只允许作者本人
func (l *Ledger) EditPost(ctx context.Context, userID, postID uint, in PostInput) (*models.Post, error) {
	var post models.Post
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).
			Where("id = ? AND poster_id = ?", postID, userID).
			Updates(map[string]interface{}{
				"title":       in.Title,
				"snippet":     in.Content,
				"language":    in.Language,
				"description": in.Description,
				"github_link": in.GithubLink,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&post, postID).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost 级联删除帖子：评论及其反应关系、帖子自身的
// 点赞/点踩/收藏关系，然后回退作者的 posts_count 和全部已计入积分。
// 回退额 = -20 - 3*like_count + dislike_count，按删除时的计数计算。
func (l *Ledger) DeletePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	var post models.Post
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND poster_id = ?", postID, userID).
			First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)).
			Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", postID)).
			Delete(&models.CommentDislike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Dislike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", postID).Delete(&models.Save{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, post.ID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("posts_count", gorm.Expr("posts_count - ?", 1)).Error; err != nil {
			return err
		}

		adjustment := -CreditPostCreate - post.LikeCount*CreditPostLiked - post.DislikeCount*CreditPostDisliked
		return adjustCredit(tx, userID, adjustment, ActionPostDeleted)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}
