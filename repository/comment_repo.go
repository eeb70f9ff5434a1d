package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/goblogdev/goblog/models"
)

// CommentRepository manages the comment tree and the consistency of the
// comment-related denormalized counters.
//
// Comment like counters use atomic increments; the parent article's
// comments_count uses recount-on-write instead, because moderation
// transitions would otherwise require tracking which direction each write
// moved the approved set.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	// ListTopLevel returns approved top-level comments of an article,
	// newest first, optionally preloading approved replies.
	ListTopLevel(ctx context.Context, articleID uint, page Page, includeReplies bool) ([]models.Comment, int64, error)
	// ListReplies returns approved replies of a comment, oldest first
	// (chronological, unlike the reverse-chronological parent listing).
	ListReplies(ctx context.Context, parentID uint, page Page) ([]models.Comment, int64, error)
	// ListRecent returns the newest approved comments across all
	// articles, with the article preloaded for display context.
	ListRecent(ctx context.Context, page Page) ([]models.Comment, int64, error)
	// AdjustLikes moves likes_count by delta atomically, clamped at zero
	// on decrement. Reports the resulting count.
	AdjustLikes(ctx context.Context, id uint, delta int) (int64, error)
	SetApproval(ctx context.Context, id uint, approved bool) error
	// CountApproved reports the exact number of approved comments of an
	// article, replies included. Read synchronously after every
	// comment-affecting write and written back through
	// ArticleRepository.SetCommentsCount.
	CountApproved(ctx context.Context, articleID uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a gorm backed CommentRepository.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return translateErr(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *commentRepository) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return translateErr(r.db.WithContext(ctx).Save(comment).Error)
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *commentRepository) ListTopLevel(ctx context.Context, articleID uint, page Page, includeReplies bool) ([]models.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("article_id = ? AND parent_comment_id IS NULL AND is_approved = ?", articleID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	listQuery := query.Preload("User").Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Size)
	if includeReplies {
		listQuery = listQuery.Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_approved = ?", true).Order("created_at ASC").Preload("User")
		})
	}

	var comments []models.Comment
	if err := listQuery.Find(&comments).Error; err != nil {
		return nil, 0, translateErr(err)
	}
	return comments, total, nil
}

func (r *commentRepository) ListReplies(ctx context.Context, parentID uint, page Page) ([]models.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("parent_comment_id = ? AND is_approved = ?", parentID, true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	var replies []models.Comment
	err := query.Preload("User").Order("created_at ASC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&replies).Error
	if err != nil {
		return nil, 0, translateErr(err)
	}
	return replies, total, nil
}

func (r *commentRepository) ListRecent(ctx context.Context, page Page) ([]models.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("is_approved = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	var comments []models.Comment
	err := query.Preload("User").Preload("Article").Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Size).
		Find(&comments).Error
	if err != nil {
		return nil, 0, translateErr(err)
	}
	return comments, total, nil
}

func (r *commentRepository) AdjustLikes(ctx context.Context, id uint, delta int) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id)
	if delta < 0 {
		tx = tx.Where("likes_count > 0")
	}
	res := tx.UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta))
	if res.Error != nil {
		return 0, translateErr(res.Error)
	}

	var comment models.Comment
	if err := r.db.WithContext(ctx).Select("likes_count").First(&comment, id).Error; err != nil {
		return 0, translateErr(err)
	}
	return comment.LikesCount, nil
}

func (r *commentRepository) SetApproval(ctx context.Context, id uint, approved bool) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("is_approved", approved)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	return nil
}

func (r *commentRepository) CountApproved(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("article_id = ? AND is_approved = ?", articleID, true).
		Count(&count).Error
	if err != nil {
		return 0, translateErr(err)
	}
	return count, nil
}
