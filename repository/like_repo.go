package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/goblogdev/goblog/models"
)

// LikeRepository manages the identity-bound like ledger. The compound
// unique index on (user_id, article_id) is the concurrency arbiter: two
// racing toggles cannot both insert, the loser gets ErrConflict.
type LikeRepository interface {
	Find(ctx context.Context, userID, articleID uint) (*models.Like, error)
	// Create inserts a ledger row; a duplicate pair yields ErrConflict.
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, userID, articleID uint) error
	// ListByArticle returns the newest ledger rows with users preloaded.
	ListByArticle(ctx context.Context, articleID uint, limit int) ([]models.Like, error)
	CountByArticle(ctx context.Context, articleID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a gorm backed LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Find(ctx context.Context, userID, articleID uint) (*models.Like, error) {
	var like models.Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		First(&like).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &like, nil
}

func (r *likeRepository) Create(ctx context.Context, like *models.Like) error {
	return translateErr(r.db.WithContext(ctx).Create(like).Error)
}

func (r *likeRepository) Delete(ctx context.Context, userID, articleID uint) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, articleID).
		Delete(&models.Like{})
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *likeRepository) ListByArticle(ctx context.Context, articleID uint, limit int) ([]models.Like, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var likes []models.Like
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&likes).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return likes, nil
}

func (r *likeRepository) CountByArticle(ctx context.Context, articleID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("article_id = ?", articleID).
		Count(&count).Error
	if err != nil {
		return 0, translateErr(err)
	}
	return count, nil
}
