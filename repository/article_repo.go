package repository

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/utils"
)

// ArticleListOptions filters the public article listing.
type ArticleListOptions struct {
	Page   Page
	Search string
	Tag    string
	// PublishedOnly restricts the listing to published articles; admin
	// listings clear it.
	PublishedOnly bool
}

// ArticleRepository provides article persistence including the atomic
// counter operations the consistency model relies on.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*models.Article, error)
	FindBySlug(ctx context.Context, slug string) (*models.Article, error)
	List(ctx context.Context, opts ArticleListOptions) ([]models.Article, int64, error)
	// IncrementViews adds 1 to views_count with a single atomic update.
	IncrementViews(ctx context.Context, id uint) error
	// AdjustLikes moves likes_count by delta (+1 or -1) atomically. A
	// decrement on a zero counter is clamped: the row is left at zero and
	// no error is returned. The resulting count is reported back.
	AdjustLikes(ctx context.Context, id uint, delta int) (int64, error)
	// SetCommentsCount overwrites the denormalized comment counter.
	SetCommentsCount(ctx context.Context, id uint, count int64) error
}

type articleRepository struct {
	db *gorm.DB
}

// NewArticleRepository creates a gorm backed ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	return translateErr(r.db.WithContext(ctx).Create(article).Error)
}

func (r *articleRepository) Update(ctx context.Context, article *models.Article) error {
	return translateErr(r.db.WithContext(ctx).Save(article).Error)
}

func (r *articleRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Article{}, id)
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) FindByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &article, nil
}

// FindBySlug looks the article up by its slug column. As a documented
// fallback an all-digit identifier is retried as a primary key lookup, so a
// numeric id is never silently misread as a slug. Everything else is
// ErrNotFound.
func (r *articleRepository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&article).Error
	if err == nil {
		return &article, nil
	}
	if translateErr(err) == ErrNotFound && utils.IsNumericID(slug) {
		if id, ok := parseID(slug); ok {
			return r.FindByID(ctx, id)
		}
	}
	return nil, translateErr(err)
}

func (r *articleRepository) List(ctx context.Context, opts ArticleListOptions) ([]models.Article, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Article{})
	if opts.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}
	if opts.Search != "" {
		// LIKE search stands in for the store's text index.
		pattern := "%" + opts.Search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}
	if opts.Tag != "" {
		query = query.Where("FIND_IN_SET(?, tags) > 0", opts.Tag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateErr(err)
	}

	var articles []models.Article
	err := query.Order("published_at DESC, created_at DESC").
		Offset(opts.Page.Offset()).
		Limit(opts.Page.Size).
		Find(&articles).Error
	if err != nil {
		return nil, 0, translateErr(err)
	}
	return articles, total, nil
}

func (r *articleRepository) IncrementViews(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return translateErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *articleRepository) AdjustLikes(ctx context.Context, id uint, delta int) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id)
	if delta < 0 {
		// The guard clamps the counter at zero: decrementing an
		// already-zero counter matches no row, which is not an error.
		tx = tx.Where("likes_count > 0")
	}
	res := tx.UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta))
	if res.Error != nil {
		return 0, translateErr(res.Error)
	}

	// Re-read the stored value. Zero affected rows on decrement means the
	// clamp fired; a missing row surfaces here as ErrNotFound either way.
	var article models.Article
	if err := r.db.WithContext(ctx).Select("likes_count").First(&article, id).Error; err != nil {
		return 0, translateErr(err)
	}
	return article.LikesCount, nil
}

func (r *articleRepository) SetCommentsCount(ctx context.Context, id uint, count int64) error {
	return translateErr(r.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ?", id).
		UpdateColumn("comments_count", count).Error)
}

// parseID parses a decimal primary key. Values that overflow report false
// rather than wrapping to an unrelated id.
func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
