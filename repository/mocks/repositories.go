// Package mocks provides testify mocks of the repository interfaces for
// handler tests.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
)

// MockArticleRepository mocks repository.ArticleRepository.
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArticleRepository) FindByID(ctx context.Context, id uint) (*models.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *MockArticleRepository) FindBySlug(ctx context.Context, slug string) (*models.Article, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *MockArticleRepository) List(ctx context.Context, opts repository.ArticleListOptions) ([]models.Article, int64, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Article), args.Get(1).(int64), args.Error(2)
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockArticleRepository) AdjustLikes(ctx context.Context, id uint, delta int) (int64, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArticleRepository) SetCommentsCount(ctx context.Context, id uint, count int64) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

// MockCommentRepository mocks repository.CommentRepository.
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCommentRepository) ListTopLevel(ctx context.Context, articleID uint, page repository.Page, includeReplies bool) ([]models.Comment, int64, error) {
	args := m.Called(ctx, articleID, page, includeReplies)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) ListReplies(ctx context.Context, parentID uint, page repository.Page) ([]models.Comment, int64, error) {
	args := m.Called(ctx, parentID, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) ListRecent(ctx context.Context, page repository.Page) ([]models.Comment, int64, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockCommentRepository) AdjustLikes(ctx context.Context, id uint, delta int) (int64, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCommentRepository) SetApproval(ctx context.Context, id uint, approved bool) error {
	args := m.Called(ctx, id, approved)
	return args.Error(0)
}

func (m *MockCommentRepository) CountApproved(ctx context.Context, articleID uint) (int64, error) {
	args := m.Called(ctx, articleID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepository mocks repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockLikeRepository mocks repository.LikeRepository.
type MockLikeRepository struct {
	mock.Mock
}

func (m *MockLikeRepository) Find(ctx context.Context, userID, articleID uint) (*models.Like, error) {
	args := m.Called(ctx, userID, articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Like), args.Error(1)
}

func (m *MockLikeRepository) Create(ctx context.Context, like *models.Like) error {
	args := m.Called(ctx, like)
	return args.Error(0)
}

func (m *MockLikeRepository) Delete(ctx context.Context, userID, articleID uint) error {
	args := m.Called(ctx, userID, articleID)
	return args.Error(0)
}

func (m *MockLikeRepository) ListByArticle(ctx context.Context, articleID uint, limit int) ([]models.Like, error) {
	args := m.Called(ctx, articleID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Like), args.Error(1)
}

func (m *MockLikeRepository) CountByArticle(ctx context.Context, articleID uint) (int64, error) {
	args := m.Called(ctx, articleID)
	return args.Get(0).(int64), args.Error(1)
}
