package controllers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goblogdev/goblog/middleware"
	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/repository/mocks"
	"github.com/goblogdev/goblog/utils"
)

func articleRouter(articles repository.ArticleRepository, likes repository.LikeRepository) *gin.Engine {
	r := gin.New()
	ctrl := NewArticleController(articles, likes)
	r.GET("/api/articles/:slug", middleware.AuthOptional(), ctrl.Get)
	r.POST("/api/articles/:slug/like", ctrl.LikeCounter)
	r.POST("/api/articles/:slug/likes", middleware.AuthRequired(), ctrl.ToggleLike)
	r.GET("/api/articles/:slug/likes", ctrl.ListLikes)
	return r
}

func publishedArticle() *models.Article {
	return &models.Article{ID: 1, Title: "Test", Slug: "test-slug", IsPublished: true, ViewsCount: 5}
}

func bearer(t *testing.T, userID uint, email, role string) map[string]string {
	t.Helper()
	token, err := utils.GenerateToken(userID, email, role)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestGetArticleIncrementsViews(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	articles.On("IncrementViews", mock.Anything, uint(1)).Return(nil)

	w := performJSON(t, articleRouter(articles, likes), http.MethodGet, "/api/articles/test-slug", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	article := resp.Data.(map[string]interface{})["article"].(map[string]interface{})
	assert.Equal(t, float64(6), article["views_count"])
	// anonymous callers never see the ledger-backed flag
	_, present := article["user_liked"]
	assert.False(t, present)

	articles.AssertNumberOfCalls(t, "IncrementViews", 1)
	likes.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetArticleUserLikedForAuthenticatedCaller(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	articles.On("IncrementViews", mock.Anything, uint(1)).Return(nil)
	likes.On("Find", mock.Anything, uint(9), uint(1)).Return(&models.Like{UserID: 9, ArticleID: 1}, nil)

	w := performJSON(t, articleRouter(articles, likes), http.MethodGet, "/api/articles/test-slug", nil,
		bearer(t, 9, "ana@x.com", models.RoleUser))

	require.Equal(t, http.StatusOK, w.Code)
	article := decodeEnvelope(t, w).Data.(map[string]interface{})["article"].(map[string]interface{})
	assert.Equal(t, true, article["user_liked"])
}

func TestGetArticleUnknownSlug(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

	w := performJSON(t, articleRouter(articles, likes), http.MethodGet, "/api/articles/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLikeCounterIncrement(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	articles.On("AdjustLikes", mock.Anything, uint(1), 1).Return(int64(3), nil)

	w := performJSON(t, articleRouter(articles, likes), http.MethodPost, "/api/articles/test-slug/like",
		map[string]string{"action": "increment"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["likes_count"])
}

func TestLikeCounterDecrementClampsAtZero(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	// repository reports the clamped value, never a negative count
	articles.On("AdjustLikes", mock.Anything, uint(1), -1).Return(int64(0), nil)

	w := performJSON(t, articleRouter(articles, likes), http.MethodPost, "/api/articles/test-slug/like",
		map[string]string{"action": "decrement"}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(0), data["likes_count"])
}

func TestLikeCounterRejectsUnknownAction(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)

	for _, action := range []string{"", "Increment", "toggle", "increment "} {
		w := performJSON(t, articleRouter(articles, likes), http.MethodPost, "/api/articles/test-slug/like",
			map[string]string{"action": action}, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "action %q", action)
	}
	articles.AssertNotCalled(t, "AdjustLikes", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleLikeCreatesWhenAbsent(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	likes.On("Find", mock.Anything, uint(9), uint(1)).Return(nil, repository.ErrNotFound)
	likes.On("Create", mock.Anything, mock.AnythingOfType("*models.Like")).Return(nil)

	w := performJSON(t, articleRouter(articles, likes), http.MethodPost, "/api/articles/test-slug/likes", nil,
		bearer(t, 9, "ana@x.com", models.RoleUser))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, data["liked"])
	likes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleLikeDeletesWhenPresent(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	likes.On("Find", mock.Anything, uint(9), uint(1)).Return(&models.Like{ID: 4, UserID: 9, ArticleID: 1}, nil)
	likes.On("Delete", mock.Anything, uint(9), uint(1)).Return(nil)

	w := performJSON(t, articleRouter(articles, likes), http.MethodPost, "/api/articles/test-slug/likes", nil,
		bearer(t, 9, "ana@x.com", models.RoleUser))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, false, data["liked"])
	likes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// A duplicate-key race on creation means another request already inserted
// the ledger row; it resolves to liked:true, not an error.
func TestToggleLikeDuplicateRaceIsBenign(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	likes.On("Find", mock.Anything, uint(9), uint(1)).Return(nil, repository.ErrNotFound)
	likes.On("Create", mock.Anything, mock.AnythingOfType("*models.Like")).Return(repository.ErrConflict)

	w := performJSON(t, articleRouter(articles, likes), http.MethodPost, "/api/articles/test-slug/likes", nil,
		bearer(t, 9, "ana@x.com", models.RoleUser))

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, data["liked"])
}

func TestToggleLikeRequiresAuth(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)

	w := performJSON(t, articleRouter(articles, likes), http.MethodPost, "/api/articles/test-slug/likes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	articles.AssertNotCalled(t, "FindBySlug", mock.Anything, mock.Anything)
}

func TestListLikesReturnsLedger(t *testing.T) {
	articles := new(mocks.MockArticleRepository)
	likes := new(mocks.MockLikeRepository)
	articles.On("FindBySlug", mock.Anything, "test-slug").Return(publishedArticle(), nil)
	likes.On("ListByArticle", mock.Anything, uint(1), 2).Return([]models.Like{
		{ID: 1, UserID: 9, ArticleID: 1},
		{ID: 2, UserID: 10, ArticleID: 1},
	}, nil)
	likes.On("CountByArticle", mock.Anything, uint(1)).Return(int64(5), nil)

	w := performJSON(t, articleRouter(articles, likes), http.MethodGet, "/api/articles/test-slug/likes?limit=2", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Len(t, data["likes"], 2)
	assert.Equal(t, float64(5), data["total"])
}
