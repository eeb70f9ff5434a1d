package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/utils"
)

// ArticleController manages articles, the anonymous like counter and the
// identity-bound like ledger.
type ArticleController struct {
	articles repository.ArticleRepository
	likes    repository.LikeRepository
}

// NewArticleController creates an ArticleController backed by the given
// repositories.
func NewArticleController(articles repository.ArticleRepository, likes repository.LikeRepository) *ArticleController {
	return &ArticleController{articles: articles, likes: likes}
}

const articleListCachePrefix = "cache:articles:list:"

// List returns published articles, paginated, with optional search and tag
// filter. Search-less pages are cached; writes invalidate by prefix.
func (a *ArticleController) List(ctx *gin.Context) {
	page := parsePage(ctx)
	search := strings.TrimSpace(ctx.Query("search"))
	tag := strings.TrimSpace(ctx.Query("tag"))

	cacheKey := fmt.Sprintf("%stag=%s:page=%d:size=%d", articleListCachePrefix, tag, page.Number, page.Size)
	if search == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	articles, total, err := a.articles.List(ctx.Request.Context(), repository.ArticleListOptions{
		Page:          page,
		Search:        search,
		Tag:           tag,
		PublishedOnly: true,
	})
	if err != nil {
		respondRepoError(ctx, err, "")
		return
	}

	payload := gin.H{
		"articles":   articles,
		"pagination": paginationMeta(page, total),
	}
	if search == "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Success: true, Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// Get returns one article by slug. Every call increments views_count by
// exactly one atomic step; the detail response is therefore never cached.
// user_liked is resolved from the ledger for authenticated callers only.
func (a *ArticleController) Get(ctx *gin.Context) {
	article, err := a.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	if err := a.articles.IncrementViews(ctx.Request.Context(), article.ID); err == nil {
		article.ViewsCount++
	}

	if userID, ok := getUserID(ctx); ok {
		liked := false
		if _, err := a.likes.Find(ctx.Request.Context(), userID, article.ID); err == nil {
			liked = true
		}
		article.UserLiked = &liked
	}

	utils.Success(ctx, gin.H{"article": article})
}

// Create adds an article (admin). Slug defaults to the slugified title,
// excerpt to the first sentence-or-so of the content.
func (a *ArticleController) Create(ctx *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required,min=3,max=255"`
		Slug        string   `json:"slug"`
		Content     string   `json:"content" binding:"required,min=10"`
		Excerpt     string   `json:"excerpt" binding:"omitempty,max=512"`
		Author      string   `json:"author" binding:"required,min=2,max=128"`
		ImageURL    string   `json:"image_url" binding:"omitempty,url"`
		Tags        []string `json:"tags"`
		IsPublished bool     `json:"is_published"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, "invalid request payload", bindingErrors(err))
		return
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}
	if !utils.IsValidSlug(slug) {
		utils.ValidationError(ctx, "invalid request payload", map[string]string{
			"slug": "slug may only contain lowercase letters, digits and dashes",
		})
		return
	}

	content := utils.Sanitize(req.Content)
	excerpt := strings.TrimSpace(req.Excerpt)
	if excerpt == "" {
		excerpt = utils.Excerpt(content)
	}

	article := models.Article{
		Title:       utils.Sanitize(strings.TrimSpace(req.Title)),
		Slug:        slug,
		Content:     content,
		Excerpt:     excerpt,
		Author:      strings.TrimSpace(req.Author),
		ImageURL:    req.ImageURL,
		Tags:        models.TagList(req.Tags),
		IsPublished: req.IsPublished,
	}
	if req.IsPublished {
		now := time.Now()
		article.PublishedAt = &now
	}

	if err := a.articles.Create(ctx.Request.Context(), &article); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			utils.Error(ctx, http.StatusConflict, "an article with this slug already exists")
			return
		}
		respondRepoError(ctx, err, "")
		return
	}

	utils.InvalidateByPrefix(articleListCachePrefix)
	utils.Created(ctx, gin.H{"article": article})
}

// Update edits article fields (admin). Publishing for the first time stamps
// published_at.
func (a *ArticleController) Update(ctx *gin.Context) {
	article, err := a.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	var req struct {
		Title       *string   `json:"title" binding:"omitempty,min=3,max=255"`
		Content     *string   `json:"content" binding:"omitempty,min=10"`
		Excerpt     *string   `json:"excerpt" binding:"omitempty,max=512"`
		Author      *string   `json:"author" binding:"omitempty,min=2,max=128"`
		ImageURL    *string   `json:"image_url" binding:"omitempty,url"`
		Tags        *[]string `json:"tags"`
		IsPublished *bool     `json:"is_published"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, "invalid request payload", bindingErrors(err))
		return
	}

	if req.Title != nil {
		article.Title = utils.Sanitize(strings.TrimSpace(*req.Title))
	}
	if req.Content != nil {
		article.Content = utils.Sanitize(*req.Content)
		if req.Excerpt == nil && article.Excerpt == "" {
			article.Excerpt = utils.Excerpt(article.Content)
		}
	}
	if req.Excerpt != nil {
		article.Excerpt = strings.TrimSpace(*req.Excerpt)
	}
	if req.Author != nil {
		article.Author = strings.TrimSpace(*req.Author)
	}
	if req.ImageURL != nil {
		article.ImageURL = *req.ImageURL
	}
	if req.Tags != nil {
		article.Tags = models.TagList(*req.Tags)
	}
	if req.IsPublished != nil {
		if *req.IsPublished && !article.IsPublished {
			now := time.Now()
			article.PublishedAt = &now
		}
		article.IsPublished = *req.IsPublished
	}

	if err := a.articles.Update(ctx.Request.Context(), article); err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	utils.InvalidateByPrefix(articleListCachePrefix)
	utils.Success(ctx, gin.H{"article": article})
}

// Delete removes an article (admin).
func (a *ArticleController) Delete(ctx *gin.Context) {
	article, err := a.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	if err := a.articles.Delete(ctx.Request.Context(), article.ID); err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	utils.InvalidateByPrefix(articleListCachePrefix)
	utils.Message(ctx, "article deleted")
}

// LikeCounter is the anonymous counter toggle: the caller names the
// direction explicitly and no identity is recorded. Repeated increments
// stack; decrements clamp at zero.
func (a *ArticleController) LikeCounter(ctx *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || (req.Action != actionIncrement && req.Action != actionDecrement) {
		utils.Error(ctx, http.StatusBadRequest, "action must be \"increment\" or \"decrement\"")
		return
	}

	article, err := a.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	delta := 1
	if req.Action == actionDecrement {
		delta = -1
	}

	count, err := a.articles.AdjustLikes(ctx.Request.Context(), article.ID, delta)
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	utils.Success(ctx, gin.H{"likes_count": count})
}

// ToggleLike is the identity-bound toggle: one ledger row per (user,
// article), created when absent and deleted when present. A duplicate-key
// race on creation means someone already liked it and is reported as
// liked:true, not an error.
func (a *ArticleController) ToggleLike(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	article, err := a.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	rctx := ctx.Request.Context()
	if _, err := a.likes.Find(rctx, userID, article.ID); err == nil {
		if err := a.likes.Delete(rctx, userID, article.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			respondRepoError(ctx, err, "article not found")
			return
		}
		utils.Success(ctx, gin.H{"liked": false})
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		respondRepoError(ctx, err, "article not found")
		return
	}

	like := models.Like{UserID: userID, ArticleID: article.ID}
	if err := a.likes.Create(rctx, &like); err != nil && !errors.Is(err, repository.ErrConflict) {
		respondRepoError(ctx, err, "article not found")
		return
	}
	utils.Success(ctx, gin.H{"liked": true})
}

// ListLikes returns the identity-bound like ledger for an article.
func (a *ArticleController) ListLikes(ctx *gin.Context) {
	article, err := a.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	limit, _ := strconv.Atoi(ctx.Query("limit"))
	likes, err := a.likes.ListByArticle(ctx.Request.Context(), article.ID, limit)
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	total, err := a.likes.CountByArticle(ctx.Request.Context(), article.ID)
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	utils.Success(ctx, gin.H{"likes": likes, "total": total})
}
