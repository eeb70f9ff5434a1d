package controllers

import (
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/utils"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	commentMinLen = 10
	commentMaxLen = 1000
)

// CommentController manages the comment tree, moderation and comment like
// counters. Every comment-affecting write is followed synchronously by a
// recount of the parent article's comments_count before the response is
// written.
type CommentController struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	users    repository.UserRepository
}

// NewCommentController creates a CommentController backed by the given
// repositories.
func NewCommentController(comments repository.CommentRepository, articles repository.ArticleRepository, users repository.UserRepository) *CommentController {
	return &CommentController{comments: comments, articles: articles, users: users}
}

// ListForArticle returns approved top-level comments of an article, newest
// first. includeReplies=true nests approved replies oldest first.
func (c *CommentController) ListForArticle(ctx *gin.Context) {
	article, err := c.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	page := parsePage(ctx)
	includeReplies := ctx.Query("includeReplies") == "true"

	comments, total, err := c.comments.ListTopLevel(ctx.Request.Context(), article.ID, page, includeReplies)
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	utils.Success(ctx, gin.H{
		"comments":   comments,
		"pagination": paginationMeta(page, total),
	})
}

// Create adds a comment or reply to an article. An authenticated caller's
// identity always comes from the account record; anonymous callers must
// supply author and a well-formed email. A reply's parent must exist, be
// approved and belong to the same article.
func (c *CommentController) Create(ctx *gin.Context) {
	article, err := c.articles.FindBySlug(ctx.Request.Context(), ctx.Param("slug"))
	if err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	var req struct {
		Content         string `json:"content" binding:"required"`
		Author          string `json:"author"`
		Email           string `json:"email"`
		ParentCommentID *uint  `json:"parent_comment_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, "invalid request payload", bindingErrors(err))
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	// Length is measured in characters, not UTF-8 bytes.
	if l := utf8.RuneCountInString(content); l < commentMinLen || l > commentMaxLen {
		utils.ValidationError(ctx, "invalid request payload", map[string]string{
			"content": "content must be between 10 and 1000 characters",
		})
		return
	}

	comment := models.Comment{
		ArticleID: article.ID,
		Content:   content,
	}

	rctx := ctx.Request.Context()
	if userID, ok := getUserID(ctx); ok {
		// Registered identity: author and email always come from the
		// account, supplied values are ignored.
		user, err := c.users.FindByID(rctx, userID)
		if err != nil {
			respondRepoError(ctx, err, "account not found")
			return
		}
		comment.UserID = &user.ID
		comment.Author = user.Name
		comment.Email = user.Email
	} else {
		author := strings.TrimSpace(req.Author)
		email := strings.ToLower(strings.TrimSpace(req.Email))
		fields := map[string]string{}
		if author == "" {
			fields["author"] = "author is required for anonymous comments"
		}
		if !emailPattern.MatchString(email) {
			fields["email"] = "a valid email is required for anonymous comments"
		}
		if len(fields) > 0 {
			utils.ValidationError(ctx, "invalid request payload", fields)
			return
		}
		comment.Author = author
		comment.Email = email
	}

	if req.ParentCommentID != nil {
		parent, err := c.comments.FindByID(rctx, *req.ParentCommentID)
		if err != nil {
			respondRepoError(ctx, err, "parent comment not found")
			return
		}
		if !parent.IsApproved {
			// Disapproved parents are hidden from the public surface.
			utils.Error(ctx, http.StatusNotFound, "parent comment not found")
			return
		}
		if parent.ArticleID != article.ID {
			utils.ValidationError(ctx, "invalid request payload", map[string]string{
				"parent_comment_id": "parent comment belongs to a different article",
			})
			return
		}
		comment.ParentCommentID = &parent.ID
	}

	if err := c.comments.Create(rctx, &comment); err != nil {
		respondRepoError(ctx, err, "article not found")
		return
	}

	c.recount(ctx, article.ID)
	utils.Created(ctx, gin.H{"comment": comment})
}

// ListReplies returns approved replies of a comment, oldest first.
func (c *CommentController) ListReplies(ctx *gin.Context) {
	commentID, ok := parseID(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "comment not found")
		return
	}

	parent, err := c.comments.FindByID(ctx.Request.Context(), commentID)
	if err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}
	if !parent.IsApproved {
		utils.Error(ctx, http.StatusNotFound, "comment not found")
		return
	}

	page := parsePage(ctx)
	replies, total, err := c.comments.ListReplies(ctx.Request.Context(), parent.ID, page)
	if err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}

	utils.Success(ctx, gin.H{
		"replies":    replies,
		"pagination": paginationMeta(page, total),
	})
}

// ListRecent returns the newest approved comments across the whole blog
// with their articles attached for display.
func (c *CommentController) ListRecent(ctx *gin.Context) {
	page := parsePage(ctx)
	comments, total, err := c.comments.ListRecent(ctx.Request.Context(), page)
	if err != nil {
		respondRepoError(ctx, err, "")
		return
	}

	utils.Success(ctx, gin.H{
		"comments":   comments,
		"pagination": paginationMeta(page, total),
	})
}

// Update edits a comment's content (owner or admin). A content change on a
// persisted comment sets is_edited and stamps edited_at.
func (c *CommentController) Update(ctx *gin.Context) {
	commentID, ok := parseID(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "comment not found")
		return
	}

	comment, err := c.comments.FindByID(ctx.Request.Context(), commentID)
	if err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}

	if !c.canModify(ctx, comment) {
		utils.Error(ctx, http.StatusForbidden, "you can only edit your own comment")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, "invalid request payload", bindingErrors(err))
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if l := utf8.RuneCountInString(content); l < commentMinLen || l > commentMaxLen {
		utils.ValidationError(ctx, "invalid request payload", map[string]string{
			"content": "content must be between 10 and 1000 characters",
		})
		return
	}

	if content != comment.Content {
		now := time.Now()
		comment.Content = content
		comment.IsEdited = true
		comment.EditedAt = &now
		if err := c.comments.Update(ctx.Request.Context(), comment); err != nil {
			respondRepoError(ctx, err, "comment not found")
			return
		}
	}

	utils.Success(ctx, gin.H{"comment": comment})
}

// Delete removes a comment (owner or admin) and recounts the article's
// comment counter.
func (c *CommentController) Delete(ctx *gin.Context) {
	commentID, ok := parseID(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "comment not found")
		return
	}

	comment, err := c.comments.FindByID(ctx.Request.Context(), commentID)
	if err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}

	if !c.canModify(ctx, comment) {
		utils.Error(ctx, http.StatusForbidden, "you can only delete your own comment")
		return
	}

	if err := c.comments.Delete(ctx.Request.Context(), comment.ID); err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}

	c.recount(ctx, comment.ArticleID)
	utils.Message(ctx, "comment deleted")
}

// LikeCounter is the anonymous counter toggle for a comment. A disapproved
// comment cannot receive likes.
func (c *CommentController) LikeCounter(ctx *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || (req.Action != actionIncrement && req.Action != actionDecrement) {
		utils.Error(ctx, http.StatusBadRequest, "action must be \"increment\" or \"decrement\"")
		return
	}

	commentID, ok := parseID(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "comment not found")
		return
	}

	comment, err := c.comments.FindByID(ctx.Request.Context(), commentID)
	if err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}
	if !comment.IsApproved {
		utils.Error(ctx, http.StatusForbidden, "comment is awaiting moderation")
		return
	}

	delta := 1
	if req.Action == actionDecrement {
		delta = -1
	}

	count, err := c.comments.AdjustLikes(ctx.Request.Context(), comment.ID, delta)
	if err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}

	utils.Success(ctx, gin.H{"likes_count": count})
}

// Moderate flips a comment's approval state (admin) and recounts, since
// approval transitions move comments in and out of the counted set.
func (c *CommentController) Moderate(ctx *gin.Context) {
	var req struct {
		Action string `json:"action"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil || (req.Action != actionApprove && req.Action != actionDisapprove) {
		utils.Error(ctx, http.StatusBadRequest, "action must be \"approve\" or \"disapprove\"")
		return
	}

	commentID, ok := parseID(ctx, "commentId")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, "comment not found")
		return
	}

	comment, err := c.comments.FindByID(ctx.Request.Context(), commentID)
	if err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}

	approved := req.Action == actionApprove
	if err := c.comments.SetApproval(ctx.Request.Context(), comment.ID, approved); err != nil {
		respondRepoError(ctx, err, "comment not found")
		return
	}
	comment.IsApproved = approved

	c.recount(ctx, comment.ArticleID)
	utils.Success(ctx, gin.H{"comment": comment})
}

// recount recomputes the article's approved-comment counter and overwrites
// it. Failures are logged, not surfaced: the triggering write already
// succeeded and a later recount converges to the same value.
func (c *CommentController) recount(ctx *gin.Context, articleID uint) {
	rctx := ctx.Request.Context()
	count, err := c.comments.CountApproved(rctx, articleID)
	if err == nil {
		err = c.articles.SetCommentsCount(rctx, articleID, count)
	}
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnw("comment recount failed", "article_id", articleID, "err", err)
		}
	}
}

func (c *CommentController) canModify(ctx *gin.Context, comment *models.Comment) bool {
	if isAdmin(ctx) {
		return true
	}
	userID, ok := getUserID(ctx)
	return ok && comment.UserID != nil && *comment.UserID == userID
}
