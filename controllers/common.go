package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/goblogdev/goblog/config"
	"github.com/goblogdev/goblog/middleware"
	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/utils"
)

// Like counter actions accepted by the anonymous toggle endpoints.
const (
	actionIncrement = "increment"
	actionDecrement = "decrement"
)

// Moderation actions accepted by the moderate endpoint.
const (
	actionApprove    = "approve"
	actionDisapprove = "disapprove"
)

func parsePage(ctx *gin.Context) repository.Page {
	page, _ := strconv.Atoi(ctx.Query("page"))
	limit, _ := strconv.Atoi(ctx.Query("limit"))
	return repository.NewPage(page, limit)
}

func paginationMeta(page repository.Page, total int64) gin.H {
	return gin.H{
		"page":        page.Number,
		"limit":       page.Size,
		"total":       total,
		"total_pages": (total + int64(page.Size) - 1) / int64(page.Size),
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func isAdmin(ctx *gin.Context) bool {
	role, _ := ctx.Get(middleware.ContextRoleKey)
	return role == models.RoleAdmin
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	raw := ctx.Param(param)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindingErrors flattens validator failures into per-field messages for the
// error envelope.
func bindingErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = name + " is required"
		case "email":
			fields[name] = name + " must be a valid email address"
		case "min":
			fields[name] = name + " is too short"
		case "max":
			fields[name] = name + " is too long"
		case "url":
			fields[name] = name + " must be a valid URL"
		default:
			fields[name] = name + " is invalid"
		}
	}
	return fields
}

// respondRepoError maps repository outcomes onto the response envelope.
// Unexpected errors (store unreachable, timeout) answer 500 with the detail
// redacted in production.
func respondRepoError(ctx *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repository.ErrConflict):
		utils.Error(ctx, http.StatusConflict, "resource already exists")
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorw("store operation failed", "path", ctx.Request.URL.Path, "err", err)
		}
		msg := "internal server error"
		if !config.Get().IsProduction() {
			msg = err.Error()
		}
		utils.Error(ctx, http.StatusInternalServerError, msg)
	}
}
