package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/utils"
)

// invalidCredentialsMsg is shared by the no-such-account and wrong-password
// paths so login failures never reveal whether the email exists.
const invalidCredentialsMsg = "invalid email or password"

// AuthController handles registration, login and profile access.
type AuthController struct {
	users repository.UserRepository
}

// NewAuthController creates an AuthController backed by the given repository.
func NewAuthController(users repository.UserRepository) *AuthController {
	return &AuthController{users: users}
}

// Register creates an account, issues a token and stamps last_login.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required,min=2,max=128"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8,max=72"`
		Avatar   string `json:"avatar" binding:"omitempty,url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, "invalid request payload", bindingErrors(err))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		respondRepoError(ctx, err, "")
		return
	}

	user := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Avatar:       req.Avatar,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	if err := a.users.Create(ctx.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			utils.Error(ctx, http.StatusConflict, "email is already registered")
			return
		}
		respondRepoError(ctx, err, "")
		return
	}

	now := time.Now()
	if err := a.users.UpdateLastLogin(ctx.Request.Context(), user.ID, now); err == nil {
		user.LastLogin = &now
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		respondRepoError(ctx, err, "")
		return
	}

	utils.Created(ctx, gin.H{"user": user, "token": token})
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password produce the identical 401; a disabled account fails distinctly.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, "invalid request payload", bindingErrors(err))
		return
	}

	user, err := a.users.FindByEmail(ctx.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, invalidCredentialsMsg)
			return
		}
		respondRepoError(ctx, err, "")
		return
	}

	if !user.IsActive {
		utils.Error(ctx, http.StatusUnauthorized, "account is disabled")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	now := time.Now()
	if err := a.users.UpdateLastLogin(ctx.Request.Context(), user.ID, now); err == nil {
		user.LastLogin = &now
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		respondRepoError(ctx, err, "")
		return
	}

	utils.Success(ctx, gin.H{"user": user, "token": token})
}

// Me returns the authenticated account.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := a.users.FindByID(ctx.Request.Context(), userID)
	if err != nil {
		respondRepoError(ctx, err, "account not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateProfile changes the caller's display name and avatar.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req struct {
		Name   *string `json:"name" binding:"omitempty,min=2,max=128"`
		Avatar *string `json:"avatar" binding:"omitempty,url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationError(ctx, "invalid request payload", bindingErrors(err))
		return
	}

	user, err := a.users.FindByID(ctx.Request.Context(), userID)
	if err != nil {
		respondRepoError(ctx, err, "account not found")
		return
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}

	if err := a.users.Update(ctx.Request.Context(), user); err != nil {
		respondRepoError(ctx, err, "account not found")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}
