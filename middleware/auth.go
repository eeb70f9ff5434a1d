package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID.
	ContextUserIDKey = "user_id"
	// ContextEmailKey stores the authenticated email.
	ContextEmailKey = "email"
	// ContextRoleKey stores the authenticated role.
	ContextRoleKey = "role"
)

// AuthRequired rejects the request before the handler runs unless it
// carries a valid bearer token. Expired, malformed and otherwise invalid
// tokens all answer 401 with distinct messages.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := claimsFromHeader(ctx)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, err.Error())
			ctx.Abort()
			return
		}
		setIdentity(ctx, claims)
		ctx.Next()
	}
}

// AuthOptional resolves the caller's identity when a valid token is present
// and proceeds anonymously otherwise. It never rejects.
func AuthOptional() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims, err := claimsFromHeader(ctx); err == nil {
			setIdentity(ctx, claims)
		}
		ctx.Next()
	}
}

// AdminRequired gates a route on the admin role. Must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if role, _ := ctx.Get(ContextRoleKey); role != models.RoleAdmin {
			utils.Error(ctx, http.StatusForbidden, "admin access required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

var errMissingAuth = errors.New("authorization header missing or malformed")

func claimsFromHeader(ctx *gin.Context) (*utils.Claims, error) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errMissingAuth
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, errMissingAuth
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil, errMissingAuth
	}

	return utils.ParseToken(tokenString)
}

func setIdentity(ctx *gin.Context, claims *utils.Claims) {
	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextEmailKey, claims.Email)
	ctx.Set(ContextRoleKey, claims.Role)
}
