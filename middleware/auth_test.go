package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goblogdev/goblog/config"
	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:   "middleware-test-secret",
		JWTIssuer:   "goblog",
		JWTAudience: "goblog-clients",
		TokenTTL:    time.Hour,
		Environment: "development",
	})
}

// whoami reports the identity the middleware chain resolved, if any.
func whoami(ctx *gin.Context) {
	if id, ok := ctx.Get(ContextUserIDKey); ok {
		role, _ := ctx.Get(ContextRoleKey)
		ctx.JSON(http.StatusOK, gin.H{"user_id": id, "role": role})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"anonymous": true})
}

func request(t *testing.T, router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Message
}

func token(t *testing.T, role string) string {
	t.Helper()
	s, err := utils.GenerateToken(7, "ana@x.com", role)
	require.NoError(t, err)
	return s
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	r := gin.New()
	r.GET("/probe", AuthRequired(), whoami)

	w := request(t, r, "Bearer "+token(t, models.RoleUser))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["user_id"])
	assert.Equal(t, models.RoleUser, body["role"])
}

func TestAuthRequiredRejectsMissingOrMalformedHeader(t *testing.T) {
	r := gin.New()
	r.GET("/probe", AuthRequired(), whoami)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer "} {
		w := request(t, r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Equal(t, errMissingAuth.Error(), message(t, w), "header %q", header)
	}
}

// Expired and malformed tokens both answer 401 but with distinct messages,
// so clients can tell a refreshable session from a broken one.
func TestAuthRequiredDistinguishesExpiredFromMalformed(t *testing.T) {
	r := gin.New()
	r.GET("/probe", AuthRequired(), whoami)

	config.SetForTesting(config.AppConfig{
		JWTSecret:   "middleware-test-secret",
		JWTIssuer:   "goblog",
		JWTAudience: "goblog-clients",
		TokenTTL:    -time.Hour,
	})
	expired := token(t, models.RoleUser)
	config.SetForTesting(config.AppConfig{
		JWTSecret:   "middleware-test-secret",
		JWTIssuer:   "goblog",
		JWTAudience: "goblog-clients",
		TokenTTL:    time.Hour,
	})

	wExpired := request(t, r, "Bearer "+expired)
	wGarbage := request(t, r, "Bearer not-a-jwt")

	assert.Equal(t, http.StatusUnauthorized, wExpired.Code)
	assert.Equal(t, http.StatusUnauthorized, wGarbage.Code)
	assert.Equal(t, utils.ErrTokenExpired.Error(), message(t, wExpired))
	assert.Equal(t, utils.ErrTokenMalformed.Error(), message(t, wGarbage))
}

func TestAuthOptionalProceedsAnonymously(t *testing.T) {
	r := gin.New()
	r.GET("/probe", AuthOptional(), whoami)

	for _, header := range []string{"", "Bearer not-a-jwt"} {
		w := request(t, r, header)
		require.Equal(t, http.StatusOK, w.Code, "header %q", header)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["anonymous"], "header %q", header)
	}
}

func TestAuthOptionalResolvesIdentity(t *testing.T) {
	r := gin.New()
	r.GET("/probe", AuthOptional(), whoami)

	w := request(t, r, "Bearer "+token(t, models.RoleUser))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["user_id"])
}

func TestAdminRequired(t *testing.T) {
	r := gin.New()
	r.GET("/probe", AuthRequired(), AdminRequired(), whoami)

	forbidden := request(t, r, "Bearer "+token(t, models.RoleUser))
	allowed := request(t, r, "Bearer "+token(t, models.RoleAdmin))

	assert.Equal(t, http.StatusForbidden, forbidden.Code)
	assert.Equal(t, http.StatusOK, allowed.Code)
}
