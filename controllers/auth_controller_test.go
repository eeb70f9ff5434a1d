package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/goblogdev/goblog/config"
	"github.com/goblogdev/goblog/models"
	"github.com/goblogdev/goblog/repository"
	"github.com/goblogdev/goblog/repository/mocks"
	"github.com/goblogdev/goblog/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.SetForTesting(config.AppConfig{
		JWTSecret:   "controller-test-secret",
		JWTIssuer:   "goblog",
		JWTAudience: "goblog-clients",
		TokenTTL:    time.Hour,
		Environment: "development",
	})
}

func performJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) utils.JSONResponse {
	t.Helper()
	var resp utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func authRouter(users repository.UserRepository) *gin.Engine {
	r := gin.New()
	ctrl := NewAuthController(users)
	r.POST("/api/auth/register", ctrl.Register)
	r.POST("/api/auth/login", ctrl.Login)
	return r
}

func testHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestRegisterCreatesAccountAndIssuesToken(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 7
		}).
		Return(nil)
	users.On("UpdateLastLogin", mock.Anything, uint(7), mock.AnythingOfType("time.Time")).Return(nil)

	w := performJSON(t, authRouter(users), http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "Ana",
		"email":    "Ana@X.com",
		"password": "s3cret-pass",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decodeEnvelope(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	// email is normalized to lowercase before it reaches the store
	assert.Equal(t, "ana@x.com", claims.Email)

	user := data["user"].(map[string]interface{})
	assert.Equal(t, "ana@x.com", user["email"])
	_, exposed := user["password_hash"]
	assert.False(t, exposed, "password hash must never be serialized")

	users.AssertExpectations(t)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(repository.ErrConflict)

	w := performJSON(t, authRouter(users), http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "Ana",
		"email":    "ana@x.com",
		"password": "s3cret-pass",
	}, nil)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	users.AssertNumberOfCalls(t, "Create", 1)
}

func TestRegisterValidation(t *testing.T) {
	users := new(mocks.MockUserRepository)
	w := performJSON(t, authRouter(users), http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":     "A",
		"email":    "not-an-email",
		"password": "short",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeEnvelope(t, w)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Errors, "email")
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLoginSuccessStampsLastLogin(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("FindByEmail", mock.Anything, "ana@x.com").Return(&models.User{
		ID:           3,
		Name:         "Ana",
		Email:        "ana@x.com",
		PasswordHash: testHash(t, "s3cret-pass"),
		Role:         models.RoleUser,
		IsActive:     true,
	}, nil)
	users.On("UpdateLastLogin", mock.Anything, uint(3), mock.AnythingOfType("time.Time")).Return(nil)

	w := performJSON(t, authRouter(users), http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "ana@x.com",
		"password": "s3cret-pass",
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeEnvelope(t, w)
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	users.AssertExpectations(t)
}

// Wrong password and unknown email must be indistinguishable to the caller.
func TestLoginDoesNotLeakAccountExistence(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("FindByEmail", mock.Anything, "ana@x.com").Return(&models.User{
		ID:           3,
		Email:        "ana@x.com",
		PasswordHash: testHash(t, "s3cret-pass"),
		IsActive:     true,
	}, nil)
	users.On("FindByEmail", mock.Anything, "ghost@x.com").Return(nil, repository.ErrNotFound)

	router := authRouter(users)

	wrongPassword := performJSON(t, router, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "ana@x.com",
		"password": "not-the-password",
	}, nil)
	unknownEmail := performJSON(t, router, http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "ghost@x.com",
		"password": "whatever-pass",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, decodeEnvelope(t, wrongPassword).Message, decodeEnvelope(t, unknownEmail).Message)
}

func TestLoginDisabledAccount(t *testing.T) {
	users := new(mocks.MockUserRepository)
	users.On("FindByEmail", mock.Anything, "ana@x.com").Return(&models.User{
		ID:           3,
		Email:        "ana@x.com",
		PasswordHash: testHash(t, "s3cret-pass"),
		IsActive:     false,
	}, nil)

	w := performJSON(t, authRouter(users), http.MethodPost, "/api/auth/login", map[string]interface{}{
		"email":    "ana@x.com",
		"password": "s3cret-pass",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeEnvelope(t, w)
	assert.NotEqual(t, invalidCredentialsMsg, resp.Message)
	users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything, mock.Anything)
}
