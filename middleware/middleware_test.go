package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/utils"
)

func setup(t *testing.T, c config.AppConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c.JWTSecret = "middleware-secret"
	config.Use(c)
	utils.SetRedis(nil)
	resetLimiters()
}

func whoami(ctx *gin.Context) {
	id, _ := ctx.Get(ContextUserIDKey)
	ctx.JSON(http.StatusOK, gin.H{"user_id": id, "username": ctx.GetString(ContextUsernameKey)})
}

func serve(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	setup(t, config.AppConfig{})
	r := gin.New()
	r.GET("/me", AuthRequired(), whoami)

	w := serve(r, "/me?x=1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, LoginPath+"?next=%2Fme%3Fx%3D1", w.Header().Get("Location"))

	w = serve(r, "/me", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "40105")

	token, err := utils.GenerateToken(9, "alice", time.Hour)
	require.NoError(t, err)
	w = serve(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	require.NoError(t, utils.BlacklistToken(context.Background(), token, time.Now().Add(time.Hour)))
	w = serve(r, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "40104")
}

func TestAuthRequired_MalformedHeader(t *testing.T) {
	setup(t, config.AppConfig{})
	r := gin.New()
	r.GET("/me", AuthRequired(), whoami)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "40102")
}

func TestOptionalAuth(t *testing.T) {
	setup(t, config.AppConfig{})
	r := gin.New()
	r.GET("/feed", OptionalAuth(), whoami)

	w := serve(r, "/feed", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":null`)

	w = serve(r, "/feed", "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":null`)

	token, err := utils.GenerateToken(3, "bob", time.Hour)
	require.NoError(t, err)
	w = serve(r, "/feed", token)
	assert.Contains(t, w.Body.String(), `"user_id":3`)
}

func TestAdminRequired(t *testing.T) {
	setup(t, config.AppConfig{AdminUsernames: []string{"Root"}})
	r := gin.New()
	r.GET("/admin", AuthRequired(), AdminRequired(), whoami)

	user, err := utils.GenerateToken(1, "alice", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(r, "/admin", user).Code)

	admin, err := utils.GenerateToken(2, "root", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, serve(r, "/admin", admin).Code)
}

func TestRateLimit(t *testing.T) {
	setup(t, config.AppConfig{RateLimitPerMinute: 2})
	r := gin.New()
	r.GET("/x", RateLimitMiddleware(), whoami)

	assert.Equal(t, http.StatusOK, serve(r, "/x", "").Code)
	w := serve(r, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_Disabled(t *testing.T) {
	setup(t, config.AppConfig{})
	r := gin.New()
	r.GET("/x", RateLimitMiddleware(), whoami)
	for i := 0; i < 20; i++ {
		require.Equal(t, http.StatusOK, serve(r, "/x", "").Code)
	}
}
