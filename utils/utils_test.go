package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cppla/yatube/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, Unique([]uint{3, 1, 3, 2, 1}))
	assert.Empty(t, Unique([]string(nil)))
}

func TestToken_RoundTrip(t *testing.T) {
	config.Use(config.AppConfig{JWTSecret: "s3cret"})

	token, err := GenerateToken(7, "alice", time.Hour)
	require.NoError(t, err)
	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, "alice", claims.Username())
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)

	config.Use(config.AppConfig{JWTSecret: "other"})
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestToken_RejectsForeignIssuer(t *testing.T) {
	config.Use(config.AppConfig{JWTSecret: "s3cret"})
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "elsewhere",
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := foreign.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = ParseToken(signed)
	assert.Error(t, err)
}

func TestToken_RequiresSecret(t *testing.T) {
	config.Use(config.AppConfig{})
	_, err := GenerateToken(1, "alice", time.Hour)
	assert.Error(t, err)
}

func TestToken_Expired(t *testing.T) {
	config.Use(config.AppConfig{JWTSecret: "s3cret"})
	token, err := GenerateToken(1, "alice", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestBlacklist_InMemory(t *testing.T) {
	SetRedis(nil)
	ctx := context.Background()

	require.NoError(t, BlacklistToken(ctx, "mem-token", time.Now().Add(time.Hour)))
	assert.True(t, IsTokenBlacklisted(ctx, "mem-token"))
	assert.False(t, IsTokenBlacklisted(ctx, "other-token"))

	// Already expired tokens are not worth remembering.
	require.NoError(t, BlacklistToken(ctx, "stale-token", time.Now().Add(-time.Second)))
	assert.False(t, IsTokenBlacklisted(ctx, "stale-token"))
}

func TestBlacklist_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		SetRedis(nil)
		_ = client.Close()
	})
	SetRedis(client)
	ctx := context.Background()

	require.NoError(t, BlacklistToken(ctx, "redis-token", time.Now().Add(time.Minute)))
	assert.True(t, IsTokenBlacklisted(ctx, "redis-token"))
	assert.True(t, mr.Exists(blacklistKeyPrefix+"redis-token"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, IsTokenBlacklisted(ctx, "redis-token"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hi ", Sanitize(`hi <script>alert(1)</script>`))
	assert.Equal(t, "<b>bold</b>", Sanitize("<b>bold</b>"))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}

func TestGinzap_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(Ginzap(zap.NewNop(), time.RFC3339, true), RecoveryWithZap(zap.NewNop(), true))
	r.GET("/ok", func(ctx *gin.Context) { Success(ctx, gin.H{"id": ctx.GetString("request_id")}) })
	r.GET("/panic", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), `"id":"req-42"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":50000`)
}
