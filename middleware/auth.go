package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextTokenKey stores the raw bearer token so logout can revoke it.
	ContextTokenKey = "token"

	// LoginPath is where unauthenticated callers are sent.
	LoginPath = "/api/v1/auth/login"
)

// LoginURL points at the login endpoint with the current request as the next hop.
func LoginURL(ctx *gin.Context) string {
	return LoginPath + "?next=" + url.QueryEscape(ctx.Request.URL.RequestURI())
}

func unauthorized(ctx *gin.Context, code int, message string) {
	ctx.Header("Location", LoginURL(ctx))
	utils.Error(ctx, http.StatusUnauthorized, code, message)
	ctx.Abort()
}

// bearerToken extracts the token from the Authorization header. code is
// non-zero when the header is present but malformed.
func bearerToken(ctx *gin.Context) (token string, code int, message string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", 40101, "authorization header missing"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", 40102, "invalid authorization header format"
	}

	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", 40103, "empty bearer token"
	}
	return token, 0, ""
}

// authenticate validates the bearer token and stores the identity in ctx.
func authenticate(ctx *gin.Context) (code int, message string) {
	token, code, message := bearerToken(ctx)
	if code != 0 {
		return code, message
	}

	if utils.IsTokenBlacklisted(ctx.Request.Context(), token) {
		return 40104, "token revoked"
	}

	claims, err := utils.ParseToken(token)
	if err != nil {
		return 40105, "invalid token"
	}

	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextUsernameKey, claims.Username())
	ctx.Set(ContextTokenKey, token)
	return 0, ""
}

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if code, message := authenticate(ctx); code != 0 {
			unauthorized(ctx, code, message)
			return
		}
		ctx.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authenticate(ctx)
		ctx.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !config.Get().IsAdmin(ctx.GetString(ContextUsernameKey)) {
			utils.Error(ctx, http.StatusForbidden, 40301, "admin privileges required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}
