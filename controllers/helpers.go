package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/config"
	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/middleware"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func isAdmin(ctx *gin.Context) bool {
	uname := ctx.GetString(middleware.ContextUsernameKey)
	if uname == "" {
		return false
	}
	return config.Get().IsAdmin(uname)
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func profileURL(username string) string {
	return "/api/v1/users/" + url.PathEscape(username)
}

func postURL(username string, id uint) string {
	return fmt.Sprintf("%s/posts/%d", profileURL(username), id)
}

// forbidden answers 403 and points the client at the resource it may view instead.
func forbidden(ctx *gin.Context, location string, code int, message string) {
	if location != "" {
		ctx.Header("Location", location)
	}
	utils.Error(ctx, http.StatusForbidden, code, message)
}

// writeError maps model sentinels onto HTTP statuses; anything else is a 500 with code.
// A bare ErrForbidden points back at the requested resource.
func writeError(ctx *gin.Context, err error, code int, message string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40400, err.Error())
	case errors.Is(err, models.ErrUnauthenticated):
		ctx.Header("Location", middleware.LoginURL(ctx))
		utils.Error(ctx, http.StatusUnauthorized, 40100, "authentication required")
	case errors.Is(err, models.ErrForbidden):
		forbidden(ctx, ctx.Request.URL.Path, 40300, "forbidden")
	default:
		utils.Sugar.Errorw(message, "error", err, "path", ctx.Request.URL.Path)
		utils.Error(ctx, http.StatusInternalServerError, code, message)
	}
}

// invalidateFeed evicts the cached index after a post write. On failure the
// write is reported as failed with the affected post id so clients can retry reads.
func invalidateFeed(ctx *gin.Context, q *feed.Query, postID uint) bool {
	if err := q.Invalidate(ctx.Request.Context()); err != nil {
		utils.Sugar.Errorw("feed cache invalidation failed", "error", err, "post_id", postID)
		utils.Respond(ctx, http.StatusInternalServerError, 50031, "post saved but feed cache invalidation failed", gin.H{"post_id": postID})
		return false
	}
	return true
}
