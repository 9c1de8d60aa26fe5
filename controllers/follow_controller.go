package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// FollowController edits the signed-in user's follow list.
type FollowController struct {
	store *store.Store
}

// NewFollowController creates a FollowController.
func NewFollowController(s *store.Store) *FollowController {
	return &FollowController{store: s}
}

// Follow subscribes the viewer to :username. Repeating it changes nothing.
func (f *FollowController) Follow(ctx *gin.Context) {
	viewer, ok := getUserID(ctx)
	if !ok {
		writeError(ctx, models.ErrUnauthenticated, 0, "")
		return
	}
	username := ctx.Param("username")
	author, err := f.store.Users.ByUsername(ctx.Request.Context(), username)
	if err != nil {
		writeError(ctx, err, 50050, "failed to load author")
		return
	}

	if err := f.store.Follows.Follow(ctx.Request.Context(), viewer, author.ID); err != nil {
		if errors.Is(err, models.ErrForbidden) {
			forbidden(ctx, profileURL(author.Username), 40350, "you cannot follow yourself")
			return
		}
		writeError(ctx, err, 50051, "failed to follow author")
		return
	}
	utils.Success(ctx, gin.H{"author": author.Username, "following": true})
}

// Unfollow removes :username from the viewer's follow list. Unfollowing an
// author the viewer does not follow succeeds without changes.
func (f *FollowController) Unfollow(ctx *gin.Context) {
	viewer, ok := getUserID(ctx)
	if !ok {
		writeError(ctx, models.ErrUnauthenticated, 0, "")
		return
	}
	author, err := f.store.Users.ByUsername(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		writeError(ctx, err, 50052, "failed to load author")
		return
	}

	if err := f.store.Follows.Unfollow(ctx.Request.Context(), viewer, author.ID); err != nil {
		utils.Sugar.Errorw("unfollow failed", "error", err, "viewer", viewer, "author", author.ID)
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to unfollow author")
		return
	}
	utils.Success(ctx, gin.H{"author": author.Username, "following": false})
}
