package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// CacheStatusHeader reports whether the global feed came from the cache.
const CacheStatusHeader = "X-Feed-Cache"

// FeedController renders the four post feeds.
type FeedController struct {
	store *store.Store
	query *feed.Query
}

// NewFeedController creates a FeedController.
func NewFeedController(s *store.Store, q *feed.Query) *FeedController {
	return &FeedController{store: s, query: q}
}

func feedRequest(ctx *gin.Context, variant feed.Variant, key string) feed.Request {
	viewer, _ := getUserID(ctx)
	return feed.Request{
		Variant: variant,
		Key:     key,
		Viewer:  viewer,
		Page:    feed.ParsePage(ctx.Query("page")),
		Anchor:  feed.ParseAnchor(ctx.Query("anchor")),
	}
}

// Index returns the global feed, newest first.
func (f *FeedController) Index(ctx *gin.Context) {
	res, err := f.query.Feed(ctx.Request.Context(), feedRequest(ctx, feed.Global, ""))
	if err != nil {
		writeError(ctx, err, 50040, "failed to load feed")
		return
	}
	if res.Cached {
		ctx.Header(CacheStatusHeader, "HIT")
	} else {
		ctx.Header(CacheStatusHeader, "MISS")
	}
	utils.Success(ctx, gin.H{"page": res.Page})
}

// GroupPosts returns the feed of one group.
func (f *FeedController) GroupPosts(ctx *gin.Context) {
	res, err := f.query.Feed(ctx.Request.Context(), feedRequest(ctx, feed.ByGroup, ctx.Param("slug")))
	if err != nil {
		writeError(ctx, err, 50041, "failed to load group feed")
		return
	}
	utils.Success(ctx, gin.H{"group": res.Group, "page": res.Page})
}

// Profile returns an author's feed together with follow information.
func (f *FeedController) Profile(ctx *gin.Context) {
	req := feedRequest(ctx, feed.ByAuthor, ctx.Param("username"))
	res, err := f.query.Feed(ctx.Request.Context(), req)
	if err != nil {
		writeError(ctx, err, 50042, "failed to load profile")
		return
	}

	rctx := ctx.Request.Context()
	author := res.Author
	following := false
	if req.Viewer != 0 && req.Viewer != author.ID {
		if following, err = f.store.Follows.IsFollowing(rctx, req.Viewer, author.ID); err != nil {
			writeError(ctx, err, 50043, "failed to load follow state")
			return
		}
	}
	followers, err := f.store.Follows.FollowerCount(rctx, author.ID)
	if err != nil {
		writeError(ctx, err, 50043, "failed to load follow state")
		return
	}
	followings, err := f.store.Follows.FollowingCount(rctx, author.ID)
	if err != nil {
		writeError(ctx, err, 50043, "failed to load follow state")
		return
	}

	utils.Success(ctx, gin.H{
		"author":      author,
		"posts_count": res.AuthorPosts,
		"following":   following,
		"followers":   followers,
		"followings":  followings,
		"page":        res.Page,
	})
}

// FollowFeed returns posts by the authors the viewer follows.
func (f *FeedController) FollowFeed(ctx *gin.Context) {
	res, err := f.query.Feed(ctx.Request.Context(), feedRequest(ctx, feed.Followed, ""))
	if err != nil {
		writeError(ctx, err, 50044, "failed to load follow feed")
		return
	}
	ctx.Header("Cache-Control", "private, no-store")
	utils.Respond(ctx, http.StatusOK, 0, "success", gin.H{"page": res.Page})
}
