package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

// StatsController reports site-wide counters.
type StatsController struct {
	store *store.Store
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(s *store.Store) *StatsController {
	return &StatsController{store: s}
}

// GetStats returns aggregate statistics for the site.
func (s *StatsController) GetStats(ctx *gin.Context) {
	rctx := ctx.Request.Context()
	counters := []struct {
		name  string
		count func() (int64, error)
	}{
		{"user_count", func() (int64, error) { return s.store.Users.Count(rctx) }},
		{"post_count", func() (int64, error) { return s.store.Posts.Count(rctx) }},
		{"group_count", func() (int64, error) { return s.store.Groups.Count(rctx) }},
		{"comment_count", func() (int64, error) { return s.store.Comments.Count(rctx) }},
	}

	out := gin.H{}
	for _, c := range counters {
		n, err := c.count()
		if err != nil {
			// Fallback to 0 instead of failing the whole endpoint
			utils.Sugar.Warnw("stats counter failed", "counter", c.name, "error", err)
			n = 0
		}
		out[c.name] = n
	}
	utils.Success(ctx, out)
}
