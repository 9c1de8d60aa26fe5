package controllers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]{1,100}$`)

// GroupController lists groups and lets admins manage them.
type GroupController struct {
	store *store.Store
	query *feed.Query
}

// NewGroupController creates a GroupController.
func NewGroupController(s *store.Store, q *feed.Query) *GroupController {
	return &GroupController{store: s, query: q}
}

type groupRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (r *groupRequest) clean() (ok bool, message string) {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	r.Description = utils.Sanitize(strings.TrimSpace(r.Description))
	if r.Title == "" || len(r.Title) > 200 {
		return false, "title must be 1-200 characters"
	}
	return true, ""
}

// List returns every group ordered by title.
func (g *GroupController) List(ctx *gin.Context) {
	groups, err := g.store.Groups.List(ctx.Request.Context())
	if err != nil {
		writeError(ctx, err, 50060, "failed to list groups")
		return
	}
	utils.Success(ctx, gin.H{"items": groups})
}

// Create adds a group. Admin only.
func (g *GroupController) Create(ctx *gin.Context) {
	var req groupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if ok, msg := req.clean(); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, msg)
		return
	}
	if !slugPattern.MatchString(req.Slug) {
		utils.Error(ctx, http.StatusBadRequest, 40062, "slug may contain letters, digits, '-' and '_' only")
		return
	}

	rctx := ctx.Request.Context()
	taken, err := g.store.Groups.Taken(rctx, req.Slug, req.Title, 0)
	if err != nil {
		writeError(ctx, err, 50061, "failed to check group")
		return
	}
	if taken {
		utils.Error(ctx, http.StatusConflict, 40960, "group slug or title already exists")
		return
	}

	group := models.Group{Title: req.Title, Slug: req.Slug, Description: req.Description}
	if err := g.store.Groups.Create(rctx, &group); err != nil {
		writeError(ctx, err, 50062, "failed to create group")
		return
	}
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"group": group})
}

// Update edits title and description. The slug is fixed at creation.
func (g *GroupController) Update(ctx *gin.Context) {
	var req groupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}
	if ok, msg := req.clean(); !ok {
		utils.Error(ctx, http.StatusBadRequest, 40061, msg)
		return
	}

	slug := ctx.Param("slug")
	if req.Slug != "" && req.Slug != slug {
		utils.Error(ctx, http.StatusBadRequest, 40063, "slug cannot be changed")
		return
	}

	rctx := ctx.Request.Context()
	current, err := g.store.Groups.BySlug(rctx, slug)
	if err != nil {
		writeError(ctx, err, 50063, "failed to load group")
		return
	}
	taken, err := g.store.Groups.Taken(rctx, "", req.Title, current.ID)
	if err != nil {
		writeError(ctx, err, 50061, "failed to check group")
		return
	}
	if taken {
		utils.Error(ctx, http.StatusConflict, 40960, "group slug or title already exists")
		return
	}

	group, err := g.store.Groups.Update(rctx, slug, req.Title, req.Description)
	if err != nil {
		writeError(ctx, err, 50064, "failed to update group")
		return
	}
	// Cached posts embed their group.
	if !invalidateFeed(ctx, g.query, 0) {
		return
	}
	utils.Success(ctx, gin.H{"group": group})
}

// Delete removes a group. Its posts stay published without a group.
func (g *GroupController) Delete(ctx *gin.Context) {
	slug := ctx.Param("slug")
	if err := g.store.Groups.Delete(ctx.Request.Context(), slug); err != nil {
		writeError(ctx, err, 50065, "failed to delete group")
		return
	}
	if !invalidateFeed(ctx, g.query, 0) {
		return
	}
	utils.Success(ctx, gin.H{"slug": slug, "deleted": true})
}
