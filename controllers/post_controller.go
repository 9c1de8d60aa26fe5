package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/yatube/feed"
	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
	"github.com/cppla/yatube/utils"
)

const maxImageRefLen = 512

// PostController manages the post lifecycle and comments.
type PostController struct {
	store *store.Store
	query *feed.Query
}

// NewPostController creates a new PostController instance.
func NewPostController(s *store.Store, q *feed.Query) *PostController {
	return &PostController{store: s, query: q}
}

// resolveGroup maps an optional slug onto a group id. An empty slug means no group.
func (p *PostController) resolveGroup(ctx *gin.Context, slug string) (*uint, bool) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, true
	}
	group, err := p.store.Groups.BySlug(ctx.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			utils.Error(ctx, http.StatusBadRequest, 40023, "unknown group")
			return nil, false
		}
		writeError(ctx, err, 50024, "failed to load group")
		return nil, false
	}
	id := group.ID
	return &id, true
}

func cleanImage(raw string) (string, bool) {
	image := strings.TrimSpace(raw)
	return image, len(image) <= maxImageRefLen
}

// CreatePost publishes a new post. The cached front page is evicted before
// the response so the author sees the post on the next read.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Text  string `json:"text" binding:"required"`
		Group string `json:"group"`
		Image string `json:"image"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		writeError(ctx, models.ErrUnauthenticated, 0, "")
		return
	}

	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "text cannot be empty")
		return
	}
	image, ok := cleanImage(req.Image)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40022, "image reference too long")
		return
	}
	groupID, ok := p.resolveGroup(ctx, req.Group)
	if !ok {
		return
	}

	post := models.Post{UserID: userID, GroupID: groupID, Text: text, Image: image}
	if err := p.store.Posts.Create(ctx.Request.Context(), &post); err != nil {
		writeError(ctx, err, 50020, "failed to create post")
		return
	}
	if !invalidateFeed(ctx, p.query, post.ID) {
		return
	}

	ctx.Header("Location", postURL(post.User.Username, post.ID))
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"post": post})
}

// GetPost returns one post with its comments and the author's post count.
func (p *PostController) GetPost(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	rctx := ctx.Request.Context()
	post, err := p.store.Posts.Get(rctx, ctx.Param("username"), id)
	if err != nil {
		writeError(ctx, err, 50023, "failed to load post")
		return
	}
	comments, err := p.store.Comments.ForPost(rctx, post.ID)
	if err != nil {
		writeError(ctx, err, 50023, "failed to load comments")
		return
	}
	count, err := p.store.Posts.CountByAuthor(rctx, post.UserID)
	if err != nil {
		writeError(ctx, err, 50023, "failed to count posts")
		return
	}
	post.Comments = comments

	utils.Success(ctx, gin.H{
		"post":         post,
		"author_posts": count,
	})
}

// UpdatePost edits text, image or group. Only the author may edit; anyone
// else is sent back to the post view.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Text  *string `json:"text"`
		Group *string `json:"group"`
		Image *string `json:"image"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		writeError(ctx, models.ErrUnauthenticated, 0, "")
		return
	}
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	username := ctx.Param("username")
	post, err := p.store.Posts.Get(ctx.Request.Context(), username, id)
	if err != nil {
		writeError(ctx, err, 50025, "failed to load post")
		return
	}
	if post.UserID != userID {
		forbidden(ctx, postURL(username, post.ID), 40320, "only the author can edit this post")
		return
	}

	if req.Text != nil {
		text := strings.TrimSpace(utils.Sanitize(*req.Text))
		if text == "" {
			utils.Error(ctx, http.StatusBadRequest, 40021, "text cannot be empty")
			return
		}
		post.Text = text
	}
	if req.Image != nil {
		image, ok := cleanImage(*req.Image)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40022, "image reference too long")
			return
		}
		post.Image = image
	}
	if req.Group != nil {
		groupID, ok := p.resolveGroup(ctx, *req.Group)
		if !ok {
			return
		}
		post.GroupID = groupID
	}

	if err := p.store.Posts.Update(ctx.Request.Context(), post); err != nil {
		writeError(ctx, err, 50026, "failed to update post")
		return
	}
	if !invalidateFeed(ctx, p.query, post.ID) {
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes a post with its comments. Authors and admins may delete.
func (p *PostController) DeletePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		writeError(ctx, models.ErrUnauthenticated, 0, "")
		return
	}
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	username := ctx.Param("username")
	post, err := p.store.Posts.Get(ctx.Request.Context(), username, id)
	if err != nil {
		writeError(ctx, err, 50027, "failed to load post")
		return
	}
	if post.UserID != userID && !isAdmin(ctx) {
		forbidden(ctx, postURL(username, post.ID), 40321, "only the author can delete this post")
		return
	}

	if err := p.store.Posts.Delete(ctx.Request.Context(), post.ID); err != nil {
		writeError(ctx, err, 50028, "failed to delete post")
		return
	}
	if !invalidateFeed(ctx, p.query, post.ID) {
		return
	}

	utils.Success(ctx, gin.H{"post_id": post.ID, "deleted": true})
}

// CreateComment adds a comment to a post.
func (p *PostController) CreateComment(ctx *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		writeError(ctx, models.ErrUnauthenticated, 0, "")
		return
	}
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
		return
	}

	text := strings.TrimSpace(utils.Sanitize(req.Text))
	if text == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "comment cannot be empty")
		return
	}

	rctx := ctx.Request.Context()
	post, err := p.store.Posts.Get(rctx, ctx.Param("username"), id)
	if err != nil {
		writeError(ctx, err, 50029, "failed to load post")
		return
	}

	comment := models.Comment{PostID: post.ID, UserID: userID, Text: text}
	if err := p.store.Comments.Create(rctx, &comment); err != nil {
		writeError(ctx, err, 50030, "failed to create comment")
		return
	}

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{"comment": comment})
}

// DeleteComment removes a comment. Comment authors and admins may delete.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		writeError(ctx, models.ErrUnauthenticated, 0, "")
		return
	}
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40402, "comment not found")
		return
	}

	rctx := ctx.Request.Context()
	comment, err := p.store.Comments.Get(rctx, id)
	if err != nil {
		writeError(ctx, err, 50032, "failed to load comment")
		return
	}
	if comment.UserID != userID && !isAdmin(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40322, "only the author can delete this comment")
		return
	}

	if err := p.store.Comments.Delete(rctx, comment.ID); err != nil {
		writeError(ctx, err, 50033, "failed to delete comment")
		return
	}
	utils.Success(ctx, gin.H{"comment_id": comment.ID, "deleted": true})
}
