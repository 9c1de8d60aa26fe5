package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
)

// CommentStore manages replies to posts.
type CommentStore struct {
	db *gorm.DB
}

// NewCommentStore creates a CommentStore.
func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Create persists comment and loads its author.
func (s *CommentStore) Create(ctx context.Context, comment *models.Comment) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit("User").Create(comment).Error; err != nil {
		return err
	}
	return db.First(&comment.User, comment.UserID).Error
}

// ForPost lists the comments of postID, newest first.
func (s *CommentStore) ForPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).Preload("User").
		Where("post_id = ?", postID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentStore) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, notFound(err, "comment %d", id)
	}
	return &comment, nil
}

func (s *CommentStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (s *CommentStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).Count(&n).Error
	return n, err
}
