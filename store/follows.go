package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/yatube/models"
)

// FollowStore is the follow graph: who follows which author.
type FollowStore struct {
	db *gorm.DB
}

// NewFollowStore creates a FollowStore.
func NewFollowStore(db *gorm.DB) *FollowStore {
	return &FollowStore{db: db}
}

// IsFollowing reports whether follower follows author.
func (s *FollowStore) IsFollowing(ctx context.Context, follower, author uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", follower, author).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Follow records that follower follows author. Following twice is a no-op;
// following yourself is rejected with models.ErrForbidden.
func (s *FollowStore) Follow(ctx context.Context, follower, author uint) error {
	if follower == author {
		return fmt.Errorf("user %d following self: %w", follower, models.ErrForbidden)
	}
	edge := models.Follow{UserID: follower, AuthorID: author}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "author_id"}},
			DoNothing: true,
		}).
		Create(&edge).Error
}

// Unfollow removes the edge if present. Removing a missing edge is not an error.
func (s *FollowStore) Unfollow(ctx context.Context, follower, author uint) error {
	return s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", follower, author).
		Delete(&models.Follow{}).Error
}

// FollowedByUser returns the ids of every author follower follows.
func (s *FollowStore) FollowedByUser(ctx context.Context, follower uint) ([]uint, error) {
	ids := []uint{}
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", follower).
		Order("author_id").
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// FollowerCount returns how many users follow author.
func (s *FollowStore) FollowerCount(ctx context.Context, author uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("author_id = ?", author).Count(&n).Error
	return n, err
}

// FollowingCount returns how many authors user follows.
func (s *FollowStore) FollowingCount(ctx context.Context, user uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).Where("user_id = ?", user).Count(&n).Error
	return n, err
}
