package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/utils"
)

// PostStore is the query and write surface over posts.
type PostStore struct {
	db *gorm.DB
}

// NewPostStore creates a PostStore.
func NewPostStore(db *gorm.DB) *PostStore {
	return &PostStore{db: db}
}

// RecentPosts lists every post.
func (s *PostStore) RecentPosts() Listing {
	return newListing(s.db, nil)
}

// PostsByGroup lists the posts filed under the group with slug.
func (s *PostStore) PostsByGroup(ctx context.Context, slug string) (Listing, *models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, nil, notFound(err, "group %q", slug)
	}
	id := group.ID
	return newListing(s.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.group_id = ?", id)
	}), &group, nil
}

// PostsByAuthor lists the posts written by username.
func (s *PostStore) PostsByAuthor(ctx context.Context, username string) (Listing, *models.User, error) {
	var author models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&author).Error; err != nil {
		return nil, nil, notFound(err, "author %q", username)
	}
	id := author.ID
	return newListing(s.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.user_id = ?", id)
	}), &author, nil
}

// PostsByAuthorSet lists the posts written by any of authorIDs. An empty set yields an empty listing.
func (s *PostStore) PostsByAuthorSet(authorIDs []uint) Listing {
	ids := utils.Unique(authorIDs)
	if len(ids) == 0 {
		return emptyListing{}
	}
	return newListing(s.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("posts.user_id IN ?", ids)
	})
}

// Create persists post and reloads its author and group.
func (s *PostStore) Create(ctx context.Context, post *models.Post) error {
	db := s.db.WithContext(ctx)
	if err := db.Omit("User", "Group", "Comments").Create(post).Error; err != nil {
		return err
	}
	return s.reload(ctx, post)
}

func (s *PostStore) reload(ctx context.Context, post *models.Post) error {
	var fresh models.Post
	if err := s.db.WithContext(ctx).Preload("User").Preload("Group").First(&fresh, post.ID).Error; err != nil {
		return notFound(err, "post %d", post.ID)
	}
	*post = fresh
	return nil
}

// Get returns the post with id, provided it was written by username.
func (s *PostStore) Get(ctx context.Context, username string, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Preload("User").Preload("Group").First(&post, id).Error; err != nil {
		return nil, notFound(err, "post %d", id)
	}
	if post.User.Username != username {
		return nil, notFound(gorm.ErrRecordNotFound, "post %d by %q", id, username)
	}
	return &post, nil
}

// Update saves the mutable fields of post: text, image and group.
func (s *PostStore) Update(ctx context.Context, post *models.Post) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).
		Updates(map[string]interface{}{
			"text":     post.Text,
			"image":    post.Image,
			"group_id": post.GroupID,
		})
	if res.Error != nil {
		return res.Error
	}
	return s.reload(ctx, post)
}

// Delete removes the post and its comments in one transaction.
func (s *PostStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "post %d", id)
		}
		return nil
	})
}

// CountByAuthor returns how many posts userID has written.
func (s *PostStore) CountByAuthor(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// Count returns the total number of posts.
func (s *PostStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&n).Error
	return n, err
}
