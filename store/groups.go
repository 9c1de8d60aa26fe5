package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
)

// GroupStore manages groups. Slugs never change after creation.
type GroupStore struct {
	db *gorm.DB
}

// NewGroupStore creates a GroupStore.
func NewGroupStore(db *gorm.DB) *GroupStore {
	return &GroupStore{db: db}
}

func (s *GroupStore) Create(ctx context.Context, group *models.Group) error {
	return s.db.WithContext(ctx).Create(group).Error
}

func (s *GroupStore) BySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group
	if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, notFound(err, "group %q", slug)
	}
	return &group, nil
}

func (s *GroupStore) List(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	if err := s.db.WithContext(ctx).Order("title").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// Update changes title and description of the group with slug.
func (s *GroupStore) Update(ctx context.Context, slug, title, description string) (*models.Group, error) {
	group, err := s.BySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(group).Updates(map[string]interface{}{
		"title":       title,
		"description": description,
	}).Error
	if err != nil {
		return nil, err
	}
	group.Title = title
	group.Description = description
	return group, nil
}

// Delete removes the group and detaches its posts, which stay published without a group.
func (s *GroupStore) Delete(ctx context.Context, slug string) error {
	group, err := s.BySlug(ctx, slug)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).Where("group_id = ?", group.ID).Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Group{}, group.ID).Error
	})
}

func (s *GroupStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Group{}).Count(&n).Error
	return n, err
}

// Taken reports whether another group already uses slug or title. exceptID
// excludes the group being edited.
func (s *GroupStore) Taken(ctx context.Context, slug, title string, exceptID uint) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Group{}).
		Where("(slug = ? OR title = ?) AND id <> ?", slug, title, exceptID).
		Count(&n).Error
	return n > 0, err
}
