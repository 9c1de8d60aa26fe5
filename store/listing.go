package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
)

// Listing is an ordered, lazily evaluated collection of posts.
// Every listing is sorted by pub_date DESC, id DESC.
type Listing interface {
	// Until pins the listing to posts with id <= anchor. Zero removes the pin.
	Until(anchor uint) Listing
	// Head returns the highest post id in the listing, or 0 when it is empty.
	Head(ctx context.Context) (uint, error)
	Count(ctx context.Context) (int64, error)
	// Slice returns at most limit posts starting at offset, with author and group loaded.
	// A non-positive limit returns everything from offset on.
	Slice(ctx context.Context, offset, limit int) ([]models.Post, error)
}

type postListing struct {
	db    *gorm.DB
	scope func(*gorm.DB) *gorm.DB
	until uint
}

func newListing(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) postListing {
	return postListing{db: db, scope: scope}
}

func (l postListing) Until(anchor uint) Listing {
	l.until = anchor
	return l
}

func (l postListing) query(ctx context.Context) *gorm.DB {
	q := l.db.WithContext(ctx).Model(&models.Post{})
	if l.scope != nil {
		q = l.scope(q)
	}
	if l.until > 0 {
		q = q.Where("posts.id <= ?", l.until)
	}
	return q
}

func (l postListing) Head(ctx context.Context) (uint, error) {
	var head uint
	if err := l.query(ctx).Select("COALESCE(MAX(posts.id), 0)").Scan(&head).Error; err != nil {
		return 0, err
	}
	return head, nil
}

func (l postListing) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := l.query(ctx).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (l postListing) Slice(ctx context.Context, offset, limit int) ([]models.Post, error) {
	q := l.query(ctx).
		Preload("User").
		Preload("Group").
		Order("posts.pub_date DESC").
		Order("posts.id DESC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	posts := []models.Post{}
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// emptyListing never yields posts. It backs the feed of a viewer who follows nobody.
type emptyListing struct{}

func (e emptyListing) Until(uint) Listing { return e }

func (emptyListing) Head(context.Context) (uint, error) { return 0, nil }

func (emptyListing) Count(context.Context) (int64, error) { return 0, nil }

func (emptyListing) Slice(context.Context, int, int) ([]models.Post, error) {
	return []models.Post{}, nil
}
