// Package store holds the gorm-backed repositories for posts, groups,
// users, comments and the follow graph.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/yatube/models"
)

// Store aggregates every repository over one database handle.
type Store struct {
	Posts    *PostStore
	Groups   *GroupStore
	Users    *UserStore
	Comments *CommentStore
	Follows  *FollowStore
}

// New builds all repositories on db.
func New(db *gorm.DB) *Store {
	return &Store{
		Posts:    NewPostStore(db),
		Groups:   NewGroupStore(db),
		Users:    NewUserStore(db),
		Comments: NewCommentStore(db),
		Follows:  NewFollowStore(db),
	}
}

// notFound converts gorm's missing-row error into models.ErrNotFound, naming what was missing.
func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, models.ErrNotFound)...)
	}
	return err
}
