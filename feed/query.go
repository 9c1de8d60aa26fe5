// Package feed composes paginated post feeds and caches the global front page.
package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/store"
)

// Variant selects which posts a feed shows.
type Variant int

const (
	Global Variant = iota
	ByGroup
	ByAuthor
	Followed
)

func (v Variant) String() string {
	switch v {
	case Global:
		return "global"
	case ByGroup:
		return "group"
	case ByAuthor:
		return "author"
	case Followed:
		return "followed"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// PostSource is the subset of the post store that feeds read from.
type PostSource interface {
	RecentPosts() store.Listing
	PostsByGroup(ctx context.Context, slug string) (store.Listing, *models.Group, error)
	PostsByAuthor(ctx context.Context, username string) (store.Listing, *models.User, error)
	PostsByAuthorSet(authorIDs []uint) store.Listing
}

// FollowSource resolves whom a viewer follows.
type FollowSource interface {
	FollowedByUser(ctx context.Context, follower uint) ([]uint, error)
}

// PageSizes fixes the page size of each view. Clients cannot change them.
type PageSizes struct {
	Index   int
	Group   int
	Profile int
	Follow  int
}

// DefaultPageSizes are 10 posts per page everywhere except author profiles, which show 5.
var DefaultPageSizes = PageSizes{Index: 10, Group: 10, Profile: 5, Follow: 10}

// Request describes one feed read. Key is the group slug for ByGroup and the
// username for ByAuthor. Viewer is the signed-in user id, zero for anonymous.
type Request struct {
	Variant Variant
	Key     string
	Viewer  uint
	Page    int
	Anchor  uint
}

// Result is a rendered feed page with the entity the feed belongs to, if any.
type Result struct {
	Page        *Page         `json:"page"`
	Group       *models.Group `json:"group,omitempty"`
	Author      *models.User  `json:"author,omitempty"`
	AuthorPosts int64         `json:"author_posts,omitempty"`
	Cached      bool          `json:"-"`
}

// Query builds feeds from the post store and follow graph.
type Query struct {
	posts PostSource
	graph FollowSource
	cache Cache
	sizes PageSizes
	log   *zap.Logger
}

func (s PageSizes) orDefault() PageSizes {
	pick := func(v, def int) int {
		if v <= 0 {
			return def
		}
		return v
	}
	return PageSizes{
		Index:   pick(s.Index, DefaultPageSizes.Index),
		Group:   pick(s.Group, DefaultPageSizes.Group),
		Profile: pick(s.Profile, DefaultPageSizes.Profile),
		Follow:  pick(s.Follow, DefaultPageSizes.Follow),
	}
}

// NewQuery creates a Query. A nil cache disables caching and a nil logger
// discards logs. Unset page sizes take their default.
func NewQuery(posts PostSource, graph FollowSource, cache Cache, sizes PageSizes, log *zap.Logger) *Query {
	if cache == nil {
		cache = NopCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Query{posts: posts, graph: graph, cache: cache, sizes: sizes.orDefault(), log: log}
}

// Feed returns the requested page of a feed.
//
// Unknown groups and authors yield models.ErrNotFound, and the Followed
// variant without a viewer yields models.ErrUnauthenticated.
func (q *Query) Feed(ctx context.Context, req Request) (*Result, error) {
	switch req.Variant {
	case Global:
		if req.Page <= 1 && req.Anchor == 0 {
			return q.cachedIndex(ctx, req)
		}
		return q.page(ctx, q.posts.RecentPosts(), q.sizes.Index, req)

	case ByGroup:
		listing, group, err := q.posts.PostsByGroup(ctx, req.Key)
		if err != nil {
			return nil, err
		}
		res, err := q.page(ctx, listing, q.sizes.Group, req)
		if err != nil {
			return nil, err
		}
		res.Group = group
		return res, nil

	case ByAuthor:
		listing, author, err := q.posts.PostsByAuthor(ctx, req.Key)
		if err != nil {
			return nil, err
		}
		res, err := q.page(ctx, listing, q.sizes.Profile, req)
		if err != nil {
			return nil, err
		}
		if res.AuthorPosts, err = listing.Count(ctx); err != nil {
			return nil, err
		}
		res.Author = author
		return res, nil

	case Followed:
		if req.Viewer == 0 {
			return nil, fmt.Errorf("followed feed: %w", models.ErrUnauthenticated)
		}
		authors, err := q.graph.FollowedByUser(ctx, req.Viewer)
		if err != nil {
			return nil, err
		}
		return q.page(ctx, q.posts.PostsByAuthorSet(authors), q.sizes.Follow, req)

	default:
		return nil, fmt.Errorf("unknown feed variant %s", req.Variant)
	}
}

func (q *Query) page(ctx context.Context, listing store.Listing, size int, req Request) (*Result, error) {
	p, err := Paginate(ctx, listing, size, req.Page, req.Anchor)
	if err != nil {
		return nil, fmt.Errorf("%s feed: %w", req.Variant, err)
	}
	return &Result{Page: p}, nil
}

// cachedIndex serves the global first page from the cache, filling it on a miss.
// Cache failures degrade to a live read.
func (q *Query) cachedIndex(ctx context.Context, req Request) (*Result, error) {
	entry, err := q.cache.Get(ctx, IndexCacheKey)
	if err != nil {
		q.log.Warn("feed cache read failed", zap.String("key", IndexCacheKey), zap.Error(err))
		return q.page(ctx, q.posts.RecentPosts(), q.sizes.Index, req)
	}
	if entry.Hit {
		var res Result
		if err := json.Unmarshal(entry.Value, &res); err == nil && res.Page != nil {
			res.Cached = true
			return &res, nil
		}
		q.log.Warn("discarding undecodable feed cache entry", zap.String("key", IndexCacheKey))
	}

	res, err := q.page(ctx, q.posts.RecentPosts(), q.sizes.Index, req)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(res)
	if err != nil {
		q.log.Warn("feed cache encode failed", zap.Error(err))
		return res, nil
	}
	stored, err := q.cache.Set(ctx, IndexCacheKey, entry.Generation, body)
	if err != nil {
		q.log.Warn("feed cache write failed", zap.String("key", IndexCacheKey), zap.Error(err))
	} else if !stored {
		q.log.Debug("feed cache write skipped, invalidated meanwhile", zap.Uint64("generation", entry.Generation))
	}
	return res, nil
}

// Invalidate evicts the cached global first page. Callers must run it after
// every post write and before reporting the write as done.
func (q *Query) Invalidate(ctx context.Context) error {
	if err := q.cache.Invalidate(ctx, IndexCacheKey); err != nil {
		return fmt.Errorf("%w: %w", ErrCacheInvalidation, err)
	}
	return nil
}
