package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/yatube/models"
	"github.com/cppla/yatube/testutil"
)

func ids(posts []models.Post) []uint {
	out := make([]uint, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}

func TestRecentPosts_OrderedByPubDateThenID(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	same := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	older := testutil.CreatePost(t, db, alice, nil, same.Add(-time.Hour))
	tieA := testutil.CreatePost(t, db, alice, nil, same)
	tieB := testutil.CreatePost(t, db, alice, nil, same)
	newest := testutil.CreatePost(t, db, alice, nil, same.Add(time.Hour))

	posts, err := s.Posts.RecentPosts().Slice(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint{newest.ID, tieB.ID, tieA.ID, older.ID}, ids(posts))
	assert.Equal(t, "alice", posts[0].User.Username)

	limited, err := s.Posts.RecentPosts().Slice(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{newest.ID, tieB.ID}, ids(limited))
}

func TestListing_UntilPinsAgainstNewPosts(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	clock := testutil.Clock()

	for i := 0; i < 6; i++ {
		testutil.CreatePost(t, db, alice, nil, clock())
	}
	listing := s.Posts.RecentPosts()
	head, err := listing.Head(ctx)
	require.NoError(t, err)

	first, err := listing.Until(head).Slice(ctx, 0, 3)
	require.NoError(t, err)

	// A post published between page loads must not shift the pinned listing.
	testutil.CreatePost(t, db, alice, nil, clock())

	second, err := listing.Until(head).Slice(ctx, 3, 3)
	require.NoError(t, err)

	seen := map[uint]bool{}
	for _, id := range append(ids(first), ids(second)...) {
		assert.False(t, seen[id], "post %d served twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, 6)

	total, err := listing.Until(head).Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)

	live, err := listing.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 7, live)
}

func TestPostsByGroup(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	devops := testutil.CreateGroup(t, db, "devops")
	other := testutil.CreateGroup(t, db, "other")
	clock := testutil.Clock()

	in := testutil.CreatePost(t, db, alice, devops, clock())
	testutil.CreatePost(t, db, alice, other, clock())
	testutil.CreatePost(t, db, alice, nil, clock())

	listing, group, err := s.Posts.PostsByGroup(ctx, "devops")
	require.NoError(t, err)
	assert.Equal(t, devops.ID, group.ID)
	posts, err := listing.Slice(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{in.ID}, ids(posts))
	require.NotNil(t, posts[0].Group)
	assert.Equal(t, "devops", posts[0].Group.Slug)

	_, _, err = s.Posts.PostsByGroup(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostsByAuthor(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	clock := testutil.Clock()

	a1 := testutil.CreatePost(t, db, alice, nil, clock())
	testutil.CreatePost(t, db, bob, nil, clock())
	a2 := testutil.CreatePost(t, db, alice, nil, clock())

	listing, author, err := s.Posts.PostsByAuthor(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, author.ID)
	posts, err := listing.Slice(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{a2.ID, a1.ID}, ids(posts))

	n, err := s.Posts.CountByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, _, err = s.Posts.PostsByAuthor(ctx, "nobody")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPostsByAuthorSet(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	c := testutil.CreateUser(t, db, "c")
	clock := testutil.Clock()

	pa := testutil.CreatePost(t, db, a, nil, clock())
	pb := testutil.CreatePost(t, db, b, nil, clock())
	testutil.CreatePost(t, db, c, nil, clock())

	posts, err := s.Posts.PostsByAuthorSet([]uint{a.ID, b.ID, a.ID}).Slice(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint{pb.ID, pa.ID}, ids(posts))

	empty := s.Posts.PostsByAuthorSet(nil)
	n, err := empty.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	head, err := empty.Until(5).Head(ctx)
	require.NoError(t, err)
	assert.Zero(t, head)
	none, err := empty.Slice(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPostLifecycle(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	group := testutil.CreateGroup(t, db, "go")

	post := &models.Post{UserID: alice.ID, Text: "hello", GroupID: &group.ID}
	require.NoError(t, s.Posts.Create(ctx, post))
	assert.NotZero(t, post.ID)
	assert.False(t, post.PubDate.IsZero())
	assert.Equal(t, "alice", post.User.Username)
	require.NotNil(t, post.Group)

	got, err := s.Posts.Get(ctx, "alice", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)

	_, err = s.Posts.Get(ctx, "bob", post.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.Posts.Get(ctx, "alice", post.ID+100)
	assert.ErrorIs(t, err, models.ErrNotFound)

	pubDate := got.PubDate
	got.Text = "edited"
	got.GroupID = nil
	require.NoError(t, s.Posts.Update(ctx, got))
	assert.Equal(t, "edited", got.Text)
	assert.Nil(t, got.Group)
	assert.True(t, pubDate.Equal(got.PubDate))

	comment := &models.Comment{PostID: post.ID, UserID: bob.ID, Text: "nice"}
	require.NoError(t, s.Comments.Create(ctx, comment))
	assert.Equal(t, "bob", comment.User.Username)

	require.NoError(t, s.Posts.Delete(ctx, post.ID))
	n, err := s.Comments.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.ErrorIs(t, s.Posts.Delete(ctx, post.ID), models.ErrNotFound)
}

func TestFollowGraph(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a")
	b := testutil.CreateUser(t, db, "b")
	c := testutil.CreateUser(t, db, "c")

	following, err := s.Follows.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)

	require.NoError(t, s.Follows.Follow(ctx, a.ID, b.ID))
	require.NoError(t, s.Follows.Follow(ctx, a.ID, b.ID))
	require.NoError(t, s.Follows.Follow(ctx, a.ID, c.ID))

	var edges int64
	require.NoError(t, db.Model(&models.Follow{}).Where("user_id = ? AND author_id = ?", a.ID, b.ID).Count(&edges).Error)
	assert.EqualValues(t, 1, edges)

	following, err = s.Follows.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)
	following, err = s.Follows.IsFollowing(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, following)

	followed, err := s.Follows.FollowedByUser(ctx, a.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{b.ID, c.ID}, followed)

	followers, err := s.Follows.FollowerCount(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, followers)
	followings, err := s.Follows.FollowingCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, followings)

	require.NoError(t, s.Follows.Unfollow(ctx, a.ID, b.ID))
	require.NoError(t, s.Follows.Unfollow(ctx, a.ID, b.ID))
	following, err = s.Follows.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowSelfIsForbidden(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	a := testutil.CreateUser(t, db, "a")

	err := s.Follows.Follow(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	n, err := s.Follows.FollowingCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGroupDeleteKeepsPosts(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	group := testutil.CreateGroup(t, db, "temp")
	post := testutil.CreatePost(t, db, alice, group, time.Now().UTC())

	updated, err := s.Groups.Update(ctx, "temp", "Temporary", "short lived")
	require.NoError(t, err)
	assert.Equal(t, "Temporary", updated.Title)
	assert.Equal(t, "temp", updated.Slug)

	require.NoError(t, s.Groups.Delete(ctx, "temp"))
	_, err = s.Groups.BySlug(ctx, "temp")
	assert.ErrorIs(t, err, models.ErrNotFound)

	got, err := s.Posts.Get(ctx, "alice", post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	assert.Nil(t, got.Group)

	assert.ErrorIs(t, s.Groups.Delete(ctx, "temp"), models.ErrNotFound)
}

func TestCommentsNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice, nil, time.Now().UTC())

	first := &models.Comment{PostID: post.ID, UserID: alice.ID, Text: "one"}
	second := &models.Comment{PostID: post.ID, UserID: alice.ID, Text: "two"}
	require.NoError(t, s.Comments.Create(ctx, first))
	require.NoError(t, s.Comments.Create(ctx, second))

	comments, err := s.Comments.ForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, second.ID, comments[0].ID)
	assert.Equal(t, "alice", comments[0].User.Username)

	require.NoError(t, s.Comments.Delete(ctx, first.ID))
	_, err = s.Comments.Get(ctx, first.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUsers(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()

	user := &models.User{Username: "carol", PasswordHash: "x"}
	require.NoError(t, s.Users.Create(ctx, user))

	byName, err := s.Users.ByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byID, err := s.Users.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", byID.Username)

	_, err = s.Users.ByUsername(ctx, "dave")
	assert.ErrorIs(t, err, models.ErrNotFound)

	n, err := s.Users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestGroups_Taken(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	ctx := context.Background()
	devops := testutil.CreateGroup(t, db, "devops")

	taken, err := s.Groups.Taken(ctx, "devops", "Anything", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.Groups.Taken(ctx, "other", devops.Title, 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = s.Groups.Taken(ctx, "", devops.Title, devops.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestPosts_Count(t *testing.T) {
	db := testutil.NewDB(t)
	s := New(db)
	alice := testutil.CreateUser(t, db, "alice")
	clock := testutil.Clock()
	testutil.CreatePost(t, db, alice, nil, clock())
	testutil.CreatePost(t, db, alice, nil, clock())

	n, err := s.Posts.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
