package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalFeedPaginates(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	author := env.user(t, "alice")
	for i := 0; i < 13; i++ {
		env.post(t, author.ID, fmt.Sprintf("post %d", i), nil)
	}

	p1, err := env.feeds.Global(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, p1.Posts, 10)
	assert.True(t, p1.Page.HasNext())

	p2, err := env.feeds.Global(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, p2.Posts, 3)
	assert.False(t, p2.Page.HasNext())
	assert.True(t, p2.Page.HasPrev())

	// Out-of-range requests clamp instead of failing.
	p99, err := env.feeds.Global(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, p99.Page.Number)
	assert.Len(t, p99.Posts, 3)
}

func TestGlobalFeedOrderingAcrossPages(t *testing.T) {
	env := newTestEnv(t, 5)
	ctx := context.Background()
	author := env.user(t, "alice")
	for i := 0; i < 12; i++ {
		env.post(t, author.ID, fmt.Sprintf("post %d", i), nil)
	}

	var seen []uint
	for page := 1; page <= 3; page++ {
		fp, err := env.feeds.Global(ctx, page)
		require.NoError(t, err)
		for _, p := range fp.Posts {
			seen = append(seen, p.ID)
		}
	}
	require.Len(t, seen, 12)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i-1], seen[i], "feed must stay strictly descending across pages")
	}
}

func TestGroupFeedFiltersAndFailsOnUnknownSlug(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	author := env.user(t, "alice")
	g := env.group(t, "Go", "go")
	env.post(t, author.ID, "in group", &g.ID)
	env.post(t, author.ID, "no group", nil)

	feed, err := env.feeds.Group(ctx, "go", 1)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "in group", feed.Posts[0].Text)
	assert.Equal(t, "Go", feed.Group.Title)

	_, err = env.feeds.Group(ctx, "nope", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileFeedStatsAndNotFound(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	env.post(t, alice.ID, "by alice", nil)
	env.post(t, bob.ID, "by bob", nil)
	require.NoError(t, env.relations.Follow(ctx, bob.ID, "alice"))

	profile, err := env.feeds.Profile(ctx, "alice", bob.ID, 1)
	require.NoError(t, err)
	require.Len(t, profile.Posts, 1)
	assert.Equal(t, "by alice", profile.Posts[0].Text)
	assert.EqualValues(t, 1, profile.PostCount)
	assert.EqualValues(t, 1, profile.FollowerCount)
	assert.EqualValues(t, 0, profile.FollowingCount)
	assert.True(t, profile.Following)

	// Anonymous viewers never see a Following flag.
	anon, err := env.feeds.Profile(ctx, "alice", 0, 1)
	require.NoError(t, err)
	assert.False(t, anon.Following)

	_, err = env.feeds.Profile(ctx, "ghost", 0, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFollowFeedVisibilityTracksEdges(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	viewer := env.user(t, "viewer")
	author := env.user(t, "author")
	stranger := env.user(t, "stranger")
	env.post(t, author.ID, "followed post", nil)
	env.post(t, stranger.ID, "stranger post", nil)

	feed, err := env.feeds.Followed(ctx, viewer.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)

	require.NoError(t, env.relations.Follow(ctx, viewer.ID, "author"))
	feed, err = env.feeds.Followed(ctx, viewer.ID, 1)
	require.NoError(t, err)
	require.Len(t, feed.Posts, 1)
	assert.Equal(t, "followed post", feed.Posts[0].Text)

	require.NoError(t, env.relations.Unfollow(ctx, viewer.ID, "author"))
	feed, err = env.feeds.Followed(ctx, viewer.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, feed.Posts)
}

func TestSinglePostFoundRedirectNotFound(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	p := env.post(t, alice.ID, "hello", nil)
	_, err := env.comments.Add(ctx, bob.ID, p.ID, "hi alice")
	require.NoError(t, err)

	res, err := env.feeds.SinglePost(ctx, p.ID, "alice")
	require.NoError(t, err)
	require.NotNil(t, res.Post)
	assert.Empty(t, res.RedirectUsername)
	assert.Equal(t, "hello", res.Post.Post.Text)
	require.Len(t, res.Post.Comments, 1)
	assert.Equal(t, "bob", res.Post.Comments[0].Author.Username)

	// Wrong username segment: not an error, a canonicalization redirect.
	res, err = env.feeds.SinglePost(ctx, p.ID, "bob")
	require.NoError(t, err)
	assert.Nil(t, res.Post)
	assert.Equal(t, "alice", res.RedirectUsername)

	_, err = env.feeds.SinglePost(ctx, 9999, "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}
