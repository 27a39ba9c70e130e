package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowTwiceLeavesOneEdge(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	u := env.user(t, "u")
	env.user(t, "a")

	require.NoError(t, env.relations.Follow(ctx, u.ID, "a"))
	require.NoError(t, env.relations.Follow(ctx, u.ID, "a"))
	assert.EqualValues(t, 1, env.followEdgeCount(t))
}

func TestSelfFollowIsSilentlyIgnored(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	u := env.user(t, "u")

	require.NoError(t, env.relations.Follow(ctx, u.ID, "u"))
	assert.EqualValues(t, 0, env.followEdgeCount(t))
}

func TestFollowUnknownTargetFails(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	u := env.user(t, "u")

	assert.ErrorIs(t, env.relations.Follow(ctx, u.ID, "ghost"), ErrNotFound)
	assert.ErrorIs(t, env.relations.Unfollow(ctx, u.ID, "ghost"), ErrNotFound)
}

func TestUnfollowIsIdempotent(t *testing.T) {
	env := newTestEnv(t, 10)
	ctx := context.Background()
	u := env.user(t, "u")
	env.user(t, "a")

	require.NoError(t, env.relations.Follow(ctx, u.ID, "a"))
	require.NoError(t, env.relations.Unfollow(ctx, u.ID, "a"))
	require.NoError(t, env.relations.Unfollow(ctx, u.ID, "a"))
	assert.EqualValues(t, 0, env.followEdgeCount(t))
}
