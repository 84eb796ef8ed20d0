package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLeaderboardKeepsBest(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	board := NewRedisLeaderboard(rdb)
	ctx := context.Background()

	require.NoError(t, board.Submit(ctx, "quick-click", 1, 40))
	require.NoError(t, board.Submit(ctx, "quick-click", 1, 10)) // lower, ignored
	require.NoError(t, board.Submit(ctx, "quick-click", 2, 55))
	require.NoError(t, board.Submit(ctx, "quick-click", 3, 20))
	require.NoError(t, board.Submit(ctx, "memory-match", 3, 99))

	top, err := board.Top(ctx, "quick-click", 2)
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardEntry{
		{Rank: 1, UserID: 2, Score: 55},
		{Rank: 2, UserID: 1, Score: 40},
	}, top)

	empty, err := board.Top(ctx, "unknown", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLLeaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	for _, s := range []struct {
		who   Identity
		score int64
	}{{alice, 30}, {alice, 70}, {bob, 50}, {bob, 70}} {
		_, err := f.ledger.RecordGameScore(ctx, s.who, "guess-number", s.score, time.Time{})
		require.NoError(t, err)
	}

	top, err := f.ledger.Board.Top(ctx, "guess-number", 10)
	require.NoError(t, err)
	assert.Equal(t, []LeaderboardEntry{
		{Rank: 1, UserID: alice.UserID, Score: 70},
		{Rank: 2, UserID: bob.UserID, Score: 70},
	}, top)
}

func TestLeaderboardFailureDoesNotFailScore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture(t)
	f.ledger.Board = NewRedisLeaderboard(rdb)
	alice := f.register(t, "alice")
	mr.Close()

	row, err := f.ledger.RecordGameScore(context.Background(), alice, "quick-click", 5, time.Time{})
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
}
