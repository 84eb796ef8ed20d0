// services/leaderboard.go
package services

import (
	"context"
	"fmt"
	"strconv"

	"coinquest/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Leaderboard keeps each user's best score per game.
type Leaderboard interface {
	Submit(ctx context.Context, game string, userID uint, score int64) error
	Top(ctx context.Context, game string, n int) ([]LeaderboardEntry, error)
}

type LeaderboardEntry struct {
	Rank   int   `json:"rank"`
	UserID uint  `json:"user_id"`
	Score  int64 `json:"score"`
}

const keyLeaderboardPrefix = "leaderboard:" // ZSET leaderboard:{game} member=user id

// RedisLeaderboard mirrors best scores into sorted sets.
type RedisLeaderboard struct {
	RDB *redis.Client
}

func NewRedisLeaderboard(rdb *redis.Client) *RedisLeaderboard {
	return &RedisLeaderboard{RDB: rdb}
}

func (l *RedisLeaderboard) Submit(ctx context.Context, game string, userID uint, score int64) error {
	// GT: only replace a member's score when the new one is higher.
	return l.RDB.ZAddGT(ctx, keyLeaderboardPrefix+game, redis.Z{
		Score:  float64(score),
		Member: strconv.FormatUint(uint64(userID), 10),
	}).Err()
}

func (l *RedisLeaderboard) Top(ctx context.Context, game string, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	zs, err := l.RDB.ZRevRangeWithScores(ctx, keyLeaderboardPrefix+game, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt leaderboard member %q: %w", member, err)
		}
		out = append(out, LeaderboardEntry{Rank: i + 1, UserID: uint(id), Score: int64(z.Score)})
	}
	return out, nil
}

// SQLLeaderboard answers from game_scores directly. Submit is a no-op since
// the score row is already the source of truth.
type SQLLeaderboard struct {
	DB *gorm.DB
}

func NewSQLLeaderboard(db *gorm.DB) *SQLLeaderboard {
	return &SQLLeaderboard{DB: db}
}

func (l *SQLLeaderboard) Submit(context.Context, string, uint, int64) error { return nil }

func (l *SQLLeaderboard) Top(ctx context.Context, game string, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	var rows []struct {
		UserID uint
		Best   int64
	}
	err := l.DB.WithContext(ctx).Model(&models.GameScore{}).
		Select("user_id, MAX(score) AS best").
		Where("game_name = ?", game).
		Group("user_id").
		Order("best DESC").Order("user_id ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		out = append(out, LeaderboardEntry{Rank: i + 1, UserID: r.UserID, Score: r.Best})
	}
	return out, nil
}
