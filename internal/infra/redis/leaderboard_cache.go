package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-attempt-service/internal/domain"
)

const leaderboardKey = "leaderboard:global"

// LeaderboardCache stores the computed leaderboard snapshot between
// refreshes. Aggregation walks every user's attempt history, so the cached
// snapshot serves the read-heavy leaderboard endpoint.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLeaderboardCache(client *redis.Client, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: ttl}
}

func (c *LeaderboardCache) Get(ctx context.Context) (domain.Leaderboard, bool) {
	raw, err := c.client.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		return domain.Leaderboard{}, false
	}
	var lb domain.Leaderboard
	if err := json.Unmarshal(raw, &lb); err != nil {
		return domain.Leaderboard{}, false
	}
	return lb, true
}

func (c *LeaderboardCache) Set(ctx context.Context, lb domain.Leaderboard) {
	data, err := json.Marshal(lb)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, leaderboardKey, data, c.ttl).Err()
}

func (c *LeaderboardCache) Invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, leaderboardKey).Err()
}
