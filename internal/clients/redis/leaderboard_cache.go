package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/reviseapp/revise-backend/internal/logger"
	"github.com/reviseapp/revise-backend/internal/types"
)

// LeaderboardCache is a read-through cache for persisted leaderboard
// snapshots. A miss or any redis error degrades to the database read; the
// cache is never authoritative.
type LeaderboardCache interface {
	Get(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, bool)
	Set(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow, rows []*types.LeaderboardEntry)
	Invalidate(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow)
	Close() error
}

type leaderboardCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewLeaderboardCache(log *logger.Logger) (LeaderboardCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	ttl := 5 * time.Minute
	if raw := strings.TrimSpace(os.Getenv("LEADERBOARD_CACHE_TTL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &leaderboardCache{
		log: log.With("service", "LeaderboardCache"),
		rdb: rdb,
		ttl: ttl,
	}, nil
}

func cacheKey(scope types.Scope, scopeID string, window types.TimeWindow) string {
	return fmt.Sprintf("leaderboard:%s:%s:%s", scope, scopeID, window)
}

func (c *leaderboardCache) Get(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) ([]*types.LeaderboardEntry, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(scope, scopeID, window)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Debug("leaderboard cache read failed", "error", err)
		}
		return nil, false
	}
	var rows []*types.LeaderboardEntry
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.log.Warn("leaderboard cache entry corrupt, dropping", "error", err)
		c.Invalidate(ctx, scope, scopeID, window)
		return nil, false
	}
	return rows, true
}

func (c *leaderboardCache) Set(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow, rows []*types.LeaderboardEntry) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		c.log.Warn("leaderboard cache marshal failed", "error", err)
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(scope, scopeID, window), raw, c.ttl).Err(); err != nil {
		c.log.Debug("leaderboard cache write failed", "error", err)
	}
}

func (c *leaderboardCache) Invalidate(ctx context.Context, scope types.Scope, scopeID string, window types.TimeWindow) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(scope, scopeID, window)).Err(); err != nil {
		c.log.Debug("leaderboard cache invalidate failed", "error", err)
	}
}

func (c *leaderboardCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
