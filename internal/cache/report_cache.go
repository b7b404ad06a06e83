package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/expense-tracker/pkg/helpers"
)

// ReportCache stores rendered report payloads per user. Every entry key embeds
// the user's current version; bumping the version orphans all older entries,
// which then age out through their TTL.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewReportCache returns nil when caching is disabled (nil client or ttl <= 0).
// A nil *ReportCache is a valid no-op cache.
func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func versionKey(userID string) string { return "report:ver:" + userID }

func (c *ReportCache) version(ctx context.Context, userID string) (int64, error) {
	v, err := c.rdb.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *ReportCache) entryKey(ctx context.Context, userID, key string) (string, error) {
	v, err := c.version(ctx, userID)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum([]byte(key))
	return fmt.Sprintf("report:%s:v%d:%s", userID, v, hex.EncodeToString(sum[:])), nil
}

// Get loads the entry for key into dest. It reports false on a miss.
func (c *ReportCache) Get(ctx context.Context, userID, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	k, err := c.entryKey(ctx, userID, key)
	if err != nil {
		return false, err
	}
	var raw json.RawMessage
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, k, &raw)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *ReportCache) Set(ctx context.Context, userID, key string, value any) error {
	if c == nil {
		return nil
	}
	k, err := c.entryKey(ctx, userID, key)
	if err != nil {
		return err
	}
	return helpers.RedisSetJSON(ctx, c.rdb, k, value, c.ttl)
}

// Invalidate drops every cached report of userID.
func (c *ReportCache) Invalidate(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Incr(ctx, versionKey(userID)).Err()
}
