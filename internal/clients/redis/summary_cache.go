package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/raseedhq/raseed-backend/internal/logger"
)

// SummaryCache holds per-user warranty status counts so the reminder
// badge does not re-run the full pipeline on every poll. Writes to a
// user's slips invalidate that user's entry.
type SummaryCache interface {
	Get(ctx context.Context, userID uuid.UUID) (map[string]int, bool, error)
	Set(ctx context.Context, userID uuid.UUID, counts map[string]int) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
	Close() error
}

type summaryCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSummaryCache(log *logger.Logger) (SummaryCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
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

	return &summaryCache{
		log: log.With("service", "RedisSummaryCache"),
		rdb: rdb,
		ttl: 2 * time.Minute,
	}, nil
}

func summaryKey(userID uuid.UUID) string {
	return "warranty:summary:" + userID.String()
}

func (c *summaryCache) Get(ctx context.Context, userID uuid.UUID) (map[string]int, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, fmt.Errorf("summary cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, summaryKey(userID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var counts map[string]int
	if err := json.Unmarshal(raw, &counts); err != nil {
		// Stale or corrupt entry; treat as a miss.
		_ = c.rdb.Del(ctx, summaryKey(userID)).Err()
		return nil, false, nil
	}
	return counts, true, nil
}

func (c *summaryCache) Set(ctx context.Context, userID uuid.UUID, counts map[string]int) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("summary cache not initialized")
	}
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, summaryKey(userID), raw, c.ttl).Err()
}

func (c *summaryCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, summaryKey(userID)).Err()
}

func (c *summaryCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
