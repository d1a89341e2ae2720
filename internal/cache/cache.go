// Package cache keeps finished analyses in Redis so a replayed request ID
// returns the stored result instead of launching a second run.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/SayantanXBTC/AnalysisPlatform/internal/models"
)

const keyPrefix = "analysis:result:"

// ResultCache stores completed analyses keyed by request ID.
type ResultCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewResultCache wraps an existing client. TTL at or below zero means
// entries never expire.
func NewResultCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *ResultCache {
	return &ResultCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, addr string, ttl time.Duration, logger *zap.Logger) (*ResultCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewResultCache(rdb, ttl, logger), nil
}

// Close releases the client.
func (c *ResultCache) Close() error { return c.rdb.Close() }

// Ping reports connection health for readiness checks.
func (c *ResultCache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

// Put stores the finished analysis under its request ID.
func (c *ResultCache) Put(ctx context.Context, res models.AnalysisResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal analysis %s: %w", res.RequestID, err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+res.RequestID, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache analysis %s: %w", res.RequestID, err)
	}
	return nil
}

// Get returns the cached analysis, or found=false on a miss. A corrupt
// entry is dropped and treated as a miss.
func (c *ResultCache) Get(ctx context.Context, requestID string) (*models.AnalysisResult, bool, error) {
	raw, err := c.rdb.Get(ctx, keyPrefix+requestID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read cached analysis %s: %w", requestID, err)
	}

	var res models.AnalysisResult
	if err := json.Unmarshal(raw, &res); err != nil {
		c.logger.Warn("dropping corrupt cached analysis",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.rdb.Del(ctx, keyPrefix+requestID)
		return nil, false, nil
	}
	return &res, true, nil
}
