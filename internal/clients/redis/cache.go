package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

// CoverageCache stores derived compliance snapshots per obligation. It is a
// materialized view of recomputable state: writers refresh it after
// derivation and evidence writes invalidate it; readers fall back to a fresh
// computation on miss. Nothing here is authoritative.
type CoverageCache interface {
	Put(ctx context.Context, obligationID string, snapshot []byte, ttl time.Duration) error
	Get(ctx context.Context, obligationID string) ([]byte, bool, error)
	Invalidate(ctx context.Context, obligationID string) error
	Close() error
}

type coverageCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewCoverageCache(log *logger.Logger) (CoverageCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_COVERAGE_PREFIX"))
	if prefix == "" {
		prefix = "coverage"
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

	return &coverageCache{
		log:    log.With("client", "CoverageCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *coverageCache) key(obligationID string) string {
	return c.prefix + ":" + obligationID
}

func (c *coverageCache) Put(ctx context.Context, obligationID string, snapshot []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(obligationID), snapshot, ttl).Err()
}

func (c *coverageCache) Get(ctx context.Context, obligationID string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, c.key(obligationID)).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *coverageCache) Invalidate(ctx context.Context, obligationID string) error {
	return c.rdb.Del(ctx, c.key(obligationID)).Err()
}

func (c *coverageCache) Close() error {
	return c.rdb.Close()
}
