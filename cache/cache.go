// Package cache implements an optional Redis-backed sample cache.
//
// Sample values are immutable once recorded, so cached entries never go
// stale; the TTL only bounds memory on the Redis side. A cache failure is
// never fatal to a fetch: callers treat errors as misses and fall through
// to the server.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultTTL is the default cache entry lifetime.
const DefaultTTL = time.Hour

// DefaultTimeout is the default per-operation timeout.
const DefaultTimeout = 2 * time.Second

// Config configures the sample cache.
type Config struct {
	// URL is the Redis connection URL (required).
	// Format: redis://[:password@]host:port[/db]
	URL string
	// TTL is the cache entry lifetime (default 1h).
	TTL time.Duration
	// Timeout is the per-operation timeout (default 2s).
	Timeout time.Duration
}

// SampleCache caches sample values keyed by (subject, seconds, series).
type SampleCache struct {
	config Config
	client *goredis.Client
}

// New creates a sample cache from the given config.
// Returns an error if the URL is empty or invalid.
func New(cfg Config) (*SampleCache, error) {
	if cfg.URL == "" {
		return nil, errors.New("sample cache requires a URL")
	}

	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("sample cache: invalid URL: %w", err)
	}

	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &SampleCache{
		config: cfg,
		client: goredis.NewClient(opts),
	}, nil
}

// Key returns the Redis key for one sample coordinate.
func Key(subject int32, seconds float64, series int32) string {
	return fmt.Sprintf("fifolink:sample:%d:%s:%d",
		subject, strconv.FormatFloat(seconds, 'g', -1, 64), series)
}

// Get looks up a cached sample value. The second return is false on a
// miss. Errors are returned for caller logging but should be treated as
// misses.
func (c *SampleCache) Get(ctx context.Context, subject int32, seconds float64, series int32) (float64, bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	raw, err := c.client.Get(opCtx, Key(subject, seconds, series)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("sample cache: get: %w", err)
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// A corrupt entry behaves like a miss; the next Put repairs it.
		return 0, false, fmt.Errorf("sample cache: corrupt entry %q: %w", raw, err)
	}
	return value, true, nil
}

// Put stores a sample value under its coordinate key.
func (c *SampleCache) Put(ctx context.Context, subject int32, seconds float64, series int32, value float64) error {
	opCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	raw := strconv.FormatFloat(value, 'g', -1, 64)
	if err := c.client.Set(opCtx, Key(subject, seconds, series), raw, c.config.TTL).Err(); err != nil {
		return fmt.Errorf("sample cache: put: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *SampleCache) Close() error {
	return c.client.Close()
}
