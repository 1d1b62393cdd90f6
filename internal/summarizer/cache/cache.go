// Package cache memoises summaries in Redis. Identical concurrent requests
// are collapsed with singleflight so the pipeline runs once per key.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kauebrandao/textsummarizer/internal/summarizer"
	pkgredis "github.com/kauebrandao/textsummarizer/pkg/redis"
)

const keyPrefix = "summary:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
	Count(ctx context.Context, pattern string) (int64, error)
}

// SummaryCache caches engine results by text, sentence count and engine
// settings.
type SummaryCache struct {
	store     Store
	ttl       time.Duration
	namespace string
	group     singleflight.Group
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// New creates a cache. namespace distinguishes engine settings that change
// results (see Namespace); entries from other settings are never returned.
func New(store Store, ttl time.Duration, namespace string) *SummaryCache {
	return &SummaryCache{
		store:     store,
		ttl:       ttl,
		namespace: namespace,
		logger:    slog.Default().With("component", "summary-cache"),
	}
}

// Namespace fingerprints the settings that influence a result: annotator,
// keyword count and theme weights.
func Namespace(annotatorName string, keywordCount int, themes map[string]int) string {
	names := make([]string, 0, len(themes))
	for t := range themes {
		names = append(names, t)
	}
	sort.Strings(names)
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d", annotatorName, keywordCount)
	for _, t := range names {
		fmt.Fprintf(h, "|%s=%d", t, themes[t])
	}
	return hex.EncodeToString(h.Sum(nil)[:6])
}

// Get returns a cached result. Store errors count as misses.
func (c *SummaryCache) Get(ctx context.Context, text string, k int) (*summarizer.Result, bool) {
	key := c.buildKey(text, k)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result summarizer.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

// Set stores result. Failures are logged and otherwise ignored.
func (c *SummaryCache) Set(ctx context.Context, text string, k int, result *summarizer.Result) {
	key := c.buildKey(text, k)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or runs compute once for all
// concurrent callers with the same key. The boolean reports a cache hit.
// The shared compute runs detached from any single caller's cancellation;
// each caller stops waiting when its own ctx is done.
func (c *SummaryCache) GetOrCompute(
	ctx context.Context,
	text string,
	k int,
	compute func(ctx context.Context) (*summarizer.Result, error),
) (*summarizer.Result, bool, error) {
	if result, ok := c.Get(ctx, text, k); ok {
		return result, true, nil
	}
	key := c.buildKey(text, k)
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		result, err := compute(shared)
		if err != nil {
			return nil, err
		}
		c.Set(shared, text, k, result)
		return result, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*summarizer.Result), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Invalidate removes every cached summary regardless of namespace.
func (c *SummaryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

// Stats returns hit and miss counters since start.
func (c *SummaryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Entries counts the keys of the current namespace.
func (c *SummaryCache) Entries(ctx context.Context) (int64, error) {
	return c.store.Count(ctx, keyPrefix+c.namespace+":*")
}

func (c *SummaryCache) buildKey(text string, k int) string {
	h := sha256.New()
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(k))
	h.Write(n[:])
	h.Write([]byte(text))
	return fmt.Sprintf("%s%s:%x", keyPrefix, c.namespace, h.Sum(nil)[:16])
}
