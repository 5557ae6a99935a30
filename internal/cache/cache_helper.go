package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache errors
var (
	ErrCacheNotAvailable = errors.New("cache not available")
	ErrCacheNotFound     = errors.New("cache not found")
)

// CacheHelper wraps a Redis client with a key prefix and JSON encoding
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{
		client: client,
		prefix: prefix,
	}
}

// CacheConfig defines cache configuration for different data types
type CacheConfig struct {
	TTL    time.Duration
	Prefix string
}

var (
	// Exam with its ordered questions; invalidated on every exam or question write
	ExamCacheConfig = CacheConfig{
		TTL:    5 * time.Minute,
		Prefix: "exam:",
	}

	// Dashboard aggregates
	StatsCacheConfig = CacheConfig{
		TTL:    1 * time.Minute,
		Prefix: "stats:",
	}

	// Existence checks
	ExistsCacheConfig = CacheConfig{
		TTL:    2 * time.Minute,
		Prefix: "exists:",
	}
)

// Available reports whether a Redis client is configured
func (c *CacheHelper) Available() bool {
	return c.client != nil
}

// Key returns the full Redis key for key
func (c *CacheHelper) Key(key string) string {
	return c.prefix + key
}

// Get retrieves and unmarshals data from cache
func (c *CacheHelper) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrCacheNotAvailable
	}

	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheNotFound
		}
		return fmt.Errorf("cache get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("cache unmarshal error: %w", err)
	}

	return nil
}

// Set marshals and stores data in cache. Without a client it is a no-op.
func (c *CacheHelper) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}

	return c.client.Set(ctx, c.Key(key), data, ttl).Err()
}

// Delete removes keys from cache
func (c *CacheHelper) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}

	cacheKeys := make([]string, len(keys))
	for i, key := range keys {
		cacheKeys[i] = c.Key(key)
	}

	return c.client.Del(ctx, cacheKeys...).Err()
}

// Exists checks if a key exists in cache
func (c *CacheHelper) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, ErrCacheNotAvailable
	}

	count, err := c.client.Exists(ctx, c.Key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return count > 0, nil
}

// InvalidatePattern removes all keys matching a pattern using SCAN
func (c *CacheHelper) InvalidatePattern(ctx context.Context, pattern string) error {
	if c.client == nil {
		return nil
	}

	fullPattern := c.Key(pattern)
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, fullPattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan pattern error: %w", err)
		}
		keys = append(keys, scanKeys...)
		if cursor == 0 {
			break
		}
	}

	if len(keys) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	const batchSize = 100
	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		pipe.Del(ctx, keys[i:end]...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache pipeline delete error: %w", err)
	}

	return nil
}

// CacheOrExecute implements cache-aside: a hit decodes into dest, a miss runs fetch,
// stores the result and decodes it into dest. Cache failures never fail the call.
func (c *CacheHelper) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheNotFound) && !errors.Is(err, ErrCacheNotAvailable) {
		slog.WarnContext(ctx, "Cache get error, proceeding to fetch", "error", err, "key", key)
	}

	value, err := fetch()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal result error: %w", err)
	}

	if c.client != nil {
		setCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := c.client.Set(setCtx, c.Key(key), data, ttl).Err(); err != nil {
			slog.WarnContext(ctx, "Cache set error", "error", err, "key", key)
		}
		cancel()
	}

	return json.Unmarshal(data, dest)
}

// CacheManager groups the cache helpers used by the repositories
type CacheManager struct {
	Exam   *CacheHelper
	Stats  *CacheHelper
	Exists *CacheHelper

	client *redis.Client
	queue  *invalidationQueue
}

// invalidationQueue holds invalidations issued inside a database transaction
type invalidationQueue struct {
	mu  sync.Mutex
	ops []func(context.Context)
}

// NewCacheManager creates a cache manager; a nil client yields a manager that never caches
func NewCacheManager(client *redis.Client) *CacheManager {
	return &CacheManager{
		Exam:   NewCacheHelper(client, ExamCacheConfig.Prefix),
		Stats:  NewCacheHelper(client, StatsCacheConfig.Prefix),
		Exists: NewCacheHelper(client, ExistsCacheConfig.Prefix),
		client: client,
	}
}

// Deferred returns a manager sharing cm's helpers whose invalidations are queued
// until Flush. Repositories bound to a transaction use it so cached entries are
// only dropped once the transaction has committed.
func (cm *CacheManager) Deferred() *CacheManager {
	if cm.queue != nil {
		return cm
	}
	deferred := *cm
	deferred.queue = &invalidationQueue{}
	return &deferred
}

// Flush runs the queued invalidations. On a manager that is not deferred it does nothing.
func (cm *CacheManager) Flush(ctx context.Context) {
	if cm.queue == nil {
		return
	}
	cm.queue.mu.Lock()
	ops := cm.queue.ops
	cm.queue.ops = nil
	cm.queue.mu.Unlock()

	for _, op := range ops {
		op(ctx)
	}
}

// RunDeferred calls fn with a deferred manager and flushes the queued invalidations
// once fn returns nil. When fn fails they are dropped. Inside an enclosing deferred
// run the queue is left for the outermost caller to flush.
func (cm *CacheManager) RunDeferred(ctx context.Context, fn func(*CacheManager) error) error {
	deferred := cm.Deferred()
	if err := fn(deferred); err != nil {
		if deferred != cm {
			deferred.discard()
		}
		return err
	}
	if deferred != cm {
		deferred.Flush(ctx)
	}
	return nil
}

func (cm *CacheManager) discard() {
	cm.queue.mu.Lock()
	cm.queue.ops = nil
	cm.queue.mu.Unlock()
}

// Pending returns the number of queued invalidations
func (cm *CacheManager) Pending() int {
	if cm.queue == nil {
		return 0
	}
	cm.queue.mu.Lock()
	defer cm.queue.mu.Unlock()
	return len(cm.queue.ops)
}

func (cm *CacheManager) invalidate(ctx context.Context, op func(context.Context)) {
	if cm.queue == nil {
		op(ctx)
		return
	}
	cm.queue.mu.Lock()
	cm.queue.ops = append(cm.queue.ops, op)
	cm.queue.mu.Unlock()
}

// HealthCheck verifies cache connectivity
func (cm *CacheManager) HealthCheck(ctx context.Context) error {
	if cm.client == nil {
		return ErrCacheNotAvailable
	}

	if err := cm.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

// KeyCounts returns the number of keys stored under each prefix
func (cm *CacheManager) KeyCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	if cm.client == nil {
		return counts, ErrCacheNotAvailable
	}

	for _, prefix := range []string{ExamCacheConfig.Prefix, StatsCacheConfig.Prefix, ExistsCacheConfig.Prefix} {
		var cursor uint64
		total := 0
		for {
			keys, next, err := cm.client.Scan(ctx, cursor, prefix+"*", 100).Result()
			if err != nil {
				return counts, fmt.Errorf("cache scan error: %w", err)
			}
			total += len(keys)
			cursor = next
			if cursor == 0 {
				break
			}
		}
		counts[prefix] = total
	}

	return counts, nil
}
