// Package cache keeps track of article URLs that already became suggestions.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ContentPipeline/internal/config"
	"ContentPipeline/internal/ports"
)

// RedisSeenStore stores one key per published URL with a TTL.
type RedisSeenStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ ports.SeenStore = (*RedisSeenStore)(nil)

// NewRedisSeenStore creates a client and verifies the connection with a PING.
func NewRedisSeenStore(ctx context.Context, cfg config.DedupConfig) (*RedisSeenStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisSeenStoreFromClient(rdb, cfg.Redis.KeyPrefix, cfg.TTL), nil
}

// NewRedisSeenStoreFromClient wires an existing client.
func NewRedisSeenStoreFromClient(rdb redis.UniversalClient, prefix string, ttl time.Duration) *RedisSeenStore {
	return &RedisSeenStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Seen returns the subset of urls that were marked earlier.
func (s *RedisSeenStore) Seen(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return result, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(urls))
	for i, u := range urls {
		cmds[i] = pipe.Exists(ctx, s.key(u))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("check seen urls: %w", err)
	}

	for i, cmd := range cmds {
		if cmd.Val() > 0 {
			result[urls[i]] = true
		}
	}
	return result, nil
}

// MarkSeen records urls so later runs skip them.
func (s *RedisSeenStore) MarkSeen(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	pipe := s.rdb.Pipeline()
	for _, u := range urls {
		pipe.Set(ctx, s.key(u), now, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark seen urls: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (s *RedisSeenStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisSeenStore) key(url string) string {
	sum := sha1.Sum([]byte(url))
	return s.prefix + ":" + hex.EncodeToString(sum[:])
}
