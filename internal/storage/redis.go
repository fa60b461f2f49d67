package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statusTTL = 24 * time.Hour

// RedisStore handles the batch status cache and the render-result
// cache.
type RedisStore struct {
	client    *redis.Client
	renderTTL time.Duration
}

func NewRedisStore(addr string, renderTTL time.Duration) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb, renderTTL: renderTTL}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// SetBatchStatus mirrors a batch's status for cheap lookups.
func (s *RedisStore) SetBatchStatus(ctx context.Context, batchID, status string) error {
	key := fmt.Sprintf("batch:%s:status", batchID)
	return s.client.Set(ctx, key, status, statusTTL).Err()
}

// BatchStatus returns the cached status, or "" when not cached.
func (s *RedisStore) BatchStatus(ctx context.Context, batchID string) (string, error) {
	key := fmt.Sprintf("batch:%s:status", batchID)
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// CachedRender returns the emails previously extracted by a render of
// this URL, if still cached.
func (s *RedisStore) CachedRender(ctx context.Context, pageURL string) ([]string, bool) {
	val, err := s.client.Get(ctx, renderKey(pageURL)).Result()
	if err != nil {
		return nil, false
	}
	var emails []string
	if err := json.Unmarshal([]byte(val), &emails); err != nil {
		return nil, false
	}
	return emails, true
}

// StoreRender caches a render result with the configured TTL. Best
// effort; errors are dropped.
func (s *RedisStore) StoreRender(ctx context.Context, pageURL string, emails []string) {
	if emails == nil {
		emails = []string{}
	}
	payload, err := json.Marshal(emails)
	if err != nil {
		return
	}
	s.client.Set(ctx, renderKey(pageURL), payload, s.renderTTL)
}

// renderKey hashes the URL so arbitrary page URLs make safe keys.
func renderKey(pageURL string) string {
	h := sha256.Sum256([]byte(pageURL))
	return "render:" + hex.EncodeToString(h[:])
}
