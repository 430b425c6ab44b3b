package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	storeKeyPrefix  = "store:"
	reconciledKey   = "reconciled:orders"
	DefaultCacheTTL = 30 * time.Second
)

// Replacing a collection and dropping the cached reconciliation happen in one
// step, so a reader never sees the new store next to a stale snapshot.
var saveCollectionScript = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1])
redis.call('DEL', KEYS[2])
return 1
`)

// RedisAdapter keeps each collection as one JSON array under
// <prefix>store:<name> and caches the reconciled list next to it.
type RedisAdapter struct {
	client   *redis.Client
	prefix   string
	cacheTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, prefix string, cacheTTL time.Duration) *RedisAdapter {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &RedisAdapter{client: client, prefix: prefix, cacheTTL: cacheTTL}
}

func (r *RedisAdapter) collectionKey(name string) string {
	return r.prefix + storeKeyPrefix + name
}

func (r *RedisAdapter) snapshotKey() string {
	return r.prefix + reconciledKey
}

func (r *RedisAdapter) LoadCollection(ctx context.Context, name string) ([]any, error) {
	data, err := r.client.Get(ctx, r.collectionKey(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return []any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCollection(name, data)
}

func (r *RedisAdapter) SaveCollection(ctx context.Context, name string, elems []any) error {
	data, err := encodeCollection(elems)
	if err != nil {
		return err
	}
	keys := []string{r.collectionKey(name), r.snapshotKey()}
	return saveCollectionScript.Run(ctx, r.client, keys, data).Err()
}

func (r *RedisAdapter) GetReconciled(ctx context.Context) (json.RawMessage, bool, error) {
	data, err := r.client.Get(ctx, r.snapshotKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(data), true, nil
}

func (r *RedisAdapter) SetReconciled(ctx context.Context, payload json.RawMessage) error {
	return r.client.Set(ctx, r.snapshotKey(), []byte(payload), r.cacheTTL).Err()
}

func (r *RedisAdapter) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, r.snapshotKey()).Err()
}
