package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"weddingbudget/internal/budget"
)

// RedisStore keeps undo slots in Redis as JSON so every API instance sees
// the same slot.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore returns a RedisStore whose slots expire after ttl.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "weddingbudget:undo:", ttl: ttl}
}

func (r *RedisStore) Put(ctx context.Context, key string, rec budget.UndoRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode undo record: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put undo record: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (*budget.UndoRecord, error) {
	return decode(r.client.Get(ctx, r.prefix+key).Bytes())
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("clear undo record: %w", err)
	}
	return nil
}

func decode(raw []byte, err error) (*budget.UndoRecord, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read undo record: %w", err)
	}
	var rec budget.UndoRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode undo record: %w", err)
	}
	return &rec, nil
}
