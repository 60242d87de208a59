package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/velora-shop/velora-backend/pkg/redis"
)

// SessionStore persists the product→quantity map for one visitor
// session. Put replaces the whole map in a single write; there is no
// partial-update path.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (map[int64]int, bool, error)
	Put(ctx context.Context, sessionID string, lines map[int64]int) error
	Forget(ctx context.Context, sessionID string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a SessionStore backed by the shared Redis client.
// The TTL slides on every write so active carts outlive the session
// cookie refresh cycle.
func NewRedisStore(client *redis.Client, ttl time.Duration) (SessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("positive ttl required")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func (s *redisStore) Get(ctx context.Context, sessionID string) (map[int64]int, bool, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(sessionID))
	if err != nil {
		if redis.IsAbsent(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read cart: %w", err)
	}

	// JSON object keys are strings; product ids are re-parsed on read.
	var encoded map[string]int
	if err := json.Unmarshal([]byte(raw), &encoded); err != nil {
		return nil, false, fmt.Errorf("decode cart: %w", err)
	}

	lines := make(map[int64]int, len(encoded))
	for key, qty := range encoded {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("decode cart line id %q: %w", key, err)
		}
		lines[id] = qty
	}
	return lines, true, nil
}

func (s *redisStore) Put(ctx context.Context, sessionID string, lines map[int64]int) error {
	encoded := make(map[string]int, len(lines))
	for id, qty := range lines {
		encoded[strconv.FormatInt(id, 10)] = qty
	}
	payload, err := json.Marshal(encoded)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(sessionID), string(payload), s.ttl); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}

func (s *redisStore) Forget(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.client.CartKey(sessionID)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}
