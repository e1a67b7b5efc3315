package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrSessionNotFound covers both unknown order ids and sessions whose TTL
	// elapsed while the buyer sat in the payment widget.
	ErrSessionNotFound = errors.New("checkout session not found or expired")

	ErrIllegalTransition = errors.New("illegal checkout status transition")
)

// Store holds checkout sessions between order creation and verification.
type Store interface {
	Put(ctx context.Context, session *Session) error
	Get(ctx context.Context, orderID string) (*Session, error)
	Update(ctx context.Context, session *Session) error
}

// RedisStore keeps sessions in Redis under the gateway order id. The TTL set
// at Put time bounds how long an unpaid checkout stays open; expiry acts as
// the cancelled terminal state.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Put(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.OrderID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, orderID string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session failed: %w", err)
	}
	return &session, nil
}

// Update rewrites an existing session, keeping whatever TTL remains so a
// status change does not extend the payment window.
func (r *RedisStore) Update(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	ok, err := r.client.SetXX(ctx, sessionKey(session.OrderID), data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	if !ok {
		return ErrSessionNotFound
	}
	return nil
}

func sessionKey(orderID string) string {
	return fmt.Sprintf("checkout:%s", orderID)
}
