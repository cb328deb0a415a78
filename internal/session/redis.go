package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps the identity server side. The cookie only carries an
// opaque token which maps to the email in Redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, r *http.Request) (string, error) {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", ErrNoSession
	}

	email, err := s.client.Get(ctx, redisKeyPrefix+c.Value).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}

	return email, nil
}

func (s *RedisStore) Save(ctx context.Context, w http.ResponseWriter, email string) error {
	token := uuid.NewString()
	if err := s.client.Set(ctx, redisKeyPrefix+token, email, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}

	http.SetCookie(w, newCookie(token, s.ttl))
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, expiredCookie())

	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil
	}

	if err := s.client.Del(ctx, redisKeyPrefix+c.Value).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
