package redisad

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps an operator's bearer token under a per-profile key so
// several consoles on one host can share a login.
type TokenStore struct {
	c   *redis.Client
	key string
}

func NewTokenStore(c *redis.Client, profile string) *TokenStore {
	if profile == "" {
		profile = "default"
	}
	return &TokenStore{c: c, key: "yisu_token:" + profile}
}

func (t *TokenStore) Load(ctx context.Context) (string, error) {
	v, err := t.c.Get(ctx, t.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

// Save stores the token without expiry; Session ignores tokens past their exp claim.
func (t *TokenStore) Save(ctx context.Context, token string) error {
	return t.c.Set(ctx, t.key, token, 0).Err()
}

func (t *TokenStore) Clear(ctx context.Context) error {
	return t.c.Del(ctx, t.key).Err()
}
