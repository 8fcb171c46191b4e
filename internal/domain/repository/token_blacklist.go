package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records revoked token ids until their natural expiry.
// A revoked jti must never authenticate again.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisTokenBlacklist struct {
	rdb *redis.Client
}

func NewRedisTokenBlacklist(rdb *redis.Client) TokenBlacklist {
	return &redisTokenBlacklist{rdb: rdb}
}

func blacklistKey(jti string) string {
	return "blacklist:" + jti
}

func (b *redisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		// Token already past its exp; verification rejects it anyway.
		return nil
	}
	value := strconv.FormatInt(time.Now().UTC().Add(ttl).Unix(), 10)
	if err := b.rdb.Set(ctx, blacklistKey(jti), value, ttl).Err(); err != nil {
		return fmt.Errorf("redisTokenBlacklist.Revoke: %w", err)
	}
	return nil
}

func (b *redisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redisTokenBlacklist.IsRevoked: %w", err)
	}
	return n > 0, nil
}
