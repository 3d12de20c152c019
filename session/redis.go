package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the guard engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// RedisBinding stores the current-user and captcha slots in Redis, one key
// per slot per session.
type RedisBinding struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisBinding creates a binding under the given key prefix. A zero ttl
// leaves slot keys without expiry; otherwise every slot write refreshes it.
func NewRedisBinding(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisBinding {
	if prefix == "" {
		prefix = "gg"
	}
	return &RedisBinding{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (b *RedisBinding) userKey(sessionID string) string {
	return b.prefix + ":u:" + sessionID
}

func (b *RedisBinding) captchaKey(sessionID string) string {
	return b.prefix + ":c:" + sessionID
}

// CurrentUserID returns the authenticated user ID for the session, or the
// empty string for an anonymous session.
func (b *RedisBinding) CurrentUserID(ctx context.Context, sessionID string) (string, error) {
	val, err := b.redis.Get(ctx, b.userKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, nil
}

func (b *RedisBinding) SetCurrentUserID(ctx context.Context, sessionID, userID string) error {
	if err := b.redis.Set(ctx, b.userKey(sessionID), userID, b.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// ClearCurrentUserID is idempotent; clearing an anonymous session is not an
// error.
func (b *RedisBinding) ClearCurrentUserID(ctx context.Context, sessionID string) error {
	if err := b.redis.Del(ctx, b.userKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// SetCaptchaAnswer replaces any pending challenge answer for the session.
func (b *RedisBinding) SetCaptchaAnswer(ctx context.Context, sessionID, answer string) error {
	if err := b.redis.Set(ctx, b.captchaKey(sessionID), answer, b.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// TakeCaptchaAnswer reads and clears the pending answer in one atomic
// GETDEL, so at most one caller per challenge observes it.
func (b *RedisBinding) TakeCaptchaAnswer(ctx context.Context, sessionID string) (string, bool, error) {
	val, err := b.redis.GetDel(ctx, b.captchaKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return val, true, nil
}
