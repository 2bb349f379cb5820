package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/truckledger/service-logistics/internal/domain/session"
	"github.com/truckledger/service-logistics/internal/platform/apperror"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps sessions as JSON values that expire with the session.
type RedisSessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisSessionStore creates a session store on rdb.
func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, now: time.Now}
}

// Save stores s until its expiry.
func (s *RedisSessionStore) Save(ctx context.Context, sess *session.Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return apperror.NewValidationError("session is already expired")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sess.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Find resolves a token. Unknown and expired tokens are NotFound.
func (s *RedisSessionStore) Find(ctx context.Context, token string) (*session.Session, error) {
	data, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperror.NewNotFoundError("Session", "token")
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, apperror.NewNotFoundError("Session", "token")
	}
	return &sess, nil
}

// Delete removes a session. Deleting an unknown token is not an error.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
