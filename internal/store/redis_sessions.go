/**
 * @description
 * Redis-backed refresh-session store. Sessions are keyed by the SHA-256 hash
 * of the refresh token and expire with the token; a per-user set tracks the
 * live hashes so logout can revoke everything a user holds at once.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9: The Redis client library.
 */

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ardhi/registry-service/internal/domain"
)

// RedisSessionStore implements SessionStore on a Redis client.
type RedisSessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSessionStore creates a session store under the given key prefix.
func NewRedisSessionStore(client redis.UniversalClient, prefix string) *RedisSessionStore {
	trimmed := strings.TrimSpace(prefix)
	if trimmed == "" {
		trimmed = "registry:sessions"
	}
	trimmed = strings.TrimSuffix(trimmed, ":")
	return &RedisSessionStore{client: client, prefix: trimmed}
}

func (s *RedisSessionStore) sessionKey(tokenHash string) string {
	return fmt.Sprintf("%s:token:%s", s.prefix, tokenHash)
}

func (s *RedisSessionStore) userKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, userID)
}

// SaveRefreshSession stores the session under its token hash and registers the
// hash against the owning user, both expiring with the token.
func (s *RedisSessionStore) SaveRefreshSession(ctx context.Context, session domain.RefreshSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.TokenHash), payload, ttl)
	pipe.SAdd(ctx, s.userKey(session.UserID), session.TokenHash)
	pipe.Expire(ctx, s.userKey(session.UserID), ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// FindRefreshSession looks a session up by token hash.
func (s *RedisSessionStore) FindRefreshSession(ctx context.Context, tokenHash string) (*domain.RefreshSession, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var session domain.RefreshSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteRefreshSession revokes one session by token hash.
func (s *RedisSessionStore) DeleteRefreshSession(ctx context.Context, tokenHash string) error {
	raw, err := s.client.Get(ctx, s.sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	var session domain.RefreshSession
	if err := json.Unmarshal(raw, &session); err == nil {
		s.client.SRem(ctx, s.userKey(session.UserID), tokenHash)
	}
	return s.client.Del(ctx, s.sessionKey(tokenHash)).Err()
}

// DeleteUserSessions revokes every live session the user holds.
func (s *RedisSessionStore) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	hashes, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, hash := range hashes {
		keys = append(keys, s.sessionKey(hash))
	}
	keys = append(keys, s.userKey(userID))
	return s.client.Del(ctx, keys...).Err()
}
