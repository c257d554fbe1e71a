// Package sessionstore persists signed-in sessions, in Redis or in memory.
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
	"github.com/boddenberg/sparkhub-bfa/internal/infra/resilience"
	"github.com/boddenberg/sparkhub-bfa/internal/port"
)

var tracer = otel.Tracer("sessionstore")

const (
	sessionKeyPrefix = "sparkhub:session:"       // sparkhub:session:{session_id} -> session json
	userSetPrefix    = "sparkhub:user_sessions:" // sparkhub:user_sessions:{user_id} -> set of session ids
	refreshKeyPrefix = "sparkhub:refresh:"       // sparkhub:refresh:{sha256} -> session id
)

var _ port.SessionStore = (*RedisStore)(nil)

// RedisStore keeps sessions in Redis with per-key TTLs matching the
// session lifetime.
type RedisStore struct {
	client *redis.Client
	guard  *resilience.Guard
}

// NewRedisStore wraps an existing client. guard may be nil.
func NewRedisStore(client *redis.Client, guard *resilience.Guard) *RedisStore {
	return &RedisStore{client: client, guard: guard}
}

func (r *RedisStore) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.guard == nil {
		return fn(ctx)
	}
	return r.guard.Do(ctx, fn)
}

func sessionKey(id string) string   { return sessionKeyPrefix + id }
func userSetKey(id string) string   { return userSetPrefix + id }
func refreshKey(hash string) string { return refreshKeyPrefix + hash }

func ttlUntil(expiresAt time.Time) time.Duration {
	ttl := time.Until(expiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (r *RedisStore) SaveSession(ctx context.Context, s *domain.Session) error {
	ctx, span := tracer.Start(ctx, "Redis.SaveSession")
	defer span.End()

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := ttlUntil(s.ExpiresAt)

	return r.do(ctx, func(ctx context.Context) error {
		pipe := r.client.TxPipeline()
		pipe.Set(ctx, sessionKey(s.ID), data, ttl)
		pipe.SAdd(ctx, userSetKey(s.UserID), s.ID)
		pipe.Expire(ctx, userSetKey(s.UserID), ttl)
		if s.RefreshHash != "" {
			pipe.Set(ctx, refreshKey(s.RefreshHash), s.ID, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	})
}

func (r *RedisStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Redis.GetSession")
	defer span.End()

	var sess *domain.Session
	err := r.do(ctx, func(ctx context.Context) error {
		data, err := r.client.Get(ctx, sessionKey(sessionID)).Bytes()
		if errors.Is(err, redis.Nil) {
			sess = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		var s domain.Session
		if err := json.Unmarshal(data, &s); err != nil {
			return resilience.Permanent(fmt.Errorf("unmarshal session: %w", err))
		}
		sess = &s
		return nil
	})
	return sess, err
}

func (r *RedisStore) GetSessionByRefreshHash(ctx context.Context, hash string) (*domain.Session, error) {
	ctx, span := tracer.Start(ctx, "Redis.GetSessionByRefreshHash")
	defer span.End()

	var id string
	err := r.do(ctx, func(ctx context.Context) error {
		v, err := r.client.Get(ctx, refreshKey(hash)).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get refresh index: %w", err)
		}
		id = v
		return nil
	})
	if err != nil || id == "" {
		return nil, err
	}
	return r.GetSession(ctx, id)
}

// RotateRefresh swaps the refresh hash of a session. It fails with
// ErrUnauthorized when oldHash is no longer current (token reuse).
func (r *RedisStore) RotateRefresh(ctx context.Context, sessionID, oldHash, newHash string) error {
	ctx, span := tracer.Start(ctx, "Redis.RotateRefresh")
	defer span.End()

	s, err := r.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if s == nil || s.RefreshHash != oldHash {
		return &domain.ErrUnauthorized{Message: "refresh token already used"}
	}
	s.RefreshHash = newHash
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := ttlUntil(s.ExpiresAt)

	return r.do(ctx, func(ctx context.Context) error {
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, refreshKey(oldHash))
		pipe.Set(ctx, refreshKey(newHash), s.ID, ttl)
		pipe.Set(ctx, sessionKey(s.ID), data, ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("rotate refresh: %w", err)
		}
		return nil
	})
}

// UpdateSessionUser rewrites the user snapshot of every session of the user.
func (r *RedisStore) UpdateSessionUser(ctx context.Context, user domain.User) error {
	ctx, span := tracer.Start(ctx, "Redis.UpdateSessionUser")
	defer span.End()

	ids, err := r.userSessionIDs(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		s, err := r.GetSession(ctx, id)
		if err != nil {
			return err
		}
		if s == nil {
			continue
		}
		s.User = user
		if err := r.SaveSession(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "Redis.DeleteSession")
	defer span.End()

	s, err := r.GetSession(ctx, sessionID)
	if err != nil || s == nil {
		return err
	}
	return r.do(ctx, func(ctx context.Context) error {
		pipe := r.client.TxPipeline()
		pipe.Del(ctx, sessionKey(s.ID))
		pipe.SRem(ctx, userSetKey(s.UserID), s.ID)
		if s.RefreshHash != "" {
			pipe.Del(ctx, refreshKey(s.RefreshHash))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

func (r *RedisStore) DeleteUserSessions(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "Redis.DeleteUserSessions")
	defer span.End()

	ids, err := r.userSessionIDs(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.DeleteSession(ctx, id); err != nil {
			return err
		}
	}
	return r.do(ctx, func(ctx context.Context) error {
		return r.client.Del(ctx, userSetKey(userID)).Err()
	})
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) userSessionIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.do(ctx, func(ctx context.Context) error {
		v, err := r.client.SMembers(ctx, userSetKey(userID)).Result()
		if err != nil {
			return fmt.Errorf("list user sessions: %w", err)
		}
		ids = v
		return nil
	})
	return ids, err
}
