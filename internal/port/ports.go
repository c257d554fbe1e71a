// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	// SetIfAbsent atomically stores value unless a live entry exists and
	// returns the entry that is current afterwards.
	SetIfAbsent(key string, value T) (current T, stored bool)
	Delete(key string)
}

// EventPublisher broadcasts domain changes to live subscribers.
type EventPublisher interface {
	Publish(ev domain.Event)
}

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, to, body string) error
}

// SessionStore persists signed-in sessions.
// Lookups return (nil, nil) when nothing matches.
type SessionStore interface {
	SaveSession(ctx context.Context, s *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSessionByRefreshHash(ctx context.Context, hash string) (*domain.Session, error)
	RotateRefresh(ctx context.Context, sessionID, oldHash, newHash string) error
	UpdateSessionUser(ctx context.Context, user domain.User) error
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteUserSessions(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
}
