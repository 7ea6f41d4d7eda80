// Package session issues signed session cookies backed by a memory or redis
// store.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the session does not exist or has expired.
var ErrNotFound = errors.New("session: not found")

// Session is the server-side state behind a session cookie.
type Session struct {
	ID            string    `json:"id"`
	UserID        uint64    `json:"user_id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	UpstreamToken string    `json:"upstream_token"` // Bearer token issued by the AI/auth backend.
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Store persists sessions by id.
type Store interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// NewID returns a random session id.
func NewID() string {
	return uuid.NewString()
}
