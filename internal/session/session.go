package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrNotAuthenticated = errors.New("session is not signed in")
)

// Session is the server-side record behind a session cookie. Carts are not
// part of it and never leave the process.
type Session struct {
	ID          string    `json:"id"`
	ClientID    int64     `json:"client_id,omitempty"`
	Mail        string    `json:"mail,omitempty"`
	IsAdmin     bool      `json:"is_admin,omitempty"`
	AccessToken string    `json:"access_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// Authenticated reports whether a user signed in on this session
func (s *Session) Authenticated() bool {
	return s.ClientID > 0
}

// Store persists session records
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
