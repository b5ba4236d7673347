package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"axees/internal/model"
	"axees/internal/storage"
)

var (
	// ErrNoSession is returned when no token is stored.
	ErrNoSession = errors.New("no session")
	// ErrExpired is returned when the stored token's exp claim has passed.
	ErrExpired = errors.New("session expired")
)

// Session is the persisted auth token and the user it belongs to.
type Session struct {
	Token     string
	User      model.User
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Sessions persists the auth token and user.
type Sessions struct {
	store storage.Storage
	now   func() time.Time
}

// NewSessions creates a Sessions backed by store.
func NewSessions(store storage.Storage, now func() time.Time) *Sessions {
	if now == nil {
		now = time.Now
	}
	return &Sessions{store: store, now: now}
}

// Save stores token and user. The token must be a JWT.
func (s *Sessions) Save(ctx context.Context, token string, user model.User) error {
	if _, err := expiry(token); err != nil {
		return err
	}
	if err := s.store.Set(ctx, storage.KeyAuthToken, []byte(token)); err != nil {
		return fmt.Errorf("save auth token: %w", err)
	}
	if err := storage.SetJSON(ctx, s.store, storage.KeyAuthUser, user); err != nil {
		return fmt.Errorf("save auth user: %w", err)
	}
	return nil
}

// Load returns the stored session.
func (s *Sessions) Load(ctx context.Context) (Session, error) {
	raw, err := s.store.Get(ctx, storage.KeyAuthToken)
	if errors.Is(err, storage.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, fmt.Errorf("load auth token: %w", err)
	}

	sess := Session{Token: string(raw)}
	if sess.ExpiresAt, err = expiry(sess.Token); err != nil {
		return Session{}, err
	}
	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		return sess, ErrExpired
	}

	if _, err := storage.GetJSON(ctx, s.store, storage.KeyAuthUser, &sess.User); err != nil {
		return Session{}, fmt.Errorf("load auth user: %w", err)
	}
	return sess, nil
}

// Clear removes the token and the user.
func (s *Sessions) Clear(ctx context.Context) error {
	for _, key := range []string{storage.KeyAuthToken, storage.KeyAuthUser} {
		if err := s.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}

// expiry reads the exp claim. The signing key lives on the server, so the
// signature is not checked here.
func expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse auth token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("parse auth token: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}
	return exp.Time, nil
}
