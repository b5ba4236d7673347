// Package identity keeps the visitor's temporary ghost profile and the
// signed-in auth session.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"axees/internal/model"
	"axees/internal/storage"
)

// DefaultGhostTTL is used when Ghosts is created with a zero TTL.
const DefaultGhostTTL = 24 * time.Hour

// Ghosts hands out the ghost profile of an unregistered visitor.
type Ghosts struct {
	store storage.Storage
	ttl   time.Duration
	now   func() time.Time
	log   *slog.Logger
}

// NewGhosts creates a Ghosts backed by store.
func NewGhosts(store storage.Storage, ttl time.Duration, now func() time.Time, log *slog.Logger) *Ghosts {
	if ttl <= 0 {
		ttl = DefaultGhostTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Ghosts{store: store, ttl: ttl, now: now, log: log}
}

// Current returns the persisted profile while it is valid, otherwise it
// creates and stores a fresh one.
func (g *Ghosts) Current(ctx context.Context) (model.GhostProfile, error) {
	var p model.GhostProfile
	found, err := storage.GetJSON(ctx, g.store, storage.KeyGhostProfile, &p)
	if err != nil {
		g.log.Warn("load ghost profile", "error", err)
	}
	now := g.now().UTC()
	if err == nil && found && p.ID != "" && now.Before(p.ExpiresAt) {
		return p, nil
	}

	id := uuid.NewString()
	p = model.GhostProfile{
		ID:          id,
		DisplayName: "Guest " + strings.ToUpper(id[:4]),
		CreatedAt:   now,
		ExpiresAt:   now.Add(g.ttl),
	}
	if err := storage.SetJSON(ctx, g.store, storage.KeyGhostProfile, p); err != nil {
		return p, fmt.Errorf("save ghost profile: %w", err)
	}
	g.log.Info("ghost profile created", "ghost_id", p.ID, "expires_at", p.ExpiresAt)
	return p, nil
}

// Discard forgets the current ghost profile.
func (g *Ghosts) Discard(ctx context.Context) error {
	if err := g.store.Remove(ctx, storage.KeyGhostProfile); err != nil {
		return fmt.Errorf("discard ghost profile: %w", err)
	}
	return nil
}
