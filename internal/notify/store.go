// Package notify implements the local notification center: an ordered,
// persisted list of notification records plus routing of taps to
// application destinations.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"axees/internal/model"
	"axees/internal/storage"
)

var (
	// ErrInvalidType is returned by Append for unknown notification types.
	ErrInvalidType = errors.New("invalid notification type")
	// ErrPersist wraps storage failures. The in-memory change is kept.
	ErrPersist = errors.New("persist notifications")
)

// Options tunes a Store.
type Options struct {
	// Retention caps the number of kept records; the oldest are dropped.
	// Zero keeps everything.
	Retention int
	Now       func() time.Time
}

// Store keeps notifications most-recent-first and rewrites the whole
// list on every mutation. That is fine for a device-sized list; a larger
// deployment needs incremental persistence.
type Store struct {
	mu    sync.Mutex
	items []model.Notification
	store storage.Storage
	opts  Options
	log   *slog.Logger
	subs  []func(model.Notification)
}

// NewStore creates an empty Store. Call Load to restore persisted state.
func NewStore(store storage.Storage, opts Options, log *slog.Logger) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{store: store, opts: opts, log: log}
}

// Load replaces the in-memory list with the persisted one. Any failure
// leaves the list empty; it is logged, never returned.
func (s *Store) Load(ctx context.Context) {
	var items []model.Notification
	found, err := storage.GetJSON(ctx, s.store, storage.KeyNotifications, &items)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err != nil:
		s.log.Warn("load notifications", "error", err)
		s.items = nil
	case !found:
		s.items = nil
	default:
		s.items = items
	}
}

// Subscribe registers fn to be called with every appended record. fn runs
// on the appending goroutine after the lock is released and must not block.
func (s *Store) Subscribe(fn func(model.Notification)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Append inserts rec at the head of the list and persists the list.
// ID and Timestamp are filled in when empty. The stored record is
// returned even when persisting fails.
func (s *Store) Append(ctx context.Context, rec model.Notification) (model.Notification, error) {
	if !rec.Type.Valid() {
		return model.Notification{}, fmt.Errorf("%q: %w", rec.Type, ErrInvalidType)
	}
	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.opts.Now().UTC()
	}
	rec.Read = false
	rec.ActionParams = maps.Clone(rec.ActionParams)

	s.mu.Lock()
	s.items = append([]model.Notification{rec}, s.items...)
	if s.opts.Retention > 0 && len(s.items) > s.opts.Retention {
		s.items = s.items[:s.opts.Retention]
	}
	err := s.persistLocked(ctx)
	subs := append([]func(model.Notification){}, s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(rec)
	}
	return rec, err
}

// MarkRead flags the record with the given id as read. Unknown ids and
// records that are already read are left alone without a write.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if s.items[i].Read {
			return nil
		}
		s.items[i].Read = true
		return s.persistLocked(ctx)
	}
	return nil
}

// MarkAllRead flags every record as read. With nothing unread it does nothing.
func (s *Store) MarkAllRead(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persistLocked(ctx)
}

// MarkAllReadFor flags every record addressed to recipientID as read.
// Records of other recipients are untouched.
func (s *Store) MarkAllReadFor(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for i := range s.items {
		if s.items[i].RecipientID == recipientID && !s.items[i].Read {
			s.items[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.persistLocked(ctx)
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (model.Notification, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items {
		if n.ID == id {
			return copyRecord(n), true
		}
	}
	return model.Notification{}, false
}

// List returns every record, most recent first.
func (s *Store) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, copyRecord(n))
	}
	return out
}

// ListFor returns the records addressed to recipientID in stored order.
func (s *Store) ListFor(recipientID string) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Notification{}
	for _, n := range s.items {
		if n.RecipientID == recipientID {
			out = append(out, copyRecord(n))
		}
	}
	return out
}

// UnreadCount counts the unread records addressed to recipientID.
func (s *Store) UnreadCount(recipientID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.items {
		if n.RecipientID == recipientID && !n.Read {
			count++
		}
	}
	return count
}

// persistLocked writes the full list. Failures are logged and returned
// but the in-memory list stays as is.
func (s *Store) persistLocked(ctx context.Context) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyNotifications, s.items); err != nil {
		s.log.Error("persist notifications", "count", len(s.items), "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func copyRecord(n model.Notification) model.Notification {
	n.ActionParams = maps.Clone(n.ActionParams)
	return n
}
