// Package cart holds the shopping cart of the current session.
package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"axees/internal/model"
	"axees/internal/storage"
)

// DefaultTaxRate is applied when Options.TaxRate is nil.
var DefaultTaxRate = decimal.RequireFromString("0.08")

var (
	// ErrLineNotFound is returned by UpdateQuantity for unknown line ids.
	ErrLineNotFound = errors.New("cart line not found")
	// ErrQuantityLimit is returned when a line would exceed the configured maximum.
	ErrQuantityLimit = errors.New("quantity limit exceeded")
	// ErrInvalidPrice is returned by Add for negative prices.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrPersist wraps storage failures. The in-memory change is kept.
	ErrPersist = errors.New("persist cart")
)

// Options tunes a Store.
type Options struct {
	// TaxRate applied to the subtotal; nil means DefaultTaxRate. Zero is tax free.
	TaxRate *decimal.Decimal
	// MaxQuantity caps a single line; zero means no cap.
	MaxQuantity int
}

// Store is the in-memory cart, persisted in full after every mutation.
type Store struct {
	mu    sync.Mutex
	items []model.CartItem
	store storage.Storage
	opts  Options
	rate  decimal.Decimal
	log   *slog.Logger
}

// NewStore creates an empty cart. Call Load to restore persisted state.
func NewStore(store storage.Storage, opts Options, log *slog.Logger) *Store {
	rate := DefaultTaxRate
	if opts.TaxRate != nil {
		rate = *opts.TaxRate
	}
	return &Store{store: store, opts: opts, rate: rate, log: log}
}

// Load restores the persisted cart. A missing key, an empty list and an
// unreadable payload all result in an empty cart.
func (s *Store) Load(ctx context.Context) {
	var items []model.CartItem
	found, err := storage.GetJSON(ctx, s.store, storage.KeyCart, &items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err != nil {
		s.log.Warn("load cart", "error", err)
		return
	}
	if !found {
		return
	}
	for _, it := range items {
		if it.Quantity < 1 {
			s.log.Warn("drop invalid cart line", "line_id", it.ID, "quantity", it.Quantity)
			continue
		}
		s.items = append(s.items, it)
	}
}

func sameLine(a, b model.CartItem) bool {
	return a.ProductID == b.ProductID && a.Size == b.Size && a.Color == b.Color
}

// Add puts one unit of item into the cart. A line with the same product,
// size and color has its quantity incremented; otherwise a new line with
// quantity 1 is appended.
func (s *Store) Add(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	if item.Price.IsNegative() {
		return model.CartItem{}, fmt.Errorf("%s: %w", item.Price, ErrInvalidPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if !sameLine(s.items[i], item) {
			continue
		}
		if s.opts.MaxQuantity > 0 && s.items[i].Quantity >= s.opts.MaxQuantity {
			return s.items[i], fmt.Errorf("line %s: %w", s.items[i].ID, ErrQuantityLimit)
		}
		s.items[i].Quantity++
		return s.items[i], s.persistLocked(ctx)
	}

	item.ID = uuid.NewString()
	item.Quantity = 1
	s.items = append(s.items, item)
	return item, s.persistLocked(ctx)
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, lineID)
	}
	if s.opts.MaxQuantity > 0 && quantity > s.opts.MaxQuantity {
		return fmt.Errorf("quantity %d: %w", quantity, ErrQuantityLimit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == lineID {
			s.items[i].Quantity = quantity
			return s.persistLocked(ctx)
		}
	}
	return fmt.Errorf("%s: %w", lineID, ErrLineNotFound)
}

// Remove deletes a line. Removing an unknown line does nothing.
func (s *Store) Remove(ctx context.Context, lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == lineID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return nil
}

// Clear empties the cart and deletes the persisted key.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.store.Remove(ctx, storage.KeyCart); err != nil {
		s.log.Error("clear cart", "error", err)
		return fmt.Errorf("%w: remove: %w", ErrPersist, err)
	}
	return nil
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.CartItem{}, s.items...)
}

// Count returns the total number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Totals computes subtotal, tax and total. Values are exact; round when displaying.
func (s *Store) Totals() model.CartTotals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.items, s.rate)
}

// ComputeTotals derives the money values of items at the given tax rate.
func ComputeTotals(items []model.CartItem, rate decimal.Decimal) model.CartTotals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	tax := subtotal.Mul(rate)
	return model.CartTotals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := storage.SetJSON(ctx, s.store, storage.KeyCart, s.items); err != nil {
		s.log.Error("persist cart", "lines", len(s.items), "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
