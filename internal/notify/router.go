package notify

import (
	"context"
	"errors"
	"maps"

	"axees/internal/model"
)

// ErrNotFound is returned by Open for unknown notification ids.
var ErrNotFound = errors.New("notification not found")

// Destination names a screen of the application.
type Destination struct {
	Name   string            `json:"name"`
	Params map[string]string `json:"params"`
}

// Destination names handed to the Navigator.
const (
	DestOfferDetails   = "OfferDetails"
	DestDealDetails    = "DealDetails"
	DestPaymentDetails = "PaymentDetails"
	DestChat           = "Chat"
)

// Navigator resolves a destination into whatever the front end shows.
type Navigator interface {
	Navigate(ctx context.Context, dest Destination) error
}

var routes = map[model.ActionType]string{
	model.ActionViewOffer:   DestOfferDetails,
	model.ActionViewDeal:    DestDealDetails,
	model.ActionViewPayment: DestPaymentDetails,
	model.ActionViewMessage: DestChat,
}

// Route maps a notification to its destination. Records without a known
// action type have no destination.
func Route(n model.Notification) (Destination, bool) {
	name, ok := routes[n.ActionType]
	if !ok {
		return Destination{}, false
	}
	params := maps.Clone(n.ActionParams)
	if params == nil {
		params = map[string]string{}
	}
	return Destination{Name: name, Params: params}, true
}

// Open marks the notification as read and navigates to its destination.
// It reports whether navigation happened.
func (s *Store) Open(ctx context.Context, id string, nav Navigator) (bool, error) {
	n, ok := s.Get(id)
	if !ok {
		return false, ErrNotFound
	}
	// A failed write is already logged by the store; routing still proceeds.
	_ = s.MarkRead(ctx, id)

	dest, ok := Route(n)
	if !ok {
		return false, nil
	}
	if err := nav.Navigate(ctx, dest); err != nil {
		return false, err
	}
	return true, nil
}
