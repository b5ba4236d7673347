package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"axees/internal/model"
	"axees/internal/notify"
)

// Event kinds accepted by POST /api/v1/events.
const (
	EventOfferReceived   = "offer_received"
	EventDealFunded      = "deal_funded"
	EventPaymentReleased = "payment_released"
	EventMessageReceived = "message_received"
	EventSystem          = "system"
)

type eventRequest struct {
	Kind        string `json:"kind"`
	RecipientID string `json:"recipientId"`

	OfferID      string `json:"offerId,omitempty"`
	MarketerName string `json:"marketerName,omitempty"`
	DealID       string `json:"dealId,omitempty"`
	PaymentID    string `json:"paymentId,omitempty"`
	Amount       string `json:"amount,omitempty"`
	ChatID       string `json:"chatId,omitempty"`
	SenderName   string `json:"senderName,omitempty"`
	Preview      string `json:"preview,omitempty"`
	Title        string `json:"title,omitempty"`
	Message      string `json:"message,omitempty"`
}

func (e eventRequest) notification() (model.Notification, bool) {
	switch e.Kind {
	case EventOfferReceived:
		return notify.OfferReceived(e.RecipientID, e.OfferID, e.MarketerName), e.OfferID != ""
	case EventDealFunded:
		return notify.DealFunded(e.RecipientID, e.DealID, e.Amount), e.DealID != ""
	case EventPaymentReleased:
		return notify.PaymentReleased(e.RecipientID, e.PaymentID, e.Amount), e.PaymentID != ""
	case EventMessageReceived:
		return notify.MessageReceived(e.RecipientID, e.ChatID, e.SenderName, e.Preview), e.ChatID != ""
	case EventSystem:
		return notify.SystemNotice(e.RecipientID, e.Title, e.Message), e.Title != ""
	}
	return model.Notification{}, false
}

func (s *Server) postEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RecipientID == "" {
		writeError(w, http.StatusBadRequest, "recipientId is required")
		return
	}
	n, ok := req.notification()
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown event kind or missing fields")
		return
	}

	rec, err := s.notes.Append(r.Context(), n)
	if err := s.notifyError(err); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	recipient := r.URL.Query().Get("recipient")
	if recipient == "" {
		writeJSON(w, http.StatusOK, s.notes.List())
		return
	}
	writeJSON(w, http.StatusOK, s.notes.ListFor(recipient))
}

func (s *Server) unreadCount(w http.ResponseWriter, r *http.Request) {
	count := s.notes.UnreadCount(r.URL.Query().Get("recipient"))
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.notes.Get(id); !ok {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err := s.notifyError(s.notes.MarkRead(r.Context(), id)); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// markAllRead is scoped to ?recipient= when given, otherwise it covers
// every record on the device.
func (s *Server) markAllRead(w http.ResponseWriter, r *http.Request) {
	var err error
	if recipient := r.URL.Query().Get("recipient"); recipient != "" {
		err = s.notes.MarkAllReadFor(r.Context(), recipient)
	} else {
		err = s.notes.MarkAllRead(r.Context())
	}
	if err := s.notifyError(err); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// notifyError drops persistence failures: the store keeps the change in
// memory, so the request succeeded from the caller's point of view.
func (s *Server) notifyError(err error) error {
	if errors.Is(err, notify.ErrPersist) {
		s.log.Warn("notification change not persisted", "error", err)
		return nil
	}
	return err
}

// destinationRecorder captures the destination instead of showing it.
type destinationRecorder struct {
	dest *notify.Destination
}

func (d destinationRecorder) Navigate(_ context.Context, dest notify.Destination) error {
	*d.dest = dest
	return nil
}

type openResponse struct {
	Destination *notify.Destination `json:"destination"`
}

func (s *Server) openNotification(w http.ResponseWriter, r *http.Request) {
	var dest notify.Destination
	navigated, err := s.notes.Open(r.Context(), chi.URLParam(r, "id"), destinationRecorder{dest: &dest})
	switch {
	case errors.Is(err, notify.ErrNotFound):
		writeError(w, http.StatusNotFound, "notification not found")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	case !navigated:
		writeJSON(w, http.StatusOK, openResponse{})
	default:
		writeJSON(w, http.StatusOK, openResponse{Destination: &dest})
	}
}
