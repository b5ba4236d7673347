package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"axees/internal/cart"
	"axees/internal/model"
)

type cartResponse struct {
	Items  []model.CartItem `json:"items"`
	Count  int              `json:"count"`
	Totals model.CartTotals `json:"totals"`
}

func (s *Server) cartState() cartResponse {
	return cartResponse{
		Items:  s.cart.Items(),
		Count:  s.cart.Count(),
		Totals: s.cart.Totals(),
	}
}

func (s *Server) getCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cartState())
}

type addItemRequest struct {
	ProductID   string `json:"productId"`
	Size        string `json:"size,omitempty"`
	Color       string `json:"color,omitempty"`
	CreatorID   string `json:"creatorId,omitempty"`
	CreatorName string `json:"creatorName,omitempty"`
}

// addItem resolves the product from the catalog so name and price cannot
// be set by the caller.
func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, ok := s.catalog.Product(req.ProductID)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	line, err := s.cart.Add(r.Context(), model.CartItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Image:       p.Image,
		Brand:       p.Brand,
		Size:        req.Size,
		Color:       req.Color,
		CreatorID:   req.CreatorID,
		CreatorName: req.CreatorName,
	})
	if !s.cartError(w, err) {
		return
	}
	writeJSON(w, http.StatusCreated, line)
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeBody(w, r, &req); err != nil || req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	err := s.cart.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), *req.Quantity)
	if !s.cartError(w, err) {
		return
	}
	writeJSON(w, http.StatusOK, s.cartState())
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	if !s.cartError(w, s.cart.Remove(r.Context(), chi.URLParam(r, "id"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	if !s.cartError(w, s.cart.Clear(r.Context())) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// cartError writes the response for a failed cart operation. It reports
// whether the handler may continue.
func (s *Server) cartError(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, cart.ErrPersist):
		// The change is kept in memory; a retry would apply it twice.
		s.log.Warn("cart change not persisted", "error", err)
		return true
	case errors.Is(err, cart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, "cart line not found")
	case errors.Is(err, cart.ErrQuantityLimit):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, cart.ErrInvalidPrice):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
	return false
}
