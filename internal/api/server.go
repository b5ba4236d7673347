// Package api exposes the client state over HTTP: event producers push
// notifications in, front ends read notifications, the cart and the
// sponsored product currently on screen.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"axees/internal/cart"
	"axees/internal/fetcher"
	"axees/internal/identity"
	"axees/internal/notify"
	"axees/internal/sponsor"
)

// Server holds the stores the handlers operate on.
type Server struct {
	notes    *notify.Store
	cart     *cart.Store
	eval     *sponsor.Evaluator
	catalog  sponsor.Catalog
	ghosts   *identity.Ghosts
	sessions *identity.Sessions
	feed     Feed
	log      *slog.Logger
}

// Feed reports the creator content currently on screen and when it appeared.
type Feed interface {
	Current() (fetcher.Content, time.Time)
}

// Deps groups the collaborators of a Server.
type Deps struct {
	Notes    *notify.Store
	Cart     *cart.Store
	Eval     *sponsor.Evaluator
	Catalog  sponsor.Catalog
	Ghosts   *identity.Ghosts
	Sessions *identity.Sessions
	Feed     Feed // optional
}

// New creates a Server.
func New(d Deps, log *slog.Logger) *Server {
	return &Server{
		notes:    d.Notes,
		cart:     d.Cart,
		eval:     d.Eval,
		catalog:  d.Catalog,
		ghosts:   d.Ghosts,
		sessions: d.Sessions,
		feed:     d.Feed,
		log:      log,
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"state": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events", s.postEvent)
		r.Get("/profile", s.getProfile)
		r.Post("/session", s.signIn)
		r.Delete("/session", s.signOut)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Get("/unread-count", s.unreadCount)
			r.Post("/read-all", s.markAllRead)
			r.Post("/{id}/read", s.markRead)
			r.Post("/{id}/open", s.openNotification)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.getCart)
			r.Delete("/", s.clearCart)
			r.Post("/items", s.addItem)
			r.Patch("/items/{id}", s.updateItem)
			r.Delete("/items/{id}", s.removeItem)
		})

		r.Post("/signals", s.postSignals)
		r.Get("/sponsorship", s.getSponsorship)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
