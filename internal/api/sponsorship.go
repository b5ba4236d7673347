package api

import (
	"errors"
	"net/http"
	"time"

	"axees/internal/identity"
	"axees/internal/model"
)

type signalsRequest struct {
	Content        *string  `json:"content,omitempty"`
	ElapsedSeconds *float64 `json:"elapsedSeconds,omitempty"`
	Scroll         *float64 `json:"scroll,omitempty"`
	Mention        bool     `json:"mention,omitempty"`
	Reset          bool     `json:"reset,omitempty"`
	Dismiss        bool     `json:"dismiss,omitempty"`
}

type activeProduct struct {
	Rule            model.SponsorshipRule `json:"rule"`
	Product         model.Product         `json:"product"`
	ShownForSeconds float64               `json:"shownForSeconds"`
}

type contentInfo struct {
	GUID           string  `json:"guid"`
	Title          string  `json:"title"`
	Link           string  `json:"link,omitempty"`
	ViewingSeconds float64 `json:"viewingSeconds"`
}

type sponsorshipResponse struct {
	Content          *contentInfo           `json:"content,omitempty"`
	Active           *activeProduct         `json:"active"`
	MentionBadge     int                    `json:"mentionBadge,omitempty"`
	EngagementPrompt *model.SponsorshipRule `json:"engagementPrompt,omitempty"`
}

func (s *Server) sponsorshipState() sponsorshipResponse {
	var resp sponsorshipResponse
	if s.feed != nil {
		if c, started := s.feed.Current(); c.GUID != "" {
			resp.Content = &contentInfo{
				GUID:           c.GUID,
				Title:          c.Title,
				Link:           c.Link,
				ViewingSeconds: time.Since(started).Seconds(),
			}
		}
	}
	if d, ok := s.eval.Active(); ok {
		resp.Active = &activeProduct{Rule: d.Rule, Product: d.Product, ShownForSeconds: d.ShownFor.Seconds()}
	}
	if n, ok := s.eval.MentionBadge(); ok {
		resp.MentionBadge = n
	}
	if rule, ok := s.eval.EngagementPrompt(); ok {
		resp.EngagementPrompt = &rule
	}
	return resp
}

// postSignals applies the given signals in a fixed order: reset, dismiss,
// mention, content, elapsed time, scroll.
func (s *Server) postSignals(w http.ResponseWriter, r *http.Request) {
	var req signalsRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reset {
		s.eval.Reset()
	}
	if req.Dismiss {
		s.eval.Dismiss()
	}
	if req.Mention {
		s.eval.RecordMention()
	}
	if req.Content != nil {
		s.eval.SetContent(*req.Content)
	}
	if req.ElapsedSeconds != nil {
		s.eval.SetElapsed(time.Duration(*req.ElapsedSeconds * float64(time.Second)))
	}
	if req.Scroll != nil {
		s.eval.SetScroll(*req.Scroll)
	}
	writeJSON(w, http.StatusOK, s.sponsorshipState())
}

func (s *Server) getSponsorship(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sponsorshipState())
}

type profileResponse struct {
	Kind  string              `json:"kind"` // user | ghost
	User  *model.User         `json:"user,omitempty"`
	Ghost *model.GhostProfile `json:"ghost,omitempty"`
}

// getProfile returns the signed-in user, or the ghost profile when there
// is no valid session.
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, profileResponse{Kind: "user", User: &sess.User})
		return
	case errors.Is(err, identity.ErrNoSession), errors.Is(err, identity.ErrExpired):
	default:
		s.log.Warn("load session", "error", err)
	}

	ghost, err := s.ghosts.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{Kind: "ghost", Ghost: &ghost})
}
