package api

import (
	"net/http"

	"axees/internal/model"
)

type sessionRequest struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// signIn stores the token issued by the backend. The ghost profile is
// dropped once a real user is known.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeBody(w, r, &req); err != nil || req.Token == "" || req.User.ID == "" {
		writeError(w, http.StatusBadRequest, "token and user.id are required")
		return
	}
	if err := s.sessions.Save(r.Context(), req.Token, req.User); err != nil {
		s.log.Warn("save session", "user_id", req.User.ID, "error", err)
		writeError(w, http.StatusBadRequest, "invalid token")
		return
	}
	if err := s.ghosts.Discard(r.Context()); err != nil {
		s.log.Warn("discard ghost profile", "error", err)
	}
	writeJSON(w, http.StatusOK, profileResponse{Kind: "user", User: &req.User})
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
