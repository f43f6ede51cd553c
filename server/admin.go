package server

import (
	"fmt"
	"net/http"

	"github.com/trainyard-games/mexican-train/game"
)

// handleAdminMatches lists every match in the lobby.
func (s *Server) handleAdminMatches(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.admin.Matches())
}

// handleAdminMatchDetail describes the match named by the match form value.
func (s *Server) handleAdminMatchDetail(w http.ResponseWriter, r *http.Request) {
	id := game.ID(r.FormValue("match"))
	if len(id) == 0 {
		s.httpError(w, http.StatusBadRequest)
		return
	}
	d, err := s.admin.MatchDetail(id)
	if err != nil {
		s.httpError(w, http.StatusNotFound)
		return
	}
	s.writeJSON(w, d)
}

// handleAdminUsers lists every player in a match or spectating one.
func (s *Server) handleAdminUsers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.admin.OnlineUsers())
}

// handleAdminTerminate forcibly ends the match named by the match form value.
func (s *Server) handleAdminTerminate(w http.ResponseWriter, r *http.Request) {
	id := game.ID(r.FormValue("match"))
	if len(id) == 0 {
		s.httpError(w, http.StatusBadRequest)
		return
	}
	reason := r.FormValue("reason")
	if len(reason) == 0 {
		reason = "terminated by the admin"
	}
	if err := s.admin.TerminateMatch(id, reason); err != nil {
		s.httpError(w, http.StatusNotFound)
		return
	}
	s.log.Printf("admin terminated match %v: %v", id, reason)
}

// handleAdminAdvance forces the current turn of the match named by the match
// form value to pass.
func (s *Server) handleAdminAdvance(w http.ResponseWriter, r *http.Request) {
	id := game.ID(r.FormValue("match"))
	if len(id) == 0 {
		s.httpError(w, http.StatusBadRequest)
		return
	}
	if err := s.admin.AdvanceMatch(id); err != nil {
		err = fmt.Errorf("advancing match %v: %w", id, err)
		s.handleError(w, err)
		return
	}
}
