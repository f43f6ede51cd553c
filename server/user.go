package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/trainyard-games/mexican-train/db/user"
)

// handleUserCreate creates a user, adding it to the database.
func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password_confirm")
	u, err := user.New(username, password)
	if err != nil {
		s.handleError(w, err)
		return
	}
	ctx := r.Context()
	if err := s.userDao.Create(ctx, *u); err != nil {
		s.handleError(w, err)
		return
	}
}

// handleUserLogin signs a user in, writing the token to the response.
func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	u, err := user.New(username, password)
	if err != nil {
		s.handleError(w, err)
		return
	}
	ctx := r.Context()
	u2, err := s.userDao.Login(ctx, *u)
	if err != nil {
		if errors.Is(err, user.ErrIncorrectLogin) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		s.handleError(w, err)
		return
	}
	token, err := s.tokenizer.Create(u2.Username, u2.Wins)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if _, err := w.Write([]byte(token)); err != nil {
		err = fmt.Errorf("writing authorization token: %w", err)
		s.handleError(w, err)
		return
	}
}

// handleUserLobby reads the access token and adds the user to the lobby.
// Websocket requests cannot set the authorization header, so the token is
// read from the access_token form value.
func (s *Server) handleUserLobby(w http.ResponseWriter, r *http.Request) {
	tokenString := r.FormValue("access_token")
	username, err := s.tokenizer.ReadUsername(tokenString)
	if err != nil {
		s.log.Printf("reading access token: %v", err)
		s.httpError(w, http.StatusUnauthorized)
		return
	}
	if err := s.lobby.AddUser(username, w, r); err != nil {
		err = fmt.Errorf("websocket error: %w", err)
		s.handleError(w, err)
		return
	}
}

// handleUserUpdatePassword updates the user's password.
func (s *Server) handleUserUpdatePassword(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	newPassword := r.FormValue("password_confirm")
	u, err := user.New(username, password)
	if err != nil {
		s.handleError(w, err)
		return
	}
	ctx := r.Context()
	if err := s.userDao.UpdatePassword(ctx, *u, newPassword); err != nil {
		s.handleError(w, err)
		return
	}
	s.lobby.RemoveUser(username)
}

// handleUserDelete deletes the user from the database.
func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	u, err := user.New(username, password)
	if err != nil {
		s.handleError(w, err)
		return
	}
	ctx := r.Context()
	if err := s.userDao.Delete(ctx, *u); err != nil {
		s.handleError(w, err)
		return
	}
	s.lobby.RemoveUser(username)
}
