// Package server runs the http server which allows users to manage their
// accounts and open websockets to play matches.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/trainyard-games/mexican-train/db/user"
	"github.com/trainyard-games/mexican-train/game"
	servergame "github.com/trainyard-games/mexican-train/server/game"
	"github.com/trainyard-games/mexican-train/server/log"
)

type (
	// Server runs the site.
	Server struct {
		log         log.Logger
		tokenizer   Tokenizer
		userDao     UserDao
		lobby       Lobby
		admin       Admin
		httpServer  *http.Server
		httpsServer *http.Server
		Config
	}

	// Config contains fields which describe the server.
	Config struct {
		// HTTPPort is the TCP port for http requests.  All traffic is
		// redirected to the https port.  The http server is not run when
		// the port is not positive.
		HTTPPort int
		// HTTPSPort is the TCP port for https requests.
		HTTPSPort int
		// StopDur is how long the server waits for connections to finish
		// when stopping.
		StopDur time.Duration
		// TLSCertFile is the public HTTPS certificate file.
		TLSCertFile string
		// TLSKeyFile is the private HTTPS key file.
		TLSKeyFile string
		// NoTLSRedirect disables redirection to https from http when true.
		NoTLSRedirect bool
		// AdminUsername is the account allowed to call admin endpoints.
		// Admin endpoints are disabled when empty.
		AdminUsername string
	}

	// Parameters contains the interfaces needed to create a new server.
	Parameters struct {
		log.Logger
		Tokenizer
		UserDao
		Lobby
		Admin
	}

	// Tokenizer creates and reads tokens from http traffic.
	Tokenizer interface {
		Create(username string, wins int) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// UserDao manages user accounts.
	UserDao interface {
		Create(ctx context.Context, u user.User) error
		Login(ctx context.Context, u user.User) (*user.User, error)
		UpdatePassword(ctx context.Context, u user.User, newPassword string) error
		Delete(ctx context.Context, u user.User) error
	}

	// Lobby is the running collection of player sockets and matches.
	Lobby interface {
		Run(ctx context.Context) error
		AddUser(username string, w http.ResponseWriter, r *http.Request) error
		RemoveUser(username string)
	}

	// Admin inspects and steers live matches.
	Admin interface {
		Matches() []game.Info
		MatchDetail(id game.ID) (*servergame.MatchDetail, error)
		TerminateMatch(id game.ID, reason string) error
		AdvanceMatch(id game.ID) error
		OnlineUsers() []servergame.OnlineUser
	}
)

const (
	// HeaderContentType is used to set the document type header on http responses.
	HeaderContentType = "Content-Type"
	// HeaderLocation is used to tell browsers to request a different document.
	HeaderLocation = "Location"
	// adminPathPrefix gates match-steering endpoints behind the admin account.
	adminPathPrefix = "/api/admin/"
)

// NewServer creates a Server from the config and parameters.
func (cfg Config) NewServer(p Parameters) (*Server, error) {
	if err := cfg.validate(p); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	if cfg.HTTPPort <= 0 {
		httpAddr = ""
	}
	httpsAddr := fmt.Sprintf(":%d", cfg.HTTPSPort)
	s := Server{
		log:       p.Logger,
		tokenizer: p.Tokenizer,
		userDao:   p.UserDao,
		lobby:     p.Lobby,
		admin:     p.Admin,
		httpServer: &http.Server{
			Addr: httpAddr,
		},
		httpsServer: &http.Server{
			Addr:         httpsAddr,
			ReadTimeout:  60 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Config: cfg,
	}
	s.httpServer.Handler = http.HandlerFunc(s.redirectToHTTPS)
	s.httpsServer.Handler = http.HandlerFunc(s.handleHTTPS)
	return &s, nil
}

// validate ensures the configuration and parameters have no errors.
func (cfg Config) validate(p Parameters) error {
	switch {
	case p.Logger == nil:
		return fmt.Errorf("log required")
	case p.Tokenizer == nil:
		return fmt.Errorf("tokenizer required")
	case p.UserDao == nil:
		return fmt.Errorf("user dao required")
	case p.Lobby == nil:
		return fmt.Errorf("lobby required")
	case p.Admin == nil:
		return fmt.Errorf("admin runner required")
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	case cfg.HTTPSPort <= 0:
		return fmt.Errorf("positive https port required")
	}
	return nil
}

// Run the server asynchronously until it receives a shutdown signal.
// When the HTTP/HTTPS servers stop, errors are logged to the error channel.
func (s *Server) Run(ctx context.Context) <-chan error {
	errC := make(chan error, 2)
	s.runHTTPServer(errC)
	s.runHTTPSServer(ctx, errC)
	return errC
}

// runHTTPServer runs the http redirect server asynchronously if the http
// address is valid.
func (s *Server) runHTTPServer(errC chan<- error) {
	if !s.validHTTPAddr() {
		return
	}
	go func() {
		errC <- s.httpServer.ListenAndServe()
	}()
}

// runHTTPSServer runs the lobby and https server asynchronously, adding the
// return error to the channel when done.
func (s *Server) runHTTPSServer(ctx context.Context, errC chan<- error) {
	ctx, cancelFunc := context.WithCancel(ctx)
	if err := s.lobby.Run(ctx); err != nil {
		cancelFunc()
		errC <- fmt.Errorf("running lobby: %w", err)
		return
	}
	s.httpsServer.RegisterOnShutdown(cancelFunc)
	s.log.Printf("starting server at https://127.0.0.1%v", s.httpsServer.Addr)
	go func() {
		switch {
		case len(s.TLSCertFile) != 0 || len(s.TLSKeyFile) != 0:
			errC <- s.httpsServer.ListenAndServeTLS(s.TLSCertFile, s.TLSKeyFile)
		default:
			errC <- s.httpsServer.ListenAndServe()
		}
	}()
}

// Stop asks the server to shutdown and waits for the shutdown to complete.
// An error is returned if the context times out.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	httpsShutdownErr := s.httpsServer.Shutdown(ctx)
	httpShutdownErr := s.httpServer.Shutdown(ctx)
	switch {
	case httpsShutdownErr != nil:
		return httpsShutdownErr
	case httpShutdownErr != nil:
		return httpShutdownErr
	}
	return nil
}

// handleHTTPS handles https endpoints.
func (s *Server) handleHTTPS(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.TLS == nil && !s.NoTLSRedirect:
		s.redirectToHTTPS(w, r)
	case r.Method == "GET":
		s.handleHTTPSGet(w, r)
	case r.Method == "POST":
		s.handleHTTPSPost(w, r)
	default:
		s.httpError(w, http.StatusMethodNotAllowed)
	}
}

// handleHTTPSGet calls handlers for GET endpoints.
func (s *Server) handleHTTPSGet(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, adminPathPrefix) {
		if err := s.checkAdmin(r); err != nil {
			s.log.Printf("%v", err)
			s.httpError(w, http.StatusForbidden)
			return
		}
	}
	switch r.URL.Path {
	case "/api/lobby":
		s.handleUserLobby(w, r)
	case "/api/admin/matches":
		s.handleAdminMatches(w, r)
	case "/api/admin/match":
		s.handleAdminMatchDetail(w, r)
	case "/api/admin/users":
		s.handleAdminUsers(w, r)
	default:
		s.httpError(w, http.StatusNotFound)
	}
}

// handleHTTPSPost checks authentication and calls handlers for POST endpoints.
func (s *Server) handleHTTPSPost(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/user/create", r.URL.Path == "/api/user/login":
		// [unauthenticated]
	case strings.HasPrefix(r.URL.Path, adminPathPrefix):
		if err := s.checkAdmin(r); err != nil {
			s.log.Printf("%v", err)
			s.httpError(w, http.StatusForbidden)
			return
		}
	default:
		if err := s.checkTokenUsername(r); err != nil {
			s.log.Printf("%v", err)
			s.httpError(w, http.StatusForbidden)
			return
		}
	}
	switch r.URL.Path {
	case "/api/user/create":
		s.handleUserCreate(w, r)
	case "/api/user/login":
		s.handleUserLogin(w, r)
	case "/api/user/update-password":
		s.handleUserUpdatePassword(w, r)
	case "/api/user/delete":
		s.handleUserDelete(w, r)
	case "/api/admin/terminate":
		s.handleAdminTerminate(w, r)
	case "/api/admin/advance":
		s.handleAdminAdvance(w, r)
	case "/api/ping":
		// NOOP
	default:
		s.httpError(w, http.StatusNotFound)
	}
}

// validHTTPAddr determines if the HTTP address is valid.  If it is, the HTTP
// server should be started to redirect traffic to HTTPS.
func (s *Server) validHTTPAddr() bool {
	return len(s.httpServer.Addr) > 0
}

// redirectToHTTPS redirects the page to https.
func (s *Server) redirectToHTTPS(w http.ResponseWriter, r *http.Request) {
	host := r.Host
	if strings.Contains(host, ":") {
		var err error
		host, _, err = net.SplitHostPort(host)
		if err != nil {
			err = fmt.Errorf("could not redirect to https: %w", err)
			s.handleError(w, err)
			return
		}
	}
	if s.httpsServer.Addr != ":443" {
		host += s.httpsServer.Addr
	}
	httpsURI := "https://" + host + r.URL.Path
	http.Redirect(w, r, httpsURI, http.StatusTemporaryRedirect)
}

// tokenUsername reads the username of the bearer token in the authorization
// header.
func (s *Server) tokenUsername(r *http.Request) (string, error) {
	authorization := r.Header.Get("Authorization")
	if len(authorization) < 7 || authorization[:7] != "Bearer " {
		return "", fmt.Errorf("invalid authorization header: %v", authorization)
	}
	return s.tokenizer.ReadUsername(authorization[7:])
}

// checkTokenUsername ensures the username in the authorization header matches
// that in the username form value.
func (s *Server) checkTokenUsername(r *http.Request) error {
	tokenUsername, err := s.tokenUsername(r)
	if err != nil {
		return err
	}
	formUsername := r.FormValue("username")
	if tokenUsername != formUsername {
		return fmt.Errorf("username not same as token username")
	}
	return nil
}

// checkAdmin ensures the authorization header holds the admin's token.
func (s *Server) checkAdmin(r *http.Request) error {
	if len(s.AdminUsername) == 0 {
		return fmt.Errorf("admin endpoints are disabled")
	}
	tokenUsername, err := s.tokenUsername(r)
	if err != nil {
		return err
	}
	if tokenUsername != s.AdminUsername {
		return fmt.Errorf("user %v is not the admin", tokenUsername)
	}
	return nil
}

// writeJSON writes the value to the response as json.
func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set(HeaderContentType, "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("writing json response: %v", err)
	}
}

// handleError logs and writes the error as an internal server error (500).
func (s *Server) handleError(w http.ResponseWriter, err error) {
	s.log.Printf("server error: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// httpError writes the error status code.
func (*Server) httpError(w http.ResponseWriter, statusCode int) {
	http.Error(w, http.StatusText(statusCode), statusCode)
}
