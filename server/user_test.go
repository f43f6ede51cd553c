package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/trainyard-games/mexican-train/db/user"
)

func TestHandleUserCreate(t *testing.T) {
	createTests := []struct {
		name     string
		target   string
		daoErr   error
		wantCode int
		wantDao  bool
	}{
		{
			name:     "bad username",
			target:   "/api/user/create?username=SELENE&password_confirm=password123",
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "short password",
			target:   "/api/user/create?username=selene&password_confirm=short",
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "ok",
			target:   "/api/user/create?username=selene&password_confirm=password123",
			wantCode: http.StatusOK,
			wantDao:  true,
		},
	}
	for _, test := range createTests {
		t.Run(test.name, func(t *testing.T) {
			daoCalled := false
			p := testParameters()
			p.UserDao = mockUserDao{
				CreateFunc: func(ctx context.Context, u user.User) error {
					daoCalled = true
					if u.Username != "selene" {
						t.Errorf("wanted user selene created, got %v", u.Username)
					}
					return test.daoErr
				},
			}
			s := newTestServer(t, testServerConfig(), p)
			w := httptest.NewRecorder()
			s.handleHTTPS(w, secureRequest("POST", test.target))
			if want, got := test.wantCode, w.Code; want != got {
				t.Errorf("wanted status %v, got %v", want, got)
			}
			if want, got := test.wantDao, daoCalled; want != got {
				t.Errorf("wanted dao called to be %v, got %v", want, got)
			}
		})
	}
}

func TestHandleUserLogin(t *testing.T) {
	loginTests := []struct {
		name      string
		loginUser *user.User
		loginErr  error
		wantCode  int
		wantBody  string
	}{
		{
			name:     "incorrect login",
			loginErr: user.ErrIncorrectLogin,
			wantCode: http.StatusUnauthorized,
		},
		{
			name: "ok",
			loginUser: &user.User{
				Username: "selene",
				Wins:     7,
			},
			wantCode: http.StatusOK,
			wantBody: "token-for-selene",
		},
	}
	for _, test := range loginTests {
		t.Run(test.name, func(t *testing.T) {
			p := testParameters()
			p.UserDao = mockUserDao{
				LoginFunc: func(ctx context.Context, u user.User) (*user.User, error) {
					return test.loginUser, test.loginErr
				},
			}
			s := newTestServer(t, testServerConfig(), p)
			w := httptest.NewRecorder()
			r := secureRequest("POST", "/api/user/login?username=selene&password=password123")
			s.handleHTTPS(w, r)
			if want, got := test.wantCode, w.Code; want != got {
				t.Fatalf("wanted status %v, got %v", want, got)
			}
			if len(test.wantBody) != 0 && w.Body.String() != test.wantBody {
				t.Errorf("wanted token %q in the body, got %q", test.wantBody, w.Body.String())
			}
		})
	}
}

func TestHandleUserLobby(t *testing.T) {
	lobbyTests := []struct {
		name        string
		target      string
		wantCode    int
		wantAddUser bool
	}{
		{
			name:     "no access token",
			target:   "/api/lobby",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:        "ok",
			target:      "/api/lobby?access_token=token-for-selene",
			wantCode:    http.StatusOK,
			wantAddUser: true,
		},
	}
	for _, test := range lobbyTests {
		t.Run(test.name, func(t *testing.T) {
			addedUser := ""
			p := testParameters()
			p.Tokenizer = mockTokenizer{
				ReadUsernameFunc: func(tokenString string) (string, error) {
					if tokenString != "token-for-selene" {
						return "", user.ErrIncorrectLogin
					}
					return "selene", nil
				},
			}
			p.Lobby = mockLobby{
				AddUserFunc: func(username string, w http.ResponseWriter, r *http.Request) error {
					addedUser = username
					return nil
				},
			}
			s := newTestServer(t, testServerConfig(), p)
			w := httptest.NewRecorder()
			s.handleHTTPS(w, secureRequest("GET", test.target))
			if want, got := test.wantCode, w.Code; want != got {
				t.Errorf("wanted status %v, got %v", want, got)
			}
			if test.wantAddUser && addedUser != "selene" {
				t.Errorf("wanted selene added to the lobby, got %q", addedUser)
			}
		})
	}
}

func TestHandleUserUpdatePassword(t *testing.T) {
	updated := false
	removedUser := ""
	p := testParameters()
	p.UserDao = mockUserDao{
		UpdatePasswordFunc: func(ctx context.Context, u user.User, newPassword string) error {
			updated = true
			if want, got := "password456", newPassword; want != got {
				t.Errorf("wanted new password %v, got %v", want, got)
			}
			return nil
		},
	}
	p.Lobby = mockLobby{
		RemoveUserFunc: func(username string) {
			removedUser = username
		},
	}
	s := newTestServer(t, testServerConfig(), p)
	w := httptest.NewRecorder()
	r := secureRequest("POST", "/api/user/update-password?username=selene&password=password123&password_confirm=password456")
	r.Header.Set("Authorization", "Bearer token-for-selene")
	s.handleHTTPS(w, r)
	switch {
	case w.Code != http.StatusOK:
		t.Errorf("wanted status %v, got %v", http.StatusOK, w.Code)
	case !updated:
		t.Error("wanted password updated")
	case removedUser != "selene":
		// a password change invalidates the session, closing the socket
		t.Errorf("wanted selene removed from the lobby, got %q", removedUser)
	}
}

func TestHandleUserDelete(t *testing.T) {
	deleted := false
	removedUser := ""
	p := testParameters()
	p.UserDao = mockUserDao{
		DeleteFunc: func(ctx context.Context, u user.User) error {
			deleted = true
			return nil
		},
	}
	p.Lobby = mockLobby{
		RemoveUserFunc: func(username string) {
			removedUser = username
		},
	}
	s := newTestServer(t, testServerConfig(), p)
	w := httptest.NewRecorder()
	r := secureRequest("POST", "/api/user/delete?username=selene&password=password123")
	r.Header.Set("Authorization", "Bearer token-for-selene")
	s.handleHTTPS(w, r)
	switch {
	case w.Code != http.StatusOK:
		t.Errorf("wanted status %v, got %v", http.StatusOK, w.Code)
	case !deleted:
		t.Error("wanted user deleted")
	case removedUser != "selene":
		t.Errorf("wanted selene removed from the lobby, got %q", removedUser)
	}
}
