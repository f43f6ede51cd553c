package server

import (
	"context"
	"net/http"

	"github.com/trainyard-games/mexican-train/db/user"
	"github.com/trainyard-games/mexican-train/game"
	servergame "github.com/trainyard-games/mexican-train/server/game"
)

// mockTokenizer implements the Tokenizer interface.
type mockTokenizer struct {
	CreateFunc       func(username string, wins int) (string, error)
	ReadUsernameFunc func(tokenString string) (string, error)
}

func (t mockTokenizer) Create(username string, wins int) (string, error) {
	return t.CreateFunc(username, wins)
}

func (t mockTokenizer) ReadUsername(tokenString string) (string, error) {
	return t.ReadUsernameFunc(tokenString)
}

// mockUserDao implements the UserDao interface.
type mockUserDao struct {
	CreateFunc         func(ctx context.Context, u user.User) error
	LoginFunc          func(ctx context.Context, u user.User) (*user.User, error)
	UpdatePasswordFunc func(ctx context.Context, u user.User, newPassword string) error
	DeleteFunc         func(ctx context.Context, u user.User) error
}

func (d mockUserDao) Create(ctx context.Context, u user.User) error {
	return d.CreateFunc(ctx, u)
}

func (d mockUserDao) Login(ctx context.Context, u user.User) (*user.User, error) {
	return d.LoginFunc(ctx, u)
}

func (d mockUserDao) UpdatePassword(ctx context.Context, u user.User, newPassword string) error {
	return d.UpdatePasswordFunc(ctx, u, newPassword)
}

func (d mockUserDao) Delete(ctx context.Context, u user.User) error {
	return d.DeleteFunc(ctx, u)
}

// mockLobby implements the Lobby interface.
type mockLobby struct {
	RunFunc        func(ctx context.Context) error
	AddUserFunc    func(username string, w http.ResponseWriter, r *http.Request) error
	RemoveUserFunc func(username string)
}

func (l mockLobby) Run(ctx context.Context) error {
	return l.RunFunc(ctx)
}

func (l mockLobby) AddUser(username string, w http.ResponseWriter, r *http.Request) error {
	return l.AddUserFunc(username, w, r)
}

func (l mockLobby) RemoveUser(username string) {
	l.RemoveUserFunc(username)
}

// mockAdmin implements the Admin interface.
type mockAdmin struct {
	MatchesFunc        func() []game.Info
	MatchDetailFunc    func(id game.ID) (*servergame.MatchDetail, error)
	TerminateMatchFunc func(id game.ID, reason string) error
	AdvanceMatchFunc   func(id game.ID) error
	OnlineUsersFunc    func() []servergame.OnlineUser
}

func (a mockAdmin) Matches() []game.Info {
	return a.MatchesFunc()
}

func (a mockAdmin) MatchDetail(id game.ID) (*servergame.MatchDetail, error) {
	return a.MatchDetailFunc(id)
}

func (a mockAdmin) TerminateMatch(id game.ID, reason string) error {
	return a.TerminateMatchFunc(id, reason)
}

func (a mockAdmin) AdvanceMatch(id game.ID) error {
	return a.AdvanceMatchFunc(id)
}

func (a mockAdmin) OnlineUsers() []servergame.OnlineUser {
	return a.OnlineUsersFunc()
}
