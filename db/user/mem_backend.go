package user

import (
	"context"
	"fmt"
	"sync"
)

// MemBackend stores users in process memory for deployments without a
// database.  Users do not survive restarts.
type MemBackend struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemBackend creates an empty in-memory user store.
func NewMemBackend() *MemBackend {
	return &MemBackend{
		users: make(map[string]User),
	}
}

// Create adds the username/password pair.
func (b *MemBackend) Create(ctx context.Context, u User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[u.Username]; ok {
		return fmt.Errorf("user %v already exists", u.Username)
	}
	b.users[u.Username] = u
	return nil
}

// Read looks the user up by username.
func (b *MemBackend) Read(ctx context.Context, u User) (*User, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	stored, ok := b.users[u.Username]
	if !ok {
		return nil, ErrIncorrectLogin
	}
	return &stored, nil
}

// UpdatePassword replaces the stored password.
func (b *MemBackend) UpdatePassword(ctx context.Context, u User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored, ok := b.users[u.Username]
	if !ok {
		return fmt.Errorf("no user %v", u.Username)
	}
	stored.Password = u.Password
	b.users[u.Username] = stored
	return nil
}

// UpdateWinsIncrement adds to the win counts of the usernames.  Unknown
// usernames are skipped; computer players never have accounts.
func (b *MemBackend) UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for username, wins := range usernameWins {
		if stored, ok := b.users[username]; ok {
			stored.Wins += wins
			b.users[username] = stored
		}
	}
	return nil
}

// Delete removes the user.
func (b *MemBackend) Delete(ctx context.Context, u User) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.users[u.Username]; !ok {
		return fmt.Errorf("no user %v", u.Username)
	}
	delete(b.users, u.Username)
	return nil
}
