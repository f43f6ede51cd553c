package user

import "context"

// mockBackend implements Backend with settable functions.
type mockBackend struct {
	createFunc              func(ctx context.Context, u User) error
	readFunc                func(ctx context.Context, u User) (*User, error)
	updatePasswordFunc      func(ctx context.Context, u User) error
	updateWinsIncrementFunc func(ctx context.Context, usernameWins map[string]int) error
	deleteFunc              func(ctx context.Context, u User) error
}

func (m mockBackend) Create(ctx context.Context, u User) error {
	return m.createFunc(ctx, u)
}

func (m mockBackend) Read(ctx context.Context, u User) (*User, error) {
	return m.readFunc(ctx, u)
}

func (m mockBackend) UpdatePassword(ctx context.Context, u User) error {
	return m.updatePasswordFunc(ctx, u)
}

func (m mockBackend) UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error {
	return m.updateWinsIncrementFunc(ctx, usernameWins)
}

func (m mockBackend) Delete(ctx context.Context, u User) error {
	return m.deleteFunc(ctx, u)
}

// mockPasswordHandler stores passwords with a marker prefix instead of
// hashing them.
type mockPasswordHandler struct{}

func (mockPasswordHandler) Hash(password string) ([]byte, error) {
	return []byte("hashed:" + password), nil
}

func (mockPasswordHandler) IsCorrect(hashedPassword []byte, password string) (bool, error) {
	return string(hashedPassword) == "hashed:"+password, nil
}
