package user

import (
	"context"
	"fmt"
)

type (
	// Backend stores users.  Implementations exist for postgres, mongodb,
	// firestore, and process memory.
	Backend interface {
		// Create adds the username/password pair.
		Create(ctx context.Context, u User) error
		// Read looks the user up by username.  ErrIncorrectLogin is
		// returned for unknown usernames.
		Read(ctx context.Context, u User) (*User, error)
		// UpdatePassword replaces the stored password.
		UpdatePassword(ctx context.Context, u User) error
		// UpdateWinsIncrement adds to the win counts of the usernames.
		UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error
		// Delete removes the user.
		Delete(ctx context.Context, u User) error
	}

	// PasswordHandler hashes passwords for storage and checks them on login.
	PasswordHandler interface {
		Hash(password string) ([]byte, error)
		IsCorrect(hashedPassword []byte, password string) (bool, error)
	}

	// Dao contains the user operations the server exposes, layering
	// validation and password hashing over a backend.
	Dao struct {
		backend Backend
		ph      PasswordHandler
	}
)

// NewDao creates a Dao over the backend.
func NewDao(backend Backend, ph PasswordHandler) (*Dao, error) {
	switch {
	case backend == nil:
		return nil, fmt.Errorf("creating user dao: validation: backend required")
	case ph == nil:
		return nil, fmt.Errorf("creating user dao: validation: password handler required")
	}
	d := Dao{
		backend: backend,
		ph:      ph,
	}
	return &d, nil
}

// Create validates and adds a user, storing the hashed password.
func (d *Dao) Create(ctx context.Context, u User) error {
	if _, err := New(u.Username, u.Password); err != nil {
		return err
	}
	hashedPassword, err := d.ph.Hash(u.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.Password = string(hashedPassword)
	if err := d.backend.Create(ctx, u); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Login checks the username/password pair and returns the stored user.
func (d *Dao) Login(ctx context.Context, u User) (*User, error) {
	stored, err := d.backend.Read(ctx, u)
	if err != nil {
		if err == ErrIncorrectLogin {
			return nil, err
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	correct, err := d.ph.IsCorrect([]byte(stored.Password), u.Password)
	switch {
	case err != nil:
		return nil, fmt.Errorf("checking password: %w", err)
	case !correct:
		return nil, ErrIncorrectLogin
	}
	return stored, nil
}

// UpdatePassword sets a new password after checking the old one.
func (d *Dao) UpdatePassword(ctx context.Context, u User, newPassword string) error {
	if _, err := d.Login(ctx, u); err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hashedPassword, err := d.ph.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.Password = string(hashedPassword)
	if err := d.backend.UpdatePassword(ctx, u); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// UpdateWinsIncrement adds to the win counts of multiple users.
func (d *Dao) UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error {
	if len(usernameWins) == 0 {
		return nil
	}
	if err := d.backend.UpdateWinsIncrement(ctx, usernameWins); err != nil {
		return fmt.Errorf("incrementing user wins: %w", err)
	}
	return nil
}

// Delete removes a user after checking the password.
func (d *Dao) Delete(ctx context.Context, u User) error {
	if _, err := d.Login(ctx, u); err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	if err := d.backend.Delete(ctx, u); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
