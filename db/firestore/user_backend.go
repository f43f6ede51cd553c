// Package firestore implements the user backend for a google cloud
// firestore database.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/trainyard-games/mexican-train/db"
	"github.com/trainyard-games/mexican-train/db/user"
)

const (
	passwordField = "password"
	winsField     = "wins"
)

// UserBackend manages the users collection.
type UserBackend struct {
	client *firestore.Client
	db.Config
}

// NewUserBackend connects to the users collection.
func NewUserBackend(ctx context.Context, cfg db.Config, projectID string) (*UserBackend, error) {
	ub := UserBackend{
		Config: cfg,
	}
	client, err := firestore.NewClient(ctx, projectID) // do not timeout context - the client is used by the backend
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	ub.client = client
	return &ub, nil
}

func (ub *UserBackend) usersCollection() *firestore.CollectionRef {
	return ub.client.Collection("services").Doc("mexican-train").Collection("users")
}

// withTimeoutContext configures the context to timeout when running the function.
func (ub *UserBackend) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	return f(ctx)
}

// Create adds the username/password pair.
func (ub *UserBackend) Create(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		m := map[string]interface{}{
			passwordField: u.Password,
		}
		_, err := docRef.Create(ctx, m) // errors if the user already exists
		return err
	}); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Read looks the user up by username.
func (ub *UserBackend) Read(ctx context.Context, u user.User) (*user.User, error) {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		snapshot, err := docRef.Get(ctx)
		if err != nil {
			if snapshot != nil && !snapshot.Exists() {
				return user.ErrIncorrectLogin
			}
			return err
		}
		return snapshot.DataTo(&u)
	}); err != nil {
		if err == user.ErrIncorrectLogin {
			return nil, err
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	return &u, nil
}

// UpdatePassword updates the password for the user identified by the username.
func (ub *UserBackend) UpdatePassword(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		updates := []firestore.Update{
			{
				Path:  passwordField,
				Value: u.Password,
			},
		}
		_, err := docRef.Update(ctx, updates)
		return err
	}); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// UpdateWinsIncrement adds to the win counts of all of the usernames in
// one batch.
func (ub *UserBackend) UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		users := ub.usersCollection()
		b := ub.client.Batch()
		for username, wins := range usernameWins {
			updates := []firestore.Update{
				{
					Path:  winsField,
					Value: firestore.FieldTransformIncrement(wins),
				},
			}
			b.Update(users.Doc(username), updates)
		}
		_, err := b.Commit(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("incrementing user wins: %w", err)
	}
	return nil
}

// Delete removes the user.
func (ub *UserBackend) Delete(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.usersCollection().Doc(u.Username)
		_, err := docRef.Delete(ctx, firestore.Exists)
		return err
	}); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
