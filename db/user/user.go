// Package user handles the state of registered players.
package user

import (
	"fmt"
	"unicode"
)

// User contains the stored information for each registered player.
type User struct {
	Username string `json:"username" firestore:"username" bson:"username"`
	Password string `json:"-" firestore:"password" bson:"password"`
	// Wins is the number of matches the user has won.
	Wins int `json:"wins" firestore:"wins" bson:"wins"`
}

// ErrIncorrectLogin is returned when the username is unknown or the
// password does not match.  The two cases are indistinguishable to callers
// so login probes cannot enumerate usernames.
var ErrIncorrectLogin = fmt.Errorf("incorrect username or password")

// New creates a user with the specified name and password.
func New(u, p string) (*User, error) {
	if err := validateUsername(u); err != nil {
		return nil, err
	}
	if err := validatePassword(p); err != nil {
		return nil, err
	}
	user := User{
		Username: u,
		Password: p,
	}
	return &user, nil
}

// validateUsername returns an error if the username is not valid.
func validateUsername(u string) error {
	switch {
	case len(u) < 1:
		return fmt.Errorf("username required")
	case len(u) > 32:
		return fmt.Errorf("username must be less than 32 characters long")
	default:
		for _, r := range u {
			if !unicode.IsLower(r) && !unicode.IsDigit(r) {
				return fmt.Errorf("username must be made of only lowercase letters and digits")
			}
		}
	}
	return nil
}

// validatePassword returns an error if the password is not valid.
func validatePassword(p string) error {
	if len(p) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}
