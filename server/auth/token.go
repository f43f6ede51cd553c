// Package auth checks that users are authorized to use the server after
// they have logged in.
package auth

import (
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type (
	// Tokenizer creates and reads tokens from http traffic.
	Tokenizer interface {
		Create(username string, wins int) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// TokenizerConfig contains fields which describe a Tokenizer.
	TokenizerConfig struct {
		// KeyReader generates the token signing key.
		KeyReader io.Reader
		// TimeFunc supplies the current time, setting how long tokens are valid.
		TimeFunc func() time.Time
		// ValidSec is how long tokens are valid from issue, in seconds.
		ValidSec int64
	}

	jwtTokenizer struct {
		method   jwt.SigningMethod
		key      interface{}
		timeFunc func() time.Time
		validSec int64
	}

	jwtUserClaims struct {
		// Wins is the number of matches the user has won.
		Wins                 int `json:"wins"`
		jwt.RegisteredClaims     // username stored in Subject ("sub") field
	}
)

// NewTokenizer creates a Tokenizer with a key from the reader.
func (cfg TokenizerConfig) NewTokenizer() (Tokenizer, error) {
	switch {
	case cfg.KeyReader == nil:
		return nil, fmt.Errorf("creating tokenizer: key reader required")
	case cfg.TimeFunc == nil:
		return nil, fmt.Errorf("creating tokenizer: time func required")
	case cfg.ValidSec <= 0:
		return nil, fmt.Errorf("creating tokenizer: positive token lifetime required")
	}
	key := make([]byte, 64)
	if _, err := cfg.KeyReader.Read(key); err != nil {
		return nil, fmt.Errorf("generating tokenizer key: %w", err)
	}
	t := jwtTokenizer{
		method:   jwt.SigningMethodHS256,
		key:      key,
		timeFunc: cfg.TimeFunc,
		validSec: cfg.ValidSec,
	}
	return t, nil
}

// Create converts a user to a token string.
func (j jwtTokenizer) Create(username string, wins int) (string, error) {
	now := j.timeFunc()
	claims := jwtUserClaims{
		Wins: wins,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(j.validSec) * time.Second)),
		},
	}
	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.key)
}

// ReadUsername extracts the username from the token string.
func (j jwtTokenizer) ReadUsername(tokenString string) (string, error) {
	var claims jwtUserClaims
	parser := jwt.NewParser(jwt.WithTimeFunc(j.timeFunc))
	if _, err := parser.ParseWithClaims(tokenString, &claims, j.keyFunc); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// keyFunc ensures the signing method of the token is correct before returning the key.
func (j jwtTokenizer) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != j.method {
		return nil, fmt.Errorf("incorrect authorization signing method")
	}
	return j.key, nil
}
