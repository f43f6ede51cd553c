// Package db stores user attributes so they survive server restarts.
// Match state itself is never persisted.
package db

import "time"

// Config contains options shared by the database backends.
type Config struct {
	// QueryPeriod is how long a single backend operation may run before
	// its context is cancelled.
	QueryPeriod time.Duration
}
