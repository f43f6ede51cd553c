// Package player identifies the people and computer players seated in matches.
package player

import "github.com/google/uuid"

type (
	// Name is the display name of a player.
	Name string

	// SeatID is the stable opaque identifier of a seat in a match.
	// Seats are identified separately from display names so a human
	// reconnecting by name can never collide with a computer player.
	SeatID string

	// Seat is a slot in a match held by one player for its duration.
	Seat struct {
		ID SeatID `json:"id"`
		// Name is the display name of the player holding the seat.
		Name Name `json:"name"`
		// AI is true if the seat is played by the server.
		AI bool `json:"ai,omitempty"`
		// Strategy is the id of the strategy an AI seat plays with.
		Strategy string `json:"strategy,omitempty"`
	}
)

// NewSeat creates a seat for a human player.
func NewSeat(n Name) Seat {
	return Seat{
		ID:   SeatID(uuid.NewString()),
		Name: n,
	}
}

// NewAISeat creates a seat played by the server with the specified strategy.
func NewAISeat(n Name, strategy string) Seat {
	return Seat{
		ID:       SeatID(uuid.NewString()),
		Name:     n,
		AI:       true,
		Strategy: strategy,
	}
}
