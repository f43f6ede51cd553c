// Package game contains identifiers and configuration shared by the rules
// engine, match controller, session manager, and sockets.
package game

import "fmt"

type (
	// ID is the id of a match.
	ID string

	// Config contains the adjustable properties of a match.
	Config struct {
		// MaxPip is the largest pip count on any tile in the set (a double-MaxPip set).
		MaxPip int `json:"maxPip,omitempty"`
		// GamesToPlay is the number of games the match aggregates.
		GamesToPlay int `json:"gamesToPlay,omitempty"`
		// MinPlayers is the number of seated players needed to start.
		MinPlayers int `json:"minPlayers,omitempty"`
		// MaxPlayers is the largest number of seats in the match.
		MaxPlayers int `json:"maxPlayers,omitempty"`
		// CountdownMinutes is how long a waiting match lives before it auto-starts or is deleted.
		CountdownMinutes int `json:"countdownMinutes,omitempty"`
		// AllowSpectators permits read-only viewers after the match starts.
		AllowSpectators bool `json:"allowSpectators,omitempty"`
		// AIFill adds computer players up to MaxPlayers when the match starts.
		AIFill bool `json:"aiFill,omitempty"`
		// AISkillLevel selects the default strategy for filled computer players.
		AISkillLevel int `json:"aiSkillLevel,omitempty"`
	}
)

// MaxSeats is the hard cap on seated players, regardless of configuration.
const MaxSeats = 8

// WithDefaults fills unset fields with the standard match settings.
func (cfg Config) WithDefaults() Config {
	if cfg.MaxPip <= 0 {
		cfg.MaxPip = 12
	}
	if cfg.GamesToPlay <= 0 {
		cfg.GamesToPlay = 13
	}
	if cfg.MinPlayers <= 0 {
		cfg.MinPlayers = 2
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 4
	}
	if cfg.CountdownMinutes <= 0 {
		cfg.CountdownMinutes = 10
	}
	return cfg
}

// Validate ensures the configuration describes a playable match.
func (cfg Config) Validate() error {
	switch {
	case cfg.MaxPip < 1:
		return fmt.Errorf("positive max pip required")
	case cfg.GamesToPlay < 1:
		return fmt.Errorf("at least one game required")
	case cfg.MinPlayers < 1:
		return fmt.Errorf("at least one player required")
	case cfg.MaxPlayers < cfg.MinPlayers:
		return fmt.Errorf("max players must be at least min players")
	case cfg.MaxPlayers > MaxSeats:
		return fmt.Errorf("max players cannot exceed %v", MaxSeats)
	case cfg.CountdownMinutes < 1:
		return fmt.Errorf("positive countdown required")
	}
	return nil
}
