// Package ai chooses moves for computer players.  Play styles are weighted
// tactic mixes loaded from a reloadable configuration document.
package ai

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type (
	// TacticInfo describes one selectable tactic.
	TacticInfo struct {
		Description string  `json:"description,omitempty"`
		Weight      float64 `json:"weight,omitempty"`
	}

	// TacticRef is one entry in a strategy's tactic mix.
	TacticRef struct {
		Name     string  `json:"name"`
		Weight   float64 `json:"weight"`
		Priority int     `json:"priority"`
	}

	// Strategy is an ordered, weighted tactic mix.
	Strategy struct {
		Name        string      `json:"name"`
		Description string      `json:"description,omitempty"`
		Tactics     []TacticRef `json:"tactics"`
	}

	// Config is the strategy document: available tactics, the strategies
	// built from them, and the skill-level defaults.
	Config struct {
		Tactics       map[string]TacticInfo `json:"tactics"`
		Strategies    map[string]Strategy   `json:"strategies"`
		LevelMappings map[string]string     `json:"level_mappings"`
	}
)

// ParseConfig reads a strategy document.
func ParseConfig(b []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing ai config: %w", err)
	}
	if len(cfg.Strategies) == 0 {
		return nil, fmt.Errorf("parsing ai config: no strategies")
	}
	for level, id := range cfg.LevelMappings {
		if _, ok := cfg.Strategies[id]; !ok {
			return nil, fmt.Errorf("parsing ai config: level %v maps to unknown strategy %q", level, id)
		}
	}
	return &cfg, nil
}

// DefaultConfig is the embedded fallback: a single random-play strategy.
func DefaultConfig() *Config {
	return &Config{
		Tactics: map[string]TacticInfo{
			"random": {Description: "Random moves", Weight: 1.0},
		},
		Strategies: map[string]Strategy{
			"sleepy_caboose": {
				Name:        "Sleepy Caboose",
				Description: "Random moves",
				Tactics: []TacticRef{
					{Name: "random", Weight: 1.0, Priority: 1},
				},
			},
		},
		LevelMappings: map[string]string{
			"1": "sleepy_caboose",
		},
	}
}

// Strategy looks up a strategy by id.
func (cfg *Config) Strategy(id string) (Strategy, bool) {
	s, ok := cfg.Strategies[id]
	return s, ok
}

// StrategyForLevel resolves a skill level to its default strategy.
func (cfg *Config) StrategyForLevel(level int) (string, Strategy, bool) {
	id, ok := cfg.LevelMappings[strconv.Itoa(level)]
	if !ok {
		return "", Strategy{}, false
	}
	s, ok := cfg.Strategies[id]
	return id, s, ok
}

// StrategyIDs lists the available strategy ids.
func (cfg *Config) StrategyIDs() []string {
	ids := make([]string, 0, len(cfg.Strategies))
	for id := range cfg.Strategies {
		ids = append(ids, id)
	}
	return ids
}
