package ai

import (
	"sync/atomic"

	"github.com/trainyard-games/mexican-train/server/log"
)

// Registry holds the live strategy document and swaps it atomically on
// reload, so in-flight move choices keep a consistent view.
type Registry struct {
	cfg atomic.Value
	log log.Logger
}

// NewRegistry parses the strategy document.  A document that cannot be
// parsed is logged and replaced with the embedded fallback.
func NewRegistry(b []byte, l log.Logger) *Registry {
	r := Registry{
		log: l,
	}
	if err := r.Reload(b); err != nil {
		l.Printf("loading ai config: %v, using fallback", err)
		r.cfg.Store(DefaultConfig())
	}
	return &r
}

// Reload replaces the strategy document.  The previous document is kept
// when the new one cannot be parsed.
func (r *Registry) Reload(b []byte) error {
	cfg, err := ParseConfig(b)
	if err != nil {
		return err
	}
	r.cfg.Store(cfg)
	return nil
}

// Config is the live strategy document.
func (r *Registry) Config() *Config {
	return r.cfg.Load().(*Config)
}

// Tactician builds a move chooser for the strategy id.  Unknown ids play
// the fallback random strategy.
func (r *Registry) Tactician(strategyID string, seed int64) *Tactician {
	s, ok := r.Config().Strategy(strategyID)
	if !ok {
		r.log.Printf("unknown ai strategy %q, using fallback", strategyID)
		s = DefaultConfig().Strategies["sleepy_caboose"]
	}
	return New(s, seed, r.log)
}
