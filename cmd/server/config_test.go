package main

import (
	"context"
	"testing"

	"github.com/trainyard-games/mexican-train/db/user"
	"github.com/trainyard-games/mexican-train/server/log/logtest"
)

func TestTokenizerConfig(t *testing.T) {
	if _, err := tokenizerConfig().NewTokenizer(); err != nil {
		t.Errorf("unwanted error: %v", err)
	}
}

func TestCreateUserBackend(t *testing.T) {
	backendTests := []struct {
		name        string
		databaseURL string
		wantOk      bool
		wantMem     bool
	}{
		{
			name:    "no url uses process memory",
			wantOk:  true,
			wantMem: true,
		},
		{
			name:        "unknown scheme",
			databaseURL: "redis://localhost:6379",
		},
		{
			name:        "unparseable url",
			databaseURL: "://",
		},
	}
	for _, test := range backendTests {
		t.Run(test.name, func(t *testing.T) {
			m := mainFlags{
				databaseURL: test.databaseURL,
			}
			ctx := context.Background()
			b, err := m.createUserBackend(ctx, logtest.DiscardLogger)
			switch {
			case !test.wantOk:
				if err == nil {
					t.Error("wanted error")
				}
			case err != nil:
				t.Errorf("unwanted error: %v", err)
			case test.wantMem:
				if _, ok := b.(*user.MemBackend); !ok {
					t.Errorf("wanted in-memory backend, got %T", b)
				}
			}
		})
	}
}

func TestMatchRunnerConfig(t *testing.T) {
	m := mainFlags{
		debugGame:    true,
		noAutoCreate: true,
	}
	registry, err := m.createAIRegistry(logtest.DiscardLogger)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	cfg := m.matchRunnerConfig(logtest.DiscardLogger, registry)
	ud, err := user.NewDao(user.NewMemBackend(), stubPasswordHandler{})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	r, err := cfg.NewRunner(ud)
	switch {
	case err != nil:
		t.Fatalf("unwanted error: %v", err)
	case r == nil:
		t.Fatal("wanted runner")
	case !cfg.NoAutoCreate:
		t.Error("wanted no-auto-create flag to carry into the runner config")
	}
	if chooser := cfg.Tacticians("iron_dispatcher", 1549); chooser == nil {
		t.Error("wanted a move chooser for a known strategy")
	}
	if id := cfg.StrategyForLevel(3); id != "switchyard_boss" {
		t.Errorf("wanted skill level 3 to resolve to switchyard_boss, got %q", id)
	}
	if id := cfg.StrategyForLevel(99); len(id) != 0 {
		t.Errorf("wanted no strategy for an unknown skill level, got %q", id)
	}
}

func TestLobbyConfig(t *testing.T) {
	var m mainFlags
	registry, err := m.createAIRegistry(logtest.DiscardLogger)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ud, err := user.NewDao(user.NewMemBackend(), stubPasswordHandler{})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	runner, err := m.matchRunnerConfig(logtest.DiscardLogger, registry).NewRunner(ud)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, err := m.lobbyConfig(logtest.DiscardLogger, runner).NewLobby(); err != nil {
		t.Errorf("unwanted error: %v", err)
	}
}

// stubPasswordHandler stores passwords as-is.
type stubPasswordHandler struct{}

func (stubPasswordHandler) Hash(password string) ([]byte, error) {
	return []byte(password), nil
}

func (stubPasswordHandler) IsCorrect(hashedPassword []byte, password string) (bool, error) {
	return string(hashedPassword) == password, nil
}
