package match

import (
	"math/rand"
	"testing"
	"time"

	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/rules"
	"github.com/trainyard-games/mexican-train/game/tile"
)

var testTime = func() time.Time { return time.Unix(1600000000, 0) }

func testConfig(seed int64) Config {
	r := rand.New(rand.NewSource(seed))
	return Config{
		TimeFunc: testTime,
		ShuffleFunc: func(tiles []tile.Tile) {
			r.Shuffle(len(tiles), func(i, j int) {
				tiles[i], tiles[j] = tiles[j], tiles[i]
			})
		},
	}
}

// playOut drives the match's current game to completion with random legal
// actions.
func playOut(t *testing.T, m *Match, r *rand.Rand) {
	t.Helper()
	g := m.Game()
	for turns := 0; g.Status() == rules.InPlay; turns++ {
		if turns >= 1000 {
			t.Fatal("game did not end within 1000 turns")
		}
		id := g.CurrentSeat().ID
		if moves := g.ValidMoves(id); len(moves) > 0 {
			move := moves[r.Intn(len(moves))]
			if _, err := g.Apply(id, move.Tile.ID, move.TrainKind, move.TrainOwner); err != nil {
				t.Fatalf("unwanted error applying enumerated move: %v", err)
			}
		} else if _, err := g.Draw(id); err != nil {
			t.Fatalf("unwanted error drawing: %v", err)
		}
	}
}

func TestNew(t *testing.T) {
	t.Run("bad config", func(t *testing.T) {
		cfg := game.Config{MaxPip: 12, GamesToPlay: 1, MinPlayers: 4, MaxPlayers: 2, CountdownMinutes: 1}
		if _, err := testConfig(1).New("m1", "friday night", "selene", cfg); err == nil {
			t.Error("wanted error for invalid config")
		}
	})
	t.Run("host seated and countdown armed", func(t *testing.T) {
		m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{CountdownMinutes: 7})
		if err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		switch {
		case m.Status() != game.Waiting:
			t.Errorf("wanted new match waiting, got %v", m.Status())
		case len(m.Seats()) != 1 || m.Seats()[0].Name != "selene":
			t.Errorf("wanted host seated, got %v", m.Seats())
		case !m.Deadline().Equal(testTime().Add(7 * time.Minute)):
			t.Errorf("wanted deadline 7 minutes out, got %v", m.Deadline())
		}
	})
}

func TestAddPlayer(t *testing.T) {
	m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{MaxPlayers: 2})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	s, added, err := m.AddPlayer("barney")
	switch {
	case err != nil:
		t.Fatalf("unwanted error: %v", err)
	case !added:
		t.Error("wanted new player reported as added")
	case s.Name != "barney":
		t.Errorf("wanted seat for barney, got %v", s)
	}
	t.Run("rejoin is idempotent", func(t *testing.T) {
		again, added, err := m.AddPlayer("barney")
		switch {
		case err != nil:
			t.Fatalf("unwanted error: %v", err)
		case added:
			t.Error("wanted rejoin not reported as added")
		case again.ID != s.ID:
			t.Error("wanted the same seat back on rejoin")
		}
	})
	t.Run("full", func(t *testing.T) {
		if _, _, err := m.AddPlayer("carol"); err == nil {
			t.Error("wanted error joining a full match")
		}
	})
	t.Run("started", func(t *testing.T) {
		if err := m.Start(false, ""); err != nil {
			t.Fatalf("unwanted error starting: %v", err)
		}
		if _, _, err := m.AddPlayer("carol"); err == nil {
			t.Error("wanted error joining a started match")
		}
		if _, _, err := m.AddPlayer("barney"); err != nil {
			t.Errorf("unwanted error rejoining a started match: %v", err)
		}
	})
}

func TestRemovePlayer(t *testing.T) {
	m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, _, err := m.AddPlayer("barney"); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := m.RemovePlayer("barney"); err != nil {
		t.Errorf("unwanted error: %v", err)
	}
	if err := m.RemovePlayer("barney"); err == nil {
		t.Error("wanted error removing a player without a seat")
	}
}

func TestStart(t *testing.T) {
	t.Run("below minimum", func(t *testing.T) {
		m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{MinPlayers: 2})
		if err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		if err := m.Start(false, ""); err == nil {
			t.Error("wanted error starting below the minimum")
		}
		if m.Status() != game.Waiting {
			t.Errorf("wanted failed start to leave the match waiting, got %v", m.Status())
		}
	})
	t.Run("force fills to the minimum", func(t *testing.T) {
		m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{MinPlayers: 3, MaxPlayers: 4})
		if err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		if err := m.Start(true, "aggressive"); err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		seats := m.Seats()
		if len(seats) != 3 {
			t.Fatalf("wanted 3 seats after force fill, got %v", len(seats))
		}
		for _, s := range seats[1:] {
			if !s.AI || s.Strategy != "aggressive" {
				t.Errorf("wanted filled seat to be a computer with the strategy, got %+v", s)
			}
		}
		switch {
		case m.Status() != game.InProgress:
			t.Errorf("wanted match in progress, got %v", m.Status())
		case m.GameNumber() != 1:
			t.Errorf("wanted game 1 dealt, got %v", m.GameNumber())
		case m.Game() == nil:
			t.Error("wanted a game in play")
		}
	})
	t.Run("ai fill fills to the maximum", func(t *testing.T) {
		m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{MinPlayers: 1, MaxPlayers: 4, AIFill: true})
		if err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		if err := m.Start(false, "defensive"); err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		if len(m.Seats()) != 4 {
			t.Errorf("wanted 4 seats after ai fill, got %v", len(m.Seats()))
		}
	})
	t.Run("double start", func(t *testing.T) {
		m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{MinPlayers: 1})
		if err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		if err := m.Start(false, ""); err != nil {
			t.Fatalf("unwanted error: %v", err)
		}
		if err := m.Start(false, ""); err == nil {
			t.Error("wanted error starting a started match")
		}
	})
}

func TestHandleGameEnd(t *testing.T) {
	m, err := testConfig(7).New("m1", "friday night", "selene", game.Config{MinPlayers: 2, MaxPlayers: 2, GamesToPlay: 2})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, _, err := m.AddPlayer("barney"); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := m.Start(false, ""); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, _, err := m.HandleGameEnd(); err == nil {
		t.Error("wanted error recording a game still in play")
	}
	r := rand.New(rand.NewSource(7))
	playOut(t, m, r)
	stats, completion, err := m.HandleGameEnd()
	switch {
	case err != nil:
		t.Fatalf("unwanted error: %v", err)
	case stats == nil, stats.GameNumber != 1:
		t.Fatalf("wanted stats for game 1, got %+v", stats)
	case stats.Winner == "" || stats.WinnerName == "":
		t.Errorf("wanted a winner in the stats, got %+v", stats)
	case completion != nil:
		t.Error("wanted no completion before the final game")
	case m.GameNumber() != 2:
		t.Errorf("wanted game 2 dealt, got %v", m.GameNumber())
	}
	playOut(t, m, r)
	_, completion, err = m.HandleGameEnd()
	switch {
	case err != nil:
		t.Fatalf("unwanted error: %v", err)
	case completion == nil:
		t.Fatal("wanted a completion after the final game")
	case m.Status() != game.Completed:
		t.Errorf("wanted match completed, got %v", m.Status())
	case len(completion.Standings) != 2:
		t.Fatalf("wanted standings for both seats, got %v", completion.Standings)
	case completion.Winner != completion.Standings[0].Seat:
		t.Error("wanted the winner to lead the standings")
	case completion.Standings[0].Total > completion.Standings[1].Total:
		t.Error("wanted standings ordered by lowest total")
	case completion.Margin != completion.Standings[1].Total-completion.Standings[0].Total:
		t.Errorf("wanted margin %v, got %v", completion.Standings[1].Total-completion.Standings[0].Total, completion.Margin)
	case len(completion.History) != 2:
		t.Errorf("wanted history for both games, got %v", len(completion.History))
	}
}

func TestInfo(t *testing.T) {
	m, err := testConfig(1).New("m1", "friday night", "selene", game.Config{MaxPlayers: 4, GamesToPlay: 3})
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if _, _, err := m.AddPlayer("barney"); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	info := m.Info()
	switch {
	case info.ID != "m1", info.Name != "friday night", info.Host != "selene":
		t.Errorf("wanted identity fields set, got %+v", info)
	case len(info.Players) != 2:
		t.Errorf("wanted both player names listed, got %v", info.Players)
	case info.MaxPlayers != 4, info.GamesToPlay != 3:
		t.Errorf("wanted config fields copied, got %+v", info)
	case info.CreatedAt != testTime().Unix():
		t.Errorf("wanted creation time %v, got %v", testTime().Unix(), info.CreatedAt)
	}
}
