// Package rules implements the domino rules for a single game: dealing,
// engine selection, move legality, double obligations, drawing, and
// termination.  It mutates no state outside the Game and performs no i/o,
// so callers decide how results are reported.
package rules

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/tile"
)

type (
	// Status is the lifecycle state of a single game.
	Status int

	// Config contains the knobs and injected functions for creating games.
	Config struct {
		// MaxPip is the highest pip count in the tile set.
		MaxPip int
		// ShuffleFunc randomizes the boneyard before dealing.
		ShuffleFunc func(tiles []tile.Tile)
		// TimeFunc is the source of timestamps for game start and end.
		TimeFunc func() time.Time
	}

	// Game is the full rules state of one game within a match.
	Game struct {
		seats      []player.Seat
		hands      map[player.SeatID][]tile.Tile
		trains     map[player.SeatID]*tile.Train
		mexican    *tile.Train
		boneyard   []tile.Tile
		engine     tile.Tile
		enginePip  int
		turn       int
		doubleTurn bool
		status     Status
		deadlocked bool
		winner     player.SeatID
		scores     map[player.SeatID]int
		startedAt  time.Time
		endedAt    time.Time
		Config
	}
)

const (
	// InPlay indicates turns are being taken.
	InPlay Status = iota
	// Ended indicates a player went out or the game deadlocked.
	Ended
)

// WithDefaults returns a copy of the config with unset fields populated.
func (cfg Config) WithDefaults() Config {
	if cfg.MaxPip <= 0 {
		cfg.MaxPip = 12
	}
	if cfg.ShuffleFunc == nil {
		cfg.ShuffleFunc = func(tiles []tile.Tile) {
			rand.Shuffle(len(tiles), func(i, j int) {
				tiles[i], tiles[j] = tiles[j], tiles[i]
			})
		}
	}
	if cfg.TimeFunc == nil {
		cfg.TimeFunc = time.Now
	}
	return cfg
}

// HandSize is the number of tiles dealt to each seat for the player count.
func HandSize(numPlayers int) int {
	switch {
	case numPlayers <= 2:
		return 16
	case numPlayers <= 4:
		return 15
	case numPlayers <= 6:
		return 12
	default:
		return 10
	}
}

// NewGame deals hands to the seats, selects the engine, and starts play.
func (cfg Config) NewGame(seats []player.Seat) (*Game, error) {
	cfg = cfg.WithDefaults()
	if len(seats) == 0 {
		return nil, fmt.Errorf("creating game: no seats")
	}
	set := tile.NewSet(cfg.MaxPip)
	handSize := HandSize(len(seats))
	if len(seats)*handSize >= len(set) {
		return nil, fmt.Errorf("creating game: %v seats need %v tiles, set only has %v",
			len(seats), len(seats)*handSize, len(set))
	}
	cfg.ShuffleFunc(set)
	g := Game{
		seats:  make([]player.Seat, len(seats)),
		hands:  make(map[player.SeatID][]tile.Tile, len(seats)),
		trains: make(map[player.SeatID]*tile.Train, len(seats)),
		scores: make(map[player.SeatID]int, len(seats)),
		Config: cfg,
	}
	copy(g.seats, seats)
	for _, s := range g.seats {
		g.hands[s.ID] = set[:handSize:handSize]
		set = set[handSize:]
		g.trains[s.ID] = tile.NewPersonalTrain(s.ID)
	}
	g.boneyard = set
	g.mexican = tile.NewMexicanTrain()
	g.selectEngine()
	g.status = InPlay
	g.startedAt = cfg.TimeFunc()
	return &g, nil
}

// selectEngine removes the highest double from the hand holding it and makes
// it the engine; its holder plays first.  When no hand holds a double, the
// highest-value tile is consumed instead and a double of its larger pip is
// synthesized, keeping the consumed tile's id.
func (g *Game) selectEngine() {
	starter := -1
	bestDouble := -1
	for i, s := range g.seats {
		for _, t := range g.hands[s.ID] {
			if t.IsDouble() && t.Left > bestDouble {
				starter, bestDouble = i, t.Left
				g.engine = t
			}
		}
	}
	if starter < 0 {
		bestValue := -1
		for i, s := range g.seats {
			for _, t := range g.hands[s.ID] {
				if t.Value() > bestValue {
					starter, bestValue = i, t.Value()
					g.engine = t
				}
			}
		}
		source := g.engine
		pip := source.Left
		if source.Right > pip {
			pip = source.Right
		}
		g.engine = tile.Tile{
			ID:    source.ID,
			Left:  pip,
			Right: pip,
		}
		g.removeFromHand(g.seats[starter].ID, source.ID)
	} else {
		g.removeFromHand(g.seats[starter].ID, g.engine.ID)
	}
	g.enginePip = g.engine.Left
	g.turn = starter
}

// removeFromHand deletes the tile from the seat's hand, returning it.
func (g *Game) removeFromHand(id player.SeatID, tileID tile.ID) (tile.Tile, bool) {
	hand := g.hands[id]
	for i, t := range hand {
		if t.ID == tileID {
			replacement := make([]tile.Tile, 0, len(hand)-1)
			replacement = append(replacement, hand[:i]...)
			replacement = append(replacement, hand[i+1:]...)
			g.hands[id] = replacement
			return t, true
		}
	}
	return tile.Tile{}, false
}

// Status is the lifecycle state of the game.
func (g *Game) Status() Status {
	return g.status
}

// Engine is the tile at the hub of all trains.
func (g *Game) Engine() tile.Tile {
	return g.engine
}

// EnginePip is the pip count empty trains extend from.
func (g *Game) EnginePip() int {
	return g.enginePip
}

// Seats returns the seats in turn order.
func (g *Game) Seats() []player.Seat {
	seats := make([]player.Seat, len(g.seats))
	copy(seats, g.seats)
	return seats
}

// CurrentSeat is the seat whose turn it is.
func (g *Game) CurrentSeat() player.Seat {
	return g.seats[g.turn]
}

// Deadlocked indicates the game ended with no seat able to move.
func (g *Game) Deadlocked() bool {
	return g.deadlocked
}

// Winner is the seat that went out, or the lowest-pip seat after a deadlock.
// Empty until the game ends.
func (g *Game) Winner() player.SeatID {
	return g.winner
}

// Scores are each seat's remaining pips at the end of the game.
// Nil until the game ends.
func (g *Game) Scores() map[player.SeatID]int {
	if g.status != Ended {
		return nil
	}
	scores := make(map[player.SeatID]int, len(g.scores))
	for id, s := range g.scores {
		scores[id] = s
	}
	return scores
}

// Hand returns a copy of the seat's tiles.
func (g *Game) Hand(id player.SeatID) []tile.Tile {
	hand := make([]tile.Tile, len(g.hands[id]))
	copy(hand, g.hands[id])
	return hand
}

// HandSize is the number of tiles the seat holds.
func (g *Game) HandSize(id player.SeatID) int {
	return len(g.hands[id])
}

// TotalHandTiles is the number of tiles held across all hands.
func (g *Game) TotalHandTiles() int {
	n := 0
	for _, hand := range g.hands {
		n += len(hand)
	}
	return n
}

// BoneyardSize is the number of undrawn tiles.
func (g *Game) BoneyardSize() int {
	return len(g.boneyard)
}

// Duration is how long the game has run, or ran if it ended.
func (g *Game) Duration() time.Duration {
	if g.status == Ended {
		return g.endedAt.Sub(g.startedAt)
	}
	return g.TimeFunc().Sub(g.startedAt)
}

// Train looks up a train by kind and owner.  The owner is ignored for the
// mexican train.
func (g *Game) Train(kind tile.Kind, owner player.SeatID) (*tile.Train, bool) {
	switch kind {
	case tile.Mexican:
		return g.mexican, true
	case tile.Personal:
		tr, ok := g.trains[owner]
		return tr, ok
	}
	return nil, false
}

// trains in stable order: personal trains by seat, then the mexican train.
func (g *Game) allTrains() []*tile.Train {
	trains := make([]*tile.Train, 0, len(g.seats)+1)
	for _, s := range g.seats {
		trains = append(trains, g.trains[s.ID])
	}
	return append(trains, g.mexican)
}

// unsatisfiedTrains are the trains whose last tile is a pending double.
func (g *Game) unsatisfiedTrains() []*tile.Train {
	var unsatisfied []*tile.Train
	for _, tr := range g.allTrains() {
		if tr.UnsatisfiedDouble {
			unsatisfied = append(unsatisfied, tr)
		}
	}
	return unsatisfied
}

// CountMatchingInOtherHands counts tiles matching the pip held by seats other
// than the one specified.
func (g *Game) CountMatchingInOtherHands(id player.SeatID, pip int) int {
	n := 0
	for seatID, hand := range g.hands {
		if seatID == id {
			continue
		}
		for _, t := range hand {
			if t.Matches(pip) {
				n++
			}
		}
	}
	return n
}
