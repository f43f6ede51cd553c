package rules

import (
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/tile"
)

type (
	// TrainSnapshot is the visible state of one train.
	TrainSnapshot struct {
		Kind              tile.Kind     `json:"kind"`
		Owner             player.SeatID `json:"owner,omitempty"`
		Tiles             []tile.Placed `json:"tiles"`
		Open              bool          `json:"open"`
		UnsatisfiedDouble bool          `json:"unsatisfiedDouble,omitempty"`
		// HeadValue is the pip count the next tile must match.
		HeadValue int `json:"headValue"`
	}

	// Snapshot is the state of the game as sent to clients.  The full
	// snapshot holds every hand; personalize it before sending.
	Snapshot struct {
		Engine      tile.Tile                     `json:"engine"`
		EnginePip   int                           `json:"enginePip"`
		Seats       []player.Seat                 `json:"seats"`
		CurrentSeat player.SeatID                 `json:"currentSeat,omitempty"`
		Trains      []TrainSnapshot               `json:"trains"`
		HandCounts  map[player.SeatID]int         `json:"handCounts"`
		Hands       map[player.SeatID][]tile.Tile `json:"hands,omitempty"`
		Boneyard    int                           `json:"boneyard"`
		Ended       bool                          `json:"ended,omitempty"`
		Deadlock    bool                          `json:"deadlock,omitempty"`
		Winner      player.SeatID                 `json:"winner,omitempty"`
		Scores      map[player.SeatID]int         `json:"scores,omitempty"`
	}
)

// Snapshot captures the full game state, including every hand.
func (g *Game) Snapshot() *Snapshot {
	s := Snapshot{
		Engine:     g.engine,
		EnginePip:  g.enginePip,
		Seats:      g.Seats(),
		Trains:     make([]TrainSnapshot, 0, len(g.seats)+1),
		HandCounts: make(map[player.SeatID]int, len(g.seats)),
		Hands:      make(map[player.SeatID][]tile.Tile, len(g.seats)),
		Boneyard:   len(g.boneyard),
	}
	for _, tr := range g.allTrains() {
		tiles := make([]tile.Placed, len(tr.Tiles))
		copy(tiles, tr.Tiles)
		s.Trains = append(s.Trains, TrainSnapshot{
			Kind:              tr.Kind,
			Owner:             tr.Owner,
			Tiles:             tiles,
			Open:              tr.Open,
			UnsatisfiedDouble: tr.UnsatisfiedDouble,
			HeadValue:         tr.HeadValue(g.enginePip),
		})
	}
	for _, seat := range g.seats {
		s.HandCounts[seat.ID] = len(g.hands[seat.ID])
		s.Hands[seat.ID] = g.Hand(seat.ID)
	}
	if g.status == Ended {
		s.Ended = true
		s.Deadlock = g.deadlocked
		s.Winner = g.winner
		s.Scores = g.Scores()
	} else {
		s.CurrentSeat = g.CurrentSeat().ID
	}
	return &s
}

// For returns a copy of the snapshot revealing only the seat's own hand.
// Other seats appear as hand counts.
func (s *Snapshot) For(id player.SeatID) *Snapshot {
	personalized := *s
	if hand, ok := s.Hands[id]; ok {
		personalized.Hands = map[player.SeatID][]tile.Tile{
			id: hand,
		}
	} else {
		personalized.Hands = nil
	}
	return &personalized
}

// ForSpectator returns a copy of the snapshot with no hands revealed.
func (s *Snapshot) ForSpectator() *Snapshot {
	personalized := *s
	personalized.Hands = nil
	return &personalized
}
