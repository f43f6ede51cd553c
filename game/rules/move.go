package rules

import (
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/tile"
)

type (
	// Move is a tile placement on a destination train.
	Move struct {
		Tile tile.Tile `json:"tile"`
		// TrainKind is personal or mexican.
		TrainKind tile.Kind `json:"trainKind"`
		// TrainOwner is the owning seat of a personal destination.
		TrainOwner player.SeatID `json:"trainOwner,omitempty"`
	}

	// MoveResult describes the state transition a legal move caused.
	MoveResult struct {
		Move Move `json:"move"`
		// Tail is the pip count the destination train now extends from.
		Tail int `json:"tail"`
		// PlayAgain indicates the player placed a double and keeps the turn.
		PlayAgain bool `json:"playAgain,omitempty"`
		// SatisfiedDouble indicates the move cleared a pending double.
		SatisfiedDouble bool `json:"satisfiedDouble,omitempty"`
		// TrainOpened indicates the player's personal train became open
		// because their own double was left pending on another train.
		TrainOpened bool `json:"trainOpened,omitempty"`
		// GameEnded indicates the player went out or play deadlocked.
		GameEnded bool `json:"gameEnded,omitempty"`
		// Deadlock indicates the game ended with no player able to move.
		Deadlock bool `json:"deadlock,omitempty"`
		// Winner is the winning seat when the game ended.
		Winner player.SeatID `json:"winner,omitempty"`
		// Scores are the remaining pips per seat when the game ended.
		Scores map[player.SeatID]int `json:"scores,omitempty"`
		// NextSeat is the seat to play after this move.
		NextSeat player.SeatID `json:"nextSeat,omitempty"`
	}
)

// ValidMoves enumerates every legal placement for the seat's hand as if it
// were that seat's turn.  A pending double anywhere restricts destinations
// to the trains holding pending doubles.
func (g *Game) ValidMoves(id player.SeatID) []Move {
	var moves []Move
	for _, t := range g.hands[id] {
		moves = append(moves, g.validMovesForTile(id, t)...)
	}
	return moves
}

// validMovesForTile enumerates the legal placements of one held tile.
func (g *Game) validMovesForTile(id player.SeatID, t tile.Tile) []Move {
	var moves []Move
	destinations := g.unsatisfiedTrains()
	if len(destinations) == 0 {
		destinations = g.openDestinations(id)
	}
	for _, tr := range destinations {
		if tr.CanAccept(t, g.enginePip) {
			moves = append(moves, Move{
				Tile:       t,
				TrainKind:  tr.Kind,
				TrainOwner: tr.Owner,
			})
		}
	}
	return moves
}

// openDestinations are the trains the seat may normally place on: its own
// train, the mexican train, and open trains of other seats.
func (g *Game) openDestinations(id player.SeatID) []*tile.Train {
	var destinations []*tile.Train
	for _, tr := range g.allTrains() {
		if tr.Open || (tr.Kind == tile.Personal && tr.Owner == id) {
			destinations = append(destinations, tr)
		}
	}
	return destinations
}

// Apply places the seat's tile on the destination train.  The game state is
// unchanged when an Error is returned.
func (g *Game) Apply(id player.SeatID, tileID tile.ID, kind tile.Kind, owner player.SeatID) (*MoveResult, error) {
	if g.status != InPlay {
		return nil, ErrGameOver
	}
	if g.CurrentSeat().ID != id {
		return nil, ErrNotYourTurn
	}
	t, ok := g.findInHand(id, tileID)
	if !ok {
		return nil, ErrTileNotInHand
	}
	tr, ok := g.Train(kind, owner)
	if !ok || !g.isLegalDestination(id, t, tr) {
		return nil, ErrIllegalDestination
	}
	satisfiedBefore := tr.UnsatisfiedDouble
	tail, err := tr.Place(t, g.enginePip)
	if err != nil {
		return nil, ErrIllegalDestination
	}
	g.removeFromHand(id, tileID)
	res := MoveResult{
		Move: Move{
			Tile:       t,
			TrainKind:  tr.Kind,
			TrainOwner: tr.Owner,
		},
		Tail: tail,
	}
	switch {
	case len(g.hands[id]) == 0:
		// Going out wins immediately, even on a double.
		g.endWithWinner(id)
	case t.IsDouble():
		g.doubleTurn = true
		res.PlayAgain = true
	default:
		if satisfiedBefore {
			res.SatisfiedDouble = true
		}
		if g.doubleTurn && len(g.unsatisfiedTrains()) > 0 {
			// The player's own double was left pending elsewhere.
			g.trains[id].Open = true
			res.TrainOpened = true
		}
		g.advanceTurn()
	}
	g.finishResult(&res.GameEnded, &res.Deadlock, &res.Winner, &res.Scores, &res.NextSeat)
	return &res, nil
}

// isLegalDestination indicates whether the held tile may be placed on the
// train under the current restrictions.
func (g *Game) isLegalDestination(id player.SeatID, t tile.Tile, tr *tile.Train) bool {
	if unsatisfied := g.unsatisfiedTrains(); len(unsatisfied) > 0 {
		for _, u := range unsatisfied {
			if u == tr {
				return u.CanAccept(t, g.enginePip)
			}
		}
		return false
	}
	if !tr.Open && !(tr.Kind == tile.Personal && tr.Owner == id) {
		return false
	}
	return tr.CanAccept(t, g.enginePip)
}

// findInHand looks up a held tile by id.
func (g *Game) findInHand(id player.SeatID, tileID tile.ID) (tile.Tile, bool) {
	for _, t := range g.hands[id] {
		if t.ID == tileID {
			return t, true
		}
	}
	return tile.Tile{}, false
}

// advanceTurn passes play to the next seat and resets per-turn state.
func (g *Game) advanceTurn() {
	g.turn = (g.turn + 1) % len(g.seats)
	g.doubleTurn = false
	g.checkDeadlock()
}

// finishResult copies termination state and the next seat into a result.
func (g *Game) finishResult(ended, deadlock *bool, winner *player.SeatID, scores *map[player.SeatID]int, next *player.SeatID) {
	if g.status == Ended {
		*ended = true
		*deadlock = g.deadlocked
		*winner = g.winner
		*scores = g.Scores()
		return
	}
	*next = g.CurrentSeat().ID
}
