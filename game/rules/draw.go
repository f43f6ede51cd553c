package rules

import (
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/tile"
)

// DrawResult describes the outcome of a draw attempt.
type DrawResult struct {
	// Tile is the drawn tile, revealed only to the drawer.  Nil when the
	// boneyard was empty.
	Tile *tile.Tile `json:"tile,omitempty"`
	// CanPlayDrawn indicates the drawn tile is playable, so the player
	// keeps the turn to place it.
	CanPlayDrawn bool `json:"canPlayDrawn,omitempty"`
	// TurnPassed indicates play moved on because the drawn tile was
	// unplayable or the boneyard was empty.
	TurnPassed bool `json:"turnPassed,omitempty"`
	// TrainOpened indicates the player's personal train became open.
	TrainOpened bool `json:"trainOpened,omitempty"`
	// GameEnded indicates the draw triggered the end of the game.
	GameEnded bool `json:"gameEnded,omitempty"`
	// Deadlock indicates the game ended with no player able to move.
	Deadlock bool `json:"deadlock,omitempty"`
	// Winner is the winning seat when the game ended.
	Winner player.SeatID `json:"winner,omitempty"`
	// Scores are the remaining pips per seat when the game ended.
	Scores map[player.SeatID]int `json:"scores,omitempty"`
	// NextSeat is the seat to play after the draw.
	NextSeat player.SeatID `json:"nextSeat,omitempty"`
}

// Draw gives the current seat a boneyard tile when it has no legal move.
// An unplayable draw, or a draw from an empty boneyard, opens the seat's
// personal train and passes the turn.  The game state is unchanged when an
// Error is returned.
func (g *Game) Draw(id player.SeatID) (*DrawResult, error) {
	if g.status != InPlay {
		return nil, ErrGameOver
	}
	if g.CurrentSeat().ID != id {
		return nil, ErrNotYourTurn
	}
	if len(g.ValidMoves(id)) > 0 {
		return nil, ErrMustPlayNotDraw
	}
	var res DrawResult
	if len(g.boneyard) == 0 {
		g.passTurn(id, &res)
		g.finishResult(&res.GameEnded, &res.Deadlock, &res.Winner, &res.Scores, &res.NextSeat)
		return &res, nil
	}
	t := g.boneyard[len(g.boneyard)-1]
	g.boneyard = g.boneyard[:len(g.boneyard)-1]
	g.hands[id] = append(g.hands[id], t)
	res.Tile = &t
	if len(g.validMovesForTile(id, t)) > 0 {
		res.CanPlayDrawn = true
		res.NextSeat = id
		return &res, nil
	}
	g.passTurn(id, &res)
	g.finishResult(&res.GameEnded, &res.Deadlock, &res.Winner, &res.Scores, &res.NextSeat)
	return &res, nil
}

// passTurn opens the seat's personal train and moves play to the next seat.
func (g *Game) passTurn(id player.SeatID, res *DrawResult) {
	if tr := g.trains[id]; !tr.Open {
		tr.Open = true
		res.TrainOpened = true
	}
	res.TurnPassed = true
	g.advanceTurn()
}

// ForceAdvance unconditionally passes the turn without opening the seat's
// train.  It recovers play when a seat cannot act, such as an expired
// computer player.  The next seat to play is returned.
func (g *Game) ForceAdvance() player.SeatID {
	if g.status != InPlay {
		return ""
	}
	g.advanceTurn()
	if g.status != InPlay {
		return ""
	}
	return g.CurrentSeat().ID
}

// checkDeadlock ends the game when the boneyard is empty and no seat holds
// a playable tile.  The seat with the fewest remaining pips wins, earliest
// seat on ties.
func (g *Game) checkDeadlock() {
	if len(g.boneyard) > 0 {
		return
	}
	for _, s := range g.seats {
		if len(g.ValidMoves(s.ID)) > 0 {
			return
		}
	}
	g.deadlocked = true
	winner := g.seats[0].ID
	for _, s := range g.seats[1:] {
		if tile.PipSum(g.hands[s.ID]) < tile.PipSum(g.hands[winner]) {
			winner = s.ID
		}
	}
	g.endWithWinner(winner)
}

// endWithWinner records the winner and each seat's remaining pips.
func (g *Game) endWithWinner(winner player.SeatID) {
	g.status = Ended
	g.winner = winner
	g.endedAt = g.TimeFunc()
	for _, s := range g.seats {
		g.scores[s.ID] = tile.PipSum(g.hands[s.ID])
	}
}
