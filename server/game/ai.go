package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
)

// aiMaxActions caps the chained actions of one computer turn: double
// play-agains and playable draws extend a turn, but never without bound.
const aiMaxActions = 10

// cancelAI stops the pending computer turn, if any.  Callers hold s.mu.
func (s *session) cancelAI() {
	if s.aiCancel != nil {
		s.aiCancel()
		s.aiCancel = nil
	}
}

// chooserFor is the cached move chooser of a computer seat.  Callers hold s.mu.
func (r *Runner) chooserFor(s *session, seat player.Seat) MoveChooser {
	c, ok := s.choosers[seat.ID]
	if !ok {
		c = r.Tacticians(seat.Strategy, r.TimeFunc().UnixNano())
		s.choosers[seat.ID] = c
	}
	return c
}

// scheduleAI arms a computer turn when the game in play waits on a computer
// seat, and cancels any stale one.  Turns derive from the runner's root
// context so re-arming mid-turn does not cancel the replacement.
// Callers hold s.mu.
func (r *Runner) scheduleAI(s *session) {
	s.cancelAI()
	g := s.match.Game()
	if g == nil || g.Status() != rules.InPlay {
		return
	}
	seat := g.CurrentSeat()
	if !seat.AI {
		return
	}
	aiCtx, cancel := context.WithCancel(r.ctx)
	s.aiCancel = cancel
	go r.runAITurn(aiCtx, s, seat)
}

// runAITurn waits the thinking delay, then plays the computer seat's whole
// turn: placements, play-agains after doubles, and draws.  A chooser that
// exceeds the move timeout forfeits the turn.
func (r *Runner) runAITurn(ctx context.Context, s *session, seat player.Seat) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(r.AIDelay):
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-ctx.Done():
		return
	default:
	}
	g := s.match.Game()
	if g == nil || g.Status() != rules.InPlay || g.CurrentSeat().ID != seat.ID {
		return
	}
	chooser := r.chooserFor(s, seat)
	for i := 0; i < aiMaxActions; i++ {
		if g.Status() != rules.InPlay {
			r.endGame(s)
			return
		}
		if g.CurrentSeat().ID != seat.ID {
			r.scheduleAI(s)
			return
		}
		move, ok, err := r.chooseMove(ctx, chooser, g, seat.ID)
		if err != nil {
			r.forfeitAITurn(s, g, seat, err)
			return
		}
		if !ok {
			if done := r.applyAIDraw(s, g, seat); done {
				return
			}
			continue
		}
		if done := r.applyAIMove(s, g, seat, move); done {
			return
		}
	}
	r.forfeitAITurn(s, g, seat, errors.New("turn did not finish"))
}

// chooseMove runs the chooser, failing if it exceeds the move timeout or
// the turn is cancelled.
func (r *Runner) chooseMove(ctx context.Context, chooser MoveChooser, g *rules.Game, id player.SeatID) (rules.Move, bool, error) {
	type choice struct {
		move rules.Move
		ok   bool
		err  error
	}
	choices := make(chan choice, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				choices <- choice{err: fmt.Errorf("chooser panicked: %v", rec)}
			}
		}()
		move, ok := chooser.ChooseMove(g, id)
		choices <- choice{move: move, ok: ok}
	}()
	select {
	case <-ctx.Done():
		return rules.Move{}, false, ctx.Err()
	case <-time.After(r.AIMoveTimeout):
		return rules.Move{}, false, errors.New("choosing a move timed out")
	case c := <-choices:
		return c.move, c.ok, c.err
	}
}

// applyAIMove places the chosen tile, reporting whether the turn is over.
// Callers hold s.mu.
func (r *Runner) applyAIMove(s *session, g *rules.Game, seat player.Seat, move rules.Move) bool {
	res, err := g.Apply(seat.ID, move.Tile.ID, move.TrainKind, move.TrainOwner)
	if err != nil {
		r.forfeitAITurn(s, g, seat, err)
		return true
	}
	r.broadcast(s, message.AIMove, &message.Data{
		PlayerName: seat.Name,
		SeatID:     seat.ID,
		MoveResult: res,
	})
	r.broadcastGameState(s)
	switch {
	case res.GameEnded:
		r.endGame(s)
		return true
	case res.PlayAgain:
		return false
	}
	r.scheduleAI(s)
	return true
}

// applyAIDraw draws for the computer seat, reporting whether the turn is
// over.  The drawn tile stays hidden from the broadcast.  Callers hold s.mu.
func (r *Runner) applyAIDraw(s *session, g *rules.Game, seat player.Seat) bool {
	res, err := g.Draw(seat.ID)
	if err != nil {
		r.forfeitAITurn(s, g, seat, err)
		return true
	}
	hidden := *res
	hidden.Tile = nil
	r.broadcast(s, message.AIMove, &message.Data{
		PlayerName: seat.Name,
		SeatID:     seat.ID,
		DrawResult: &hidden,
	})
	r.broadcastGameState(s)
	switch {
	case res.GameEnded:
		r.endGame(s)
		return true
	case res.CanPlayDrawn:
		return false
	}
	r.scheduleAI(s)
	return true
}

// forfeitAITurn reports a stuck computer seat and forces play onward so the
// game never stalls on it.  Callers hold s.mu.
func (r *Runner) forfeitAITurn(s *session, g *rules.Game, seat player.Seat, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	r.Log.Printf("computer seat %v in match %v forfeited its turn: %v", seat.Name, s.match.ID(), err)
	r.broadcast(s, message.AIError, &message.Data{
		PlayerName: seat.Name,
		SeatID:     seat.ID,
		Reason:     err.Error(),
	})
	g.ForceAdvance()
	r.broadcastGameState(s)
	if g.Status() != rules.InPlay {
		r.endGame(s)
		return
	}
	r.scheduleAI(s)
}
