package game

import (
	"context"
	"time"

	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/message"
)

// runCountdown periodically checks waiting match deadlines, auto-starting
// matches with enough players and deleting the rest.
func (r *Runner) runCountdown(ctx context.Context) {
	ticker := time.NewTicker(r.CountdownPeriod)
	defer ticker.Stop()
	for { // BLOCKING
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.checkCountdowns()
		}
	}
}

// checkCountdowns advances the countdown of every waiting match.
func (r *Runner) checkCountdowns() {
	r.mu.Lock()
	sessions := make([]*session, 0, len(r.matches))
	for _, s := range r.matches {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()
	for _, s := range sessions {
		r.checkCountdown(s)
	}
}

// checkCountdown auto-starts or deletes the match when its deadline passed,
// announcing whole-minute countdown changes on the way there.
func (r *Runner) checkCountdown(s *session) {
	s.mu.Lock()
	if s.match.Status() != game.Waiting {
		s.mu.Unlock()
		return
	}
	remaining := s.match.Deadline().Sub(r.TimeFunc())
	if remaining > 0 {
		minutes := countdownMinutes(remaining)
		if minutes != s.lastMinutes {
			s.lastMinutes = minutes
			r.broadcast(s, message.CountdownUpdate, &message.Data{
				MinutesLeft: minutes,
			})
		}
		s.mu.Unlock()
		return
	}
	if len(s.match.Seats()) >= s.match.Config().MinPlayers {
		strategy := r.StrategyForLevel(s.match.Config().AISkillLevel)
		if err := s.match.Start(false, strategy); err != nil {
			r.Log.Printf("auto-starting match %v: %v", s.match.ID(), err)
			s.mu.Unlock()
			return
		}
		r.startedGame(s, message.GameAutoStarted)
		s.mu.Unlock()
		r.broadcastMatchList()
		return
	}
	s.match.MarkDeleted()
	r.broadcast(s, message.GameDeleted, &message.Data{
		Reason: "not enough players before the countdown expired",
	})
	id := s.match.ID()
	s.mu.Unlock()
	r.removeSession(id)
}

// countdownMinutes is the whole minutes left, rounded up so a waiting match
// never shows zero minutes before it resolves.
func countdownMinutes(remaining time.Duration) int {
	return int((remaining + time.Minute - 1) / time.Minute)
}
