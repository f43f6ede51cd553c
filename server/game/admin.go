package game

import (
	"fmt"
	"sort"

	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
)

type (
	// MatchDetail is the operator's view of one match.
	MatchDetail struct {
		Info game.Info `json:"info"`
		// Seats describes every seat, including connection state.
		Seats []SeatDetail `json:"seats"`
		// CurrentSeat is the seat whose turn it is, empty between games.
		CurrentSeat player.SeatID `json:"currentSeat,omitempty"`
		// Boneyard is the undrawn tile count of the game in play.
		Boneyard int `json:"boneyard,omitempty"`
		// Spectators are the attached viewers.
		Spectators []player.Name `json:"spectators,omitempty"`
	}

	// SeatDetail describes one seat for the operator.
	SeatDetail struct {
		ID        player.SeatID `json:"id"`
		Name      player.Name   `json:"name"`
		AI        bool          `json:"ai,omitempty"`
		Strategy  string        `json:"strategy,omitempty"`
		Connected bool          `json:"connected,omitempty"`
		HandSize  int           `json:"handSize,omitempty"`
	}

	// OnlineUser is where one player currently is.
	OnlineUser struct {
		Name  player.Name `json:"name"`
		Match game.ID     `json:"match"`
		// Spectating indicates the player watches rather than plays.
		Spectating bool `json:"spectating,omitempty"`
	}
)

// Matches lists every match, oldest first.
func (r *Runner) Matches() []game.Info {
	return r.matchInfos()
}

// MatchDetail describes the match for an operator.
func (r *Runner) MatchDetail(id game.ID) (*MatchDetail, error) {
	s, ok := r.sessionByID(id)
	if !ok {
		return nil, fmt.Errorf("no match with id %v", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d := MatchDetail{
		Info: s.match.Info(),
	}
	g := s.match.Game()
	for _, seat := range s.match.Seats() {
		sd := SeatDetail{
			ID:        seat.ID,
			Name:      seat.Name,
			AI:        seat.AI,
			Strategy:  seat.Strategy,
			Connected: seat.AI || s.connected[seat.Name],
		}
		if g != nil {
			sd.HandSize = g.HandSize(seat.ID)
		}
		d.Seats = append(d.Seats, sd)
	}
	if g != nil && g.Status() == rules.InPlay {
		d.CurrentSeat = g.CurrentSeat().ID
		d.Boneyard = g.BoneyardSize()
	}
	for pn := range s.spectators {
		d.Spectators = append(d.Spectators, pn)
	}
	sort.Slice(d.Spectators, func(i, j int) bool {
		return d.Spectators[i] < d.Spectators[j]
	})
	return &d, nil
}

// TerminateMatch forcibly ends the match, telling everyone in it why.
func (r *Runner) TerminateMatch(id game.ID, reason string) error {
	s, ok := r.sessionByID(id)
	if !ok {
		return fmt.Errorf("no match with id %v", id)
	}
	s.mu.Lock()
	s.cancelAI()
	s.match.MarkDeleted()
	r.broadcast(s, message.GameDeleted, &message.Data{
		Reason: reason,
	})
	s.mu.Unlock()
	r.removeSession(id)
	return nil
}

// AdvanceMatch forces the current turn to pass, recovering a match stuck on
// a seat that cannot act.
func (r *Runner) AdvanceMatch(id game.ID) error {
	s, ok := r.sessionByID(id)
	if !ok {
		return fmt.Errorf("no match with id %v", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.match.Game()
	if g == nil || g.Status() != rules.InPlay {
		return fmt.Errorf("match %v has no game in play", id)
	}
	s.cancelAI()
	g.ForceAdvance()
	r.broadcastGameState(s)
	if g.Status() != rules.InPlay {
		r.endGame(s)
		return nil
	}
	r.scheduleAI(s)
	return nil
}

// OnlineUsers lists every player in a match or spectating one, sorted by name.
func (r *Runner) OnlineUsers() []OnlineUser {
	r.mu.Lock()
	users := make([]OnlineUser, 0, len(r.players))
	for pn, p := range r.players {
		users = append(users, OnlineUser{
			Name:       pn,
			Match:      p.match,
			Spectating: p.spectator,
		})
	}
	r.mu.Unlock()
	sort.Slice(users, func(i, j int) bool {
		return users[i].Name < users[j].Name
	})
	return users
}
