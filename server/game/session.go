package game

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/match"
	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
	"github.com/trainyard-games/mexican-train/game/tile"
)

// session is one live match and its connection state.  The mutex serializes
// the runner loop, computer turns, the countdown, and admin calls.
type session struct {
	mu    sync.Mutex
	match *match.Match
	// connected tracks which seated players have a live socket.
	connected map[player.Name]bool
	// spectators are attached read-only viewers.
	spectators map[player.Name]struct{}
	// choosers caches the move chooser of each computer seat.
	choosers map[player.SeatID]MoveChooser
	// aiCancel stops the pending computer turn, if any.
	aiCancel context.CancelFunc
	// lastMinutes is the countdown minute last announced.
	lastMinutes int
}

// newSession wraps a match for the runner.
func newSession(m *match.Match) *session {
	return &session{
		match:      m,
		connected:  map[player.Name]bool{m.Host(): true},
		spectators: make(map[player.Name]struct{}),
		choosers:   make(map[player.SeatID]MoveChooser),
	}
}

// forEachRecipient calls f with the name of every connected human seat and
// every spectator.  Callers hold s.mu.
func (s *session) forEachRecipient(f func(pn player.Name)) {
	for _, seat := range s.match.Seats() {
		if seat.AI || !s.connected[seat.Name] {
			continue
		}
		f(seat.Name)
	}
	for pn := range s.spectators {
		f(pn)
	}
}

// broadcast sends a copy of the data to everyone in the match.  Callers
// hold s.mu.
func (r *Runner) broadcast(s *session, mt message.Type, data *message.Data) {
	id := s.match.ID()
	s.forEachRecipient(func(pn player.Name) {
		r.send(message.Message{
			Type:       mt,
			PlayerName: pn,
			Match:      id,
			Data:       data,
		})
	})
}

// broadcastMatchState sends the match's seats and status to everyone in it.
// Callers hold s.mu.
func (r *Runner) broadcastMatchState(s *session) {
	info := s.match.Info()
	r.broadcast(s, message.MatchState, &message.Data{
		Info: &info,
	})
}

// broadcastGameState sends each player their personalized snapshot of the
// game in play.  Callers hold s.mu.
func (r *Runner) broadcastGameState(s *session) {
	g := s.match.Game()
	if g == nil {
		return
	}
	snapshot := g.Snapshot()
	id := s.match.ID()
	for _, seat := range s.match.Seats() {
		if seat.AI || !s.connected[seat.Name] {
			continue
		}
		r.send(message.Message{
			Type:       message.GameState,
			PlayerName: seat.Name,
			Match:      id,
			Data: &message.Data{
				Snapshot: snapshot.For(seat.ID),
			},
		})
	}
	for pn := range s.spectators {
		r.send(message.Message{
			Type:       message.GameState,
			PlayerName: pn,
			Match:      id,
			Data: &message.Data{
				Snapshot: snapshot.ForSpectator(),
			},
		})
	}
}

// handleCreateMatch opens a new match with the sender as host.
func (r *Runner) handleCreateMatch(ctx context.Context, m message.Message) {
	var id game.ID
	name := ""
	cfg := r.MatchCfg
	if m.Data != nil {
		id = m.Data.MatchID
		name = m.Data.MatchName
		if m.Data.Config != nil {
			cfg = *m.Data.Config
		}
	}
	if len(id) == 0 {
		id = newMatchID()
	}
	r.leaveCurrentMatch(ctx, m.PlayerName)
	s, err := r.createMatch(id, name, m.PlayerName, cfg)
	if err != nil {
		r.sendError(m, errorKind(err), err)
		return
	}
	s.mu.Lock()
	seat, _ := s.match.Seat(m.PlayerName)
	info := s.match.Info()
	s.mu.Unlock()
	r.send(message.Message{
		Type:       message.MatchState,
		PlayerName: m.PlayerName,
		Match:      id,
		Data: &message.Data{
			Info:   &info,
			SeatID: seat.ID,
		},
	})
	r.broadcastMatchList()
}

// createMatch makes the match and registers its session and host.
func (r *Runner) createMatch(id game.ID, name string, host player.Name, cfg game.Config) (*session, error) {
	matchCfg := match.Config{
		TimeFunc:    r.TimeFunc,
		ShuffleFunc: r.ShuffleFunc,
	}
	m, err := matchCfg.New(id, name, host, cfg)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; ok {
		return nil, errors.New("match id already in use")
	}
	if len(r.matches) >= r.MaxMatches {
		return nil, errors.New("the maximum number of matches already exist")
	}
	s := newSession(m)
	r.matches[id] = s
	r.players[host] = presence{match: id}
	return s, nil
}

// handleJoinGame seats the sender in the match, creating it when the id is
// unknown and auto-creation is allowed.  A player who already holds a seat
// gets it back, reconnecting them mid-game.
func (r *Runner) handleJoinGame(ctx context.Context, m message.Message) {
	if m.Data == nil || len(m.Data.MatchID) == 0 {
		r.sendError(m, errKindMatchNotFound, errors.New("no match id"))
		return
	}
	id := m.Data.MatchID
	s, ok := r.sessionByID(id)
	if !ok {
		if r.NoAutoCreate || strings.HasPrefix(string(id), reservedIDPrefix) {
			r.sendError(m, errKindMatchNotFound, errors.New("no match with that id"))
			return
		}
		if m.Data.Config == nil {
			// the convenience path makes a default single-game match
			cfg := r.MatchCfg
			cfg.GamesToPlay = 1
			data := *m.Data
			data.Config = &cfg
			m.Data = &data
		}
		r.handleCreateMatch(ctx, m)
		return
	}
	if cur, _, ok := r.sessionFor(m.PlayerName); ok && cur != s {
		r.leaveCurrentMatch(ctx, m.PlayerName)
	}
	s.mu.Lock()
	seat, added, err := s.match.AddPlayer(m.PlayerName)
	if err != nil {
		s.mu.Unlock()
		r.sendError(m, errorKind(err), err)
		return
	}
	s.connected[m.PlayerName] = true
	delete(s.spectators, m.PlayerName)
	info := s.match.Info()
	inProgress := s.match.Status() == game.InProgress
	s.mu.Unlock()
	r.setPresence(m.PlayerName, presence{match: id})
	r.send(message.Message{
		Type:       message.MatchState,
		PlayerName: m.PlayerName,
		Match:      id,
		Data: &message.Data{
			Info:   &info,
			SeatID: seat.ID,
		},
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if added {
		r.broadcast(s, message.PlayerJoined, &message.Data{
			PlayerName: m.PlayerName,
			SeatID:     seat.ID,
		})
	}
	if inProgress {
		// reconnection: resend the game and restart a stalled computer turn
		r.broadcastGameState(s)
		r.scheduleAI(s)
	}
	if added {
		go r.broadcastMatchList()
	}
}

// handleSpectateGame attaches the sender to a started match as a viewer.
func (r *Runner) handleSpectateGame(ctx context.Context, m message.Message) {
	if m.Data == nil || len(m.Data.MatchID) == 0 {
		r.sendError(m, errKindMatchNotFound, errors.New("no match id"))
		return
	}
	id := m.Data.MatchID
	s, ok := r.sessionByID(id)
	if !ok {
		r.sendError(m, errKindMatchNotFound, errors.New("no match with that id"))
		return
	}
	s.mu.Lock()
	switch {
	case !s.match.Config().AllowSpectators:
		s.mu.Unlock()
		r.sendError(m, errKindSpectateNotAllowed, errors.New("match does not allow spectators"))
		return
	case s.match.Status() != game.InProgress:
		s.mu.Unlock()
		r.sendError(m, errKindSpectateNotAllowed, errors.New("match is not in progress"))
		return
	}
	if _, seated := s.match.Seat(m.PlayerName); seated {
		s.mu.Unlock()
		r.sendError(m, errKindSpectateNotAllowed, errors.New("players cannot spectate their own match"))
		return
	}
	s.spectators[m.PlayerName] = struct{}{}
	info := s.match.Info()
	count := len(s.spectators)
	s.mu.Unlock()
	r.setPresence(m.PlayerName, presence{match: id, spectator: true})
	r.send(message.Message{
		Type:       message.MatchState,
		PlayerName: m.PlayerName,
		Match:      id,
		Data: &message.Data{
			Info: &info,
		},
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	r.broadcast(s, message.SpectatorJoined, &message.Data{
		PlayerName:     m.PlayerName,
		SpectatorCount: count,
	})
	r.broadcastGameState(s)
}

// handleLeaveGame detaches the sender from their match.
func (r *Runner) handleLeaveGame(ctx context.Context, m message.Message) {
	r.leaveCurrentMatch(ctx, m.PlayerName)
}

// leaveCurrentMatch removes the player from whatever match they are part
// of.  Seats are freed while the match waits; a started match keeps the
// seat and only marks the player disconnected.  A waiting match whose last
// seat empties is deleted.
func (r *Runner) leaveCurrentMatch(ctx context.Context, pn player.Name) {
	s, p, ok := r.sessionFor(pn)
	if !ok {
		return
	}
	id := p.match
	if p.spectator {
		s.mu.Lock()
		delete(s.spectators, pn)
		count := len(s.spectators)
		r.broadcast(s, message.SpectatorLeft, &message.Data{
			PlayerName:     pn,
			SpectatorCount: count,
		})
		s.mu.Unlock()
		r.clearPresence(pn, id)
		return
	}
	s.mu.Lock()
	delete(s.connected, pn)
	empty := false
	unseated := false
	if s.match.Status() == game.Waiting {
		if err := s.match.RemovePlayer(pn); err != nil {
			r.Log.Printf("removing %v from match %v: %v", pn, id, err)
		} else {
			unseated = true
		}
		empty = len(s.match.Seats()) == 0
		if !empty {
			r.broadcastMatchState(s)
		}
	}
	s.mu.Unlock()
	r.clearPresence(pn, id)
	switch {
	case empty:
		r.removeSession(id)
	case unseated:
		r.broadcastMatchList()
	}
}

// handleSocketClosed marks the player disconnected.  A seat in a waiting
// match is freed so the countdown does not start a game for an absent
// player; a seat in a started match is kept for reconnection.
func (r *Runner) handleSocketClosed(ctx context.Context, m message.Message) {
	s, p, ok := r.sessionFor(m.PlayerName)
	if !ok {
		return
	}
	if p.spectator || r.matchWaiting(s) {
		r.leaveCurrentMatch(ctx, m.PlayerName)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected[m.PlayerName] = false
}

// matchWaiting indicates whether the session's match has not started.
func (r *Runner) matchWaiting(s *session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Status() == game.Waiting
}

// handleStartGame begins the match.  Only the host may start it; with the
// force flag set, missing players are filled with computer seats.
func (r *Runner) handleStartGame(ctx context.Context, m message.Message) {
	s, p, ok := r.sessionFor(m.PlayerName)
	if !ok || p.spectator {
		r.sendError(m, errKindMatchNotFound, errors.New("not in a match"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.match.Host() != m.PlayerName {
		r.sendError(m, errKindNotHost, errors.New("only the host can start the match"))
		return
	}
	force := m.Data != nil && m.Data.Force
	strategy := r.StrategyForLevel(s.match.Config().AISkillLevel)
	if err := s.match.Start(force, strategy); err != nil {
		kind := errorKind(err)
		if kind == errKindInternal {
			kind = errKindNotEnoughPlayers
		}
		r.sendError(m, kind, err)
		return
	}
	r.startedGame(s, message.GameStarted)
	go r.broadcastMatchList()
}

// startedGame announces a newly dealt game and arms the first turn.
// Callers hold s.mu.
func (r *Runner) startedGame(s *session, mt message.Type) {
	info := s.match.Info()
	r.broadcast(s, mt, &message.Data{
		Info: &info,
	})
	r.broadcastGameState(s)
	r.scheduleAI(s)
}

// seatOf resolves the sender's seat in the game in play.
func (r *Runner) seatOf(m message.Message) (*session, *rules.Game, player.Seat, bool) {
	s, p, ok := r.sessionFor(m.PlayerName)
	if !ok || p.spectator {
		r.sendError(m, errKindMatchNotFound, errors.New("not in a match"))
		return nil, nil, player.Seat{}, false
	}
	s.mu.Lock()
	g := s.match.Game()
	if g == nil {
		s.mu.Unlock()
		r.sendError(m, string(rules.ErrGameOver), errors.New("no game in play"))
		return nil, nil, player.Seat{}, false
	}
	seat, ok := s.match.Seat(m.PlayerName)
	if !ok {
		s.mu.Unlock()
		r.sendError(m, errKindMatchNotFound, errors.New("no seat in the match"))
		return nil, nil, player.Seat{}, false
	}
	return s, g, seat, true
}

// handleMakeMove places the sender's tile.  The result is broadcast along
// with fresh personalized game states.
func (r *Runner) handleMakeMove(ctx context.Context, m message.Message) {
	if m.Data == nil {
		r.sendError(m, errKindInternal, errors.New("no move data"))
		return
	}
	s, g, seat, ok := r.seatOf(m)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	res, err := g.Apply(seat.ID, m.Data.TileID, m.Data.TrainKind, m.Data.TrainOwner)
	if err != nil {
		r.sendError(m, errorKind(err), err)
		return
	}
	r.broadcast(s, message.MoveResult, &message.Data{
		PlayerName: m.PlayerName,
		SeatID:     seat.ID,
		MoveResult: res,
	})
	r.broadcastGameState(s)
	if res.GameEnded {
		r.endGame(s)
		return
	}
	r.scheduleAI(s)
}

// handleDrawDomino draws a boneyard tile for the sender.  Only the drawer
// learns which tile was drawn.
func (r *Runner) handleDrawDomino(ctx context.Context, m message.Message) {
	s, g, seat, ok := r.seatOf(m)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	res, err := g.Draw(seat.ID)
	if err != nil {
		r.sendError(m, errorKind(err), err)
		return
	}
	r.send(message.Message{
		Type:       message.DrawResult,
		PlayerName: m.PlayerName,
		Match:      s.match.ID(),
		Data: &message.Data{
			SeatID:     seat.ID,
			DrawResult: res,
		},
	})
	r.broadcastGameState(s)
	if res.GameEnded {
		r.endGame(s)
		return
	}
	r.scheduleAI(s)
}

// handleGetValidMoves answers the legal placements of one held tile, or of
// the whole hand when no tile is named.
func (r *Runner) handleGetValidMoves(ctx context.Context, m message.Message) {
	var tileID tile.ID
	if m.Data != nil {
		tileID = m.Data.TileID
	}
	s, g, seat, ok := r.seatOf(m)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	var moves []rules.Move
	for _, move := range g.ValidMoves(seat.ID) {
		if len(tileID) == 0 || move.Tile.ID == tileID {
			moves = append(moves, move)
		}
	}
	r.send(message.Message{
		Type:       message.ValidMoves,
		PlayerName: m.PlayerName,
		Match:      s.match.ID(),
		Data: &message.Data{
			TileID:     tileID,
			ValidMoves: moves,
		},
	})
}

// handleGetAllValidMoves answers the legal placements of the whole hand,
// flagging when the sender has none and must draw.
func (r *Runner) handleGetAllValidMoves(ctx context.Context, m message.Message) {
	s, g, seat, ok := r.seatOf(m)
	if !ok {
		return
	}
	defer s.mu.Unlock()
	moves := g.ValidMoves(seat.ID)
	r.send(message.Message{
		Type:       message.ValidMoves,
		PlayerName: m.PlayerName,
		Match:      s.match.ID(),
		Data: &message.Data{
			ValidMoves: moves,
			MustDraw:   len(moves) == 0,
		},
	})
}

// handleChat relays text to everyone in the sender's match.
func (r *Runner) handleChat(ctx context.Context, m message.Message) {
	if m.Data == nil || len(m.Data.Text) == 0 {
		return
	}
	s, _, ok := r.sessionFor(m.PlayerName)
	if !ok {
		r.sendError(m, errKindMatchNotFound, errors.New("not in a match"))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.broadcast(s, message.ChatMessage, &message.Data{
		PlayerName: m.PlayerName,
		Text:       m.Data.Text,
	})
}

// endGame records the ended game with the match, announcing the next game
// or the final standings.  Callers hold s.mu.
func (r *Runner) endGame(s *session) {
	s.cancelAI()
	stats, completion, err := s.match.HandleGameEnd()
	if err != nil {
		r.Log.Printf("recording game end for match %v: %v", s.match.ID(), err)
		return
	}
	r.broadcast(s, message.GameEnded, &message.Data{
		GameStats: stats,
	})
	if completion == nil {
		r.startedGame(s, message.GameStarted)
		return
	}
	r.broadcast(s, message.MatchEnded, &message.Data{
		Completion: completion,
	})
	r.recordWin(s, completion)
	go r.removeSession(s.match.ID())
}

// recordWin increments the match winner's stored win count.  Computer
// players have no accounts, so their wins are not recorded.
func (r *Runner) recordWin(s *session, c *match.Completion) {
	for _, seat := range s.match.Seats() {
		if seat.ID != c.Winner || seat.AI {
			continue
		}
		wins := map[string]int{
			string(seat.Name): 1,
		}
		if err := r.UpdateWinsIncrement(r.ctx, wins); err != nil {
			r.Log.Printf("incrementing win count for %v: %v", seat.Name, err)
		}
		return
	}
}
