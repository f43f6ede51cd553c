// Package game runs the lobby's matches: seating, turn handling, computer
// players, and countdown starts.
package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/match"
	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
	"github.com/trainyard-games/mexican-train/game/tile"
	"github.com/trainyard-games/mexican-train/server/log"
	"github.com/trainyard-games/mexican-train/server/runner"
)

type (
	// Runner owns every match in the lobby and handles the messages that
	// play them.  The main loop serializes socket messages; computer turns
	// and the countdown run on their own goroutines, synchronized by the
	// per-match session mutex.
	Runner struct {
		runner.Runner
		mu      sync.Mutex
		matches map[game.ID]*session
		players map[player.Name]presence
		out     chan<- message.Message
		ctx     context.Context
		UserDao
		Config
	}

	// Config contains the properties to run matches.
	Config struct {
		// Debug causes the runner to log the types of messages it handles.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// MaxMatches is the maximum number of matches that can exist at once.
		MaxMatches int
		// TimeFunc is the source of timestamps.
		TimeFunc func() time.Time
		// ShuffleFunc randomizes each game's boneyard.
		ShuffleFunc func(tiles []tile.Tile)
		// NoAutoCreate disables creating a match when a player joins an
		// unknown match id.
		NoAutoCreate bool
		// MatchCfg is the default settings for created matches.
		MatchCfg game.Config
		// Tacticians builds the move chooser for a computer seat's strategy.
		Tacticians func(strategyID string, seed int64) MoveChooser
		// StrategyForLevel resolves a match's ai skill level to a strategy id.
		StrategyForLevel func(level int) string
		// AIDelay is how long a computer seat waits before acting.
		AIDelay time.Duration
		// AIMoveTimeout is how long a computer seat may take to choose one move.
		AIMoveTimeout time.Duration
		// CountdownPeriod is how often waiting match deadlines are checked.
		CountdownPeriod time.Duration
	}

	// MoveChooser chooses a computer seat's move.  The second return is
	// false when the seat has no legal move and must draw.
	MoveChooser interface {
		ChooseMove(g *rules.Game, seat player.SeatID) (rules.Move, bool)
	}

	// UserDao increments the win counts of players when a match completes.
	UserDao interface {
		UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error
	}

	// presence is where a player currently is.
	presence struct {
		match     game.ID
		spectator bool
	}

	// messageHandler handles one type of socket message.
	messageHandler func(ctx context.Context, m message.Message)
)

// Error kinds for match handling, sent in the reason of error messages.
// Rule violations use the rules package error strings directly.
const (
	errKindMatchNotFound      = "match_not_found"
	errKindMatchFull          = "match_full"
	errKindMatchStarted       = "match_already_started"
	errKindNotHost            = "not_host"
	errKindNotEnoughPlayers   = "not_enough_players"
	errKindSpectateNotAllowed = "spectate_not_allowed"
	errKindUnknownMessage     = "unknown_message"
	errKindInternal           = "internal_error"
)

// reservedIDPrefix marks match ids that are never auto-created on join.
const reservedIDPrefix = "admin-"

// WithDefaults returns a copy of the config with unset timing fields populated.
func (cfg Config) WithDefaults() Config {
	if cfg.AIDelay <= 0 {
		cfg.AIDelay = 1500 * time.Millisecond
	}
	if cfg.AIMoveTimeout <= 0 {
		cfg.AIMoveTimeout = 5 * time.Second
	}
	if cfg.CountdownPeriod <= 0 {
		cfg.CountdownPeriod = 30 * time.Second
	}
	return cfg
}

// NewRunner creates a match runner that records wins with the dao.
func (cfg Config) NewRunner(ud UserDao) (*Runner, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.validate(ud); err != nil {
		return nil, fmt.Errorf("creating match runner: validation: %w", err)
	}
	r := Runner{
		matches: make(map[game.ID]*session),
		players: make(map[player.Name]presence),
		UserDao: ud,
		Config:  cfg,
	}
	return &r, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(ud UserDao) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.MaxMatches <= 0:
		return fmt.Errorf("must allow at least one match")
	case cfg.TimeFunc == nil:
		return fmt.Errorf("time func required")
	case cfg.Tacticians == nil:
		return fmt.Errorf("tactician builder required")
	case cfg.StrategyForLevel == nil:
		return fmt.Errorf("strategy level resolver required")
	case ud == nil:
		return fmt.Errorf("user dao required")
	}
	return nil
}

// Run handles messages from the in channel until the context is cancelled,
// sending replies addressed by player name to the out channel.
func (r *Runner) Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) error {
	if err := r.Runner.Run(); err != nil {
		return fmt.Errorf("running match runner: %v", err)
	}
	r.out = out
	r.ctx = ctx
	messageHandlers := map[message.Type]messageHandler{
		message.CreateMatch:      r.handleCreateMatch,
		message.JoinGame:         r.handleJoinGame,
		message.SpectateGame:     r.handleSpectateGame,
		message.LeaveGame:        r.handleLeaveGame,
		message.StartGame:        r.handleStartGame,
		message.MakeMove:         r.handleMakeMove,
		message.DrawDomino:       r.handleDrawDomino,
		message.GetValidMoves:    r.handleGetValidMoves,
		message.GetAllValidMoves: r.handleGetAllValidMoves,
		message.ChatMessage:      r.handleChat,
		message.ListMatches:      r.handleListMatches,
		message.SocketClosed:     r.handleSocketClosed,
	}
	go func() {
		defer r.Runner.Finish()
		for { // BLOCKING
			select {
			case <-ctx.Done():
				return
			case m := <-in:
				r.handleMessage(ctx, m, messageHandlers)
			}
		}
	}()
	go r.runCountdown(ctx)
	return nil
}

// handleMessage handles the message with the appropriate message handler.
// A panicking handler must not take down the other matches, so panics are
// logged and reported to the sender as an internal error.
func (r *Runner) handleMessage(ctx context.Context, m message.Message, messageHandlers map[message.Type]messageHandler) {
	defer func() {
		if rec := recover(); rec != nil {
			r.Log.Printf("handling %v message from %v: %v", m.Type, m.PlayerName, rec)
			if len(m.PlayerName) != 0 && m.Type != message.SocketClosed {
				r.sendError(m, errKindInternal, nil)
			}
		}
	}()
	if r.Debug {
		r.Log.Printf("match runner reading message with type %v", m.Type)
	}
	mh, ok := messageHandlers[m.Type]
	if !ok {
		r.Log.Printf("match runner does not know how to handle message type %v", m.Type)
		if len(m.PlayerName) != 0 {
			r.sendError(m, errKindUnknownMessage, fmt.Errorf("unknown message type %v", m.Type))
		}
		return
	}
	mh(ctx, m)
}

// send stamps the match id on the message and queues it for the lobby.
func (r *Runner) send(m message.Message) {
	r.out <- m
}

// sendError reports a rejected request to its sender.
func (r *Runner) sendError(m message.Message, kind string, err error) {
	data := message.Data{
		Reason: kind,
	}
	if err != nil {
		data.Text = err.Error()
	}
	r.send(message.Message{
		Type:       message.Error,
		PlayerName: m.PlayerName,
		Match:      m.Match,
		Data:       &data,
	})
}

// errorKind maps an error to the reason kind clients switch on.
func errorKind(err error) string {
	var re rules.Error
	switch {
	case errors.As(err, &re):
		return string(re)
	case errors.Is(err, match.ErrAlreadyStarted):
		return errKindMatchStarted
	case errors.Is(err, match.ErrFull):
		return errKindMatchFull
	default:
		return errKindInternal
	}
}

// sessionByID looks up the session of a match.
func (r *Runner) sessionByID(id game.ID) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.matches[id]
	return s, ok
}

// sessionFor looks up the session the player is part of.
func (r *Runner) sessionFor(pn player.Name) (*session, presence, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[pn]
	if !ok {
		return nil, presence{}, false
	}
	s, ok := r.matches[p.match]
	return s, p, ok
}

// setPresence records where the player is.
func (r *Runner) setPresence(pn player.Name, p presence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[pn] = p
}

// clearPresence forgets where the player is, if they are where expected.
func (r *Runner) clearPresence(pn player.Name, id game.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[pn]; ok && p.match == id {
		delete(r.players, pn)
	}
}

// removeSession deletes the match and the presences of everyone in it, then
// republishes the match directory.  Safe to call more than once.
func (r *Runner) removeSession(id game.ID) {
	r.mu.Lock()
	if _, ok := r.matches[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.matches, id)
	for pn, p := range r.players {
		if p.match == id {
			delete(r.players, pn)
		}
	}
	r.mu.Unlock()
	r.broadcastMatchList()
}

// newMatchID generates an id for a match created without one.
func newMatchID() game.ID {
	return game.ID(uuid.NewString())
}

// matchInfos lists every match, oldest first.
func (r *Runner) matchInfos() []game.Info {
	r.mu.Lock()
	sessions := make([]*session, 0, len(r.matches))
	for _, s := range r.matches {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()
	infos := make([]game.Info, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		infos = append(infos, s.match.Info())
		s.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAt != infos[j].CreatedAt {
			return infos[i].CreatedAt < infos[j].CreatedAt
		}
		return infos[i].ID < infos[j].ID
	})
	return infos
}

// broadcastMatchList publishes the match directory to everyone in the lobby.
func (r *Runner) broadcastMatchList() {
	r.send(message.Message{
		Type: message.MatchList,
		Data: &message.Data{
			Matches: r.matchInfos(),
		},
	})
}

// handleListMatches answers a directory request.
func (r *Runner) handleListMatches(ctx context.Context, m message.Message) {
	r.send(message.Message{
		Type:       message.MatchList,
		PlayerName: m.PlayerName,
		Data: &message.Data{
			Matches: r.matchInfos(),
		},
	})
}
