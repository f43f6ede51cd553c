// Package message contains the structures passed between clients and the
// server over sockets.
package message

import (
	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/match"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
	"github.com/trainyard-games/mexican-train/game/tile"
)

type (
	// Type is the purpose of a message.
	Type string

	// Message is the envelope sent to or from a socket.
	Message struct {
		// Type is the purpose of the message.
		Type Type `json:"type"`
		// Data is the payload for the type.  Nil for messages that need none.
		Data *Data `json:"data,omitempty"`
		// Match is the id of the match the message routes to or from.
		Match game.ID `json:"-"`
		// PlayerName is the name of the player the message is to or from.
		PlayerName player.Name `json:"-"`
		// Addr is the socket remote address text the message is from.
		Addr Addr `json:"-"`
	}

	// Data is the flat payload of a message; unused fields are omitted on
	// the wire.
	Data struct {
		// MatchID selects the match for join, spectate, and list entries.
		MatchID game.ID `json:"matchId,omitempty"`
		// MatchName is the display name for a created match.
		MatchName string `json:"matchName,omitempty"`
		// Config holds creation options for a new match.
		Config *game.Config `json:"config,omitempty"`
		// Force starts the match immediately, filling computer seats.
		Force bool `json:"force,omitempty"`
		// TileID selects a held tile for a move or per-tile enumeration.
		TileID tile.ID `json:"tileId,omitempty"`
		// TrainKind is the destination train kind for a move.
		TrainKind tile.Kind `json:"trainKind,omitempty"`
		// TrainOwner is the owning seat of a personal destination train.
		TrainOwner player.SeatID `json:"trainOwner,omitempty"`
		// Text is chat text.
		Text string `json:"text,omitempty"`

		// PlayerName identifies the player an event concerns.
		PlayerName player.Name `json:"playerName,omitempty"`
		// SeatID identifies the seat an event concerns.
		SeatID player.SeatID `json:"seatId,omitempty"`
		// SpectatorCount is the number of spectators after a spectator event.
		SpectatorCount int `json:"spectatorCount,omitempty"`
		// Info describes the match.
		Info *game.Info `json:"info,omitempty"`
		// Matches lists the matches in the lobby.
		Matches []game.Info `json:"matches,omitempty"`
		// Snapshot is the personalized game state.
		Snapshot *rules.Snapshot `json:"snapshot,omitempty"`
		// MoveResult reports an applied move.
		MoveResult *rules.MoveResult `json:"moveResult,omitempty"`
		// DrawResult reports a draw, revealed only to the drawer.
		DrawResult *rules.DrawResult `json:"drawResult,omitempty"`
		// ValidMoves enumerates legal placements.
		ValidMoves []rules.Move `json:"validMoves,omitempty"`
		// MustDraw indicates the hand has no legal placement.
		MustDraw bool `json:"mustDraw,omitempty"`
		// GameStats summarizes a finished game.
		GameStats *match.GameStats `json:"gameStats,omitempty"`
		// Completion summarizes a finished match.
		Completion *match.Completion `json:"completion,omitempty"`
		// MinutesLeft is the whole minutes before a waiting match auto-starts.
		MinutesLeft int `json:"minutesLeft,omitempty"`
		// Reason explains an error or a deletion.
		Reason string `json:"reason,omitempty"`
	}

	// Addr identifies the source socket of a message.
	Addr string
)

// Message types clients send.
const (
	// CreateMatch opens a new match with the sender as host.
	CreateMatch Type = "create_match"
	// JoinGame seats the sender in a match, or rejoins a held seat.
	JoinGame Type = "join_game"
	// SpectateGame attaches the sender to a match as a read-only viewer.
	SpectateGame Type = "spectate_game"
	// LeaveGame detaches the sender from its match.
	LeaveGame Type = "leave_game"
	// StartGame begins the match; with Force set, computer seats are filled.
	StartGame Type = "start_game"
	// MakeMove places a held tile on a destination train.
	MakeMove Type = "make_move"
	// DrawDomino draws from the boneyard when no legal move exists.
	DrawDomino Type = "draw_domino"
	// GetValidMoves requests the legal placements of one held tile.
	GetValidMoves Type = "get_valid_moves"
	// GetAllValidMoves requests the legal placements of the whole hand.
	GetAllValidMoves Type = "get_all_valid_moves"
	// ChatMessage relays text to everyone in the match.
	ChatMessage Type = "chat_message"
	// ListMatches requests the lobby's match directory.
	ListMatches Type = "list_matches"
)

// Message types the server sends.
const (
	// MatchState describes the match's seats and status.
	MatchState Type = "match_state"
	// GameState is the personalized snapshot of the game in play.
	GameState Type = "game_state"
	// MoveResult reports an accepted move to everyone in the match.
	MoveResult Type = "move_result"
	// DrawResult reports a draw to the drawer; others learn of it from the
	// next game state.
	DrawResult Type = "draw_result"
	// ValidMoves answers a move enumeration request.
	ValidMoves Type = "valid_moves"
	// PlayerJoined announces a newly seated player.
	PlayerJoined Type = "player_joined"
	// SpectatorJoined announces a new viewer.
	SpectatorJoined Type = "spectator_joined"
	// SpectatorLeft announces a departed viewer.
	SpectatorLeft Type = "spectator_left"
	// GameStarted announces the first or next game dealing in.
	GameStarted Type = "game_started"
	// GameAutoStarted announces a countdown-expiry start.
	GameAutoStarted Type = "game_auto_started"
	// GameEnded reports a finished game's winner and scores.
	GameEnded Type = "game_ended"
	// MatchEnded reports the completed match's standings.
	MatchEnded Type = "match_ended"
	// CountdownUpdate reports the minutes left before auto-start.
	CountdownUpdate Type = "countdown_update"
	// GameDeleted announces a waiting match removed by countdown expiry.
	GameDeleted Type = "game_deleted"
	// AIMove reports a move a computer player made.
	AIMove Type = "ai_move"
	// AIError reports a computer player that failed to move in time.
	AIError Type = "ai_error"
	// MatchList is the lobby's match directory.
	MatchList Type = "match_list"
	// Error reports a rejected request to its sender.
	Error Type = "error"
)

// Message types used internally by the server.  Never sent on the wire.
const (
	// SocketClosed reports that a player's socket disconnected.
	SocketClosed Type = "socket_closed"
)
