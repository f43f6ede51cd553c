// Package lobby connects player sockets to the match runner and routes
// messages between them.
package lobby

import (
	"context"
	"fmt"
	"net/http"

	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/server/game/socket"
	"github.com/trainyard-games/mexican-train/server/log"
)

type (
	// Lobby is the place users create, join, and play matches.
	Lobby struct {
		debug      bool
		log        log.Logger
		upgrader   socket.Upgrader
		maxSockets int
		socketCfg  socket.Config
		games      Handler
		sockets    map[player.Name]messageHandler
		addSockets chan playerSocket
		// socketMessages carries messages from sockets to the lobby.
		socketMessages chan message.Message
		// gameIn carries messages from the lobby to the match runner.
		gameIn chan message.Message
		// gameOut carries messages from the match runner to the lobby.
		gameOut chan message.Message
	}

	// Config contains the properties to create a lobby.
	Config struct {
		// Debug causes the lobby to log the types of messages it routes.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// MaxSockets is the maximum number of player connections.
		MaxSockets int
		// SocketCfg is used to create sockets for new connections.
		SocketCfg socket.Config
		// Games handles match and game messages for the lobby.
		Games Handler
	}

	// Handler consumes socket messages and produces messages addressed to
	// players by name.  A produced message with no player name is broadcast
	// to every socket in the lobby.
	Handler interface {
		Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) error
	}

	// playerSocket is used to add players from http requests.
	playerSocket struct {
		playerName player.Name
		http.ResponseWriter
		*http.Request
		result chan<- error
	}

	// messageHandler is a channel that writes messages to a socket and can
	// be cancelled.
	messageHandler struct {
		addr          message.Addr
		writeMessages chan<- message.Message
		context.CancelFunc
	}
)

// messageQueueSize is the buffer of the channels between the lobby and the
// match runner.  The runner produces bursts of per-player messages when
// broadcasting game state, so the channels cannot be synchronous.
const messageQueueSize = 64

// NewLobby creates a lobby for the handler to serve.
func (cfg Config) NewLobby() (*Lobby, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("creating lobby: validation: %w", err)
	}
	l := Lobby{
		debug:          cfg.Debug,
		log:            cfg.Log,
		upgrader:       socket.NewGorillaUpgrader(),
		maxSockets:     cfg.MaxSockets,
		socketCfg:      cfg.SocketCfg,
		games:          cfg.Games,
		sockets:        make(map[player.Name]messageHandler, cfg.MaxSockets),
		addSockets:     make(chan playerSocket),
		socketMessages: make(chan message.Message, messageQueueSize),
		gameIn:         make(chan message.Message, messageQueueSize),
		gameOut:        make(chan message.Message, messageQueueSize),
	}
	return &l, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate() error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case cfg.MaxSockets <= 0:
		return fmt.Errorf("must allow at least one socket")
	case cfg.Games == nil:
		return fmt.Errorf("game handler required")
	}
	return nil
}

// AddUser adds a user to the lobby, opening a websocket for the username.
func (l *Lobby) AddUser(username string, w http.ResponseWriter, r *http.Request) error {
	result := make(chan error)
	ps := playerSocket{
		playerName:     player.Name(username),
		ResponseWriter: w,
		Request:        r,
		result:         result,
	}
	l.addSockets <- ps
	return <-result
}

// RemoveUser closes the user's socket and removes them from their match, if any.
func (l *Lobby) RemoveUser(username string) {
	l.socketMessages <- message.Message{
		Type:       message.SocketClosed,
		PlayerName: player.Name(username),
	}
}

// Run runs the lobby and its game handler until the context is cancelled.
func (l *Lobby) Run(ctx context.Context) error {
	if err := l.games.Run(ctx, l.gameIn, l.gameOut); err != nil {
		return fmt.Errorf("running lobby: %w", err)
	}
	go func() {
		for { // BLOCKING
			select {
			case <-ctx.Done():
				return
			case ps := <-l.addSockets:
				l.addSocket(ctx, ps)
			case m := <-l.socketMessages:
				l.handleSocketMessage(m)
			case m := <-l.gameOut:
				l.handleGameMessage(m)
			}
		}
	}()
	return nil
}

// handleSocketMessage forwards the message from the socket to the match
// runner, removing the socket first if it closed.  A close notice from a
// socket that was already replaced by a newer connection for the same
// player is stale and is dropped.
func (l *Lobby) handleSocketMessage(m message.Message) {
	if l.debug {
		l.log.Printf("lobby reading socket message with type %v", m.Type)
	}
	if m.Type == message.SocketClosed {
		if !l.removeSocket(m.PlayerName, m.Addr) {
			return
		}
	}
	l.gameIn <- m
}

// handleGameMessage sends the message from the match runner to the socket
// of the player it is addressed to, or to all sockets if it has no address.
func (l *Lobby) handleGameMessage(m message.Message) {
	if l.debug {
		l.log.Printf("lobby reading game message with type %v", m.Type)
	}
	if len(m.PlayerName) == 0 {
		for _, mh := range l.sockets {
			l.write(m, mh)
		}
		return
	}
	mh, ok := l.sockets[m.PlayerName]
	if !ok {
		l.log.Printf("no socket for player named '%v' to send %v message to", m.PlayerName, m.Type)
		return
	}
	l.write(m, mh)
}

// write sends the message to the socket's write channel without blocking
// the lobby.  A full channel means the socket stopped consuming, so the
// message is dropped and the socket is left for its remove func to reap.
func (l *Lobby) write(m message.Message, mh messageHandler) {
	select {
	case mh.writeMessages <- m:
	default:
		l.log.Printf("dropping %v message: socket write channel full", m.Type)
	}
}

// addSocket upgrades the request to a websocket and runs it in the lobby.
func (l *Lobby) addSocket(ctx context.Context, ps playerSocket) {
	var err error
	defer func() {
		ps.result <- err
	}()
	if len(l.sockets) >= l.maxSockets {
		err = fmt.Errorf("lobby full")
		return
	}
	conn, err := l.upgrader.Upgrade(ps.ResponseWriter, ps.Request)
	if err != nil {
		err = fmt.Errorf("upgrading to websocket connection: %w", err)
		return
	}
	s, err := l.socketCfg.NewSocket(ps.playerName, conn)
	if err != nil {
		err = fmt.Errorf("creating socket: %w", err)
		return
	}
	socketCtx, cancelFunc := context.WithCancel(ctx)
	removeSocketFunc := func() {
		l.socketMessages <- message.Message{
			Type:       message.SocketClosed,
			PlayerName: ps.playerName,
			Addr:       s.Addr(),
		}
	}
	writeMessages := make(chan message.Message, messageQueueSize)
	if err = s.Run(socketCtx, removeSocketFunc, writeMessages, l.socketMessages); err != nil {
		cancelFunc()
		err = fmt.Errorf("running socket: %w", err)
		return
	}
	if old, ok := l.sockets[ps.playerName]; ok {
		l.log.Printf("socket for %v already exists, replacing", ps.playerName)
		l.removeSocket(ps.playerName, old.addr)
	}
	l.sockets[ps.playerName] = messageHandler{
		addr:          s.Addr(),
		writeMessages: writeMessages,
		CancelFunc:    cancelFunc,
	}
	// tell the new socket what matches exist
	l.gameIn <- message.Message{
		Type:       message.ListMatches,
		PlayerName: ps.playerName,
		Addr:       s.Addr(),
	}
}

// removeSocket removes the player's socket from the lobby and stops it.
// An addr restricts removal to the socket with that remote address; removal
// with no addr always applies.  Reports whether a socket was removed.
func (l *Lobby) removeSocket(pn player.Name, addr message.Addr) bool {
	mh, ok := l.sockets[pn]
	if !ok {
		return false
	}
	if len(addr) > 0 && mh.addr != addr {
		return false
	}
	delete(l.sockets, pn)
	mh.CancelFunc()
	return true
}
