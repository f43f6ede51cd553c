// Package socket handles communication with a player using a websocket
// connection.
package socket

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/server/log"
	"github.com/trainyard-games/mexican-train/server/runner"
)

type (
	// Socket reads and writes messages for one connected client.
	Socket struct {
		runner.Runner
		Conn
		playerName player.Name
		addr       message.Addr
		active     bool
		Config
	}

	// Config contains commonly shared Socket properties.
	Config struct {
		// Debug causes the socket to log the types of messages read and written.
		Debug bool
		// Log is used to log errors and other information.
		Log log.Logger
		// ReadWait is how long the connection may be silent before timing out.
		ReadWait time.Duration
		// WriteWait is how long a single message write may take.
		WriteWait time.Duration
		// PingPeriod is how often ping messages are sent.  Should be less than ReadWait.
		PingPeriod time.Duration
		// IdlePeriod is how long the client may send nothing before being disconnected.
		IdlePeriod time.Duration
	}

	// Conn is the connection that backs the socket.
	Conn interface {
		// ReadJSON reads the next json message from the connection.
		ReadJSON(v interface{}) error
		// WriteJSON writes the message as json to the connection.
		WriteJSON(v interface{}) error
		// Close closes the connection.
		Close() error
		// WritePing writes a ping message on the connection.
		WritePing() error
		// WriteClose writes a close message on the connection and always closes it.
		WriteClose(reason string) error
		// IsUnexpectedCloseError determines if the error is an unexpected close error.
		IsUnexpectedCloseError(err error) bool
		// RemoteAddr gets the remote network address of the connection.
		RemoteAddr() net.Addr
	}
)

var errSocketClosed = fmt.Errorf("socket closed")

// NewSocket creates a socket for the named player over the connection.
func (cfg Config) NewSocket(playerName player.Name, conn Conn) (*Socket, error) {
	if err := cfg.validate(playerName, conn); err != nil {
		return nil, fmt.Errorf("creating socket: validation: %w", err)
	}
	s := Socket{
		Conn:       conn,
		playerName: playerName,
		addr:       message.Addr(conn.RemoteAddr().String()),
		Config:     cfg,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(playerName player.Name, conn Conn) error {
	switch {
	case cfg.Log == nil:
		return fmt.Errorf("log required")
	case len(playerName) == 0:
		return fmt.Errorf("player name required")
	case conn == nil:
		return fmt.Errorf("websocket connection required")
	case cfg.ReadWait <= 0:
		return fmt.Errorf("positive read wait period required")
	case cfg.WriteWait <= 0:
		return fmt.Errorf("positive write wait period required")
	case cfg.PingPeriod <= 0:
		return fmt.Errorf("positive ping period required")
	case cfg.IdlePeriod <= 0:
		return fmt.Errorf("positive idle period required")
	case cfg.PingPeriod >= cfg.ReadWait:
		return fmt.Errorf("ping period should be less than read wait")
	}
	return nil
}

// PlayerName is the name of the player the socket belongs to.
func (s *Socket) PlayerName() player.Name {
	return s.playerName
}

// Addr is the remote address text of the connection.
func (s *Socket) Addr() message.Addr {
	return s.addr
}

// String describes the socket for logs.
func (s *Socket) String() string {
	return fmt.Sprintf("%v (%v)", s.playerName, s.addr)
}

// Run reads incoming messages onto the out channel and writes messages
// received from the in channel to the connection, on separate goroutines.
// The socket runs until the connection fails for an unexpected reason or
// the context is cancelled, then calls removeFunc.
func (s *Socket) Run(ctx context.Context, removeFunc func(), in <-chan message.Message, out chan<- message.Message) error {
	if err := s.Runner.Run(); err != nil {
		return fmt.Errorf("running socket: %v", err)
	}
	pingTicker := time.NewTicker(s.PingPeriod)
	idleTicker := time.NewTicker(s.IdlePeriod)
	var wg sync.WaitGroup
	go func() {
		wg.Wait()
		pingTicker.Stop()
		idleTicker.Stop()
		s.Runner.Finish()
		s.Conn.Close()
		removeFunc()
	}()
	wg.Add(1)
	go s.readMessages(ctx, out, &wg)
	wg.Add(1)
	go s.writeMessages(ctx, in, &wg, pingTicker, idleTicker)
	return nil
}

// readMessages reads messages from the connection and stamps them with the
// socket's identity before forwarding them.
func (s *Socket) readMessages(ctx context.Context, out chan<- message.Message, wg *sync.WaitGroup) {
	defer wg.Done()
	for { // BLOCKING
		m, err := s.readMessage()
		select {
		case <-ctx.Done():
			return
		default:
			if err != nil {
				if err != errSocketClosed {
					reason := fmt.Sprintf("reading socket messages stopped for %v: %v", s, err)
					s.Log.Printf("%v", reason)
					s.Conn.WriteClose(reason)
				}
				return
			}
		}
		out <- *m
		s.active = true
	}
}

// writeMessages writes messages from the in channel to the connection,
// sending pings and checking for idleness on the tickers.
func (s *Socket) writeMessages(ctx context.Context, in <-chan message.Message, wg *sync.WaitGroup,
	pingTicker, idleTicker *time.Ticker) {
	s.active = false
	var closeReason string
	defer func() {
		s.Conn.WriteClose(closeReason)
		if len(closeReason) > 0 {
			s.Log.Printf("%v", closeReason)
		}
		wg.Done()
	}()
	var err error
	for { // BLOCKING
		select {
		case <-ctx.Done():
			closeReason = "server shutting down"
			return
		case m := <-in:
			err = s.writeMessage(m)
		case <-pingTicker.C:
			err = s.Conn.WritePing()
		case <-idleTicker.C:
			if !s.active {
				closeReason = "closing socket due to inactivity"
				return
			}
			s.active = false
		}
		if err != nil {
			if err != errSocketClosed {
				closeReason = fmt.Sprintf("writing socket messages stopped for %v: %v", s, err)
			}
			return
		}
	}
}

// readMessage reads the next message from the connection.
func (s *Socket) readMessage() (*message.Message, error) {
	var m message.Message
	if err := s.Conn.ReadJSON(&m); err != nil { // BLOCKING
		if s.Conn.IsUnexpectedCloseError(err) {
			return nil, fmt.Errorf("unexpected socket closure: %v", err)
		}
		return nil, errSocketClosed
	}
	if s.Debug {
		s.Log.Printf("socket reading message with type %v", m.Type)
	}
	// clients cannot forge identities; the socket stamps every message
	m.PlayerName = s.playerName
	m.Addr = s.addr
	return &m, nil
}

// writeMessage writes a message to the connection.
func (s *Socket) writeMessage(m message.Message) error {
	if s.Debug {
		s.Log.Printf("socket writing message with type %v", m.Type)
	}
	if err := s.Conn.WriteJSON(m); err != nil {
		return fmt.Errorf("writing socket message: %v", err)
	}
	return nil
}
