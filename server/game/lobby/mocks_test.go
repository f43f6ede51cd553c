package lobby

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/server/game/socket"
)

// mockHandler implements the Handler interface.
type mockHandler struct {
	RunFunc func(ctx context.Context, in <-chan message.Message, out chan<- message.Message) error
}

func (h *mockHandler) Run(ctx context.Context, in <-chan message.Message, out chan<- message.Message) error {
	return h.RunFunc(ctx, in, out)
}

// echoHandler responds to list requests and copies every message it reads
// onto the handled channel.
func echoHandler(handled chan<- message.Message) *mockHandler {
	return &mockHandler{
		RunFunc: func(ctx context.Context, in <-chan message.Message, out chan<- message.Message) error {
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case m := <-in:
						if m.Type == message.ListMatches {
							out <- message.Message{
								Type:       message.MatchList,
								PlayerName: m.PlayerName,
							}
						}
						handled <- m
					}
				}
			}()
			return nil
		},
	}
}

// mockUpgrader implements the socket.Upgrader interface.
type mockUpgrader struct {
	UpgradeFunc func(w http.ResponseWriter, r *http.Request) (socket.Conn, error)
}

func (u *mockUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (socket.Conn, error) {
	return u.UpgradeFunc(w, r)
}

// mockConn implements the socket.Conn interface.  Reads block until the
// conn is closed and writes are captured on the written channel.
type mockConn struct {
	addr    string
	done    chan struct{}
	written chan message.Message
}

func newMockConn(addr string) *mockConn {
	return &mockConn{
		addr:    addr,
		done:    make(chan struct{}),
		written: make(chan message.Message, 16),
	}
}

func (c *mockConn) ReadJSON(v interface{}) error {
	<-c.done
	return errors.New("connection closed")
}

func (c *mockConn) WriteJSON(v interface{}) error {
	c.written <- v.(message.Message)
	return nil
}

func (c *mockConn) Close() error {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	return nil
}

func (c *mockConn) WritePing() error {
	return nil
}

func (c *mockConn) WriteClose(reason string) error {
	return c.Close()
}

func (c *mockConn) IsUnexpectedCloseError(err error) bool {
	return false
}

func (c *mockConn) RemoteAddr() net.Addr {
	return mockAddr(c.addr)
}

// mockAddr implements the net.Addr interface.
type mockAddr string

func (a mockAddr) Network() string {
	return "tcp"
}

func (a mockAddr) String() string {
	return string(a)
}
