package socket

import (
	"encoding/json"
	"errors"
	"net"

	"github.com/trainyard-games/mexican-train/game/message"
)

// mockConn implements the Conn interface.
type mockConn struct {
	ReadJSONFunc               func(v interface{}) error
	WriteJSONFunc              func(v interface{}) error
	CloseFunc                  func() error
	WritePingFunc              func() error
	WriteCloseFunc             func(reason string) error
	IsUnexpectedCloseErrorFunc func(err error) bool
	RemoteAddrFunc             func() net.Addr
}

func (c *mockConn) ReadJSON(v interface{}) error {
	return c.ReadJSONFunc(v)
}

func (c *mockConn) WriteJSON(v interface{}) error {
	return c.WriteJSONFunc(v)
}

func (c *mockConn) Close() error {
	return c.CloseFunc()
}

func (c *mockConn) WritePing() error {
	return c.WritePingFunc()
}

func (c *mockConn) WriteClose(reason string) error {
	return c.WriteCloseFunc(reason)
}

func (c *mockConn) IsUnexpectedCloseError(err error) bool {
	return c.IsUnexpectedCloseErrorFunc(err)
}

func (c *mockConn) RemoteAddr() net.Addr {
	return c.RemoteAddrFunc()
}

// mockAddr implements the net.Addr interface.
type mockAddr string

func (a mockAddr) Network() string {
	return "tcp"
}

func (a mockAddr) String() string {
	return string(a)
}

// readMessageOnce sets v to the message on the first call and blocks until
// done on later calls.
func readMessageOnce(m message.Message, done <-chan struct{}) func(v interface{}) error {
	read := false
	return func(v interface{}) error {
		if read {
			<-done
			return errors.New("connection closed")
		}
		read = true
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, v)
	}
}
