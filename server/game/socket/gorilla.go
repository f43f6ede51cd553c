package socket

import (
	"net/http"

	"github.com/gorilla/websocket"
)

type (
	// gorillaUpgrader implements the Upgrader interface by wrapping a gorilla/websocket upgrader.
	gorillaUpgrader struct {
		*websocket.Upgrader
	}

	// gorillaConn implements the Conn interface by wrapping a gorilla/websocket connection.
	gorillaConn struct {
		*websocket.Conn
	}

	// Upgrader turns a http request into a websocket connection.
	Upgrader interface {
		Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error)
	}
)

// NewGorillaUpgrader returns an upgrader that creates gorilla websocket connections.
func NewGorillaUpgrader() Upgrader {
	u := new(websocket.Upgrader)
	return &gorillaUpgrader{u}
}

// Upgrade creates a Conn from the http request.
func (u *gorillaUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	c, err := u.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return &gorillaConn{c}, nil
}

// WritePing writes a ping message on the connection.
func (c *gorillaConn) WritePing() error {
	return c.Conn.WriteMessage(websocket.PingMessage, nil)
}

// WriteClose writes a close message on the connection and always closes it,
// unblocking any pending read.
func (c *gorillaConn) WriteClose(reason string) error {
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	err := c.Conn.WriteMessage(websocket.CloseMessage, data)
	c.Conn.Close()
	return err
}

// IsUnexpectedCloseError determines if the error is a close error the socket
// should report.  Clients going away or closing without a status are normal.
func (*gorillaConn) IsUnexpectedCloseError(err error) bool {
	if _, ok := err.(*websocket.CloseError); !ok { // only errors from gorilla can be close errors
		return false
	}
	return websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
