package socket

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/trainyard-games/mexican-train/game/message"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/server/log/logtest"
)

var testAddr = mockAddr("selene.pc")

func newTestConn() *mockConn {
	return &mockConn{
		RemoteAddrFunc: func() net.Addr {
			return testAddr
		},
	}
}

// quietConfig uses periods long enough that the tickers never fire during a test.
func quietConfig() Config {
	return Config{
		Log:        logtest.DiscardLogger,
		ReadWait:   2 * time.Hour,
		WriteWait:  1 * time.Hour,
		PingPeriod: 1 * time.Hour,
		IdlePeriod: 3 * time.Hour,
	}
}

func TestNewSocket(t *testing.T) {
	newSocketTests := []struct {
		wantOk     bool
		playerName player.Name
		conn       Conn
		Config
	}{
		{}, // no log
		{ // no player name
			conn:   newTestConn(),
			Config: quietConfig(),
		},
		{ // no conn
			playerName: "selene",
			Config:     quietConfig(),
		},
		{ // no read wait
			playerName: "selene",
			conn:       newTestConn(),
			Config: Config{
				Log:        logtest.DiscardLogger,
				WriteWait:  1 * time.Hour,
				PingPeriod: 1 * time.Hour,
				IdlePeriod: 3 * time.Hour,
			},
		},
		{ // no write wait
			playerName: "selene",
			conn:       newTestConn(),
			Config: Config{
				Log:        logtest.DiscardLogger,
				ReadWait:   2 * time.Hour,
				PingPeriod: 1 * time.Hour,
				IdlePeriod: 3 * time.Hour,
			},
		},
		{ // no ping period
			playerName: "selene",
			conn:       newTestConn(),
			Config: Config{
				Log:        logtest.DiscardLogger,
				ReadWait:   2 * time.Hour,
				WriteWait:  1 * time.Hour,
				IdlePeriod: 3 * time.Hour,
			},
		},
		{ // no idle period
			playerName: "selene",
			conn:       newTestConn(),
			Config: Config{
				Log:        logtest.DiscardLogger,
				ReadWait:   2 * time.Hour,
				WriteWait:  1 * time.Hour,
				PingPeriod: 1 * time.Hour,
			},
		},
		{ // ping period not less than read wait
			playerName: "selene",
			conn:       newTestConn(),
			Config: Config{
				Log:        logtest.DiscardLogger,
				ReadWait:   1 * time.Hour,
				WriteWait:  1 * time.Hour,
				PingPeriod: 1 * time.Hour,
				IdlePeriod: 3 * time.Hour,
			},
		},
		{
			wantOk:     true,
			playerName: "selene",
			conn:       newTestConn(),
			Config:     quietConfig(),
		},
	}
	for i, test := range newSocketTests {
		s, err := test.Config.NewSocket(test.playerName, test.conn)
		switch {
		case !test.wantOk:
			if err == nil {
				t.Errorf("Test %v: wanted error", i)
			}
		case err != nil:
			t.Errorf("Test %v: unwanted error: %v", i, err)
		case s.PlayerName() != "selene":
			t.Errorf("Test %v: wanted player name to be selene, got %v", i, s.PlayerName())
		case s.Addr() != message.Addr(testAddr):
			t.Errorf("Test %v: wanted addr to be %v, got %v", i, testAddr, s.Addr())
		}
	}
}

// waitForClose unblocks the mock connection read and waits for the socket to
// close the connection.
func waitForClose(t *testing.T, done chan struct{}, closed <-chan struct{}) {
	t.Helper()
	close(done)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Errorf("wanted connection to be closed")
	}
}

func TestSocketRunStampsReadMessages(t *testing.T) {
	done := make(chan struct{})
	closed := make(chan struct{})
	conn := newTestConn()
	conn.ReadJSONFunc = readMessageOnce(message.Message{Type: message.ChatMessage}, done)
	conn.IsUnexpectedCloseErrorFunc = func(err error) bool {
		return false
	}
	conn.WriteCloseFunc = func(reason string) error {
		return nil
	}
	conn.CloseFunc = func() error {
		close(closed)
		return nil
	}
	s, err := quietConfig().NewSocket("selene", conn)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ctx, cancelFunc := context.WithCancel(context.Background())
	in := make(chan message.Message)
	out := make(chan message.Message)
	removed := make(chan struct{})
	if err := s.Run(ctx, func() { close(removed) }, in, out); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	if err := s.Run(ctx, func() {}, in, out); err == nil {
		t.Errorf("wanted error running socket twice")
	}
	m := <-out
	switch {
	case m.Type != message.ChatMessage:
		t.Errorf("wanted message type %v, got %v", message.ChatMessage, m.Type)
	case m.PlayerName != "selene":
		t.Errorf("wanted message stamped with player name selene, got %v", m.PlayerName)
	case m.Addr != message.Addr(testAddr):
		t.Errorf("wanted message stamped with addr %v, got %v", testAddr, m.Addr)
	}
	cancelFunc()
	waitForClose(t, done, closed)
	select {
	case <-removed:
	case <-time.After(5 * time.Second):
		t.Errorf("wanted remove func to be called after the socket stopped")
	}
}

func TestSocketRunWritesMessages(t *testing.T) {
	done := make(chan struct{})
	closed := make(chan struct{})
	written := make(chan message.Message, 1)
	conn := newTestConn()
	conn.ReadJSONFunc = func(v interface{}) error {
		<-done
		return errors.New("connection closed")
	}
	conn.IsUnexpectedCloseErrorFunc = func(err error) bool {
		return false
	}
	conn.WriteJSONFunc = func(v interface{}) error {
		written <- v.(message.Message)
		return nil
	}
	conn.WriteCloseFunc = func(reason string) error {
		return nil
	}
	conn.CloseFunc = func() error {
		close(closed)
		return nil
	}
	s, err := quietConfig().NewSocket("selene", conn)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ctx, cancelFunc := context.WithCancel(context.Background())
	in := make(chan message.Message)
	out := make(chan message.Message)
	if err := s.Run(ctx, func() {}, in, out); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	in <- message.Message{Type: message.MatchList}
	got := <-written
	if got.Type != message.MatchList {
		t.Errorf("wanted written message type %v, got %v", message.MatchList, got.Type)
	}
	cancelFunc()
	waitForClose(t, done, closed)
}

func TestSocketRunUnexpectedCloseError(t *testing.T) {
	done := make(chan struct{})
	closed := make(chan struct{})
	closeReason := make(chan string, 2)
	conn := newTestConn()
	conn.ReadJSONFunc = func(v interface{}) error {
		return errors.New("unplugged")
	}
	conn.IsUnexpectedCloseErrorFunc = func(err error) bool {
		return true
	}
	conn.WriteCloseFunc = func(reason string) error {
		select {
		case closeReason <- reason:
		default:
		}
		return nil
	}
	conn.CloseFunc = func() error {
		close(closed)
		return nil
	}
	log := logtest.NewLogger()
	cfg := quietConfig()
	cfg.Log = log
	s, err := cfg.NewSocket("selene", conn)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ctx, cancelFunc := context.WithCancel(context.Background())
	in := make(chan message.Message)
	out := make(chan message.Message)
	if err := s.Run(ctx, func() {}, in, out); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	reason := <-closeReason
	if !strings.Contains(reason, "unplugged") {
		t.Errorf("wanted close reason to mention the read error, got %q", reason)
	}
	cancelFunc()
	waitForClose(t, done, closed)
}

func TestSocketIdleTimeout(t *testing.T) {
	done := make(chan struct{})
	closed := make(chan struct{})
	closeReason := make(chan string, 2)
	conn := newTestConn()
	conn.ReadJSONFunc = func(v interface{}) error {
		<-done
		return errors.New("connection closed")
	}
	conn.IsUnexpectedCloseErrorFunc = func(err error) bool {
		return false
	}
	conn.WriteCloseFunc = func(reason string) error {
		select {
		case closeReason <- reason:
		default:
		}
		return nil
	}
	conn.CloseFunc = func() error {
		close(closed)
		return nil
	}
	cfg := quietConfig()
	cfg.IdlePeriod = 5 * time.Millisecond
	s, err := cfg.NewSocket("selene", conn)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()
	in := make(chan message.Message)
	out := make(chan message.Message)
	if err := s.Run(ctx, func() {}, in, out); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	reason := <-closeReason
	if !strings.Contains(reason, "inactivity") {
		t.Errorf("wanted close reason to mention inactivity, got %q", reason)
	}
	waitForClose(t, done, closed)
}

func TestSocketPing(t *testing.T) {
	done := make(chan struct{})
	closed := make(chan struct{})
	pinged := make(chan struct{}, 2)
	conn := newTestConn()
	conn.ReadJSONFunc = func(v interface{}) error {
		<-done
		return errors.New("connection closed")
	}
	conn.IsUnexpectedCloseErrorFunc = func(err error) bool {
		return false
	}
	conn.WritePingFunc = func() error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	}
	conn.WriteCloseFunc = func(reason string) error {
		return nil
	}
	conn.CloseFunc = func() error {
		close(closed)
		return nil
	}
	cfg := quietConfig()
	cfg.PingPeriod = 5 * time.Millisecond
	s, err := cfg.NewSocket("selene", conn)
	if err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	ctx, cancelFunc := context.WithCancel(context.Background())
	in := make(chan message.Message)
	out := make(chan message.Message)
	if err := s.Run(ctx, func() {}, in, out); err != nil {
		t.Fatalf("unwanted error: %v", err)
	}
	select {
	case <-pinged:
	case <-time.After(5 * time.Second):
		t.Errorf("wanted ping to be written")
	}
	cancelFunc()
	waitForClose(t, done, closed)
}
