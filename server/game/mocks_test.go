package game

import (
	"context"
	"sync"
	"time"

	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
)

// mockUserDao implements the UserDao interface.
type mockUserDao struct {
	UpdateWinsIncrementFunc func(ctx context.Context, usernameWins map[string]int) error
}

func (d *mockUserDao) UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error {
	return d.UpdateWinsIncrementFunc(ctx, usernameWins)
}

func okUserDao() *mockUserDao {
	return &mockUserDao{
		UpdateWinsIncrementFunc: func(ctx context.Context, usernameWins map[string]int) error {
			return nil
		},
	}
}

// mockChooser implements the MoveChooser interface.
type mockChooser struct {
	ChooseMoveFunc func(g *rules.Game, seat player.SeatID) (rules.Move, bool)
}

func (c *mockChooser) ChooseMove(g *rules.Game, seat player.SeatID) (rules.Move, bool) {
	return c.ChooseMoveFunc(g, seat)
}

// firstMoveChooser plays the first legal move, drawing when there is none.
func firstMoveChooser() *mockChooser {
	return &mockChooser{
		ChooseMoveFunc: func(g *rules.Game, seat player.SeatID) (rules.Move, bool) {
			moves := g.ValidMoves(seat)
			if len(moves) == 0 {
				return rules.Move{}, false
			}
			return moves[0], true
		},
	}
}

// stallingChooser blocks until the unblock channel closes, then must draw.
func stallingChooser(unblock <-chan struct{}) *mockChooser {
	return &mockChooser{
		ChooseMoveFunc: func(g *rules.Game, seat player.SeatID) (rules.Move, bool) {
			<-unblock
			return rules.Move{}, false
		},
	}
}

// recordingUserDao implements the UserDao interface, recording each call.
type recordingUserDao struct {
	mu    sync.Mutex
	calls []map[string]int
}

func (d *recordingUserDao) UpdateWinsIncrement(ctx context.Context, usernameWins map[string]int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, usernameWins)
	return nil
}

func (d *recordingUserDao) Calls() []map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	calls := make([]map[string]int, len(d.calls))
	copy(calls, d.calls)
	return calls
}

// testClock is a manually advanced time source shared between the test and
// the runner's goroutines.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
