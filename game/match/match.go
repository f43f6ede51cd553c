// Package match aggregates a fixed series of games for one table of players:
// seating, starting, per-game scoring, and final standings.
package match

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/player"
	"github.com/trainyard-games/mexican-train/game/rules"
	"github.com/trainyard-games/mexican-train/game/tile"
)

type (
	// Config contains the properties and injected functions for matches.
	Config struct {
		// TimeFunc is the source of timestamps.
		TimeFunc func() time.Time
		// ShuffleFunc randomizes each game's boneyard.
		ShuffleFunc func(tiles []tile.Tile)
	}

	// Match is a series of games played by one group of seats.
	Match struct {
		id          game.ID
		name        string
		host        player.Name
		cfg         game.Config
		seats       []player.Seat
		status      game.Status
		game        *rules.Game
		gameNumber  int
		totals      map[player.SeatID]int
		gamesWon    map[player.SeatID]int
		history     []GameStats
		createdAt   time.Time
		deadline    time.Time
		timeFunc    func() time.Time
		shuffleFunc func(tiles []tile.Tile)
	}

	// GameStats summarizes one finished game.
	GameStats struct {
		GameNumber int                   `json:"gameNumber"`
		Winner     player.SeatID         `json:"winner"`
		WinnerName player.Name           `json:"winnerName"`
		Deadlock   bool                  `json:"deadlock,omitempty"`
		Scores     map[player.SeatID]int `json:"scores"`
		// Seconds is the game's duration, truncated to whole seconds.
		Seconds int64 `json:"seconds"`
		// PipsLeft is the total pips remaining across all hands.
		PipsLeft int `json:"pipsLeft"`
		// LargestHand is the most tiles any one seat was left holding.
		LargestHand int `json:"largestHand"`
	}

	// Standing is one seat's final position in a completed match.
	Standing struct {
		Seat     player.SeatID `json:"seat"`
		Name     player.Name   `json:"name"`
		Total    int           `json:"total"`
		GamesWon int           `json:"gamesWon"`
	}

	// Completion is the final record of a match.  Standings are ordered
	// best to worst: lowest total, then fewer games won, then seating order.
	Completion struct {
		Winner     player.SeatID `json:"winner"`
		WinnerName player.Name   `json:"winnerName"`
		Standings  []Standing    `json:"standings"`
		// Margin is the total-score gap between first and second place.
		Margin  int         `json:"margin"`
		History []GameStats `json:"history"`
		// Achievements are named extrema of the match's games.
		Achievements []string `json:"achievements,omitempty"`
	}
)

var (
	// ErrAlreadyStarted is returned for seating changes after the match starts.
	ErrAlreadyStarted = errors.New("match already started")
	// ErrFull is returned when every seat is taken.
	ErrFull = errors.New("match is full")
)

// New creates a waiting match hosted by the named player, who takes the
// first seat.
func (c Config) New(id game.ID, name string, host player.Name, cfg game.Config) (*Match, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating match: validation: %w", err)
	}
	if c.TimeFunc == nil {
		return nil, fmt.Errorf("creating match: time func required")
	}
	now := c.TimeFunc()
	m := Match{
		id:          id,
		name:        name,
		host:        host,
		cfg:         cfg,
		status:      game.Waiting,
		totals:      make(map[player.SeatID]int),
		gamesWon:    make(map[player.SeatID]int),
		createdAt:   now,
		deadline:    now.Add(time.Duration(cfg.CountdownMinutes) * time.Minute),
		timeFunc:    c.TimeFunc,
		shuffleFunc: c.ShuffleFunc,
	}
	m.seats = append(m.seats, player.NewSeat(host))
	return &m, nil
}

// ID is the match's id.
func (m *Match) ID() game.ID {
	return m.id
}

// Host is the name of the player who created the match.
func (m *Match) Host() player.Name {
	return m.host
}

// Status is the lifecycle state of the match.
func (m *Match) Status() game.Status {
	return m.status
}

// Config is the match's settings.
func (m *Match) Config() game.Config {
	return m.cfg
}

// Deadline is when the waiting match auto-starts or is deleted.
func (m *Match) Deadline() time.Time {
	return m.deadline
}

// Seats returns the seats in seating order.
func (m *Match) Seats() []player.Seat {
	seats := make([]player.Seat, len(m.seats))
	copy(seats, m.seats)
	return seats
}

// Seat looks up the seat held by the named player.
func (m *Match) Seat(n player.Name) (player.Seat, bool) {
	for _, s := range m.seats {
		if s.Name == n {
			return s, true
		}
	}
	return player.Seat{}, false
}

// Game is the game currently in play, nil before the match starts.
func (m *Match) Game() *rules.Game {
	return m.game
}

// GameNumber is the 1-based number of the game in play, 0 before the start.
func (m *Match) GameNumber() int {
	return m.gameNumber
}

// AddPlayer seats the named player.  A player already holding a seat gets
// it back, so rejoins after reconnects are idempotent.
func (m *Match) AddPlayer(n player.Name) (player.Seat, bool, error) {
	if s, ok := m.Seat(n); ok {
		return s, false, nil
	}
	switch {
	case m.status != game.Waiting:
		return player.Seat{}, false, ErrAlreadyStarted
	case len(m.seats) >= m.cfg.MaxPlayers:
		return player.Seat{}, false, ErrFull
	}
	s := player.NewSeat(n)
	m.seats = append(m.seats, s)
	return s, true, nil
}

// RemovePlayer unseats the named player.  Seats are only given up while
// the match waits; started matches keep every seat for reconnection.
func (m *Match) RemovePlayer(n player.Name) error {
	if m.status != game.Waiting {
		return ErrAlreadyStarted
	}
	for i, s := range m.seats {
		if s.Name == n {
			m.seats = append(m.seats[:i], m.seats[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no seat held by %v", n)
}

// Start begins the first game.  At least MinPlayers must be seated unless
// force is set, which fills the shortfall with computer players.  A match
// configured with AIFill also fills every remaining seat to MaxPlayers.
func (m *Match) Start(force bool, strategy string) error {
	if m.status != game.Waiting {
		return ErrAlreadyStarted
	}
	if len(m.seats) < m.cfg.MinPlayers && !force {
		return fmt.Errorf("%v of %v players needed to start", len(m.seats), m.cfg.MinPlayers)
	}
	fillTo := len(m.seats)
	switch {
	case m.cfg.AIFill:
		fillTo = m.cfg.MaxPlayers
	case len(m.seats) < m.cfg.MinPlayers:
		fillTo = m.cfg.MinPlayers
	}
	for i := len(m.seats); i < fillTo; i++ {
		n := player.Name(fmt.Sprintf("Computer %v", i+1))
		m.seats = append(m.seats, player.NewAISeat(n, strategy))
	}
	m.status = game.InProgress
	return m.startGame()
}

// startGame deals the next game, reseating the starter by the double rule.
func (m *Match) startGame() error {
	cfg := rules.Config{
		MaxPip:      m.cfg.MaxPip,
		ShuffleFunc: m.shuffleFunc,
		TimeFunc:    m.timeFunc,
	}
	g, err := cfg.NewGame(m.seats)
	if err != nil {
		return fmt.Errorf("starting game %v: %w", m.gameNumber+1, err)
	}
	m.game = g
	m.gameNumber++
	return nil
}

// HandleGameEnd folds the ended game's scores into the match and either
// deals the next game or completes the match.  The completion is non-nil
// only when the final game just ended.
func (m *Match) HandleGameEnd() (*GameStats, *Completion, error) {
	g := m.game
	if g == nil || g.Status() != rules.Ended {
		return nil, nil, fmt.Errorf("no ended game to record")
	}
	stats := GameStats{
		GameNumber: m.gameNumber,
		Winner:     g.Winner(),
		Scores:     g.Scores(),
		Seconds:    int64(g.Duration() / time.Second),
	}
	for _, s := range m.seats {
		if s.ID == stats.Winner {
			stats.WinnerName = s.Name
		}
		score := stats.Scores[s.ID]
		m.totals[s.ID] += score
		stats.PipsLeft += score
		if n := g.HandSize(s.ID); n > stats.LargestHand {
			stats.LargestHand = n
		}
	}
	stats.Deadlock = g.Deadlocked()
	m.gamesWon[stats.Winner]++
	m.history = append(m.history, stats)
	if m.gameNumber < m.cfg.GamesToPlay {
		if err := m.startGame(); err != nil {
			return &stats, nil, err
		}
		return &stats, nil, nil
	}
	m.status = game.Completed
	m.game = nil
	completion := m.complete()
	return &stats, completion, nil
}

// complete ranks the seats into final standings.
func (m *Match) complete() *Completion {
	standings := make([]Standing, 0, len(m.seats))
	for _, s := range m.seats {
		standings = append(standings, Standing{
			Seat:     s.ID,
			Name:     s.Name,
			Total:    m.totals[s.ID],
			GamesWon: m.gamesWon[s.ID],
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Total != standings[j].Total {
			return standings[i].Total < standings[j].Total
		}
		return standings[i].GamesWon < standings[j].GamesWon
	})
	c := Completion{
		Winner:     standings[0].Seat,
		WinnerName: standings[0].Name,
		Standings:  standings,
		History:    m.history,
	}
	if len(standings) > 1 {
		c.Margin = standings[1].Total - standings[0].Total
	}
	c.Achievements = m.achievements(&c)
	return &c
}

// achievements names the notable extrema of the completed match.
func (m *Match) achievements(c *Completion) []string {
	var achievements []string
	if c.Standings[0].GamesWon == len(m.history) && len(m.history) > 1 {
		achievements = append(achievements, "clean_sweep")
	}
	if len(c.Standings) > 1 {
		switch {
		case c.Margin <= 5:
			achievements = append(achievements, "photo_finish")
		case c.Margin >= 50:
			achievements = append(achievements, "runaway")
		}
	}
	for _, stats := range m.history {
		if stats.Deadlock {
			achievements = append(achievements, "gridlock")
			break
		}
	}
	fewest := c.Standings[0].GamesWon
	for _, s := range c.Standings[1:] {
		if s.GamesWon < fewest {
			fewest = s.GamesWon
		}
	}
	if c.Standings[0].GamesWon == fewest && len(m.history) > 1 {
		achievements = append(achievements, "steady_hand")
	}
	return achievements
}

// Totals are the cumulative scores across the games played so far.
func (m *Match) Totals() map[player.SeatID]int {
	totals := make(map[player.SeatID]int, len(m.totals))
	for id, t := range m.totals {
		totals[id] = t
	}
	return totals
}

// MarkDeleted flags an expired waiting match so late lookups see it gone.
func (m *Match) MarkDeleted() {
	m.status = game.Deleted
}

// Info describes the match for the lobby listing.
func (m *Match) Info() game.Info {
	names := make([]string, 0, len(m.seats))
	for _, s := range m.seats {
		names = append(names, string(s.Name))
	}
	return game.Info{
		ID:          m.id,
		Name:        m.name,
		Host:        string(m.host),
		Status:      m.status,
		Players:     names,
		MaxPlayers:  m.cfg.MaxPlayers,
		GameNumber:  m.gameNumber,
		GamesToPlay: m.cfg.GamesToPlay,
		CreatedAt:   m.createdAt.Unix(),
	}
}
