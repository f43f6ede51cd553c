package main

import (
	"context"
	crypto_rand "crypto/rand"
	gosql "database/sql"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"time"

	_ "github.com/lib/pq" // register "postgres" database driver from package init() function

	"github.com/trainyard-games/mexican-train/db"
	"github.com/trainyard-games/mexican-train/db/bcrypt"
	"github.com/trainyard-games/mexican-train/db/firestore"
	"github.com/trainyard-games/mexican-train/db/mongo"
	sqldb "github.com/trainyard-games/mexican-train/db/sql"
	"github.com/trainyard-games/mexican-train/db/sql/postgres"
	"github.com/trainyard-games/mexican-train/db/user"
	"github.com/trainyard-games/mexican-train/game"
	"github.com/trainyard-games/mexican-train/game/ai"
	"github.com/trainyard-games/mexican-train/game/tile"
	"github.com/trainyard-games/mexican-train/server"
	"github.com/trainyard-games/mexican-train/server/auth"
	servergame "github.com/trainyard-games/mexican-train/server/game"
	"github.com/trainyard-games/mexican-train/server/game/lobby"
	"github.com/trainyard-games/mexican-train/server/game/socket"
	"github.com/trainyard-games/mexican-train/server/log"
)

const (
	databaseQueryPeriod = 5 * time.Second
	maxMatches          = 4
	maxSockets          = 32
)

// createServer creates the server from the main flags.
func (m mainFlags) createServer(ctx context.Context, logger log.Logger) (*server.Server, error) {
	tokenizer, err := tokenizerConfig().NewTokenizer()
	if err != nil {
		return nil, fmt.Errorf("creating authentication tokenizer: %w", err)
	}
	backend, err := m.createUserBackend(ctx, logger)
	if err != nil {
		return nil, fmt.Errorf("creating user backend: %w", err)
	}
	ud, err := user.NewDao(backend, bcrypt.NewPasswordHandler())
	if err != nil {
		return nil, fmt.Errorf("creating user dao: %w", err)
	}
	registry, err := m.createAIRegistry(logger)
	if err != nil {
		return nil, fmt.Errorf("creating ai registry: %w", err)
	}
	runner, err := m.matchRunnerConfig(logger, registry).NewRunner(ud)
	if err != nil {
		return nil, fmt.Errorf("creating match runner: %w", err)
	}
	lob, err := m.lobbyConfig(logger, runner).NewLobby()
	if err != nil {
		return nil, fmt.Errorf("creating lobby: %w", err)
	}
	cfg := server.Config{
		HTTPPort:      m.httpPort,
		HTTPSPort:     m.httpsPort,
		StopDur:       time.Second,
		TLSCertFile:   m.tlsCertFile,
		TLSKeyFile:    m.tlsKeyFile,
		NoTLSRedirect: m.noTLSRedirect,
		AdminUsername: m.adminUsername,
	}
	p := server.Parameters{
		Logger:    logger,
		Tokenizer: tokenizer,
		UserDao:   ud,
		Lobby:     lob,
		Admin:     runner,
	}
	return cfg.NewServer(p)
}

// tokenizerConfig creates the configuration for the authentication token
// reader/writer.
func tokenizerConfig() auth.TokenizerConfig {
	return auth.TokenizerConfig{
		KeyReader: crypto_rand.Reader,
		TimeFunc:  time.Now,
		ValidSec:  int64((24 * time.Hour).Seconds()), // 1 day
	}
}

// createUserBackend creates the user storage backend named by the database
// URL scheme.  Users are kept in process memory when the URL is empty.
func (m mainFlags) createUserBackend(ctx context.Context, logger log.Logger) (user.Backend, error) {
	if len(m.databaseURL) == 0 {
		logger.Printf("no database url, users will not survive a restart")
		return user.NewMemBackend(), nil
	}
	u, err := url.Parse(m.databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}
	cfg := db.Config{
		QueryPeriod: databaseQueryPeriod,
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return createPostgresUserBackend(ctx, cfg, m.databaseURL)
	case "mongodb", "mongodb+srv":
		return createMongoUserBackend(ctx, cfg, m.databaseURL)
	case "firestore":
		// the project id is the url host: firestore://my-project
		return firestore.NewUserBackend(ctx, cfg, u.Host)
	}
	return nil, fmt.Errorf("unknown database url scheme: %v", u.Scheme)
}

// createPostgresUserBackend connects to the Postgres database and runs the
// embedded setup scripts.
func createPostgresUserBackend(ctx context.Context, cfg db.Config, databaseURL string) (*postgres.UserBackend, error) {
	sqlDB, err := gosql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	ub := postgres.UserBackend{
		Database: sqldb.Database{
			DB:     sqlDB,
			Config: cfg,
		},
	}
	files, err := sqlFiles()
	if err != nil {
		return nil, err
	}
	if err := ub.Database.Setup(ctx, files); err != nil {
		return nil, fmt.Errorf("setting up database: %w", err)
	}
	return &ub, nil
}

// createMongoUserBackend connects to the MongoDB database and ensures its
// indexes exist.
func createMongoUserBackend(ctx context.Context, cfg db.Config, databaseURL string) (*mongo.UserBackend, error) {
	ub, err := mongo.NewUserBackend(ctx, cfg, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := ub.Setup(ctx); err != nil {
		return nil, fmt.Errorf("setting up database: %w", err)
	}
	return ub, nil
}

// createAIRegistry loads the computer player strategy document, preferring
// the file named by the -ai-strategies-file flag over the embedded one.
func (m mainFlags) createAIRegistry(logger log.Logger) (*ai.Registry, error) {
	b := embeddedAIStrategies
	if len(m.aiStrategiesFile) != 0 {
		var err error
		b, err = os.ReadFile(m.aiStrategiesFile)
		if err != nil {
			return nil, fmt.Errorf("reading ai strategies file: %w", err)
		}
	}
	return ai.NewRegistry(b, logger), nil
}

// matchRunnerConfig creates the configuration for running matches.
func (m mainFlags) matchRunnerConfig(logger log.Logger, registry *ai.Registry) servergame.Config {
	shuffleFunc := func(tiles []tile.Tile) {
		rand.Shuffle(len(tiles), func(i, j int) {
			tiles[i], tiles[j] = tiles[j], tiles[i]
		})
	}
	return servergame.Config{
		Debug:        m.debugGame,
		Log:          logger,
		MaxMatches:   maxMatches,
		TimeFunc:     time.Now,
		ShuffleFunc:  shuffleFunc,
		NoAutoCreate: m.noAutoCreate,
		MatchCfg: game.Config{
			AllowSpectators: true,
			AIFill:          true,
		},
		Tacticians: func(strategyID string, seed int64) servergame.MoveChooser {
			return registry.Tactician(strategyID, seed)
		},
		StrategyForLevel: func(level int) string {
			id, _, ok := registry.Config().StrategyForLevel(level)
			if !ok {
				return ""
			}
			return id
		},
	}
}

// lobbyConfig creates the configuration for connecting player sockets to the
// match runner.
func (m mainFlags) lobbyConfig(logger log.Logger, runner *servergame.Runner) lobby.Config {
	socketCfg := socket.Config{
		Debug:      m.debugGame,
		Log:        logger,
		ReadWait:   60 * time.Second,
		WriteWait:  10 * time.Second,
		PingPeriod: 54 * time.Second, // readWait * 0.9
		IdlePeriod: 15 * time.Minute,
	}
	return lobby.Config{
		Debug:      m.debugGame,
		Log:        logger,
		MaxSockets: maxSockets,
		SocketCfg:  socketCfg,
		Games:      runner,
	}
}
