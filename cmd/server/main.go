// Package main starts the server after configuring it from supplied or
// standard arguments.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/trainyard-games/mexican-train/server"
)

// main configures and runs the server.
func main() {
	ctx := context.Background()
	logFlags := log.Ldate | log.Ltime | log.LUTC | log.Lshortfile | log.Lmsgprefix
	logger := log.New(os.Stdout, "", logFlags)
	m := newMainFlags(os.Args, os.LookupEnv)
	s, err := m.createServer(ctx, logger)
	if err != nil {
		logger.Fatalf("creating server: %v", err)
	}
	if err := runServer(ctx, s, logger); err != nil {
		logger.Fatalf("running server: %v", err)
	}
	logger.Println("server run stopped successfully")
}

// runServer runs the server until it is interrupted or terminated.
func runServer(ctx context.Context, s *server.Server, logger *log.Logger) error {
	done := make(chan os.Signal, 2)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	errC := s.Run(ctx)
	select { // BLOCKING
	case err := <-errC:
		switch {
		case err == http.ErrServerClosed:
			logger.Printf("server shutdown triggered")
		default:
			logger.Printf("server stopped unexpectedly: %v", err)
		}
	case signal := <-done:
		logger.Printf("handled signal: %v", signal)
	}
	if err := s.Stop(ctx); err != nil {
		return fmt.Errorf("stopping server: %v", err)
	}
	return nil
}
