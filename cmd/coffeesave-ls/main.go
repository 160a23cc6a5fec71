package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/jwtly10/coffeesave"
	"github.com/jwtly10/coffeesave/internal/lsp/server"
)

// getLogFile returns a log file for the lsp server to write to.
//
// During development (-debug flag) uses persistent log for easy access.
// COFFEESAVE_LOG names the file explicitly.
func getLogFile(debug bool) (*os.File, error) {
	if p := os.Getenv("COFFEESAVE_LOG"); p != "" {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, err
		}
		return os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}

	if debug {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		logDir := filepath.Join(homeDir, ".coffeesave")
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}
		return os.OpenFile(filepath.Join(logDir, "coffeesave-ls.log"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	}

	return os.CreateTemp("", "coffeesave-ls-*.log")
}

func main() {
	var debug bool
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	_ = godotenv.Load()

	logFile, err := getLogFile(debug)
	if err != nil {
		slog.Error("failed to setup logging", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	// stdout carries the protocol, logs go to stderr and the log file
	var handler slog.Handler
	if debug {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		})
	} else {
		handler = slog.NewTextHandler(io.MultiWriter(os.Stderr, logFile), &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	slog.Info("starting coffeesave-ls", "version", coffeesave.VERSION, "logfile", logFile.Name())

	s, err := server.NewServer(server.DefaultServerOptions)
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	s.Serve(context.Background(), server.NewStdRWC())
	os.Exit(s.ExitCode())
}
