package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sakif/todo-api/internal/config"
	"github.com/sakif/todo-api/internal/database"
)

// version is overwritten at build time:
//
//	go build -ldflags "-X main.version=1.2.0" ./cmd/server
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "todo-api",
	Short: "Users, todos, tags and products over a JSON HTTP API",
	Long: `todo-api serves users, profiles, todos, tags and products over JSON/HTTP.

Configuration is read from TODO_* environment variables (and a .env file in
the working directory). TODO_JWT_SECRET_KEY is always required.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

// newLogger builds the slog logger described by the log section.
//
// Log levels (from least to most severe): Debug → Info → Warn → Error.
// Text output is for humans at a terminal; JSON output is for log shippers.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// bootstrap loads the configuration, builds the logger and opens the
// database. Every command that touches the database starts here.
func bootstrap(ctx context.Context) (*config.Config, *slog.Logger, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg.Log)

	db, err := database.Open(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, logger, db, nil
}
