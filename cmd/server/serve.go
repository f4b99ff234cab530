package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/todo-api/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, logger, db, err := bootstrap(ctx)
		if err != nil {
			return err
		}

		// === MIGRATIONS ===
		// With auto-migrate on, a fresh checkout starts with `todo-api serve`
		// and nothing else. Production deployments turn it off and run
		// `todo-api migrate up` as a separate release step.
		if cfg.DB.AutoMigrate {
			from, to, err := db.Migrate(ctx)
			if err != nil {
				db.Close()
				return err
			}
			if from != to {
				logger.Info("schema migrated", slog.Int("from", int(from)), slog.Int("to", int(to)))
			}
		}

		srv, err := server.New(server.Config{App: cfg, DB: db}, logger)
		if err != nil {
			db.Close()
			return err
		}

		if cfg.Admin.Enabled() {
			if err := srv.SeedAdmin(ctx); err != nil {
				db.Close()
				return err
			}
		}

		// Start blocks until SIGINT/SIGTERM and closes the database.
		return srv.Start()
	},
}
