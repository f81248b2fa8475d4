package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"millionaire-service/internal/config"
	"millionaire-service/internal/infra/store"
	"millionaire-service/internal/infra/store/migrations"
)

const defaultSQLitePath = "data/millionaire.db"

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			db, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return migrations.Run(cmd.Context(), db.DB())
		},
	}
}

// openStore connects to Postgres when configured and to SQLite otherwise.
func openStore(ctx context.Context, cfg config.Config) (*store.Store, error) {
	opts := store.Options{PostgresURL: cfg.Postgres.URL, SQLitePath: cfg.SQLite.Path}
	if opts.PostgresURL == "" {
		if opts.SQLitePath == "" {
			opts.SQLitePath = defaultSQLitePath
		}
		if err := os.MkdirAll(filepath.Dir(opts.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	return store.Open(ctx, opts)
}
