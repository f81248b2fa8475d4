package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"millionaire-service/internal/infra/store"
)

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, model := range store.Tables() {
				if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("create table %T: %w", model, err)
				}
			}
			for _, idx := range store.Indexes() {
				q := db.NewCreateIndex().Model(idx.Model).Index(idx.Name).Column(idx.Columns...).IfNotExists()
				if idx.Unique {
					q = q.Unique()
				}
				if _, err := q.Exec(ctx); err != nil {
					return fmt.Errorf("create index %s: %w", idx.Name, err)
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			tables := store.Tables()
			for i := len(tables) - 1; i >= 0; i-- {
				if _, err := db.NewDropTable().Model(tables[i]).IfExists().Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	)
}
