// Package store persists players, games, leaderboards, prizes and the question bank
// in Postgres or SQLite through bun.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Options selects the backing database. PostgresURL wins when both are set.
type Options struct {
	PostgresURL  string
	SQLitePath   string
	MaxOpenConns int
}

type Store struct {
	db  *bun.DB
	now func() time.Time
}

// Open connects and pings the configured database.
func Open(ctx context.Context, opts Options) (*Store, error) {
	var db *bun.DB
	switch {
	case opts.PostgresURL != "":
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(opts.PostgresURL)))
		if opts.MaxOpenConns > 0 {
			sqldb.SetMaxOpenConns(opts.MaxOpenConns)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	case opts.SQLitePath != "":
		sqldb, err := openSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, errors.New("store: neither postgres url nor sqlite path configured")
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return New(db), nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	sqldb, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}

	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent games.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(time.Hour)

	if _, err := sqldb.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := sqldb.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}
	return sqldb, nil
}

// New wraps an already configured bun database.
func New(db *bun.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) DB() *bun.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// ts normalises timestamps so SQLite text comparisons order correctly.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
