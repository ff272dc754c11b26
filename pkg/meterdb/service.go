// Package meterdb keeps the derived rollup tables of the active dataset in an
// in-memory SQLite database, so floor and building questions can be answered
// with SQL instead of rescanning the sample table.
package meterdb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/NotCoffee418/building_energy_monitor/pkg/building"
	"github.com/NotCoffee418/dbmigrator"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// dbmigrator keeps its database type globally.
var migratorMu sync.Mutex

// Open creates an empty store with the schema applied.
func Open(ctx context.Context) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	migratorMu.Lock()
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)
	migratorMu.Unlock()

	// The migrator reports failures by logging; check the result ourselves.
	for _, table := range []string{"daily_rollups", "hourly_rollups"} {
		if _, err := db.ExecContext(ctx, "SELECT 1 FROM "+table+" LIMIT 1"); err != nil {
			db.Close()
			return nil, fmt.Errorf("schema not applied: %w", err)
		}
	}

	return &Store{db: db, layout: building.Default, loc: time.UTC}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
