// Package db persists scan-history summaries in SQLite. Computed routes are
// never stored, only request-level summary rows.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"sc-trade-advisor/internal/logger"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS scan_history (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp     TEXT NOT NULL,
				ship_scu      REAL NOT NULL,
				legal_count   INTEGER NOT NULL,
				illegal_count INTEGER NOT NULL,
				top_roi       REAL NOT NULL,
				duration_ms   INTEGER NOT NULL
			);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}
