package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteBackend persists limiter snapshots in a SQLite database. Suitable
// for single-instance deployments where admission windows must survive a
// restart.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the snapshot database at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	b := &SQLiteBackend{db: db}
	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return b, nil
}

// initSchema creates the snapshot table if it doesn't exist.
func (b *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS admission_windows (
		key TEXT NOT NULL,
		admitted_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_admission_key ON admission_windows(key);
	`
	_, err := b.db.Exec(schema)
	return err
}

// Save replaces the stored snapshot inside a single transaction.
func (b *SQLiteBackend) Save(ctx context.Context, snap map[string][]time.Time) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM admission_windows`); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO admission_windows (key, admitted_at) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, timestamps := range snap {
		for _, ts := range timestamps {
			if _, err := stmt.ExecContext(ctx, key, ts.UnixNano()); err != nil {
				return fmt.Errorf("failed to insert snapshot row: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Load returns the stored snapshot ordered by admission time per key.
func (b *SQLiteBackend) Load(ctx context.Context) (map[string][]time.Time, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT key, admitted_at FROM admission_windows ORDER BY key, admitted_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	snap := make(map[string][]time.Time)
	for rows.Next() {
		var key string
		var admittedAt int64
		if err := rows.Scan(&key, &admittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snap[key] = append(snap[key], time.Unix(0, admittedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot rows: %w", err)
	}

	return snap, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
