package usage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
	id             TEXT PRIMARY KEY,
	timestamp      INTEGER NOT NULL,
	key            TEXT NOT NULL,
	provider       TEXT NOT NULL,
	model          TEXT NOT NULL,
	input_tokens   INTEGER NOT NULL,
	output_tokens  INTEGER NOT NULL,
	cost           REAL NOT NULL,
	latency_ms     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_usage_timestamp ON usage_records(timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_key ON usage_records(key, timestamp);
CREATE INDEX IF NOT EXISTS idx_usage_provider ON usage_records(provider, timestamp);
`

// StoreConfig contains configuration for the SQLite usage store.
type StoreConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections. Default: 10.
	MaxOpenConns int

	// BusyTimeout is the wait when the database is locked. Default: 5s.
	BusyTimeout time.Duration
}

// DefaultStoreConfig returns the default store configuration.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Path:         "data/usage.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
	}
}

// Store persists usage records in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (creating if necessary) the usage database at the
// configured path and initializes the schema.
func NewStore(config *StoreConfig) (*Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}
	if config.Path == "" {
		return nil, fmt.Errorf("usage store path cannot be empty")
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("opening usage database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "usage.store"),
	}

	if err := s.initialize(config); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("usage store initialized", "path", config.Path)
	return s, nil
}

func (s *Store) initialize(config *StoreConfig) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enabling WAL mode: %w", err)
	}

	timeout := config.BusyTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", timeout.Milliseconds())); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("creating usage schema: %w", err)
	}
	return nil
}

// Record inserts a usage record.
func (s *Store) Record(ctx context.Context, rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_records (
			id, timestamp, key, provider, model,
			input_tokens, output_tokens, cost, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixNano(), rec.Key, rec.Provider, rec.Model,
		rec.InputTokens, rec.OutputTokens, rec.Cost, rec.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("inserting usage record: %w", err)
	}
	return nil
}

// Summarize aggregates all records with timestamp >= since. A zero since
// aggregates everything.
func (s *Store) Summarize(ctx context.Context, since time.Time) (*Summary, error) {
	summary := &Summary{ByProvider: make(map[string]*ProviderSummary)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT provider,
		       COUNT(*),
		       COALESCE(SUM(input_tokens), 0),
		       COALESCE(SUM(output_tokens), 0),
		       COALESCE(SUM(cost), 0)
		FROM usage_records
		WHERE timestamp >= ?
		GROUP BY provider`,
		since.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying usage summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var provider string
		ps := &ProviderSummary{}
		if err := rows.Scan(&provider, &ps.Requests, &ps.InputTokens, &ps.OutputTokens, &ps.TotalCost); err != nil {
			return nil, fmt.Errorf("scanning usage summary: %w", err)
		}
		summary.ByProvider[provider] = ps
		summary.Requests += ps.Requests
		summary.InputTokens += ps.InputTokens
		summary.OutputTokens += ps.OutputTokens
		summary.TotalCost += ps.TotalCost
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading usage summary: %w", err)
	}
	return summary, nil
}

// Recent returns the most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, key, provider, model,
		       input_tokens, output_tokens, cost, latency_ms
		FROM usage_records
		ORDER BY timestamp DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying usage records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec := &Record{}
		var ts int64
		if err := rows.Scan(&rec.ID, &ts, &rec.Key, &rec.Provider, &rec.Model,
			&rec.InputTokens, &rec.OutputTokens, &rec.Cost, &rec.LatencyMs); err != nil {
			return nil, fmt.Errorf("scanning usage record: %w", err)
		}
		rec.Timestamp = time.Unix(0, ts)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading usage records: %w", err)
	}
	return records, nil
}

// Prune deletes records older than the cutoff and returns how many were
// removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM usage_records WHERE timestamp < ?`, before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("pruning usage records: %w", err)
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		s.logger.Info("pruned usage records", "removed", removed, "before", before)
	}
	return removed, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
