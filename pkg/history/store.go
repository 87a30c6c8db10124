// Package history provides a SQLite-backed execution history for the tool
// subsystem. Records are append-only; Clear is the only destructive
// operation.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/harun/armory/pkg/tool"
)

// ToolStats is a per-tool aggregate computed from stored records.
type ToolStats struct {
	ToolName      string  `json:"tool_name"`
	TotalCalls    int64   `json:"total_calls"`
	Successes     int64   `json:"successes"`
	Failures      int64   `json:"failures"`
	SuccessRate   float64 `json:"success_rate"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
	MinDurationMS int64   `json:"min_duration_ms"`
	MaxDurationMS int64   `json:"max_duration_ms"`
}

// Store persists execution records in SQLite.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Config holds store configuration
type Config struct {
	Path   string
	Logger zerolog.Logger
}

// Open opens (or creates) the history database.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("history database path is required")
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{
		db:     db,
		logger: cfg.Logger,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS execution_records (
		id TEXT PRIMARY KEY,
		tool_name TEXT NOT NULL,
		input_parameters TEXT NOT NULL,
		output TEXT,
		success INTEGER NOT NULL,
		error TEXT,
		duration_ms INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_execution_records_tool ON execution_records(tool_name);
	CREATE INDEX IF NOT EXISTS idx_execution_records_timestamp ON execution_records(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one execution record.
func (s *Store) Append(ctx context.Context, rec tool.Record) error {
	output := sql.NullString{}
	if len(rec.Output) > 0 {
		output = sql.NullString{String: string(rec.Output), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO execution_records
			(id, tool_name, input_parameters, output, success, error, duration_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ToolName, string(rec.Input), output,
		rec.Success, rec.Error, rec.DurationMS, rec.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append execution record: %w", err)
	}
	return nil
}

// Records returns records matching the query, newest first.
func (s *Store) Records(ctx context.Context, q tool.Query) ([]tool.Record, error) {
	query := `SELECT id, tool_name, input_parameters, output, success, error, duration_ms, timestamp
		FROM execution_records WHERE 1=1`
	args := []any{}

	if q.ToolName != "" {
		query += " AND tool_name = ?"
		args = append(args, q.ToolName)
	}
	if q.Success != nil {
		query += " AND success = ?"
		args = append(args, *q.Success)
	}

	query += " ORDER BY timestamp DESC, id"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution records: %w", err)
	}
	defer rows.Close()

	var records []tool.Record
	for rows.Next() {
		var (
			rec       tool.Record
			input     string
			output    sql.NullString
			errMsg    sql.NullString
			timestamp time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.ToolName, &input, &output, &rec.Success, &errMsg, &rec.DurationMS, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}
		rec.Input = []byte(input)
		if output.Valid {
			rec.Output = []byte(output.String)
		}
		if errMsg.Valid {
			rec.Error = errMsg.String
		}
		rec.Timestamp = timestamp
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Len returns the total number of stored records.
func (s *Store) Len(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM execution_records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count execution records: %w", err)
	}
	return count, nil
}

// Clear deletes all records. This is the only destructive operation.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM execution_records"); err != nil {
		return fmt.Errorf("failed to clear execution records: %w", err)
	}

	s.logger.Warn().Msg("Execution history cleared")

	return nil
}

// Stats computes per-tool aggregates over stored records.
func (s *Store) Stats(ctx context.Context) ([]ToolStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tool_name,
			COUNT(*),
			SUM(success),
			AVG(duration_ms),
			MIN(duration_ms),
			MAX(duration_ms)
		FROM execution_records
		GROUP BY tool_name
		ORDER BY tool_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution stats: %w", err)
	}
	defer rows.Close()

	var stats []ToolStats
	for rows.Next() {
		var st ToolStats
		if err := rows.Scan(&st.ToolName, &st.TotalCalls, &st.Successes, &st.AvgDurationMS, &st.MinDurationMS, &st.MaxDurationMS); err != nil {
			return nil, fmt.Errorf("failed to scan execution stats: %w", err)
		}
		st.Failures = st.TotalCalls - st.Successes
		if st.TotalCalls > 0 {
			st.SuccessRate = float64(st.Successes) / float64(st.TotalCalls)
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
