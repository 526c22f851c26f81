package costs

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const costsSchema = `
CREATE TABLE IF NOT EXISTS costs (
	id            TEXT PRIMARY KEY,
	timestamp     INTEGER NOT NULL,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	operation     TEXT NOT NULL DEFAULT '',
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	total_tokens  INTEGER NOT NULL,
	cost_usd      REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_costs_timestamp ON costs(timestamp);
`

// SQLiteLedger persists usage records in a SQLite database. Spend totals
// are computed by the database instead of scanning a log file.
type SQLiteLedger struct {
	db *sql.DB
}

var _ Ledger = (*SQLiteLedger)(nil)

// OpenSQLite opens (creating if needed) the costs database at path.
func OpenSQLite(path string) (*SQLiteLedger, error) {
	if path == "" {
		return nil, fmt.Errorf("costs database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create costs directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open costs database: %w", err)
	}
	if _, err := db.Exec(costsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create costs schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// NewSQLiteInMemory opens an in-memory costs database, used in tests.
func NewSQLiteInMemory() (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open in-memory costs database: %w", err)
	}
	if _, err := db.Exec(costsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create costs schema: %w", err)
	}
	return &SQLiteLedger{db: db}, nil
}

// Append inserts one usage record.
func (l *SQLiteLedger) Append(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO costs (id, timestamp, provider, model, operation, input_tokens, output_tokens, total_tokens, cost_usd)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.Unix(), rec.Provider, rec.Model, rec.Operation,
		rec.InputTokens, rec.OutputTokens, rec.TotalTokens, rec.CostUSD,
	)
	if err != nil {
		return fmt.Errorf("insert costs record: %w", err)
	}
	return nil
}

// Spend returns today's and this month's spend totals in USD. The day and
// month boundaries follow the local time zone, matching the JSONL tracker.
func (l *SQLiteLedger) Spend(ctx context.Context, now time.Time) (Spend, error) {
	if now.IsZero() {
		now = time.Now()
	}
	nowLocal := now.In(time.Local)
	year, month, day := nowLocal.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)

	totals := Spend{}
	if err := l.sumRange(ctx, dayStart, dayStart.AddDate(0, 0, 1), &totals.TodayUSD); err != nil {
		return Spend{}, err
	}
	if err := l.sumRange(ctx, monthStart, monthStart.AddDate(0, 1, 0), &totals.MonthUSD); err != nil {
		return Spend{}, err
	}
	return totals, nil
}

func (l *SQLiteLedger) sumRange(ctx context.Context, from, to time.Time, out *float64) error {
	row := l.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(cost_usd), 0) FROM costs WHERE timestamp >= ? AND timestamp < ?`,
		from.Unix(), to.Unix(),
	)
	if err := row.Scan(out); err != nil {
		return fmt.Errorf("sum costs range: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
