package usage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"codemorph/internal/llm"
)

// Dialect selects the SQL driver and placeholder style.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite"
}

// placeholders returns "$1, $2, ..." for Postgres and "?, ?, ..." otherwise.
func (d Dialect) placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		if d == Postgres {
			parts[i] = fmt.Sprintf("$%d", i+1)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

const createTable = `CREATE TABLE IF NOT EXISTS llm_usage (
	day            TEXT    NOT NULL,
	at_unix_ms     BIGINT  NOT NULL,
	model          TEXT    NOT NULL,
	phase          TEXT    NOT NULL,
	prompt_bytes   BIGINT  NOT NULL,
	response_bytes BIGINT  NOT NULL,
	latency_ms     BIGINT  NOT NULL,
	failed         BOOLEAN NOT NULL
)`

// SQLLedger stores one row per call in Postgres or SQLite.
type SQLLedger struct {
	db      *sql.DB
	dialect Dialect
	insert  string
}

// Open connects with the dialect's driver and creates the table.
func Open(ctx context.Context, dialect Dialect, dsn string) (*SQLLedger, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("usage ledger: dsn is required")
	}
	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}
	if dialect == SQLite {
		// A single connection keeps in-memory databases alive and serializes writers.
		db.SetMaxOpenConns(1)
	}
	l, err := NewSQLLedger(ctx, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

func NewSQLLedger(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLLedger, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping usage db: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("create usage table: %w", err)
	}
	return &SQLLedger{
		db:      db,
		dialect: dialect,
		insert: "INSERT INTO llm_usage (day, at_unix_ms, model, phase, prompt_bytes, response_bytes, latency_ms, failed) VALUES (" +
			dialect.placeholders(8) + ")",
	}, nil
}

func (l *SQLLedger) Record(ctx context.Context, rec llm.UsageRecord) error {
	at := rec.At.UTC()
	_, err := l.db.ExecContext(ctx, l.insert,
		at.Format(dayLayout),
		at.UnixMilli(),
		rec.Model,
		rec.Phase,
		int64(rec.PromptBytes),
		int64(rec.ResponseBytes),
		rec.Latency.Milliseconds(),
		rec.Failed,
	)
	if err != nil {
		return fmt.Errorf("insert usage: %w", err)
	}
	return nil
}

func (l *SQLLedger) Daily(ctx context.Context) ([]DayStat, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT day, model, COUNT(*),
	SUM(CASE WHEN failed THEN 1 ELSE 0 END),
	CAST(SUM(prompt_bytes) AS BIGINT), CAST(SUM(response_bytes) AS BIGINT)
FROM llm_usage GROUP BY day, model ORDER BY day, model`)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var out []DayStat
	for rows.Next() {
		var s DayStat
		if err := rows.Scan(&s.Day, &s.Model, &s.Requests, &s.Errors, &s.PromptBytes, &s.ResponseBytes); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (l *SQLLedger) Close() error {
	return l.db.Close()
}
