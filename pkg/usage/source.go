// Package usage derives projection baselines from a pario usage database.
package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pario-ai/costplan/pkg/models"
)

// ErrNoUsage is returned when no recorded request matches a filter.
var ErrNoUsage = errors.New("no recorded usage")

// Source reads recorded token usage.
type Source interface {
	// Baseline averages matching usage records into daily requests and
	// per-request token counts.
	Baseline(ctx context.Context, f Filter) (models.UsageBaseline, error)
	// Close releases resources.
	Close() error
}

// Filter narrows the records a baseline is computed from. Zero fields match
// everything.
type Filter struct {
	APIKey string
	Model  string
	Since  time.Time
}

// SQLiteSource implements Source over the usage_records table written by
// the pario proxy.
type SQLiteSource struct {
	db *sql.DB
}

const createTable = `
CREATE TABLE IF NOT EXISTS usage_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	api_key TEXT NOT NULL,
	model TEXT NOT NULL,
	prompt_tokens INTEGER NOT NULL,
	completion_tokens INTEGER NOT NULL,
	total_tokens INTEGER NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_usage_key_time ON usage_records(api_key, created_at);
`

// Open opens the database at dbPath, creating the usage table if missing.
func Open(dbPath string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate usage db: %w", err)
	}

	// Databases written before sessions existed lack session_id.
	if !columnExists(db, "usage_records", "session_id") {
		if _, err := db.Exec(`ALTER TABLE usage_records ADD COLUMN session_id TEXT NOT NULL DEFAULT ''`); err != nil {
			db.Close()
			return nil, fmt.Errorf("add session_id column: %w", err)
		}
	}

	return &SQLiteSource{db: db}, nil
}

func columnExists(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}

// Record stores a usage record.
func (s *SQLiteSource) Record(ctx context.Context, rec models.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_records (api_key, model, session_id, prompt_tokens, completion_tokens, total_tokens, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.APIKey, rec.Model, rec.SessionID, rec.PromptTokens, rec.CompletionTokens, rec.TotalTokens, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record usage: %w", err)
	}
	return nil
}

// Baseline averages matching records. Daily requests is the request count
// divided by the number of distinct days with at least one request.
func (s *SQLiteSource) Baseline(ctx context.Context, f Filter) (models.UsageBaseline, error) {
	where, args := whereClause(f)

	b := models.UsageBaseline{APIKey: f.APIKey, Model: f.Model}
	var prompt, completion int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(prompt_tokens), 0), COALESCE(SUM(completion_tokens), 0),
		 COUNT(DISTINCT substr(created_at, 1, 10))
		 FROM usage_records`+where,
		args...,
	).Scan(&b.Requests, &prompt, &completion, &b.ActiveDays)
	if err != nil {
		return models.UsageBaseline{}, fmt.Errorf("baseline: %w", err)
	}
	if b.Requests == 0 || b.ActiveDays == 0 {
		return models.UsageBaseline{}, ErrNoUsage
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM usage_records`+where+` ORDER BY created_at ASC LIMIT 1`, args...,
	).Scan(&b.FirstSeen)
	if err != nil {
		return models.UsageBaseline{}, fmt.Errorf("baseline first seen: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`SELECT created_at FROM usage_records`+where+` ORDER BY created_at DESC LIMIT 1`, args...,
	).Scan(&b.LastSeen)
	if err != nil {
		return models.UsageBaseline{}, fmt.Errorf("baseline last seen: %w", err)
	}

	b.AvgDailyRequests = float64(b.Requests) / float64(b.ActiveDays)
	b.AvgPromptTokens = float64(prompt) / float64(b.Requests)
	b.AvgCompletionTokens = float64(completion) / float64(b.Requests)
	return b, nil
}

func whereClause(f Filter) (string, []any) {
	var conds []string
	var args []any
	if f.APIKey != "" {
		conds = append(conds, "api_key = ?")
		args = append(args, f.APIKey)
	}
	if f.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, f.Model)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Close releases the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}
