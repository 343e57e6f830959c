package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/medispatch/engine/core/feedback"
)

// SQLiteStore persists outcomes and feedback to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS recommendation_outcomes (
        id TEXT PRIMARY KEY,
        run_id TEXT UNIQUE,
        ts INTEGER,
        recommendation_type TEXT,
        record TEXT
    );
    CREATE TABLE IF NOT EXISTS user_feedback (
        id TEXT PRIMARY KEY,
        ts INTEGER,
        record TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// AppendOutcome writes the outcome row.
func (s *SQLiteStore) AppendOutcome(ctx context.Context, o feedback.Outcome) error {
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recommendation_outcomes (id, run_id, ts, recommendation_type, record) VALUES (?, ?, ?, ?, ?)`,
		o.ID, o.RunID, o.CreatedAt.Unix(), o.RecommendationType, string(b))
	return err
}

// OutcomeByRun returns the outcome recorded for the run, if any.
func (s *SQLiteStore) OutcomeByRun(ctx context.Context, runID string) (*feedback.Outcome, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record FROM recommendation_outcomes WHERE run_id = ?`, runID)
	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var o feedback.Outcome
	if err := json.Unmarshal([]byte(data), &o); err != nil {
		return nil, fmt.Errorf("unmarshal outcome: %w", err)
	}
	return &o, nil
}

// Outcomes returns outcomes matching q ordered by creation time.
func (s *SQLiteStore) Outcomes(ctx context.Context, q Query) ([]feedback.Outcome, error) {
	var args []any
	query := `SELECT record FROM recommendation_outcomes WHERE 1=1`
	if q.RecommendationType != "" {
		query += ` AND recommendation_type = ?`
		args = append(args, q.RecommendationType)
	}
	if !q.Since.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Since.Unix())
	}
	query += ` ORDER BY ts`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []feedback.Outcome
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var o feedback.Outcome
		if err := json.Unmarshal([]byte(data), &o); err != nil {
			return nil, fmt.Errorf("unmarshal outcome: %w", err)
		}
		res = append(res, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// AppendFeedback writes the feedback row.
func (s *SQLiteStore) AppendFeedback(ctx context.Context, f feedback.UserFeedback) error {
	b, err := json.Marshal(f)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user_feedback (id, ts, record) VALUES (?, ?, ?)`,
		f.ID, f.CreatedAt.Unix(), string(b))
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
