// Package history provides the live incident-history store backed by the
// platform's Postgres database. The engine only reads from it.
package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	corehistory "github.com/medispatch/engine/core/history"
)

// Config holds the Postgres connection settings.
type Config struct {
	DSN string `json:"dsn"`
}

// PostgresStore reads hourly call counts and open incidents from the
// platform's incidents table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies the connection.
func NewPostgresStore(ctx context.Context, cfg Config) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("history: dsn is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("history: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreFromPool wraps an existing pool, used by tests.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// HourlyCounts returns per-hour call counts matching q ordered by bucket
// start.
func (s *PostgresStore) HourlyCounts(ctx context.Context, q corehistory.Query) ([]corehistory.Bucket, error) {
	query := `SELECT date_trunc('hour', created_at) AS bucket, COUNT(*)
		FROM incidents
		WHERE organization_id = $1`
	args := []any{q.OrganizationID}
	if q.ZoneID != "" {
		args = append(args, q.ZoneID)
		query += fmt.Sprintf(" AND zone_id = $%d", len(args))
	}
	if q.HasCallType {
		args = append(args, q.CallType.String())
		query += fmt.Sprintf(" AND call_type = $%d", len(args))
	}
	if !q.Start.IsZero() {
		args = append(args, q.Start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !q.End.IsZero() {
		args = append(args, q.End)
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	query += " GROUP BY bucket ORDER BY bucket"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: hourly counts: %w", err)
	}
	defer rows.Close()

	var res []corehistory.Bucket
	for rows.Next() {
		var b corehistory.Bucket
		if err := rows.Scan(&b.Start, &b.Count); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		res = append(res, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return res, nil
}

// ActiveIncidents returns the number of open incidents in the zone. An empty
// zone id counts the whole organization.
func (s *PostgresStore) ActiveIncidents(ctx context.Context, organizationID, zoneID string) (int, error) {
	query := `SELECT COUNT(*) FROM incidents
		WHERE organization_id = $1 AND closed_at IS NULL`
	args := []any{organizationID}
	if zoneID != "" {
		args = append(args, zoneID)
		query += fmt.Sprintf(" AND zone_id = $%d", len(args))
	}
	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: active incidents: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

var _ corehistory.Store = (*PostgresStore)(nil)
