package appointments

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists appointments in Postgres. Identifiers come from a
// sequence, so they stay monotonic across processes.
type PostgresStore struct {
	pool querier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithQuerier(q querier) *PostgresStore {
	if q == nil {
		panic("appointments: querier required")
	}
	return &PostgresStore{pool: q}
}

// List returns all appointments ordered by identifier.
func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query := `
		SELECT id, service, full_name, date_of_birth, date, time_slot, to_char(created_at, 'YYYY-MM-DD HH24:MI:SS')
		FROM appointments
		ORDER BY id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("appointments: list: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Service, &r.Name, &r.BirthDate, &r.Date, &r.Time, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate: %w", err)
	}
	return records, nil
}

// Append inserts a record and returns it with the assigned identifier and
// creation timestamp.
func (s *PostgresStore) Append(ctx context.Context, r Record) (Record, error) {
	query := `
		INSERT INTO appointments (service, full_name, date_of_birth, date, time_slot)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, to_char(created_at, 'YYYY-MM-DD HH24:MI:SS')
	`
	row := s.pool.QueryRow(ctx, query, r.Service, r.Name, r.BirthDate, r.Date, r.Time)
	if err := row.Scan(&r.ID, &r.CreatedAt); err != nil {
		return Record{}, fmt.Errorf("appointments: append: %w", err)
	}
	return r, nil
}
