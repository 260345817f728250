package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresRepo persists leads in the leads table.
//
// Expected schema:
//
//	CREATE TABLE leads (
//	    id           TEXT PRIMARY KEY,
//	    name         TEXT,
//	    phone_number TEXT UNIQUE,
//	    email        TEXT,
//	    source       TEXT,
//	    status       TEXT NOT NULL DEFAULT 'new',
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
//	    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const leadColumns = `id, name, phone_number, email, source, status, created_at, updated_at`

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByPhone(ctx context.Context, phone string) (Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE phone_number = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, phone))
}

func (r *PostgresRepo) Create(ctx context.Context, lead Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = StatusNew
	}
	const q = `
INSERT INTO leads (id, name, phone_number, email, source, status)
VALUES ($1, $2, $3, $4, $5, $6)
`
	if _, err := r.db.ExecContext(ctx, q, lead.ID, lead.Name, lead.PhoneNumber, lead.Email, lead.Source, lead.Status); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE leads SET status = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, limit int) ([]Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return out, nil
}

func (r *PostgresRepo) scanOne(row *sql.Row) (Lead, error) {
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (Lead, error) {
	var (
		lead                 Lead
		name, phone          sql.NullString
		email, source, state sql.NullString
	)
	if err := row.Scan(&lead.ID, &name, &phone, &email, &source, &state, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return Lead{}, err
	}
	lead.Name = name.String
	lead.PhoneNumber = phone.String
	lead.Email = email.String
	lead.Source = source.String
	lead.Status = state.String
	return lead, nil
}
