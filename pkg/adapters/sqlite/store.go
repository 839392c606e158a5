// Package sqlite implements the walkout store on an embedded SQLite
// database. Single-office deployments run on it without any external
// infrastructure; the aggregate is stored as one JSON document per row
// with the appointment id as a unique index.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/claritydental/walkout/pkg/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS walkouts (
	id             TEXT PRIMARY KEY,
	appointment_id TEXT NOT NULL UNIQUE,
	status         TEXT NOT NULL,
	owner          TEXT NOT NULL,
	data           TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
`

// Store implements ports.WalkoutStore over database/sql.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// The driver is in-process; concurrent writers contend on file
	// locks instead of failing when limited to one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Create persists a new walkout, enforcing one per appointment.
func (s *Store) Create(ctx context.Context, w *domain.Walkout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal walkout: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM walkouts WHERE appointment_id = ?`, w.AppointmentID).Scan(&existing)
	switch {
	case err == nil:
		return &domain.ConflictError{AppointmentID: w.AppointmentID, WalkoutID: existing}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check appointment uniqueness: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO walkouts (id, appointment_id, status, owner, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.AppointmentID, string(w.Status), string(w.Owner), string(data),
		w.CreatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"),
		w.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"))
	if err != nil {
		return fmt.Errorf("insert walkout: %w", err)
	}
	return tx.Commit()
}

// Update replaces a stored walkout.
func (s *Store) Update(ctx context.Context, w *domain.Walkout) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("marshal walkout: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE walkouts SET appointment_id = ?, status = ?, owner = ?, data = ?, updated_at = ?
		 WHERE id = ?`,
		w.AppointmentID, string(w.Status), string(w.Owner), string(data),
		w.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"), w.ID)
	if err != nil {
		return fmt.Errorf("update walkout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update walkout: %w", err)
	}
	if n == 0 {
		return domain.ErrWalkoutNotFound
	}
	return nil
}

// Get retrieves a walkout by identity.
func (s *Store) Get(ctx context.Context, id string) (*domain.Walkout, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT data FROM walkouts WHERE id = ?`, id))
}

// GetByAppointment retrieves the walkout attached to an appointment.
func (s *Store) GetByAppointment(ctx context.Context, appointmentID string) (*domain.Walkout, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT data FROM walkouts WHERE appointment_id = ?`, appointmentID))
}

func (s *Store) scanOne(row *sql.Row) (*domain.Walkout, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWalkoutNotFound
		}
		return nil, fmt.Errorf("scan walkout: %w", err)
	}
	var w domain.Walkout
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, fmt.Errorf("unmarshal walkout: %w", err)
	}
	return &w, nil
}

// List returns all stored walkout identities.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM walkouts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list walkouts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan walkout id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a walkout.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM walkouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete walkout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete walkout: %w", err)
	}
	if n == 0 {
		return domain.ErrWalkoutNotFound
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
