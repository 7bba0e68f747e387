package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/apptbook/internal/models"
)

const appointmentColumns = `id, client_name, date_timestamp, time_string, notes, status`

func (s *Store) InsertAppointment(ctx context.Context, a models.Appointment) (int64, error) {
	if a.ID == 0 {
		var id int64
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO appointments (client_name, date_timestamp, time_string, notes, status)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			a.ClientName, a.DateTimestamp, a.TimeString, a.Notes, a.Status).Scan(&id)
		return id, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (id, client_name, date_timestamp, time_string, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			client_name = EXCLUDED.client_name,
			date_timestamp = EXCLUDED.date_timestamp,
			time_string = EXCLUDED.time_string,
			notes = EXCLUDED.notes,
			status = EXCLUDED.status`,
		a.ID, a.ClientName, a.DateTimestamp, a.TimeString, a.Notes, a.Status)
	if err != nil {
		return 0, err
	}

	// Explicit ids bypass the sequence; move it past them so later
	// generated ids stay unique
	_, err = tx.ExecContext(ctx, `
		SELECT setval('appointments_id_seq',
			GREATEST((SELECT MAX(id) FROM appointments), (SELECT last_value FROM appointments_id_seq)))`)
	if err != nil {
		return 0, fmt.Errorf("failed to advance id sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return a.ID, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, a models.Appointment) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE appointments
		SET client_name = $1, date_timestamp = $2, time_string = $3, notes = $4, status = $5
		WHERE id = $6`,
		a.ClientName, a.DateTimestamp, a.TimeString, a.Notes, a.Status, a.ID)
	return err
}

func (s *Store) DeleteAppointment(ctx context.Context, a models.Appointment) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = $1", a.ID)
	return err
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	var a models.Appointment
	err := s.db.QueryRowContext(ctx, "SELECT "+appointmentColumns+" FROM appointments WHERE id = $1", id).
		Scan(&a.ID, &a.ClientName, &a.DateTimestamp, &a.TimeString, &a.Notes, &a.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+appointmentColumns+" FROM appointments ORDER BY date_timestamp ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		if err := rows.Scan(&a.ID, &a.ClientName, &a.DateTimestamp, &a.TimeString, &a.Notes, &a.Status); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
