package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/julianstephens/apptbook/internal/models"
)

const appointmentColumns = `id, client_name, date_timestamp, time_string, notes, status`

type scanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row scanner) (models.Appointment, error) {
	var a models.Appointment
	err := row.Scan(&a.ID, &a.ClientName, &a.DateTimestamp, &a.TimeString, &a.Notes, &a.Status)
	return a, err
}

func (s *Store) InsertAppointment(ctx context.Context, a models.Appointment) (int64, error) {
	if a.ID == 0 {
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO appointments (client_name, date_timestamp, time_string, notes, status)
			VALUES (?, ?, ?, ?, ?)`,
			a.ClientName, a.DateTimestamp, a.TimeString, a.Notes, a.Status)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO appointments (id, client_name, date_timestamp, time_string, notes, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.ClientName, a.DateTimestamp, a.TimeString, a.Notes, a.Status)
	if err != nil {
		return 0, err
	}
	return a.ID, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, a models.Appointment) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE appointments
		SET client_name = ?, date_timestamp = ?, time_string = ?, notes = ?, status = ?
		WHERE id = ?`,
		a.ClientName, a.DateTimestamp, a.TimeString, a.Notes, a.Status, a.ID)
	return err
}

func (s *Store) DeleteAppointment(ctx context.Context, a models.Appointment) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = ?", a.ID)
	return err
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+appointmentColumns+" FROM appointments WHERE id = ?", id)
	a, err := scanAppointment(row)
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
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}
