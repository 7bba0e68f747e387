package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/apptbook/internal/models"
)

// ErrNotInitialized is returned by Load when no database exists yet.
var ErrNotInitialized = errors.New("storage not initialized, run 'apptbook init' first")

// Provider is a record store for appointments.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Appointments
	//
	// InsertAppointment assigns a new id when a.ID is 0 and replaces the
	// existing row when a.ID is already taken. It returns the row id.
	InsertAppointment(ctx context.Context, a models.Appointment) (int64, error)
	// UpdateAppointment overwrites the row with a.ID. A missing row is not an error.
	UpdateAppointment(ctx context.Context, a models.Appointment) error
	// DeleteAppointment removes the row with a.ID. A missing row is not an error.
	DeleteAppointment(ctx context.Context, a models.Appointment) error
	// GetAppointment returns nil when no row has the given id.
	GetAppointment(ctx context.Context, id int64) (*models.Appointment, error)
	// ListAppointments returns every row ordered by date, then id.
	ListAppointments(ctx context.Context) ([]models.Appointment, error)

	// Utils
	GetConfigPath() string
}

// ChangeNotifier is implemented by providers that can report writes made
// by other processes sharing the same database.
type ChangeNotifier interface {
	// WatchChanges sends on the returned channel whenever the underlying
	// table may have changed. The channel is closed when ctx is done.
	WatchChanges(ctx context.Context) (<-chan struct{}, error)
}
