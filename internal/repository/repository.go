package repository

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_repository.go -package=mocks github.com/julianstephens/apptbook/internal/repository AppointmentRepository

import (
	"context"

	"github.com/julianstephens/apptbook/internal/models"
	"github.com/julianstephens/apptbook/internal/storage"
)

// AppointmentRepository is what the controller and the command line use to
// reach appointment storage.
type AppointmentRepository interface {
	Observe(ctx context.Context) <-chan storage.Snapshot
	Insert(ctx context.Context, a models.Appointment) (int64, error)
	Update(ctx context.Context, a models.Appointment) error
	Delete(ctx context.Context, a models.Appointment) error
	Get(ctx context.Context, id int64) (*models.Appointment, error)
}

type appointmentRepository struct {
	dal *storage.Appointments
}

// New returns a repository backed by dal.
func New(dal *storage.Appointments) AppointmentRepository {
	return &appointmentRepository{dal: dal}
}

func (r *appointmentRepository) Observe(ctx context.Context) <-chan storage.Snapshot {
	return r.dal.Observe(ctx)
}

func (r *appointmentRepository) Insert(ctx context.Context, a models.Appointment) (int64, error) {
	return r.dal.Insert(ctx, a)
}

func (r *appointmentRepository) Update(ctx context.Context, a models.Appointment) error {
	return r.dal.Update(ctx, a)
}

func (r *appointmentRepository) Delete(ctx context.Context, a models.Appointment) error {
	return r.dal.Delete(ctx, a)
}

func (r *appointmentRepository) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	return r.dal.Get(ctx, id)
}
