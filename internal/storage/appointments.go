package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/julianstephens/apptbook/internal/broadcast"
	"github.com/julianstephens/apptbook/internal/logger"
	"github.com/julianstephens/apptbook/internal/models"
)

// Snapshot is one delivery of the full appointment table. Err is set when
// the table could not be read; Appointments is nil in that case.
type Snapshot struct {
	Appointments []models.Appointment
	Err          error
}

// Appointments is the data access layer over a Provider. Every successful
// write is followed by a fresh snapshot to all observers.
type Appointments struct {
	store Provider

	// refreshMu orders query+publish pairs so a newer snapshot is never
	// replaced by an older one.
	refreshMu sync.Mutex
	snapshots *broadcast.Value[Snapshot]
}

// NewAppointments wraps store. Nothing is read until the first Observe.
func NewAppointments(store Provider) *Appointments {
	return &Appointments{
		store:     store,
		snapshots: &broadcast.Value[Snapshot]{},
	}
}

// Insert stores a and returns its id.
func (d *Appointments) Insert(ctx context.Context, a models.Appointment) (int64, error) {
	id, err := d.store.InsertAppointment(ctx, a)
	if err != nil {
		return 0, fmt.Errorf("failed to insert appointment: %w", err)
	}
	d.refresh(ctx)
	return id, nil
}

// Update overwrites the appointment with a.ID; unknown ids are ignored.
func (d *Appointments) Update(ctx context.Context, a models.Appointment) error {
	if err := d.store.UpdateAppointment(ctx, a); err != nil {
		return fmt.Errorf("failed to update appointment %d: %w", a.ID, err)
	}
	d.refresh(ctx)
	return nil
}

// Delete removes the appointment with a.ID; unknown ids are ignored.
func (d *Appointments) Delete(ctx context.Context, a models.Appointment) error {
	if err := d.store.DeleteAppointment(ctx, a); err != nil {
		return fmt.Errorf("failed to delete appointment %d: %w", a.ID, err)
	}
	d.refresh(ctx)
	return nil
}

// Get returns the appointment with id, or nil if there is none.
func (d *Appointments) Get(ctx context.Context, id int64) (*models.Appointment, error) {
	a, err := d.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment %d: %w", id, err)
	}
	return a, nil
}

// Observe returns a channel delivering the current table and then the
// complete table again after every write. Slow readers only see the
// latest snapshot. The channel is closed when ctx is done.
//
// Subscribing re-reads the table, so existing observers get an extra
// delivery of the same list.
func (d *Appointments) Observe(ctx context.Context) <-chan Snapshot {
	d.refresh(ctx)
	return d.snapshots.Subscribe(ctx)
}

// WatchExternal refreshes observers whenever the provider reports a change
// made outside this process. It returns immediately if the provider cannot
// report changes, and otherwise blocks until ctx is done.
func (d *Appointments) WatchExternal(ctx context.Context) error {
	notifier, ok := d.store.(ChangeNotifier)
	if !ok {
		return nil
	}

	changes, err := notifier.WatchChanges(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch appointment changes: %w", err)
	}

	for range changes {
		logger.Debug("External appointment change detected")
		d.refresh(ctx)
	}
	return nil
}

func (d *Appointments) refresh(ctx context.Context) {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	// The write already happened; its caller going away must not turn the
	// follow-up read into an error snapshot.
	list, err := d.store.ListAppointments(context.WithoutCancel(ctx))
	if err != nil {
		logger.Warn("Failed to load appointments", "error", err)
		d.snapshots.Set(Snapshot{Err: fmt.Errorf("failed to load appointments: %w", err)})
	} else {
		d.snapshots.Set(Snapshot{Appointments: list})
	}
}
