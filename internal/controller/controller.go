// Package controller turns the live appointment table into UI state and
// runs user actions against the repository in the background.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/julianstephens/apptbook/internal/broadcast"
	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/logger"
	"github.com/julianstephens/apptbook/internal/models"
	"github.com/julianstephens/apptbook/internal/repository"
)

// ErrBlankName is returned by Add when the client name is empty or only
// whitespace. Nothing is stored in that case.
var ErrBlankName = errors.New("client name must not be blank")

type Controller struct {
	repo   repository.AppointmentRepository
	ctx    context.Context
	cancel context.CancelFunc

	state *broadcast.Value[State]

	collector sync.WaitGroup
	inflight  sync.WaitGroup

	errMu     sync.Mutex
	writeErrs []error
}

// New starts collecting appointment snapshots from repo. All background
// work stops when parent is cancelled or Close is called.
func New(parent context.Context, repo repository.AppointmentRepository) *Controller {
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{
		repo:   repo,
		ctx:    ctx,
		cancel: cancel,
		state:  broadcast.New(State{Status: Loading}),
	}

	snaps := repo.Observe(ctx)
	c.collector.Add(1)
	go func() {
		defer c.collector.Done()
		for snap := range snaps {
			next := stateFrom(snap)
			if next.Status == Error {
				logger.Warn("Appointment list unavailable", "error", next.Message)
			}
			c.state.Set(next)
		}
	}()

	return c
}

// State returns the current UI state.
func (c *Controller) State() State {
	s, _ := c.state.Get()
	return s
}

// Observe delivers the current state and every later one, coalesced.
func (c *Controller) Observe(ctx context.Context) <-chan State {
	return c.state.Subscribe(ctx)
}

// Settled blocks until the first snapshot has been mapped and returns that
// state, or ctx's error if it ends first.
func (c *Controller) Settled(ctx context.Context) (State, error) {
	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	for st := range c.Observe(sub) {
		if st.Status != Loading {
			return st, nil
		}
	}
	return c.State(), ctx.Err()
}

// Add schedules a new appointment. A blank name stores nothing.
func (c *Controller) Add(name string, date int64, timeStr, notes string) error {
	if strings.TrimSpace(name) == "" {
		return ErrBlankName
	}
	a := models.NewAppointment(name, date, timeStr, notes)
	c.launch("insert", func(ctx context.Context) error {
		_, err := c.repo.Insert(ctx, a)
		return err
	})
	return nil
}

// Update replaces the appointment with id. The status goes back to
// Scheduled. Unknown ids leave the store unchanged.
func (c *Controller) Update(id int64, name string, date int64, timeStr, notes string) {
	a := models.NewAppointment(name, date, timeStr, notes).WithID(id)
	c.launch("update", func(ctx context.Context) error {
		return c.repo.Update(ctx, a)
	})
}

// MarkCompleted stores a with its status set to Completed.
func (c *Controller) MarkCompleted(a models.Appointment) {
	done := a.WithStatus(constants.StatusCompleted)
	c.launch("complete", func(ctx context.Context) error {
		return c.repo.Update(ctx, done)
	})
}

// Delete removes a.
func (c *Controller) Delete(a models.Appointment) {
	c.launch("delete", func(ctx context.Context) error {
		return c.repo.Delete(ctx, a)
	})
}

// GetByID fetches one appointment. It returns nil when the id is unknown.
func (c *Controller) GetByID(ctx context.Context, id int64) (*models.Appointment, error) {
	return c.repo.Get(ctx, id)
}

// Wait blocks until every mutation started so far has finished and
// returns the write failures collected since the previous Wait.
func (c *Controller) Wait() error {
	c.inflight.Wait()

	c.errMu.Lock()
	defer c.errMu.Unlock()
	err := errors.Join(c.writeErrs...)
	c.writeErrs = nil
	return err
}

// Close cancels outstanding work and waits for it to stop.
func (c *Controller) Close() {
	c.cancel()
	c.inflight.Wait()
	c.collector.Wait()
}

func (c *Controller) launch(op string, fn func(ctx context.Context) error) {
	if c.ctx.Err() != nil {
		logger.Warn("Controller closed, dropping write", "op", op)
		return
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		if err := fn(c.ctx); err != nil {
			logger.Error("Appointment write failed", "op", op, "error", err)
			c.errMu.Lock()
			c.writeErrs = append(c.writeErrs, fmt.Errorf("%s: %w", op, err))
			c.errMu.Unlock()
		}
	}()
}
