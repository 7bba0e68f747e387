package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/apptbook/internal/backup"
	"github.com/julianstephens/apptbook/internal/config"
	"github.com/julianstephens/apptbook/internal/controller"
	"github.com/julianstephens/apptbook/internal/logger"
	"github.com/julianstephens/apptbook/internal/models"
	"github.com/julianstephens/apptbook/internal/repository"
	"github.com/julianstephens/apptbook/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Store  storage.Provider
	Target config.Target

	// Out and In default to the process stdout/stdin
	Out io.Writer
	In  io.Reader

	dal *storage.Appointments
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Printf writes formatted command output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// Println writes a line of command output.
func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Input returns the reader prompts should read from.
func (c *Context) Input() io.Reader {
	return c.in()
}

// Appointments returns the data access layer over Store, created once.
func (c *Context) Appointments() *storage.Appointments {
	if c.dal == nil {
		c.dal = storage.NewAppointments(c.Store)
	}
	return c.dal
}

// Repository returns the appointment repository over Store.
func (c *Context) Repository() repository.AppointmentRepository {
	return repository.New(c.Appointments())
}

// Controller starts a controller bound to ctx. Callers Close it.
func (c *Context) Controller(ctx context.Context) *controller.Controller {
	return controller.New(ctx, c.Repository())
}

// IsSQLite reports whether Store is backed by a local file that can be
// backed up.
func (c *Context) IsSQLite() bool {
	return !c.Target.IsPostgres()
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if !c.IsSQLite() {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// LookupAppointment fetches id or fails with a not found error.
func (c *Context) LookupAppointment(ctx context.Context, id int64) (models.Appointment, error) {
	a, err := c.Repository().Get(ctx, id)
	if err != nil {
		return models.Appointment{}, err
	}
	if a == nil {
		return models.Appointment{}, fmt.Errorf("appointment %d not found", id)
	}
	return *a, nil
}

// ParseDateFlag accepts YYYY-MM-DD, "today" or "tomorrow" and returns
// epoch milliseconds at local midnight.
func ParseDateFlag(s string, now time.Time) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return midnight(now).UnixMilli(), nil
	case "tomorrow":
		return midnight(now).AddDate(0, 0, 1).UnixMilli(), nil
	}
	return models.ParseDate(s)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ParseID parses a positive appointment id.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid appointment id %q", s)
	}
	return id, nil
}

// Confirm asks a yes/no question on In and reports whether the answer was yes.
func (c *Context) Confirm(question string) (bool, error) {
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
