// Package appointments holds the one-shot appointment commands. Every
// change goes through the controller so the command line and the TUI
// share one write path.
package appointments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/apptbook/internal/cli"
	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/controller"
	"github.com/julianstephens/apptbook/internal/models"
)

// now is replaced in tests
var now = time.Now

// withController runs fn against a fresh controller and waits for the
// writes it started.
func withController(ctx *cli.Context, fn func(bg context.Context, ctrl *controller.Controller) error) error {
	bg, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := ctx.Controller(bg)
	defer ctrl.Close()

	if err := fn(bg, ctrl); err != nil {
		return err
	}
	return ctrl.Wait()
}

type AddCmd struct {
	Name  string `arg:"" help:"Client name."`
	Date  string `help:"Date (YYYY-MM-DD, today or tomorrow)." default:"today"`
	Time  string `help:"Time of day (HH:MM)." default:"10:00"`
	Notes string `help:"Free-form notes."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDateFlag(c.Date, now())
	if err != nil {
		return err
	}
	if err := models.ValidateTime(c.Time); err != nil {
		return err
	}

	err = withController(ctx, func(_ context.Context, ctrl *controller.Controller) error {
		return ctrl.Add(strings.TrimSpace(c.Name), date, strings.TrimSpace(c.Time), c.Notes)
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added appointment: %s on %s at %s\n",
		strings.TrimSpace(c.Name), time.UnixMilli(date).Format(constants.DateFormat), strings.TrimSpace(c.Time))
	return nil
}

// EditCmd changes the given fields and keeps the rest. Like the edit
// screen it puts the appointment back to Scheduled.
type EditCmd struct {
	ID    int64   `arg:"" help:"Appointment ID."`
	Name  *string `help:"New client name."`
	Date  *string `help:"New date (YYYY-MM-DD, today or tomorrow)."`
	Time  *string `help:"New time of day (HH:MM)."`
	Notes *string `help:"New notes."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	return withController(ctx, func(bg context.Context, ctrl *controller.Controller) error {
		a, err := ctx.LookupAppointment(bg, c.ID)
		if err != nil {
			return err
		}

		if c.Name != nil {
			if strings.TrimSpace(*c.Name) == "" {
				return controller.ErrBlankName
			}
			a.ClientName = strings.TrimSpace(*c.Name)
		}
		if c.Date != nil {
			if a.DateTimestamp, err = cli.ParseDateFlag(*c.Date, now()); err != nil {
				return err
			}
		}
		if c.Time != nil {
			if err := models.ValidateTime(*c.Time); err != nil {
				return err
			}
			a.TimeString = strings.TrimSpace(*c.Time)
		}
		if c.Notes != nil {
			a.Notes = *c.Notes
		}

		ctrl.Update(a.ID, a.ClientName, a.DateTimestamp, a.TimeString, a.Notes)
		ctx.Printf("Updated appointment %d\n", a.ID)
		return nil
	})
}

type ListCmd struct {
	Status string `help:"Only show appointments with this status (scheduled or completed)."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	if c.Status != "" && !strings.EqualFold(c.Status, constants.StatusScheduled) && !strings.EqualFold(c.Status, constants.StatusCompleted) {
		return fmt.Errorf("unknown status %q (expected scheduled or completed)", c.Status)
	}

	return withController(ctx, func(bg context.Context, ctrl *controller.Controller) error {
		st, err := ctrl.Settled(bg)
		if err != nil {
			return err
		}

		switch st.Status {
		case controller.Error:
			return fmt.Errorf("failed to list appointments: %s", st.Message)
		case controller.Empty:
			ctx.Println("No appointments")
			return nil
		}

		shown := 0
		for _, a := range st.Appointments {
			if c.Status != "" && !strings.EqualFold(a.Status, c.Status) {
				continue
			}
			if shown == 0 {
				ctx.Println("Appointments:")
			}
			ctx.Printf("  %4d  %s %-5s  %-9s  %s\n",
				a.ID, a.FormatDate(constants.DisplayDateFormat), a.TimeString, a.Status, a.ClientName)
			shown++
		}
		if shown == 0 {
			ctx.Println("No appointments")
		}
		return nil
	})
}

type ShowCmd struct {
	ID int64 `arg:"" help:"Appointment ID."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	a, err := ctx.LookupAppointment(context.Background(), c.ID)
	if err != nil {
		return err
	}

	ctx.Printf("Appointment %d\n", a.ID)
	ctx.Printf("  Client: %s\n", a.ClientName)
	ctx.Printf("  Date:   %s\n", a.FormatDate(constants.DisplayDateFormat))
	ctx.Printf("  Time:   %s\n", a.TimeString)
	ctx.Printf("  Status: %s\n", a.Status)
	ctx.Printf("  Notes:  %s\n", a.NotesOrPlaceholder())
	return nil
}

type CompleteCmd struct {
	ID int64 `arg:"" help:"Appointment ID."`
}

func (c *CompleteCmd) Run(ctx *cli.Context) error {
	return withController(ctx, func(bg context.Context, ctrl *controller.Controller) error {
		a, err := ctx.LookupAppointment(bg, c.ID)
		if err != nil {
			return err
		}
		if a.IsCompleted() {
			ctx.Printf("Appointment %d is already completed\n", a.ID)
			return nil
		}
		ctrl.MarkCompleted(a)
		ctx.Printf("Marked appointment %d as completed\n", a.ID)
		return nil
	})
}

type DeleteCmd struct {
	ID  int64 `arg:"" help:"Appointment ID."`
	Yes bool  `short:"y" help:"Do not ask for confirmation."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	return withController(ctx, func(bg context.Context, ctrl *controller.Controller) error {
		a, err := ctx.LookupAppointment(bg, c.ID)
		if err != nil {
			return err
		}
		if !c.Yes {
			ok, err := ctx.Confirm(fmt.Sprintf("Delete appointment with %s on %s?", a.ClientName, a.FormatDate(constants.DisplayDateFormat)))
			if err != nil {
				return err
			}
			if !ok {
				ctx.Println("Cancelled")
				return nil
			}
		}
		ctrl.Delete(a)
		ctx.Printf("Deleted appointment %d\n", a.ID)
		return nil
	})
}
