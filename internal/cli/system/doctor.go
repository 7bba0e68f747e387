package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/apptbook/internal/backup"
	"github.com/julianstephens/apptbook/internal/cli"
	"github.com/julianstephens/apptbook/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	// warnOnly failures don't fail the command
	warnOnly bool
	run      func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
		{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
		{name: "Appointment data", needsDB: true, run: checkAppointmentData},
		{name: "Scheduling conflicts", needsDB: true, warnOnly: true, run: checkSchedulingConflicts},
		{name: "Clock/timezone", run: checkClockTimezone},
	}

	hasError := false
	dbReachable := true
	for i, chk := range checks {
		if chk.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", chk.name)
			continue
		}

		err := chk.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", chk.name)
		case chk.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", chk.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", chk.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if i == 0 {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		return errors.New("diagnostics failed")
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.ListAppointments(context.Background())
	return err
}

func checkMigrationsComplete(ctx *cli.Context) error {
	m, ok := ctx.Store.(Migrator)
	if !ok {
		return nil
	}
	pending, err := m.PendingMigrations()
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%d pending migration(s), run 'apptbook migrate'", pending)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errors.New("backups are only managed for SQLite databases")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.GetBackupDir())
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func validateStored(ctx *cli.Context) (validation.ValidationResult, error) {
	appts, err := ctx.Store.ListAppointments(context.Background())
	if err != nil {
		return validation.ValidationResult{}, err
	}
	return validation.New().ValidateAppointments(appts), nil
}

func checkAppointmentData(ctx *cli.Context) error {
	result, err := validateStored(ctx)
	if err != nil {
		return err
	}
	var problems []string
	for _, c := range result.Errors() {
		problems = append(problems, c.Description)
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func checkSchedulingConflicts(ctx *cli.Context) error {
	result, err := validateStored(ctx)
	if err != nil {
		return err
	}
	var warnings []string
	for _, c := range result.Conflicts {
		if !c.Type.IsError() {
			warnings = append(warnings, c.Description)
		}
	}
	if len(warnings) > 0 {
		return errors.New(strings.Join(warnings, "; "))
	}
	return nil
}

// checkClockTimezone catches clocks reset to the epoch, which would file
// "today" appointments decades in the past.
func checkClockTimezone(_ *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if _, err := time.LoadLocation(now.Location().String()); err != nil {
		return fmt.Errorf("local timezone %q cannot be loaded: %w", now.Location(), err)
	}
	return nil
}
