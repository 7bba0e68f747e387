package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/apptbook/internal/cli"
	"github.com/julianstephens/apptbook/internal/cli/appointments"
	"github.com/julianstephens/apptbook/internal/cli/backups"
	"github.com/julianstephens/apptbook/internal/cli/system"
	"github.com/julianstephens/apptbook/internal/config"
	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/errors"
	"github.com/julianstephens/apptbook/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use APPTBOOK_DB_CONNECTION, .pgpass, or the OS keyring instead." type:"string" default:"~/.config/apptbook/apptbook.db" env:"APPTBOOK_CONFIG"`
	Debug   bool   `help:"Enable debug logging to stderr." env:"APPTBOOK_DEBUG"`

	Init     system.InitCmd     `cmd:"" help:"Initialize apptbook storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Check appointments for double bookings and broken records."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"withargs"`

	Add      appointments.AddCmd      `cmd:"" help:"Schedule a new appointment."`
	Edit     appointments.EditCmd     `cmd:"" help:"Edit an appointment."`
	List     appointments.ListCmd     `cmd:"" help:"List appointments."`
	Show     appointments.ShowCmd     `cmd:"" help:"Show one appointment."`
	Complete appointments.CompleteCmd `cmd:"" help:"Mark an appointment as completed."`
	Delete   appointments.DeleteCmd   `cmd:"" help:"Delete an appointment."`
	Export   appointments.ExportCmd   `cmd:"" help:"Export appointments as JSON or YAML."`
	Import   appointments.ImportCmd   `cmd:"" help:"Import appointments from an export."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage the database connection stored in the OS keyring."`
}

// needsStore reports whether command expects an already loaded database.
// doctor loads it itself so a broken database becomes a report line.
func needsStore(command string) bool {
	for _, own := range []string{"init", "keyring", "doctor"} {
		if strings.HasPrefix(command, own) {
			return false
		}
	}
	return true
}

func main() {
	// .env has to be in the environment before kong reads env tags
	config.LoadEnv(filepath.Dir(config.ExpandHome(constants.DefaultConfigPath)))

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Offline appointment book"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	target, err := config.Resolve(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: config.Dir(target)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Resolved database", "target", target.Describe(), "source", target.Source)

	store, err := config.Open(target)
	if err != nil {
		errors.Fatal(err)
	}

	if needsStore(ctx.Command()) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(&cli.Context{Store: store, Target: target})
	if closeErr := store.Close(); closeErr != nil {
		logger.Warn("Failed to close database", "error", closeErr)
	}
	errors.Fatal(err)
}
