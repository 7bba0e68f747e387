package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/apptbook/internal/cli"
	"github.com/julianstephens/apptbook/internal/config"
	"github.com/julianstephens/apptbook/internal/storage"
	"github.com/julianstephens/apptbook/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database before initialization."`
	Source string `help:"Database path or connection string to copy appointments from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force && ctx.IsSQLite() {
		if err := c.removeExisting(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized apptbook storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying appointments from: %s\n", config.Target{Value: c.Source}.Describe())
		n, err := c.copyFrom(ctx, c.Source)
		if err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Printf("Copied %d appointment(s)\n", n)
	}

	return nil
}

func (c *InitCmd) removeExisting(ctx *cli.Context) error {
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSource, errSrc := filepath.Abs(c.Source)
		if errDB == nil && errSrc == nil && absDB == absSource {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// copyFrom inserts every appointment of the source book, keeping ids
func (c *InitCmd) copyFrom(ctx *cli.Context, source string) (int, error) {
	target := config.Target{Value: source, Source: config.SourceFlag}
	if target.IsPostgres() {
		if _, err := postgres.ValidateConnString(source); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return 0, fmt.Errorf("source connection string contains embedded credentials; use %s or .pgpass instead", "APPTBOOK_DB_CONNECTION")
			}
			return 0, err
		}
	} else {
		target.Value = config.ExpandHome(source)
	}

	src, err := config.Open(target)
	if err != nil {
		return 0, err
	}
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source database: %w", err)
	}
	defer src.Close()

	bg := context.Background()
	appts, err := src.ListAppointments(bg)
	if err != nil {
		return 0, fmt.Errorf("failed to read source appointments: %w", err)
	}

	dst := storage.NewAppointments(ctx.Store)
	for _, a := range appts {
		if _, err := dst.Insert(bg, a); err != nil {
			return 0, err
		}
	}
	return len(appts), nil
}
