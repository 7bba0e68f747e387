package appointments

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/apptbook/internal/cli"
	"github.com/julianstephens/apptbook/internal/controller"
	"github.com/julianstephens/apptbook/internal/transfer"
)

type ExportCmd struct {
	Format string `help:"Output format (json or yaml). Defaults to the output file extension."`
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	format := transfer.FormatJSON
	switch {
	case c.Format != "":
		f, err := transfer.ParseFormat(c.Format)
		if err != nil {
			return err
		}
		format = f
	case c.Output != "":
		format = transfer.FormatFromPath(c.Output)
	}

	return withController(ctx, func(bg context.Context, ctrl *controller.Controller) error {
		st, err := ctrl.Settled(bg)
		if err != nil {
			return err
		}
		if st.Status == controller.Error {
			return fmt.Errorf("failed to read appointments: %s", st.Message)
		}

		var w io.Writer = ctx.Out
		if w == nil {
			w = os.Stdout
		}
		if c.Output != "" {
			f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := transfer.Export(w, format, st.Appointments, now()); err != nil {
			return fmt.Errorf("failed to export appointments: %w", err)
		}
		if c.Output != "" {
			ctx.Printf("Exported %d appointment(s) to %s\n", len(st.Appointments), c.Output)
		}
		return nil
	})
}

// ImportCmd adds the appointments of an export to the book. Ids are
// reassigned so existing appointments are never overwritten.
type ImportCmd struct {
	File   string `arg:"" help:"Export file to read." type:"existingfile"`
	Format string `help:"Input format (json or yaml). Defaults to the file extension."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	format := transfer.FormatFromPath(c.File)
	if c.Format != "" {
		f, err := transfer.ParseFormat(c.Format)
		if err != nil {
			return err
		}
		format = f
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	doc, err := transfer.Decode(f, format)
	if err != nil {
		return err
	}

	// Back up before a bulk change, like the TUI does on startup
	ctx.PerformAutomaticBackup()

	n, err := transfer.Import(context.Background(), ctx.Repository(), doc)
	if err != nil {
		return fmt.Errorf("imported %d appointment(s) before failing: %w", n, err)
	}
	ctx.Printf("Imported %d appointment(s)\n", n)
	return nil
}
