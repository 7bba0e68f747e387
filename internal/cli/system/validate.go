package system

import (
	"errors"
	"strings"

	"github.com/julianstephens/apptbook/internal/cli"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	result, err := validateStored(ctx)
	if err != nil {
		return err
	}

	ctx.Println(strings.TrimRight(result.FormatReport(), "\n"))
	if len(result.Errors()) > 0 {
		return errors.New("appointment book contains invalid records")
	}
	return nil
}
