package cmdutils

import (
	"context"
	"fmt"
	"strconv"

	"github.com/superquinquin/consigne-desk/internal/business"
	"github.com/superquinquin/consigne-desk/internal/config"
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/internal/render"
)

// DeskFunc is an action running against the counter controller.
type DeskFunc func(ctx context.Context, c *deposit.Controller, p *render.Printer, args []string) error

// WithDesk turns fn into an Action: it builds the printer for the configured
// output and the controller for the configured store.
func WithDesk(fn DeskFunc) Action {
	return func(ctx context.Context, cfg *config.Config, in Invocation) error {
		printer, err := render.NewPrinter(in.Out, cfg.Desk.Output)
		if err != nil {
			return err
		}

		return business.WithController(ctx, cfg, func(ctx context.Context, c *deposit.Controller) error {
			return fn(ctx, c, printer, in.Args)
		})
	}
}

// ParseID parses a positive numeric id given on the command line.
func ParseID(name, value string) (int, error) {
	id, err := strconv.Atoi(value)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}

	return id, nil
}
