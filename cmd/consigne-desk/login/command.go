package login

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/superquinquin/consigne-desk/internal/business"
	"github.com/superquinquin/consigne-desk/internal/cmdutils"
	"github.com/superquinquin/consigne-desk/internal/config"
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/internal/render"
)

var errNoOperator = errors.New("no operator configured, set api.username and api.password")

func Cmd(buildInfo string) *cobra.Command {
	cmd := cmdutils.CobraCommand(
		"login",
		"Check the operator credentials",
		"Authenticates the configured operator (api.username, api.password) and shows the time left in the current shift",
		buildInfo,
		cmdutils.RunWithTelemetry,
		run,
	)
	cmd.Args = cobra.NoArgs

	return cmd
}

func run(ctx context.Context, cfg *config.Config, in cmdutils.Invocation) error {
	username, password, err := cfg.API.Credentials()
	if err != nil {
		return err
	}

	if username == "" {
		return errNoOperator
	}

	printer, err := render.NewPrinter(in.Out, cfg.Desk.Output)
	if err != nil {
		return err
	}

	return business.WithController(ctx, cfg, func(ctx context.Context, c *deposit.Controller) error {
		op, ok, err := c.Authenticate(ctx, username, password)
		if err != nil {
			return err
		}

		if !ok {
			if err := printer.Rejected(); err != nil {
				return err
			}

			return fmt.Errorf("operator %q was rejected", username)
		}

		return printer.Operator(op)
	})
}
