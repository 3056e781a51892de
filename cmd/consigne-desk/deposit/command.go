package depositcmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/superquinquin/consigne-desk/internal/cmdutils"
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/internal/render"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Run the deposit of the current session",
	}

	sub := func(use, short string, args cobra.PositionalArgs, fn cmdutils.DeskFunc) *cobra.Command {
		c := cmdutils.CobraCommand(use, short, short, buildInfo, cmdutils.RunWithTelemetry, cmdutils.WithDesk(fn))
		c.Args = args

		return c
	}

	cmd.AddCommand(
		sub("open", "Open a deposit for the chosen people", cobra.NoArgs, open),
		sub("show", "Show the deposit with its lines", cobra.NoArgs, show),
		sub("line <line-id>", "Show one line of the deposit", cobra.ExactArgs(1), line),
		sub("return <product-code>...", "Record scanned products", cobra.MinimumNArgs(1), returnProducts),
		sub("cancel <line-id>", "Cancel a line of the open deposit", cobra.ExactArgs(1), cancel),
		sub("close", "Close the deposit", cobra.NoArgs, closeDeposit),
		sub("ticket", "Print the deposit ticket", cobra.NoArgs, ticket),
	)

	return cmd
}

func open(ctx context.Context, c *deposit.Controller, p *render.Printer, _ []string) error {
	s, err := c.Open(ctx)
	if err != nil {
		return err
	}

	return p.Session(s, deposit.StateOf(s))
}

func show(ctx context.Context, c *deposit.Controller, p *render.Printer, _ []string) error {
	snap, err := c.Snapshot(ctx)
	if err != nil {
		return err
	}

	return p.Snapshot(snap)
}

func line(ctx context.Context, c *deposit.Controller, p *render.Printer, args []string) error {
	lineID, err := cmdutils.ParseID("line id", args[0])
	if err != nil {
		return err
	}

	record, err := c.Line(ctx, lineID)
	if err != nil {
		return err
	}

	return p.Line(record)
}

// returnProducts prints what was recorded even when a later code fails.
func returnProducts(ctx context.Context, c *deposit.Controller, p *render.Printer, args []string) error {
	products, err := c.ReturnProducts(ctx, args)
	if printErr := p.Returned(products); printErr != nil && err == nil {
		return printErr
	}

	return err
}

func cancel(ctx context.Context, c *deposit.Controller, p *render.Printer, args []string) error {
	lineID, err := cmdutils.ParseID("line id", args[0])
	if err != nil {
		return err
	}

	if err := c.CancelLine(ctx, lineID); err != nil {
		return err
	}

	return p.Done("line %d canceled", lineID)
}

func closeDeposit(ctx context.Context, c *deposit.Controller, p *render.Printer, _ []string) error {
	s, err := c.Close(ctx)
	if err != nil {
		return err
	}

	return p.Done("deposit #%d closed", *s.DepositID)
}

func ticket(ctx context.Context, c *deposit.Controller, p *render.Printer, _ []string) error {
	if err := c.PrintTicket(ctx); err != nil {
		return err
	}

	return p.Done("ticket sent to the printer")
}
