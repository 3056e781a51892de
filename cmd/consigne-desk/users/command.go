package users

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/superquinquin/consigne-desk/internal/cmdutils"
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/internal/render"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Look up members",
	}

	search := cmdutils.CobraCommand(
		"search <text>...",
		"Search members by name or number",
		"Search members by name or cooperator number, the way the counter search box does",
		buildInfo,
		cmdutils.RunWithTelemetry,
		cmdutils.WithDesk(searchUsers),
	)
	search.Args = cobra.MinimumNArgs(1)

	shift := cmdutils.CobraCommand(
		"shift",
		"List the members of the current shifts",
		"List the members of the current shifts",
		buildInfo,
		cmdutils.RunWithTelemetry,
		cmdutils.WithDesk(shiftUsers),
	)
	shift.Args = cobra.NoArgs

	cmd.AddCommand(search, shift)

	return cmd
}

func searchUsers(ctx context.Context, c *deposit.Controller, p *render.Printer, args []string) error {
	people, err := c.SearchUsers(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	return p.People(people)
}

func shiftUsers(ctx context.Context, c *deposit.Controller, p *render.Printer, _ []string) error {
	people, err := c.ShiftUsers(ctx)
	if err != nil {
		return err
	}

	return p.People(people)
}
