package sessioncmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/superquinquin/consigne-desk/internal/cmdutils"
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/internal/render"
	"github.com/superquinquin/consigne-desk/pkg/identity"
	"github.com/superquinquin/consigne-desk/pkg/session"
)

var (
	errNoMatch   = errors.New("nobody matches")
	errAmbiguous = errors.New("several people match")
	errNoQuery   = errors.New("give a search text or --shift")
)

const (
	roleProvider = "provider"
	roleReceiver = "receiver"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show and prepare the counter session",
	}

	show := cmdutils.CobraCommand(
		"show",
		"Show the current session",
		"Show the people chosen and the deposit in progress",
		buildInfo,
		cmdutils.RunAsJob,
		cmdutils.WithDesk(showSession),
	)
	show.Args = cobra.NoArgs

	finish := cmdutils.CobraCommand(
		"finish",
		"Forget the current session",
		"Forget the current session so the next people can be chosen",
		buildInfo,
		cmdutils.RunAsJob,
		cmdutils.WithDesk(finishSession),
	)
	finish.Args = cobra.NoArgs

	cmd.AddCommand(
		show,
		chooseCmd(buildInfo, roleProvider, "Choose the member bringing returnables back"),
		chooseCmd(buildInfo, roleReceiver, "Choose the member or organisation taking them"),
		finish,
	)

	return cmd
}

type pickOptions struct {
	partnerID int
	shift     bool
}

func chooseCmd(buildInfo, role, short string) *cobra.Command {
	opts := &pickOptions{}

	cmd := cmdutils.CobraCommand(
		role+" [text]...",
		short,
		short+". The text is searched like in the users search command; "+
			"when several people match, --partner-id selects one of them.",
		buildInfo,
		cmdutils.RunWithTelemetry,
		cmdutils.WithDesk(choose(role, opts)),
	)
	cmd.Flags().IntVar(&opts.partnerID, "partner-id", 0, "partner id among the matches")
	cmd.Flags().BoolVar(&opts.shift, "shift", false, "pick among the members of the current shifts")

	return cmd
}

func choose(role string, opts *pickOptions) cmdutils.DeskFunc {
	return func(ctx context.Context, c *deposit.Controller, p *render.Printer, args []string) error {
		person, err := pick(ctx, c, p, opts, args)
		if err != nil {
			return err
		}

		var s session.Session
		if role == roleProvider {
			s, err = c.ChooseProvider(ctx, person)
		} else {
			s, err = c.ChooseReceiver(ctx, person)
		}

		if err != nil {
			return err
		}

		return p.Session(s, deposit.StateOf(s))
	}
}

// pick narrows the candidates down to one person. The candidates are
// printed when several remain.
func pick(ctx context.Context, c *deposit.Controller, p *render.Printer, opts *pickOptions, args []string) (identity.Person, error) {
	var (
		people []identity.Person
		err    error
	)

	switch {
	case opts.shift:
		people, err = c.ShiftUsers(ctx)
	case len(args) > 0:
		people, err = c.SearchUsers(ctx, strings.Join(args, " "))
	default:
		return identity.Person{}, errNoQuery
	}

	if err != nil {
		return identity.Person{}, err
	}

	if opts.partnerID != 0 {
		people = byPartnerID(people, opts.partnerID)
	}

	switch len(people) {
	case 0:
		return identity.Person{}, errNoMatch
	case 1:
		return people[0], nil
	default:
		if err := p.People(people); err != nil {
			return identity.Person{}, err
		}

		return identity.Person{}, fmt.Errorf("%w: %d candidates, select one with --partner-id", errAmbiguous, len(people))
	}
}

func byPartnerID(people []identity.Person, partnerID int) []identity.Person {
	var matches []identity.Person
	for _, person := range people {
		if person.PartnerID == partnerID {
			matches = append(matches, person)
		}
	}

	return matches
}

func showSession(ctx context.Context, c *deposit.Controller, p *render.Printer, _ []string) error {
	s, state, err := c.Current(ctx)
	if err != nil {
		return err
	}

	return p.Session(s, state)
}

func finishSession(ctx context.Context, c *deposit.Controller, p *render.Printer, _ []string) error {
	if err := c.Finish(ctx); err != nil {
		return err
	}

	return p.Done("session cleared")
}
