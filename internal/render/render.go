// Package render prints controller results either as colored text for the
// counter operator or as YAML for scripts.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"

	"github.com/superquinquin/consigne-desk/internal/config"
	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/pkg/consigne"
	"github.com/superquinquin/consigne-desk/pkg/identity"
	"github.com/superquinquin/consigne-desk/pkg/session"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Printer struct {
	w    io.Writer
	yaml bool
}

func NewPrinter(w io.Writer, format string) (*Printer, error) {
	switch format {
	case config.OutputText, "":
		return &Printer{w: w}, nil
	case config.OutputYAML:
		return &Printer{w: w, yaml: true}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (p *Printer) Operator(op deposit.Operator) error {
	if p.yaml {
		return p.encode(operatorView{Name: op.Name, Code: op.Code, MaxAge: op.MaxAge})
	}

	p.printf("%s %s (%s)\n", green("Logged in as"), bold(op.Name), op.Code)
	if op.MaxAge > 0 {
		p.printf("  shift ends in %s\n", shiftLeft(op.MaxAge))
	}

	return nil
}

// Rejected reports credentials refused by the backend.
func (p *Printer) Rejected() error {
	if p.yaml {
		return p.encode(map[string]bool{"auth": false})
	}

	p.printf("%s\n", red("Invalid credentials"))

	return nil
}

func (p *Printer) People(people []identity.Person) error {
	if p.yaml {
		views := make([]personView, 0, len(people))
		for _, person := range people {
			views = append(views, newPersonView(person))
		}

		return p.encode(views)
	}

	if len(people) == 0 {
		p.printf("%s\n", yellow("No match"))
		return nil
	}

	for _, person := range people {
		p.printf("%8d  %s\n", person.PartnerID, personLine(person))
	}

	return nil
}

func (p *Printer) Session(s session.Session, state deposit.State) error {
	if p.yaml {
		view := sessionView{State: state.String(), DepositID: s.DepositID, Closed: s.Closed}
		if s.Provider != nil {
			pv := newPersonView(*s.Provider)
			view.Provider = &pv
		}

		if s.Receiver != nil {
			rv := newPersonView(*s.Receiver)
			view.Receiver = &rv
		}

		return p.encode(view)
	}

	p.printf("%s %s\n", bold("State:"), stateColor(state))
	p.printf("  provider: %s\n", optionalPerson(s.Provider))
	p.printf("  receiver: %s\n", optionalPerson(s.Receiver))

	if s.DepositID != nil {
		p.printf("  deposit:  #%d\n", *s.DepositID)
	}

	return nil
}

func (p *Printer) Snapshot(snap deposit.Snapshot) error {
	if p.yaml {
		view := snapshotView{
			DepositID: snap.DepositID,
			Closed:    snap.Closed,
			Datetime:  snap.Datetime,
			Barcode:   snap.Barcode,
			Provider:  newPartyView(snap.Provider),
			Receiver:  newPartyView(snap.Receiver),
			Lines:     make([]lineView, 0, len(snap.Lines)),
			Total:     snap.Total(),
		}
		for _, line := range snap.Lines {
			view.Lines = append(view.Lines, newLineView(line))
		}

		return p.encode(view)
	}

	status := green("open")
	if snap.Closed {
		status = yellow("closed")
	}

	p.printf("%s #%d (%s) %s\n", bold("Deposit"), snap.DepositID, status, snap.Datetime)
	p.printf("  provider: %s\n", personLine(snap.Provider.Person))
	p.printf("  receiver: %s\n", personLine(snap.Receiver.Person))

	if snap.Barcode != "" {
		p.printf("  barcode:  %s\n", snap.Barcode)
	}

	for _, line := range snap.Lines {
		p.printf("  %s\n", lineText(line))
	}

	p.printf("%s %s (%d lines)\n", bold("Total:"), formatAmount(snap.Total()), len(snap.ActiveLines()))

	return nil
}

func (p *Printer) Line(line consigne.DepositLineRecord) error {
	if p.yaml {
		return p.encode(newLineView(line))
	}

	p.printf("%s\n", lineText(line))

	return nil
}

func (p *Printer) Returned(products []consigne.ReturnedProduct) error {
	if p.yaml {
		views := make([]returnedView, 0, len(products))
		for _, r := range products {
			views = append(views, returnedView{
				LineID:     r.LineID,
				ProductID:  r.ProductID,
				Name:       r.Name,
				Returnable: r.Returnable,
				Value:      r.Value(),
			})
		}

		return p.encode(views)
	}

	for _, r := range products {
		if !r.Returnable {
			p.printf("%s line %d %s %s\n", yellow("!"), r.LineID, r.Name, yellow("not returnable"))
			continue
		}

		p.printf("%s line %d %s %s\n", green("+"), r.LineID, r.Name, formatAmount(r.Value()))
	}

	return nil
}

// Done confirms a command that has nothing else to show.
func (p *Printer) Done(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if p.yaml {
		return p.encode(map[string]string{"done": msg})
	}

	p.printf("%s %s\n", green("✓"), msg)

	return nil
}

func (p *Printer) encode(v any) error {
	if err := yaml.NewEncoder(p.w).Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}

	return nil
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func personLine(person identity.Person) string {
	name := person.FullName
	if person.HasNames() {
		name = person.LastName + ", " + person.FirstName
	}

	if person.CoopNumber == 0 {
		return bold(name)
	}

	return fmt.Sprintf("%s %s", bold(name), faint("#"+strconv.Itoa(person.CoopNumber)))
}

func optionalPerson(person *identity.Person) string {
	if person == nil {
		return faint("-")
	}

	return personLine(*person)
}

func lineText(line consigne.DepositLineRecord) string {
	name := "product " + strconv.Itoa(line.ProductID)
	if line.Name != nil {
		name = *line.Name
	}

	text := fmt.Sprintf("%6d  %s", line.LineID, name)

	switch {
	case line.Canceled:
		return faint(text + " (canceled)")
	case line.Returnable != nil && !*line.Returnable:
		return text + " " + yellow("not returnable")
	case line.ReturnValue != nil:
		return text + " " + formatAmount(*line.ReturnValue)
	default:
		return text
	}
}

func stateColor(state deposit.State) string {
	switch state {
	case deposit.DepositOpen:
		return green(state.String())
	case deposit.DepositClosed:
		return yellow(state.String())
	default:
		return state.String()
	}
}

func shiftLeft(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second)).Round(time.Minute)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func bold(s string) string   { return color.New(color.Bold).Sprint(s) }
func faint(s string) string  { return color.New(color.Faint).Sprint(s) }
func green(s string) string  { return color.New(color.FgGreen).Sprint(s) }
func yellow(s string) string { return color.New(color.FgYellow).Sprint(s) }
func red(s string) string    { return color.New(color.FgRed).Sprint(s) }
