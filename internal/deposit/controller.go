// Package deposit sequences the counter workflow: choosing the two people,
// opening a deposit, returning products, closing it and printing the ticket.
//
// The deposit id is always taken from a fresh read of the session store, so
// a change made by another process sharing the store is never overridden by
// a stale copy.
package deposit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	slogctx "github.com/veqryn/slog-context"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
	"github.com/superquinquin/consigne-desk/pkg/consigne"
	"github.com/superquinquin/consigne-desk/pkg/identity"
	"github.com/superquinquin/consigne-desk/pkg/session"
)

const (
	DefaultShiftUsersTTL = 5 * time.Minute

	shiftUsersKey = "shift_users"
)

// Service is the remote consigne API as used by the Controller.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (consigne.AuthResult, error)
	SearchUser(ctx context.Context, input string) ([]consigne.UserTuple, error)
	GetShiftsUsers(ctx context.Context) ([]consigne.UserTuple, error)
	CreateDeposit(ctx context.Context, providerPartnerID, receiverPartnerID int) (int, error)
	GetDeposit(ctx context.Context, depositID int) (consigne.DepositSnapshot, error)
	GetDepositLine(ctx context.Context, depositID, lineID int) (consigne.DepositLineRecord, error)
	ReturnProduct(ctx context.Context, depositID int, productCode string) (consigne.ReturnedProduct, error)
	CancelLine(ctx context.Context, depositID, lineID int) error
	CloseDeposit(ctx context.Context, depositID int) error
	PrintTicket(ctx context.Context, depositID int) error
}

var _ = Service(&consigne.Client{})

type Controller struct {
	service Service
	store   *session.Store

	shiftUsers     *cache.Cache
	shiftUsersTTL  time.Duration
	shiftUsersRepo session.ShiftUsersRepository
}

type Option func(*Controller)

// WithShiftUsersTTL sets how long the shift members list is reused. A zero
// or negative duration disables the cache.
func WithShiftUsersTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		c.shiftUsersTTL = ttl
	}
}

// WithShiftUsersRepository keeps the shift members list in repo so the next
// runs reuse it until it expires.
func WithShiftUsersRepository(repo session.ShiftUsersRepository) Option {
	return func(c *Controller) {
		c.shiftUsersRepo = repo
	}
}

func NewController(service Service, store *session.Store, opts ...Option) *Controller {
	c := &Controller{
		service:       service,
		store:         store,
		shiftUsersTTL: DefaultShiftUsersTTL,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.shiftUsersTTL > 0 {
		c.shiftUsers = cache.New(c.shiftUsersTTL, 2*c.shiftUsersTTL)
	}

	return c
}

// Current returns the stored session and the state it is in.
func (c *Controller) Current(ctx context.Context) (session.Session, State, error) {
	s, err := c.store.Read(ctx)
	if err != nil {
		return session.Session{}, NoSession, err
	}

	return s, StateOf(s), nil
}

// ChooseProvider sets the member bringing returnables back. Choosing someone
// after a closed deposit starts a new session.
func (c *Controller) ChooseProvider(ctx context.Context, p identity.Person) (session.Session, error) {
	return c.choose(ctx, func(s session.Session) session.Session {
		return s.WithProvider(p)
	})
}

// ChooseReceiver sets the person taking the returnables in.
func (c *Controller) ChooseReceiver(ctx context.Context, p identity.Person) (session.Session, error) {
	return c.choose(ctx, func(s session.Session) session.Session {
		return s.WithReceiver(p)
	})
}

func (c *Controller) choose(ctx context.Context, set func(session.Session) session.Session) (session.Session, error) {
	s, err := c.store.Read(ctx)
	if err != nil {
		return session.Session{}, err
	}

	switch StateOf(s) {
	case DepositOpen:
		return s, fmt.Errorf("deposit %d: %w", *s.DepositID, serviceerr.ErrDepositInProgress)
	case DepositClosed:
		s = session.Session{}
	}

	s = set(s)
	if err := c.store.Write(ctx, s); err != nil {
		return session.Session{}, err
	}

	return s, nil
}

// Open creates the deposit for the chosen people and records its id.
func (c *Controller) Open(ctx context.Context) (session.Session, error) {
	s, err := c.store.Read(ctx)
	if err != nil {
		return session.Session{}, err
	}

	switch StateOf(s) {
	case NoSession:
		return s, serviceerr.ErrIdentitiesMissing
	case DepositOpen:
		return s, fmt.Errorf("deposit %d: %w", *s.DepositID, serviceerr.ErrDepositInProgress)
	case DepositClosed:
		return s, fmt.Errorf("deposit %d is closed: %w", *s.DepositID, serviceerr.ErrConflict)
	}

	// The backend calls provider the one who takes the returnables in.
	depositID, err := c.service.CreateDeposit(ctx, s.Receiver.PartnerID, s.Provider.PartnerID)
	if err != nil {
		return s, err
	}

	s = s.WithDeposit(depositID)
	if err := c.store.Write(ctx, s); err != nil {
		return session.Session{}, err
	}

	slogctx.Info(ctx, "Opened deposit", "deposit_id", depositID,
		"provider", s.Provider.PartnerID, "receiver", s.Receiver.PartnerID)

	return s, nil
}

func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	depositID, err := c.deposit(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	snap, err := c.service.GetDeposit(ctx, depositID)
	if err != nil {
		return Snapshot{}, err
	}

	return newSnapshot(snap), nil
}

func (c *Controller) Line(ctx context.Context, lineID int) (consigne.DepositLineRecord, error) {
	depositID, err := c.deposit(ctx)
	if err != nil {
		return consigne.DepositLineRecord{}, err
	}

	return c.service.GetDepositLine(ctx, depositID, lineID)
}

// ReturnProduct records one scanned product. A product the backend does not
// take back is still returned, with Returnable false.
func (c *Controller) ReturnProduct(ctx context.Context, productCode string) (consigne.ReturnedProduct, error) {
	depositID, err := c.openDeposit(ctx)
	if err != nil {
		return consigne.ReturnedProduct{}, err
	}

	product, err := c.service.ReturnProduct(ctx, depositID, productCode)
	if err != nil {
		return consigne.ReturnedProduct{}, err
	}

	if !product.Returnable {
		slogctx.Warn(ctx, "Product is not taken back", "deposit_id", depositID, "product_id", product.ProductID)
	}

	return product, nil
}

// ReturnProducts records several codes one after the other and stops at the
// first failure. The products recorded before it are returned with the error.
func (c *Controller) ReturnProducts(ctx context.Context, productCodes []string) ([]consigne.ReturnedProduct, error) {
	products := make([]consigne.ReturnedProduct, 0, len(productCodes))
	for _, code := range productCodes {
		product, err := c.ReturnProduct(ctx, code)
		if err != nil {
			return products, fmt.Errorf("returning %q: %w", code, err)
		}

		products = append(products, product)
	}

	return products, nil
}

func (c *Controller) CancelLine(ctx context.Context, lineID int) error {
	depositID, err := c.openDeposit(ctx)
	if err != nil {
		return err
	}

	return c.service.CancelLine(ctx, depositID, lineID)
}

// Close closes the deposit on the backend and marks the session closed. The
// deposit id is kept for PrintTicket. A deposit the backend reports as
// already closed is marked closed as well.
func (c *Controller) Close(ctx context.Context) (session.Session, error) {
	s, err := c.store.Read(ctx)
	if err != nil {
		return session.Session{}, err
	}

	depositID, err := requireOpen(s)
	if err != nil {
		return s, err
	}

	if err := c.service.CloseDeposit(ctx, depositID); err != nil {
		if !errors.Is(err, serviceerr.ErrConflict) {
			return s, err
		}
		slogctx.Warn(ctx, "Deposit already closed on the backend", "deposit_id", depositID, "error", err)
	}

	s.Closed = true
	if err := c.store.Write(ctx, s); err != nil {
		return session.Session{}, err
	}

	slogctx.Info(ctx, "Closed deposit", "deposit_id", depositID)

	return s, nil
}

// PrintTicket prints the ticket of the open or closed deposit. It can be
// called again after a failure.
func (c *Controller) PrintTicket(ctx context.Context) error {
	depositID, err := c.deposit(ctx)
	if err != nil {
		return err
	}

	return c.service.PrintTicket(ctx, depositID)
}

// Finish forgets the current session so the next people can be chosen.
func (c *Controller) Finish(ctx context.Context) error {
	return c.store.Clear(ctx)
}

func (c *Controller) deposit(ctx context.Context) (int, error) {
	s, err := c.store.Read(ctx)
	if err != nil {
		return 0, err
	}

	if !s.HasDeposit() {
		return 0, serviceerr.ErrNoDeposit
	}

	return *s.DepositID, nil
}

func (c *Controller) openDeposit(ctx context.Context) (int, error) {
	s, err := c.store.Read(ctx)
	if err != nil {
		return 0, err
	}

	return requireOpen(s)
}

func requireOpen(s session.Session) (int, error) {
	switch StateOf(s) {
	case DepositOpen:
		return *s.DepositID, nil
	case DepositClosed:
		return 0, fmt.Errorf("deposit %d is closed: %w", *s.DepositID, serviceerr.ErrConflict)
	default:
		return 0, serviceerr.ErrNoDeposit
	}
}
