package deposit

import (
	"context"
	"errors"
	"time"

	"github.com/patrickmn/go-cache"

	slogctx "github.com/veqryn/slog-context"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
	"github.com/superquinquin/consigne-desk/pkg/consigne"
	"github.com/superquinquin/consigne-desk/pkg/identity"
	"github.com/superquinquin/consigne-desk/pkg/session"
)

// Operator is the authenticated person running the counter.
type Operator struct {
	Name string
	Code string
	// MaxAge is the number of seconds left in the current shift, zero when
	// unknown.
	MaxAge float64
}

// Authenticate checks the operator credentials. ok is false when the backend
// rejects them.
func (c *Controller) Authenticate(ctx context.Context, username, password string) (op Operator, ok bool, err error) {
	res, err := c.service.Authenticate(ctx, username, password)
	if err != nil {
		return Operator{}, false, err
	}

	if !res.Auth {
		return Operator{}, false, nil
	}

	op = Operator{Name: res.User.Name, Code: res.User.Code}
	if res.User.MaxAge != nil {
		op.MaxAge = *res.User.MaxAge
	}

	return op, true, nil
}

func (c *Controller) SearchUsers(ctx context.Context, input string) ([]identity.Person, error) {
	tuples, err := c.service.SearchUser(ctx, input)
	if err != nil {
		return nil, err
	}

	return normalize(tuples), nil
}

// ShiftUsers lists the members of the current shifts. The list is reused
// until the shift users TTL elapses, across runs when a shift users
// repository is configured.
func (c *Controller) ShiftUsers(ctx context.Context) ([]identity.Person, error) {
	if c.shiftUsers != nil {
		if cached, ok := c.shiftUsers.Get(shiftUsersKey); ok {
			//nolint:forcetypeassert
			return cached.([]identity.Person), nil
		}

		if people, ok := c.loadShiftUsers(ctx); ok {
			return people, nil
		}
	}

	tuples, err := c.service.GetShiftsUsers(ctx)
	if err != nil {
		return nil, err
	}

	people := normalize(tuples)
	if c.shiftUsers != nil {
		c.shiftUsers.Set(shiftUsersKey, people, cache.DefaultExpiration)
		c.saveShiftUsers(ctx)
	}

	return people, nil
}

// loadShiftUsers seeds the cache from the repository. Failures only cost a
// remote call.
func (c *Controller) loadShiftUsers(ctx context.Context) ([]identity.Person, bool) {
	if c.shiftUsersRepo == nil {
		return nil, false
	}

	stored, err := c.shiftUsersRepo.LoadShiftUsers(ctx, c.store.Key())
	if err != nil {
		if !errors.Is(err, serviceerr.ErrNotFound) {
			slogctx.Warn(ctx, "Failed to load the stored shift users", "error", err)
		}

		return nil, false
	}

	left := time.Until(time.Unix(0, stored.ExpiresAt))
	if left <= 0 {
		return nil, false
	}

	c.shiftUsers.Set(shiftUsersKey, stored.People, min(left, c.shiftUsersTTL))

	return stored.People, true
}

func (c *Controller) saveShiftUsers(ctx context.Context) {
	if c.shiftUsersRepo == nil {
		return
	}

	item, ok := c.shiftUsers.Items()[shiftUsersKey]
	if !ok {
		return
	}

	//nolint:forcetypeassert
	stored := session.ShiftUsers{
		People:    item.Object.([]identity.Person),
		ExpiresAt: item.Expiration,
	}

	if err := c.shiftUsersRepo.StoreShiftUsers(ctx, c.store.Key(), stored); err != nil {
		slogctx.Warn(ctx, "Failed to store the shift users", "error", err)
	}
}

func normalize(tuples []consigne.UserTuple) []identity.Person {
	people := make([]identity.Person, 0, len(tuples))
	for _, t := range tuples {
		people = append(people, identity.Normalize(t.PartnerID, t.CoopNumber, t.Display))
	}

	return people
}
