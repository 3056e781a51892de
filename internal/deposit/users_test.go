package deposit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superquinquin/consigne-desk/internal/deposit"
	"github.com/superquinquin/consigne-desk/pkg/identity"
	"github.com/superquinquin/consigne-desk/pkg/session"
	sessionmock "github.com/superquinquin/consigne-desk/pkg/session/mock"
)

func TestController_SearchUsers(t *testing.T) {
	f := newFixture(t, nil)

	got, err := f.controller.SearchUsers(t.Context(), "Marine")
	require.NoError(t, err)
	assert.Equal(t, []identity.Person{{
		PartnerID:  1111,
		CoopNumber: 1615,
		FullName:   "BAGLIN, Marine",
		LastName:   "BAGLIN",
		FirstName:  "Marine",
	}}, got)

	none, err := f.controller.SearchUsers(t.Context(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestController_ShiftUsers(t *testing.T) {
	tests := []struct {
		name      string
		ttl       time.Duration
		wantCalls int
	}{
		{name: "Cached", ttl: time.Minute, wantCalls: 1},
		{name: "Cache disabled", ttl: 0, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, deposit.WithShiftUsersTTL(tt.ttl))

			for range 2 {
				got, err := f.controller.ShiftUsers(t.Context())
				require.NoError(t, err)
				require.Len(t, got, 2)
				assert.Equal(t, "Marine", got[0].FirstName)
				assert.Equal(t, "Enercoop HDF", got[1].FullName)
				assert.False(t, got[1].HasNames())
			}

			assert.Equal(t, tt.wantCalls, f.backend.Calls("shift"))
		})
	}
}

func TestController_ShiftUsersAcrossRuns(t *testing.T) {
	f := newFixture(t, nil)

	first := f.newController(t, deposit.WithShiftUsersTTL(time.Minute), deposit.WithShiftUsersRepository(f.repo))
	want, err := first.ShiftUsers(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, f.backend.Calls("shift"))

	stored, ok := f.repo.ShiftUsers(storeKey)
	require.True(t, ok)
	assert.Equal(t, want, stored.People)
	assert.Greater(t, stored.ExpiresAt, time.Now().UnixNano())
	assert.LessOrEqual(t, stored.ExpiresAt, time.Now().Add(time.Minute).UnixNano())

	second := f.newController(t, deposit.WithShiftUsersTTL(time.Minute), deposit.WithShiftUsersRepository(f.repo))
	got, err := second.ShiftUsers(t.Context())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, f.backend.Calls("shift"))
}

func TestController_ShiftUsersStoredList(t *testing.T) {
	stale := []identity.Person{{PartnerID: 9999, FullName: "Stale"}}

	tests := []struct {
		name      string
		expiresAt time.Time
		ttl       time.Duration
		wantCalls int
		wantStale bool
	}{
		{name: "Fresh list is reused", expiresAt: time.Now().Add(time.Minute), ttl: time.Minute, wantCalls: 0, wantStale: true},
		{name: "Expired list is fetched again", expiresAt: time.Now().Add(-time.Second), ttl: time.Minute, wantCalls: 1},
		{name: "Disabled cache ignores the stored list", expiresAt: time.Now().Add(time.Minute), ttl: 0, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, []sessionmock.RepositoryOption{
				sessionmock.WithShiftUsers(storeKey, session.ShiftUsers{People: stale, ExpiresAt: tt.expiresAt.UnixNano()}),
			})

			c := f.newController(t, deposit.WithShiftUsersTTL(tt.ttl), deposit.WithShiftUsersRepository(f.repo))
			got, err := c.ShiftUsers(t.Context())
			require.NoError(t, err)

			assert.Equal(t, tt.wantCalls, f.backend.Calls("shift"))
			if tt.wantStale {
				assert.Equal(t, stale, got)
			} else {
				assert.Len(t, got, 2)
			}
		})
	}
}

func TestController_Authenticate(t *testing.T) {
	f := newFixture(t, nil)

	op, ok, err := f.controller.Authenticate(t.Context(), "cashier", "secret")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, deposit.Operator{Name: "cashier", Code: "00025", MaxAge: 1800}, op)

	_, ok, err = f.controller.Authenticate(t.Context(), "cashier", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}
