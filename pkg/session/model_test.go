package session_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/superquinquin/consigne-desk/pkg/identity"
	"github.com/superquinquin/consigne-desk/pkg/session"
)

func TestSession_Equal(t *testing.T) {
	aliceCopy := alice
	other := identity.Normalize(1111, 25, "00025 - BAGLIN, Alex")

	tests := []struct {
		name string
		a, b session.Session
		want bool
	}{
		{name: "Both empty", want: true},
		{
			name: "Same values behind different pointers",
			a:    session.Session{Provider: &alice, DepositID: depositID(1)},
			b:    session.Session{Provider: &aliceCopy, DepositID: depositID(1)},
			want: true,
		},
		{
			name: "Different provider",
			a:    session.Session{Provider: &alice},
			b:    session.Session{Provider: &other},
		},
		{
			name: "Missing receiver",
			a:    session.Session{Provider: &alice, Receiver: &bob},
			b:    session.Session{Provider: &alice},
		},
		{
			name: "Different deposit",
			a:    session.Session{DepositID: depositID(1)},
			b:    session.Session{DepositID: depositID(2)},
		},
		{
			name: "Closed flag",
			a:    session.Session{DepositID: depositID(1), Closed: true},
			b:    session.Session{DepositID: depositID(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestSession_Clone(t *testing.T) {
	provider := identity.Normalize(1111, 1615, "1615 - BAGLIN, Marine")
	id := 42
	s := session.Session{Provider: &provider, DepositID: &id, Closed: true}

	c := s.Clone()
	require.True(t, s.Equal(c))
	assert.NotSame(t, s.Provider, c.Provider)
	assert.NotSame(t, s.DepositID, c.DepositID)
	assert.Nil(t, c.Receiver)
	assert.True(t, c.Closed)

	*c.DepositID = 7
	assert.Equal(t, 42, id)
}

func TestSession_JSON(t *testing.T) {
	s := session.Session{}.WithProvider(alice).WithReceiver(bob).WithDeposit(42)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"provider": {"partnerId": 1111, "coopNumber": 25, "fullName": "BAGLIN, Alexandre", "firstName": "Alexandre", "lastName": "BAGLIN"},
		"receiver": {"partnerId": 2222, "coopNumber": 12, "fullName": "DUPONT, Marie", "firstName": "Marie", "lastName": "DUPONT"},
		"depositId": 42
	}`, string(b))

	empty, err := json.Marshal(session.Session{})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(empty))
}
