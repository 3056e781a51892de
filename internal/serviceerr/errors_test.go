package serviceerr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name        string
		err         *serviceerr.ServiceError
		expectedMsg string
	}{
		{
			name:        "With reasons",
			err:         &serviceerr.ServiceError{Op: "return_product", Status: 500, Reasons: "product 0001 is unknown"},
			expectedMsg: "return_product: status 500: product 0001 is unknown",
		},
		{
			name:        "Without reasons",
			err:         &serviceerr.ServiceError{Op: "close_deposit", Status: 409},
			expectedMsg: "close_deposit: status 409",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
		})
	}
}

func TestServiceError_Is(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantService  bool
		wantNotFound bool
		wantConflict bool
	}{
		{
			name:        "Generic failure",
			err:         &serviceerr.ServiceError{Op: "op", Status: 500},
			wantService: true,
		},
		{
			name:         "Not found",
			err:          &serviceerr.ServiceError{Op: "op", Status: 404, Kind: serviceerr.ErrNotFound},
			wantService:  true,
			wantNotFound: true,
		},
		{
			name:         "Wrapped conflict",
			err:          fmt.Errorf("closing: %w", &serviceerr.ServiceError{Op: "op", Status: 409, Kind: serviceerr.ErrConflict}),
			wantService:  true,
			wantConflict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantService, errors.Is(tt.err, serviceerr.ErrService))
			assert.Equal(t, tt.wantNotFound, errors.Is(tt.err, serviceerr.ErrNotFound))
			assert.Equal(t, tt.wantConflict, errors.Is(tt.err, serviceerr.ErrConflict))
			assert.False(t, errors.Is(tt.err, serviceerr.ErrUnavailable))

			var svcErr *serviceerr.ServiceError
			assert.True(t, errors.As(tt.err, &svcErr))
		})
	}
}

func TestTransportError(t *testing.T) {
	err := &serviceerr.TransportError{Op: "get_deposit", Err: context.DeadlineExceeded}

	assert.ErrorIs(t, err, serviceerr.ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, serviceerr.ErrService)
	assert.Equal(t, "get_deposit: operation unavailable: context deadline exceeded", err.Error())
}

func TestMalformed(t *testing.T) {
	cause := errors.New("missing field deposit_id")
	err := serviceerr.Malformed("create_deposit", cause)

	assert.ErrorIs(t, err, serviceerr.ErrMalformedResponse)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "create_deposit: malformed response: missing field deposit_id", err.Error())
}
