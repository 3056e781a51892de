package serviceerr

import (
	"errors"
	"fmt"
)

var ErrConflict = errors.New("conflict")
var ErrNotFound = errors.New("not found")
var ErrService = errors.New("service error")
var ErrUnavailable = errors.New("operation unavailable")
var ErrMalformedResponse = errors.New("malformed response")

// Workflow preconditions. These are raised before any remote call is made.
var ErrNoDeposit = errors.New("no active deposit")
var ErrIdentitiesMissing = errors.New("provider and receiver must be chosen first")
var ErrDepositInProgress = errors.New("a deposit is already open")

// ServiceError is a failing envelope status returned by the consigne API.
// Reasons is kept verbatim so it can be displayed as is.
type ServiceError struct {
	Op      string
	Status  int
	Reasons string
	// Kind is ErrNotFound, ErrConflict or nil.
	Kind error
}

func (e *ServiceError) Error() string {
	if e.Reasons == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}

	return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Reasons)
}

func (e *ServiceError) Is(target error) bool {
	if target == ErrService {
		return true
	}

	return e.Kind != nil && target == e.Kind
}

// TransportError means the request never produced a response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrUnavailable, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrUnavailable
}

// Malformed wraps a decoding or validation problem of a successful envelope.
func Malformed(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
}
