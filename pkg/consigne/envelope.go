package consigne

import (
	"errors"
	"fmt"

	"github.com/superquinquin/consigne-desk/internal/serviceerr"
)

// Envelope is the wrapper of every consigne API response. Status follows HTTP
// conventions and is the only success signal; Data is absent on failures.
type Envelope[T any] struct {
	Status  int    `json:"status"`
	Reasons string `json:"reasons"`
	Data    *T     `json:"data"`
}

// OK reports whether Status is in the 2xx range.
func (e Envelope[T]) OK() bool {
	return e.Status >= 200 && e.Status < 300
}

type validator interface {
	validate() error
}

// payload returns the validated data of a successful envelope.
func payload[T validator](op string, env Envelope[T]) (T, error) {
	var zero T
	if env.Data == nil {
		return zero, serviceerr.Malformed(op, errors.New("missing data"))
	}

	if err := (*env.Data).validate(); err != nil {
		return zero, serviceerr.Malformed(op, err)
	}

	return *env.Data, nil
}

func missingField(name string) error {
	return fmt.Errorf("missing field %s", name)
}
