package seeds

import (
	"errors"
	"fmt"
)

// ErrSeedUnavailable is the kind of every UnavailableError.
var ErrSeedUnavailable = errors.New("seed unavailable")

// UnavailableError reports which signal a strategy needed but did not get.
type UnavailableError struct {
	Strategy Strategy
	Signal   string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("seeds: strategy %q needs %s: %s", e.Strategy, e.Signal, ErrSeedUnavailable)
}

// Unwrap lets errors.Is match ErrSeedUnavailable.
func (e *UnavailableError) Unwrap() error { return ErrSeedUnavailable }

func unavailable(s Strategy, signal string) error {
	return &UnavailableError{Strategy: s, Signal: signal}
}
