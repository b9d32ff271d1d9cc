package types

import "errors"

// Error kinds the service reports to its adapters.
var (
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("backpressure")
	ErrNotStarted   = errors.New("service not started")
)
