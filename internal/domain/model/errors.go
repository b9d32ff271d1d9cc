package model

import "errors"

// Sentinel error kinds shared by the engine packages. These allow errors.Is
// at call sites.
var (
	// ErrValidation marks malformed or absent input identifiers.
	ErrValidation = errors.New("validation failed")
	// ErrDataInsufficient marks inputs with nothing left to score.
	ErrDataInsufficient = errors.New("insufficient data")
)
