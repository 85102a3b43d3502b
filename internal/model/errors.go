package model

import "github.com/rotisserie/eris"

// Validation failures surface to the caller before any provider call.
var (
	ErrEmptyDescription   = eris.New("item description cannot be empty")
	ErrDescriptionTooLong = eris.New("item description too long (max 1000 characters)")
	ErrInvalidStrategy    = eris.New("invalid api strategy")
)

// ErrMatchingFailed is the catch-all for unexpected internal failures,
// distinct from validation and provider errors.
var ErrMatchingFailed = eris.New("product matching failed")
