package sdfplay

import "errors"

var (
	// ErrResourceAllocation is returned when a GPU device, buffer, texture
	// or pipeline cannot be created. There is no recovery path; callers
	// treat it as fatal.
	ErrResourceAllocation = errors.New("sdfplay: GPU resource allocation failed")

	// ErrInvalidSize is returned for a zero-width or zero-height viewport.
	ErrInvalidSize = errors.New("sdfplay: invalid viewport size")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("sdfplay: invalid configuration")
)
