package booking

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("dates unavailable, choose different dates")
	ErrUpstream   = errors.New("upstream unavailable")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrNotPending = errors.New("confirmed bookings cannot be cancelled")
)
