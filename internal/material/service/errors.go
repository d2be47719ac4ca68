package service

import "errors"

// Sentinel errors callers branch on. Handlers map these to HTTP statuses;
// everything else is a 500.
var (
	ErrNotFound                = errors.New("record not found")
	ErrValidation              = errors.New("validation failed")
	ErrInvalidState            = errors.New("invalid state transition")
	ErrInsufficientStock       = errors.New("insufficient available stock")
	ErrInsufficientReservation = errors.New("insufficient reservation remaining")
	ErrDuplicate               = errors.New("duplicate record")
)
