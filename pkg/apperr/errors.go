package apperr

import "errors"

// Sentinel errors shared by every service. Repositories and usecases wrap
// these with fmt.Errorf("...: %w", ...) so handlers can map them to HTTP
// status codes with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUpstream          = errors.New("upstream service error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
)
