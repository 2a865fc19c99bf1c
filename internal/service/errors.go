package service

import "errors"

// Error taxonomy returned by the services. The API layer translates these
// to HTTP status codes with errors.Is; everything else is a 500.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyPicked     = errors.New("item already picked")
	ErrUnauthorized      = errors.New("unauthorized")
)
