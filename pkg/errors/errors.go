package lms_errors

import "errors"

// Common errors
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
	ErrTooLarge        = errors.New("file too large")
	ErrRateLimited     = errors.New("rate limited")
	ErrAlreadyExists   = errors.New("already exists")
	ErrMissingETag     = errors.New("no etag returned from store")
	ErrSparsePositions = errors.New("positions are not a dense sequence")
)
