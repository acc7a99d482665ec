package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("match not found")
	ErrInvalidEntry = errors.New("invalid match entry")
)
