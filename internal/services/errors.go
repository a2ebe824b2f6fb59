package services

import "errors"

// Sentinel errors mapped to HTTP status codes by the handlers
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("already exists")
)
