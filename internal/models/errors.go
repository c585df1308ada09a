package models

import "errors"

// Custom errors
var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidID     = errors.New("invalid ID format")
	ErrMissingClose  = errors.New("prediction has no closing odds")
	ErrInvalidParlay = errors.New("parlay has no legs")
)
