package models

import "errors"

var (
	// ErrNotFound is returned when a referenced lesson, unit, category or tenant row does not resolve
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned for input the engine rejects before writing anything
	ErrInvalidState = errors.New("invalid state")
)
