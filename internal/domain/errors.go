package domain

import "errors"

var (
	// ErrNotFound means no record exists for the user. Expected, not severe.
	ErrNotFound = errors.New("record not found")
	// ErrNoHandle means the user never opened the conversation, so nothing can be pushed.
	ErrNoHandle = errors.New("no conversation handle")
	// ErrValidation marks malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrStorage marks a persistence failure; always propagated.
	ErrStorage = errors.New("storage failure")
)
