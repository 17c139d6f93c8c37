// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict (optimistic locking).
// It is the only error in this taxonomy a caller should retry, and only after
// reloading the current entity state.
var ErrConflict = errors.New("conflict: entity was modified by another request")

// ErrValidation indicates a missing required field or an unparseable value.
var ErrValidation = errors.New("validation failed")

// ErrUnauthorized indicates a role or ownership check failed for the acting user.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidTransition indicates a status or goal state rule was violated.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrAlreadyTerminal reports a call against a completed, achieved or rejected
// entity. It is a no-op, not a hard failure; the HTTP layer renders it as a
// successful no-change response.
var ErrAlreadyTerminal = errors.New("entity is in a terminal state")

// ErrAlreadyCommented indicates a goal comment slot is already filled.
var ErrAlreadyCommented = errors.New("comment slot already filled")
