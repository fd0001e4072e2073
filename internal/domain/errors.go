package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// Every one of them aborts the enclosing operation atomically: the ledger
// performs no partial writes, and the caller must correct the input and
// resubmit.

var (
	// Registration errors
	ErrNotRegistered     = errors.New("identity is not registered")
	ErrAlreadyRegistered = errors.New("identity is already registered")

	// Rating errors
	ErrInvalidScore         = errors.New("rating exceeds the maximum score")
	ErrSelfRatingNotAllowed = errors.New("rater and ratee are the same identity")

	// Capability errors
	ErrUnauthorized      = errors.New("caller lacks the required capability")
	ErrInvalidParameters = errors.New("weighting parameters out of range")
)
