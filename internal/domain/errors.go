package domain

import "errors"

var (
	// ErrValidation covers malformed input: bad name charset, negative
	// amount where disallowed, future-dated due date, missing required
	// pairing.
	ErrValidation = errors.New("validation error")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means a uniqueness constraint was violated.
	ErrConflict = errors.New("already exists")

	// ErrConfirmationDeclined means the caller declined an implied
	// creation or an irreversible action.
	ErrConfirmationDeclined = errors.New("confirmation declined")

	// ErrIntegrity is raised by the consistency checker or by a
	// store-level constraint firing.
	ErrIntegrity = errors.New("integrity error")

	// ErrInternalInvariant indicates a bug, e.g. a non-monotonic
	// recurrence advance. Never a user error.
	ErrInternalInvariant = errors.New("internal invariant violated")
)
