package store

import "errors"

var (
	// ErrNotFound is returned by error-returning operations when the entity doesn't exist.
	// Lookups report absence with a boolean instead.
	ErrNotFound = errors.New("vitrine: entity not found")

	// ErrDuplicateUsername is returned when a username is already held by another user.
	ErrDuplicateUsername = errors.New("vitrine: username already taken")

	// ErrInvalidSnapshot is returned by Restore when a snapshot violates a uniqueness
	// or sequencing invariant. The store is left unchanged.
	ErrInvalidSnapshot = errors.New("vitrine: invalid snapshot")

	// ErrNotEmpty is returned by Seed when the store already issued user or post ids.
	ErrNotEmpty = errors.New("vitrine: store is not empty")

	// ErrInconsistent wraps every derived-counter mismatch reported by CheckConsistency.
	ErrInconsistent = errors.New("vitrine: derived counter mismatch")
)
