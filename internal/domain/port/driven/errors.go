// Package driven defines the driven ports: interfaces the application core
// depends on, implemented by adapters.
package driven

import "errors"

// Sentinel errors shared across ports. Adapters wrap these with context via
// fmt.Errorf("...: %w", err); callers branch with errors.Is.
var (
	// ErrNotFound is a valid zero-result outcome (an account with no
	// breaches, an unknown task id, a missing report), not a failure.
	ErrNotFound = errors.New("not found")

	// ErrAuth means the API rejected our key. It is never retried: every
	// subsequent authenticated call would fail identically, so callers
	// abort the remaining batch.
	ErrAuth = errors.New("api key rejected")

	// ErrRateLimited is surfaced only when the server throttled us again
	// after the single internal retry.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformed means an upstream document did not have the expected
	// shape.
	ErrMalformed = errors.New("malformed response")

	// ErrBadFilename means a report filename failed validation before any
	// filesystem access.
	ErrBadFilename = errors.New("invalid report filename")
)
