package driven

import (
	"context"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// CredentialSource yields the credentials to check. Concrete implementations
// may shell out to an external vault CLI or parse an export document; the
// core only needs the typed records.
type CredentialSource interface {
	// Fetch returns all password-bearing credentials. A document that
	// cannot be parsed surfaces as ErrMalformed; there is no per-item
	// granularity at this boundary, so that aborts the run.
	Fetch(ctx context.Context) ([]model.Credential, error)

	// Verify probes whether the source is usable (CLI installed, session
	// present, vault unlocked) without fetching anything. The returned
	// error message is suitable for display.
	Verify(ctx context.Context) error
}
