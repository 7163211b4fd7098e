package driven

import (
	"context"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// BreachAPI is the driven port for the breach database.
//
// LookupPasswordRange is anonymous and never retried. The three account
// lookups are authenticated; implementations enforce a minimum inter-request
// delay before each authenticated call and, on a too-many-requests response,
// wait the server-provided duration and retry exactly once. ErrNotFound from
// any account lookup means zero results, not a failure.
type BreachAPI interface {
	// LookupPasswordRange returns all suffix:count pairs whose hashes share
	// the given 5-character prefix.
	LookupPasswordRange(ctx context.Context, prefix string) ([]model.RangeEntry, error)

	// LookupAccountBreaches returns the breaches an account appears in.
	LookupAccountBreaches(ctx context.Context, account string) ([]model.BreachRecord, error)

	// LookupStealerLogs returns the domains for which credentials of the
	// account were captured by stealer malware.
	LookupStealerLogs(ctx context.Context, account string) ([]string, error)

	// LookupPastes returns the pastes the account appears in.
	LookupPastes(ctx context.Context, account string) ([]model.PasteHit, error)
}
