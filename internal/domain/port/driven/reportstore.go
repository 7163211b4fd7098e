package driven

import (
	"context"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// ReportStore persists completed reports and reads them back. The structured
// serialization must round-trip: Get(Save(r)) reproduces every field of r.
type ReportStore interface {
	// Save writes the report under a generation-timestamped filename and
	// returns that filename.
	Save(report model.Report) (string, error)

	// List returns metadata for all stored reports, newest first.
	List() ([]model.ReportMeta, error)

	// Get reads one report back by filename. Filenames are validated
	// against path traversal before any filesystem access: ErrBadFilename
	// for anything containing separators or resolving outside the report
	// directory, ErrNotFound when the file does not exist.
	Get(filename string) (*model.Report, error)
}

// ScanStore is the scan-history index behind dashboard statistics.
type ScanStore interface {
	Record(ctx context.Context, scan model.ScanRecord) error

	// Recent returns up to limit scans, newest first.
	Recent(ctx context.Context, limit int) ([]model.ScanRecord, error)

	// Count returns the total number of recorded scans.
	Count(ctx context.Context) (int, error)
}
