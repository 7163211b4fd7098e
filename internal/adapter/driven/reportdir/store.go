// Package reportdir stores completed reports as JSON files in a single
// directory, one file per run, with a bounded retention window.
package reportdir

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
	"github.com/boscoh/breachwatch/internal/report"
)

var _ driven.ReportStore = (*Store)(nil)

const (
	filenamePrefix  = "hibp_report_"
	filenameSuffix  = ".json"
	timestampLayout = "20060102_150405"

	// DefaultRetention is how many reports Save keeps before pruning the
	// oldest.
	DefaultRetention = 10
)

// safeFilename admits only the names this store itself generates plus other
// flat prefix-matched JSON files. No separators, no dots outside the
// extension, so a validated name can never escape the directory.
var safeFilename = regexp.MustCompile(`^hibp_report_[A-Za-z0-9_-]+\.json$`)

// Store is a filesystem-backed ReportStore.
type Store struct {
	dir       string
	retention int
	logger    *slog.Logger
}

// New creates the report directory if needed. retention <= 0 selects
// DefaultRetention.
func New(dir string, retention int, logger *slog.Logger) (*Store, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create report directory: %w", err)
	}
	return &Store{dir: dir, retention: retention, logger: logger}, nil
}

// Save writes the report under a timestamped filename, then prunes reports
// beyond the retention window. Reports never contain secrets, but they do
// contain account identifiers, so files are written owner-only.
func (s *Store) Save(r model.Report) (string, error) {
	data, err := report.RenderJSON(r)
	if err != nil {
		return "", err
	}

	filename := filenamePrefix + r.GeneratedAt.Format(timestampLayout) + filenameSuffix
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write report %s: %w", filename, err)
	}

	s.logger.Info("report saved", "filename", filename, "items", r.Summary.Total)
	s.prune()
	return filename, nil
}

// List returns metadata for every stored report, newest first. Files that
// fail to parse are skipped with a warning rather than failing the listing.
func (s *Store) List() ([]model.ReportMeta, error) {
	names, err := s.filenames()
	if err != nil {
		return nil, err
	}

	metas := make([]model.ReportMeta, 0, len(names))
	for _, name := range names {
		r, err := s.read(name)
		if err != nil {
			s.logger.Warn("skipping unreadable report", "filename", name, "error", err)
			continue
		}
		metas = append(metas, model.ReportMeta{
			Filename:    name,
			GeneratedAt: r.GeneratedAt,
			Summary:     r.Summary,
			Severity:    r.Severity(),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].GeneratedAt.After(metas[j].GeneratedAt)
	})
	return metas, nil
}

// Get reads one report back by filename. The name is validated before any
// filesystem access.
func (s *Store) Get(filename string) (*model.Report, error) {
	if !safeFilename.MatchString(filename) {
		return nil, fmt.Errorf("report filename %q: %w", filename, driven.ErrBadFilename)
	}
	return s.read(filename)
}

func (s *Store) read(filename string) (*model.Report, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("report %s: %w", filename, driven.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", filename, err)
	}

	r, err := report.ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", filename, err)
	}
	return r, nil
}

// filenames lists stored report files in lexical order. The timestamped
// naming scheme makes lexical order chronological.
func (s *Store) filenames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read report directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.Type().IsRegular() && strings.HasPrefix(name, filenamePrefix) && strings.HasSuffix(name, filenameSuffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// prune removes the oldest reports beyond the retention window. Pruning is
// best-effort: a failed removal is logged, not surfaced.
func (s *Store) prune() {
	names, err := s.filenames()
	if err != nil {
		s.logger.Warn("report pruning skipped", "error", err)
		return
	}
	if len(names) <= s.retention {
		return
	}

	for _, name := range names[:len(names)-s.retention] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.logger.Warn("failed to prune report", "filename", name, "error", err)
			continue
		}
		s.logger.Info("pruned old report", "filename", name)
	}
}

// Timestamp parses the generation time out of a store-generated filename,
// for callers that need it without reading the file.
func Timestamp(filename string) (time.Time, error) {
	if !safeFilename.MatchString(filename) {
		return time.Time{}, fmt.Errorf("report filename %q: %w", filename, driven.ErrBadFilename)
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(filename, filenamePrefix), filenameSuffix)
	t, err := time.Parse(timestampLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("report filename %q: %w", filename, driven.ErrBadFilename)
	}
	return t, nil
}
