package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ScanStore = (*ScanRepo)(nil)

// ScanRepo is the SQLite implementation of the ScanStore port interface.
type ScanRepo struct {
	db *DB
}

// NewScanRepo creates a new ScanRepo backed by the given DB.
func NewScanRepo(db *DB) *ScanRepo {
	return &ScanRepo{db: db}
}

// Record inserts one scan-history row. Recording the same filename twice
// updates the existing row, so re-saving a report never duplicates history.
func (r *ScanRepo) Record(ctx context.Context, scan model.ScanRecord) error {
	const query = `
		INSERT INTO scans (filename, generated_at, total, safe, compromised, errors, critical_count, high_count, severity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET
			generated_at = excluded.generated_at,
			total = excluded.total,
			safe = excluded.safe,
			compromised = excluded.compromised,
			errors = excluded.errors,
			critical_count = excluded.critical_count,
			high_count = excluded.high_count,
			severity = excluded.severity
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		scan.Filename, scan.GeneratedAt.UTC().Format(time.RFC3339),
		scan.Total, scan.Safe, scan.Compromised, scan.Errors,
		scan.Critical, scan.High, string(scan.Severity),
	)
	if err != nil {
		return fmt.Errorf("record scan %s: %w", scan.Filename, err)
	}

	return nil
}

// Recent returns up to limit scans, newest first.
func (r *ScanRepo) Recent(ctx context.Context, limit int) ([]model.ScanRecord, error) {
	const query = `
		SELECT id, filename, generated_at, total, safe, compromised, errors, critical_count, high_count, severity
		FROM scans
		ORDER BY generated_at DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent scans: %w", err)
	}
	defer rows.Close()

	var scans []model.ScanRecord
	for rows.Next() {
		scan, err := scanScanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scan record: %w", err)
		}
		scans = append(scans, *scan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}

	return scans, nil
}

// Count returns the total number of recorded scans.
func (r *ScanRepo) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM scans`

	var count int
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count scans: %w", err)
	}

	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanScanRecord(s scanner) (*model.ScanRecord, error) {
	var scan model.ScanRecord
	var generatedAt, severity string

	err := s.Scan(
		&scan.ID, &scan.Filename, &generatedAt, &scan.Total, &scan.Safe,
		&scan.Compromised, &scan.Errors, &scan.Critical, &scan.High, &severity,
	)
	if err != nil {
		return nil, err
	}

	scan.GeneratedAt, err = parseTime(generatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse generated_at: %w", err)
	}
	scan.Severity = model.Severity(severity)

	return &scan, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
