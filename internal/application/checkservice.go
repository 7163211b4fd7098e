// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
	"github.com/boscoh/breachwatch/internal/kanon"
)

// DefaultCheckDelay is the pause between consecutive password-range lookups.
const DefaultCheckDelay = 100 * time.Millisecond

// ProgressFunc is invoked before each credential is checked. index is
// zero-based; label is the credential's display label, never its secret.
type ProgressFunc func(index, total int, label string)

// CheckService checks credentials against the breach database one at a time,
// in input order, with a short pause between lookups.
type CheckService struct {
	api    driven.BreachAPI
	delay  time.Duration
	logger *slog.Logger
}

// NewCheckService creates a CheckService. delay <= 0 selects
// DefaultCheckDelay; tests pass a negative delay to disable pacing.
func NewCheckService(api driven.BreachAPI, delay time.Duration, logger *slog.Logger) *CheckService {
	if delay == 0 {
		delay = DefaultCheckDelay
	}
	return &CheckService{api: api, delay: delay, logger: logger}
}

// CheckOptions adjusts a run.
type CheckOptions struct {
	// CompromisedOnly drops safe results from the report. Errored results
	// are always kept.
	CompromisedOnly bool

	// Progress, when non-nil, is called before each check.
	Progress ProgressFunc
}

// Run checks every credential and aggregates the outcomes into a Report.
// A lookup failure marks that one result as errored and the run continues;
// only context cancellation aborts the whole run. Result order matches
// credential order (before any CompromisedOnly filtering), and no secret is
// ever copied into a result.
func (s *CheckService) Run(ctx context.Context, creds []model.Credential, opts CheckOptions) (*model.Report, error) {
	results := make([]model.PasswordCheckResult, 0, len(creds))

	for i, cred := range creds {
		if opts.Progress != nil {
			opts.Progress(i, len(creds), cred.Label)
		}

		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		result := s.checkOne(ctx, cred)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if opts.CompromisedOnly {
		filtered := results[:0]
		for _, r := range results {
			if r.Compromised || r.Error != "" {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}

	report := model.Aggregate(results, nil)
	s.logger.Info("password check run complete",
		"total", report.Summary.Total,
		"compromised", report.Summary.Compromised,
		"errors", report.Summary.Errors,
	)
	return &report, nil
}

// checkOne checks a single credential. An empty secret is safe by definition
// and is never hashed or sent anywhere.
func (s *CheckService) checkOne(ctx context.Context, cred model.Credential) model.PasswordCheckResult {
	result := model.PasswordCheckResult{
		Label:      cred.Label,
		Identifier: cred.Identifier,
		SourceURI:  cred.SourceURI,
	}

	if cred.Secret == "" {
		result.Risk = model.RiskSafe
		return result
	}

	prefix, suffix := kanon.Split(cred.Secret)
	entries, err := s.api.LookupPasswordRange(ctx, prefix)
	if err != nil {
		s.logger.Warn("password check failed", "label", cred.Label, "error", err)
		result.OccurrenceCount = -1
		result.Risk = model.RiskUnknown
		result.Error = err.Error()
		return result
	}

	count, found := kanon.MatchSuffix(entries, suffix)
	result.Compromised = found
	result.OccurrenceCount = count
	result.Risk = model.ClassifyRisk(count)
	return result
}
