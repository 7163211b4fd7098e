package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

// AccountService checks email accounts for breach, stealer-log, and paste
// exposure. Request pacing for the authenticated endpoints lives in the
// BreachAPI implementation, not here.
type AccountService struct {
	api    driven.BreachAPI
	logger *slog.Logger
}

// NewAccountService creates an AccountService.
func NewAccountService(api driven.BreachAPI, logger *slog.Logger) *AccountService {
	return &AccountService{api: api, logger: logger}
}

// CheckAccounts checks each account in order. A not-found from any lookup
// means zero results for that lookup. An authentication failure aborts the
// whole batch, since every remaining call would fail the same way; any other
// failure is recorded on that account's findings and the batch continues.
func (s *AccountService) CheckAccounts(ctx context.Context, accounts []string) ([]model.AccountFindings, error) {
	findings := make([]model.AccountFindings, 0, len(accounts))

	for _, account := range accounts {
		f, err := s.checkOne(ctx, account)
		if errors.Is(err, driven.ErrAuth) {
			return nil, fmt.Errorf("account check for %s: %w", account, err)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.logger.Warn("account check failed", "account", account, "error", err)
			f = model.AccountFindings{Identifier: account, Error: err.Error()}
		}
		findings = append(findings, f)
	}

	return findings, nil
}

func (s *AccountService) checkOne(ctx context.Context, account string) (model.AccountFindings, error) {
	f := model.AccountFindings{Identifier: account}

	breaches, err := s.api.LookupAccountBreaches(ctx, account)
	if err != nil && !errors.Is(err, driven.ErrNotFound) {
		return f, fmt.Errorf("lookup breaches: %w", err)
	}
	f.Breaches = breaches

	sites, err := s.api.LookupStealerLogs(ctx, account)
	if err != nil && !errors.Is(err, driven.ErrNotFound) {
		return f, fmt.Errorf("lookup stealer logs: %w", err)
	}
	f.CompromisedSites = sites

	pastes, err := s.api.LookupPastes(ctx, account)
	if err != nil && !errors.Is(err, driven.ErrNotFound) {
		return f, fmt.Errorf("lookup pastes: %w", err)
	}
	f.Pastes = pastes

	f.Categorize()
	s.logger.Info("account checked",
		"account", account,
		"breaches", len(f.Breaches),
		"stealer_sites", len(f.CompromisedSites),
		"pastes", len(f.Pastes),
	)
	return f, nil
}
