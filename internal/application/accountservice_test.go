package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

func TestCheckAccountsCategorizesFindings(t *testing.T) {
	api := &fakeBreachAPI{
		breaches: map[string][]model.BreachRecord{
			"alice@example.com": {
				{Name: "Adobe", Title: "Adobe", Date: "2013-10-04", DataClasses: []string{"Passwords", "Email addresses"}, PasswordExposure: model.ExposureEncrypted},
				{Name: "StealerCorpus", Title: "Stealer Corpus", IsStealerLog: true, DataClasses: []string{"Email addresses"}},
			},
		},
		stealerLogs: map[string][]string{
			"alice@example.com": {"github.com", "example.org"},
		},
		pastes: map[string][]model.PasteHit{
			"alice@example.com": {{Source: "Pastebin", EmailCount: 100}},
		},
	}
	svc := NewAccountService(api, slog.Default())

	findings, err := svc.CheckAccounts(context.Background(), []string{"alice@example.com"})
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "alice@example.com", f.Identifier)
	assert.Len(t, f.Breaches, 2)
	require.Len(t, f.PasswordExposedIn, 1)
	assert.Equal(t, "Adobe", f.PasswordExposedIn[0].Name)
	require.Len(t, f.StealerLogs, 1)
	assert.Equal(t, "StealerCorpus", f.StealerLogs[0].Name)
	assert.Equal(t, []string{"github.com"}, f.CriticalSites)
	assert.Equal(t, []string{"Email addresses", "Passwords"}, f.DataClasses)
	require.Len(t, f.Pastes, 1)
}

func TestCheckAccountsNotFoundMeansClean(t *testing.T) {
	svc := NewAccountService(&fakeBreachAPI{}, slog.Default())

	findings, err := svc.CheckAccounts(context.Background(), []string{"nobody@example.com"})
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Empty(t, f.Breaches)
	assert.Empty(t, f.CompromisedSites)
	assert.Empty(t, f.Pastes)
	assert.Empty(t, f.Error)
}

func TestCheckAccountsAuthFailureAbortsBatch(t *testing.T) {
	api := &fakeBreachAPI{
		accountErr: map[string]error{
			"first@example.com": fmt.Errorf("status 401: %w", driven.ErrAuth),
		},
	}
	svc := NewAccountService(api, slog.Default())

	_, err := svc.CheckAccounts(context.Background(), []string{"first@example.com", "second@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrAuth)
}

func TestCheckAccountsOtherFailuresAreRecorded(t *testing.T) {
	api := &fakeBreachAPI{
		breaches: map[string][]model.BreachRecord{
			"ok@example.com": {{Name: "Adobe", Title: "Adobe"}},
		},
		accountErr: map[string]error{
			"broken@example.com": errors.New("upstream unavailable"),
		},
	}
	svc := NewAccountService(api, slog.Default())

	findings, err := svc.CheckAccounts(context.Background(), []string{"broken@example.com", "ok@example.com"})
	require.NoError(t, err)
	require.Len(t, findings, 2)

	assert.Contains(t, findings[0].Error, "upstream unavailable")
	assert.Empty(t, findings[1].Error)
	assert.Len(t, findings[1].Breaches, 1)
}
