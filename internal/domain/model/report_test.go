package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateCounters(t *testing.T) {
	items := []PasswordCheckResult{
		{Label: "A", Compromised: true, OccurrenceCount: 5000, Risk: RiskCritical},
		{Label: "B", Compromised: true, OccurrenceCount: 500, Risk: RiskHigh},
		{Label: "C", Compromised: true, OccurrenceCount: 50, Risk: RiskMedium},
		{Label: "D", Compromised: true, OccurrenceCount: 5, Risk: RiskLow},
		{Label: "E", Risk: RiskSafe},
		{Label: "F", OccurrenceCount: -1, Risk: RiskUnknown, Error: "boom"},
	}

	r := Aggregate(items, nil)

	assert.Equal(t, 6, r.Summary.Total)
	assert.Equal(t, 1, r.Summary.Safe)
	assert.Equal(t, 4, r.Summary.Compromised)
	assert.Equal(t, 1, r.Summary.Errors)
	assert.Equal(t, 1, r.Summary.CriticalCount)
	assert.Equal(t, 1, r.Summary.HighCount)
	assert.Equal(t, 1, r.Summary.MediumCount)
	assert.Equal(t, 1, r.Summary.LowCount)
	assert.False(t, r.GeneratedAt.IsZero())
}

func TestAggregateEmptyRun(t *testing.T) {
	r := Aggregate(nil, nil)

	assert.Equal(t, 0, r.Summary.Total)
	assert.Equal(t, OutcomeClean, r.Outcome())
	assert.Equal(t, SeverityClean, r.Severity())
}

func TestAggregateAccountCounters(t *testing.T) {
	findings := AccountFindings{
		Identifier: "alice@example.com",
		Breaches: []BreachRecord{
			{Name: "Adobe", DataClasses: []string{"Passwords"}},
			{Name: "Dropbox"},
		},
		CompromisedSites: []string{"github.com"},
		Pastes:           []PasteHit{{Source: "Pastebin"}},
	}
	findings.Categorize()
	failed := AccountFindings{Identifier: "bob@example.com", Error: "rate limited"}

	r := Aggregate(nil, []AccountFindings{findings, failed})

	assert.Equal(t, 2, r.Summary.AccountsChecked)
	assert.Equal(t, 2, r.Summary.TotalBreaches)
	assert.Equal(t, 1, r.Summary.PasswordExposures)
	assert.Equal(t, 1, r.Summary.StealerLogHits)
	assert.Equal(t, 1, r.Summary.CriticalSites)
	assert.Equal(t, 1, r.Summary.PasteExposures)
	assert.Equal(t, 1, r.Summary.Errors, "account failures land in the errors bucket")
}

func TestOutcome(t *testing.T) {
	clean := Aggregate([]PasswordCheckResult{{Label: "A", Risk: RiskSafe}}, nil)
	assert.Equal(t, OutcomeClean, clean.Outcome())

	found := Aggregate([]PasswordCheckResult{{Label: "A", Compromised: true, OccurrenceCount: 1, Risk: RiskLow}}, nil)
	assert.Equal(t, OutcomeBreachesFound, found.Outcome())

	accountOnly := Aggregate(nil, []AccountFindings{{Identifier: "a@b.c", Pastes: []PasteHit{{Source: "Pastebin"}}}})
	assert.Equal(t, OutcomeBreachesFound, accountOnly.Outcome())
}

func TestSeverity(t *testing.T) {
	critical := Aggregate([]PasswordCheckResult{{Compromised: true, OccurrenceCount: 5000, Risk: RiskCritical}}, nil)
	assert.Equal(t, SeverityCritical, critical.Severity())

	warning := Aggregate([]PasswordCheckResult{{Compromised: true, OccurrenceCount: 5, Risk: RiskLow}}, nil)
	assert.Equal(t, SeverityWarning, warning.Severity())

	exposed := AccountFindings{
		Identifier: "alice@example.com",
		Breaches:   []BreachRecord{{Name: "Adobe", DataClasses: []string{"Passwords"}}},
	}
	exposed.Categorize()
	accountCritical := Aggregate(nil, []AccountFindings{exposed})
	assert.Equal(t, SeverityCritical, accountCritical.Severity())
}

func TestCriticalSites(t *testing.T) {
	domains := []string{"github.com", "example.org", "login.paypal.com", "myforum.net"}
	assert.Equal(t, []string{"github.com", "login.paypal.com"}, CriticalSites(domains))
	assert.Nil(t, CriticalSites(nil))
}

func TestCategorizeMergesDataClasses(t *testing.T) {
	f := AccountFindings{
		Breaches: []BreachRecord{
			{Name: "A", DataClasses: []string{"Passwords", "Email addresses"}},
			{Name: "B", DataClasses: []string{"Email addresses", "Usernames"}, IsStealerLog: true},
		},
	}
	f.Categorize()

	assert.Equal(t, []string{"Email addresses", "Passwords", "Usernames"}, f.DataClasses)
	assert.Len(t, f.PasswordExposedIn, 1)
	assert.Len(t, f.StealerLogs, 1)
}
