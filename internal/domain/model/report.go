package model

import "time"

// Summary holds the aggregated counters for a Report. The errors bucket is
// always distinct from safe and compromised.
type Summary struct {
	Total       int `json:"total"`
	Safe        int `json:"safe"`
	Compromised int `json:"compromised"`
	Errors      int `json:"errors"`

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`

	AccountsChecked   int `json:"accounts_checked,omitempty"`
	TotalBreaches     int `json:"total_breaches,omitempty"`
	PasswordExposures int `json:"password_exposures,omitempty"`
	StealerLogHits    int `json:"stealer_log_hits,omitempty"`
	CriticalSites     int `json:"critical_sites,omitempty"`
	PasteExposures    int `json:"paste_exposures,omitempty"`
}

// Report is the immutable end product of a check run. Item order always
// matches the input order of the credentials that were checked.
type Report struct {
	GeneratedAt time.Time             `json:"generated_at"`
	Items       []PasswordCheckResult `json:"items"`
	Accounts    []AccountFindings     `json:"accounts,omitempty"`
	Summary     Summary               `json:"summary"`
}

// Outcome is the tri-state result of a completed run, used for process and
// task exit signaling. A run that could not complete never produces a Report
// at all, so only the two completed outcomes appear here.
type Outcome int

const (
	OutcomeClean Outcome = iota
	OutcomeBreachesFound
)

// Severity buckets a report for the dashboard, mirroring the risk taxonomy:
// any critical or high password, password exposure, or critical stealer-log
// site makes the whole report critical.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityClean    Severity = "clean"
)

// Aggregate builds a Report from per-credential and per-account results,
// tallying counts per risk level and per outcome. Both slices may be empty;
// an empty run yields a valid Report with all counters at zero.
func Aggregate(items []PasswordCheckResult, accounts []AccountFindings) Report {
	report := Report{
		GeneratedAt: time.Now().UTC(),
		Items:       items,
		Accounts:    accounts,
	}

	s := &report.Summary
	s.Total = len(items)
	for _, item := range items {
		switch item.Status() {
		case "error":
			s.Errors++
		case "compromised":
			s.Compromised++
		default:
			s.Safe++
		}

		switch item.Risk {
		case RiskCritical:
			s.CriticalCount++
		case RiskHigh:
			s.HighCount++
		case RiskMedium:
			s.MediumCount++
		case RiskLow:
			s.LowCount++
		}
	}

	s.AccountsChecked = len(accounts)
	for _, acct := range accounts {
		s.TotalBreaches += len(acct.Breaches)
		s.PasswordExposures += len(acct.PasswordExposedIn)
		s.StealerLogHits += len(acct.CompromisedSites)
		s.CriticalSites += len(acct.CriticalSites)
		s.PasteExposures += len(acct.Pastes)
		if acct.Error != "" {
			s.Errors++
		}
	}

	return report
}

// Outcome distinguishes a clean run from one that found breaches.
func (r Report) Outcome() Outcome {
	s := r.Summary
	if s.Compromised > 0 || s.TotalBreaches > 0 || s.PasteExposures > 0 || s.StealerLogHits > 0 {
		return OutcomeBreachesFound
	}
	return OutcomeClean
}

// Severity classifies the report for dashboard display.
func (r Report) Severity() Severity {
	s := r.Summary
	switch {
	case s.CriticalCount > 0 || s.HighCount > 0 || s.PasswordExposures > 0 || s.CriticalSites > 0:
		return SeverityCritical
	case r.Outcome() == OutcomeBreachesFound:
		return SeverityWarning
	default:
		return SeverityClean
	}
}

// ReportMeta is the listing view of a persisted report.
type ReportMeta struct {
	Filename    string    `json:"filename"`
	GeneratedAt time.Time `json:"generated_at"`
	Summary     Summary   `json:"summary"`
	Severity    Severity  `json:"severity"`
}
