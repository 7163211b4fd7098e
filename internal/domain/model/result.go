package model

// RangeEntry is one suffix:count pair from a password-range lookup.
type RangeEntry struct {
	Suffix string
	Count  int
}

// PasswordCheckResult is the outcome of checking one credential's password.
// Invariant: OccurrenceCount is -1 exactly when Error is set; otherwise the
// two are mutually exclusive.
type PasswordCheckResult struct {
	Label           string    `json:"name"`
	Identifier      string    `json:"username,omitempty"`
	SourceURI       string    `json:"uri,omitempty"`
	Compromised     bool      `json:"compromised"`
	OccurrenceCount int       `json:"breach_count"`
	Risk            RiskLevel `json:"risk_level"`
	Error           string    `json:"error,omitempty"`
}

// Status reports the outcome bucket: "error", "compromised", or "safe".
// Errors are a distinct bucket and never count as safe.
func (r PasswordCheckResult) Status() string {
	if r.Error != "" {
		return "error"
	}
	if r.Compromised {
		return "compromised"
	}
	return "safe"
}
