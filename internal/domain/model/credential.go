// Package model contains the domain types for breach checking.
package model

// Credential is a single vault entry to check against the breach database.
// It exists only in memory for the duration of a check run. The Secret field
// must never appear in a Report, a log line, or any persisted file; only
// derived counts and flags leave this struct.
type Credential struct {
	Label      string // display name of the vault entry
	Identifier string // username or email, optional
	Secret     string // the password, never persisted
	SourceURI  string // first URI associated with the entry, optional
}

// Redact partially masks a sensitive display value, keeping the first few
// characters so the owner can still recognize the account.
func Redact(value string, show int) string {
	if value == "" {
		return "[empty]"
	}

	runes := []rune(value)
	if len(runes) <= show {
		return string(runes[0]) + repeat('*', len(runes)-1)
	}

	stars := len(runes) - show
	if stars > 3 {
		stars = 3
	}

	return string(runes[:show]) + repeat('*', stars)
}

func repeat(ch rune, n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]rune, n)
	for i := range out {
		out[i] = ch
	}
	return string(out)
}
