// Package kanon implements the k-anonymity hash split used by the Pwned
// Passwords range API: only the first 5 characters of a password's SHA-1
// digest ever leave the process.
package kanon

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is the protocol's lookup key, not a security control.
	"encoding/hex"
	"strings"

	"github.com/boscoh/breachwatch/internal/domain/model"
)

// PrefixLen is the number of leading hex digits sent to the range endpoint.
const PrefixLen = 5

// Split hashes the UTF-8 bytes of secret with SHA-1 and splits the uppercase
// hex digest into the 5-character range prefix and the 35-character suffix.
// It is pure and deterministic. Callers must not invoke it for empty
// secrets; those are safe by definition and never sent to the API.
func Split(secret string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(secret))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	return digest[:PrefixLen], digest[PrefixLen:]
}

// MatchSuffix scans a range response for the local hash suffix and returns
// the occurrence count. A miss means the password is absent from the corpus.
func MatchSuffix(entries []model.RangeEntry, suffix string) (count int, found bool) {
	for _, e := range entries {
		if e.Suffix == suffix {
			return e.Count, true
		}
	}
	return 0, false
}
