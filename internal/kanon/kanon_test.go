package kanon_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/kanon"
)

func TestSplit_KnownDigest(t *testing.T) {
	// SHA-1("password") = 5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8
	prefix, suffix := kanon.Split("password")

	assert.Equal(t, "5BAA6", prefix)
	assert.Equal(t, "1E4C9B93F3F0682250B6CF8331B7EE68FD8", suffix)
}

func TestSplit_Shape(t *testing.T) {
	secrets := []string{"a", "correct horse battery staple", "pässwörd", "123456", "\x00\x01"}

	for _, secret := range secrets {
		prefix, suffix := kanon.Split(secret)

		require.Len(t, prefix, 5)
		require.Len(t, suffix, 35)

		for _, ch := range prefix + suffix {
			assert.True(t, (ch >= '0' && ch <= '9') || (ch >= 'A' && ch <= 'F'),
				"digest must be uppercase hex, got %q", ch)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	p1, s1 := kanon.Split("hunter2")
	p2, s2 := kanon.Split("hunter2")

	assert.Equal(t, p1, p2)
	assert.Equal(t, s1, s2)
}

func TestMatchSuffix(t *testing.T) {
	entries := []model.RangeEntry{
		{Suffix: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", Count: 12},
		{Suffix: "005AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", Count: 3},
	}

	count, found := kanon.MatchSuffix(entries, "005AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	assert.True(t, found)
	assert.Equal(t, 3, count)

	count, found = kanon.MatchSuffix(entries, "BBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB")
	assert.False(t, found)
	assert.Zero(t, count)

	count, found = kanon.MatchSuffix(nil, "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA")
	assert.False(t, found)
	assert.Zero(t, count)
}
