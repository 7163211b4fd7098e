package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		value string
		show  int
		want  string
	}{
		{"", 2, "[empty]"},
		{"a", 2, "a"},
		{"ab", 2, "a*"},
		{"alice@example.com", 2, "al***"},
		{"abcd", 2, "ab**"},
		{"abcde", 4, "abcd*"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Redact(tt.value, tt.show), "Redact(%q, %d)", tt.value, tt.show)
	}
}
