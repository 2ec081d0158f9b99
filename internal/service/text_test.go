package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"Trims and collapses whitespace", "  a   cat \n on a\troof  ", 800, "a cat on a roof"},
		{"Empty input", "   \n\t ", 800, ""},
		{"Truncates to limit", strings.Repeat("ab ", 100), 10, "ab ab ab a"},
		{"Truncates runes not bytes", strings.Repeat("é", 20), 5, "ééééé"},
		{"Untouched short input", "hello", 800, "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeText(tt.in, tt.maxLen))
		})
	}
}
