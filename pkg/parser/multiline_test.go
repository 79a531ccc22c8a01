package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiLineBuilder(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"no lines", nil, ""},
		{"blank line", []string{""}, ""},
		{"single", []string{"a"}, "a"},
		{"surrounding blanks", []string{" ", "a", " "}, "a"},
		{"dedent", []string{" ", " a", "  b", " "}, "a\n b"},
		{"inner blank kept", []string{"  a", "", "  b"}, "a\n\nb"},
		{"no common indent", []string{"a", "  b"}, "a\n  b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b multiLineBuilder
			for _, l := range tt.lines {
				b.appendLine(l)
			}
			assert.Equal(t, tt.want, b.String())
		})
	}
}
