package parser

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/leapstack-labs/leapdbml/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(r *Reader) string {
	var b strings.Builder
	for {
		c, ok := r.Next()
		if !ok {
			return b.String()
		}
		b.WriteRune(c)
	}
}

func TestReaderPositions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		pos  token.Position
	}{
		{"empty", "", "", token.Position{Line: 1, Column: 0}},
		{"single line", "abc", "abc", token.Position{Line: 1, Column: 3}},
		{"lf", "a\nbc", "a\nbc", token.Position{Line: 2, Column: 2}},
		{"crlf collapses", "a\r\nbc", "a\nbc", token.Position{Line: 2, Column: 2}},
		{"bare cr", "a\rb", "a\rb", token.Position{Line: 2, Column: 1}},
		{"trailing break", "ab\n", "ab\n", token.Position{Line: 1, Column: 3}},
		{"unicode", "üß", "üß", token.Position{Line: 1, Column: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.src))
			assert.Equal(t, tt.want, readAll(r))
			assert.Equal(t, tt.pos, r.Position())
			assert.NoError(t, r.Err())
		})
	}
}

func TestReaderLookahead(t *testing.T) {
	r := NewReader(strings.NewReader("abcdef"))

	assert.Equal(t, "abc", r.Lookahead(3))
	assert.Equal(t, token.Position{Line: 1, Column: 0}, r.Position())

	c, ok := r.Next()
	require.True(t, ok)
	assert.Equal(t, 'a', c)
	assert.Equal(t, "bcdef", r.Lookahead(10))
	assert.Equal(t, token.Position{Line: 1, Column: 1}, r.Position())
	assert.Equal(t, "bcdef", readAll(r))
}

func TestReaderPushback(t *testing.T) {
	r := NewReader(strings.NewReader("cd"))
	_, _ = r.Next()
	r.Pushback("ab")

	assert.Equal(t, token.Position{Line: 1, Column: 1}, r.Position())
	assert.Equal(t, "abd", readAll(r))
}

func TestReaderError(t *testing.T) {
	boom := errors.New("boom")
	r := NewReader(iotest.ErrReader(boom))

	_, ok := r.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, r.Err(), boom)
	assert.Empty(t, r.Lookahead(2))
}
