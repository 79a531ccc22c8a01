package parser

import (
	"testing"

	"github.com/leapstack-labs/leapdbml/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStream(src string) *tokenStream {
	return newTokenStream(NewStringLexer(src))
}

func TestTokenStreamSkipsCommentsAndWhitespace(t *testing.T) {
	s := newTestStream("a // comment\n  /* block */ b\n")

	require.NoError(t, s.next(token.LITERAL))
	assert.Equal(t, "a", s.value())
	require.NoError(t, s.next(token.LITERAL))
	assert.Equal(t, "b", s.value())
	require.NoError(t, s.next(token.EOF))
}

func TestTokenStreamLinebreakMode(t *testing.T) {
	s := newTestStream("a\n\n\nb c")

	err := s.linebreakMode(func() error {
		require.NoError(t, s.next(token.LITERAL))
		require.NoError(t, s.next(token.LINEBREAK))
		require.NoError(t, s.next(token.LITERAL))
		assert.Equal(t, "b", s.value())
		return nil
	})
	require.NoError(t, err)
	assert.True(t, s.ignoreLinebreaks, "mode is restored")

	require.NoError(t, s.next(token.LITERAL))
	assert.Equal(t, "c", s.value())
}

func TestTokenStreamReclassify(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []token.TokenType
		want     token.TokenType
		literal  string
	}{
		{"keyword as name", "table", []token.TokenType{token.LITERAL, token.DSTRING}, token.LITERAL, "table"},
		{"keyword expected", "table", []token.TokenType{token.TABLE, token.LITERAL}, token.TABLE, "table"},
		{"boolean", "true", []token.TokenType{token.SSTRING, token.BOOLEAN, token.NUMBER}, token.BOOLEAN, "true"},
		{"null is boolean", "null", []token.TokenType{token.BOOLEAN}, token.BOOLEAN, "null"},
		{"negative number", "-12", []token.TokenType{token.BOOLEAN, token.NUMBER}, token.NUMBER, "-12"},
		{"negative decimal", "-1.5", []token.TokenType{token.NUMBER}, token.NUMBER, "-1.5"},
		{"integer as name", "42", []token.TokenType{token.LITERAL}, token.LITERAL, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStream(tt.src)
			require.NoError(t, s.next(tt.expected...))
			assert.Equal(t, tt.want, s.typ())
			assert.Equal(t, tt.literal, s.value())
			require.NoError(t, s.next(token.EOF))
		})
	}
}

func TestTokenStreamRejects(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []token.TokenType
	}{
		{"decimal is not a name", "1.5", []token.TokenType{token.LITERAL}},
		{"minus without number", "- x", []token.TokenType{token.NUMBER}},
		{"capitalized boolean", "True", []token.TokenType{token.BOOLEAN}},
		{"illegal", "&", []token.TokenType{token.LITERAL}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStream(tt.src)
			var perr *ParseError
			require.ErrorAs(t, s.next(tt.expected...), &perr)
			assert.Contains(t, perr.Message, "unexpected token")
		})
	}
}

func TestTokenStreamErrorMessage(t *testing.T) {
	s := newTestStream("Table {")
	require.NoError(t, s.next(token.TABLE))

	err := s.next(token.LITERAL, token.DSTRING)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "unexpected token 'LBRACE', expected LITERAL, DSTRING. Last tokens: [TABLE 'Table', LBRACE '{']", perr.Message)
	assert.Equal(t, token.Position{Line: 1, Column: 7}, perr.Pos)
}

func TestTokenStreamLookahead(t *testing.T) {
	s := newTestStream("a . b")
	require.NoError(t, s.next(token.LITERAL))

	assert.True(t, s.lookaheadIs(token.DOT))
	assert.Equal(t, token.Position{Line: 1, Column: 1}, s.position(), "position recorded before the lookahead")
	require.NoError(t, s.next(token.DOT))
	require.NoError(t, s.next(token.LITERAL))
	assert.Equal(t, "b", s.value())
}

func TestTokenStreamHistoryIsBounded(t *testing.T) {
	s := newTestStream("a b c d e f g")
	for range 7 {
		require.NoError(t, s.next(token.LITERAL))
	}
	assert.Len(t, s.history, historySize)
	assert.Equal(t, "g", s.history[historySize-1].Literal)
}
