package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKeyword(t *testing.T) {
	tests := []struct {
		word string
		want TokenType
	}{
		{"table", TABLE},
		{"tablegroup", TABLEGROUP},
		{"tablepartial", TABLEPARTIAL},
		{"headercolor", HEADERCOLOR},
		{"pk", PK},
		{"users", LITERAL},
		{"TABLE", LITERAL}, // callers fold case first
		{"", LITERAL},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, LookupKeyword(tt.word))
		})
	}
}

func TestTokenTypeClasses(t *testing.T) {
	assert.True(t, IsKeyword(PROJECT))
	assert.True(t, IsKeyword(ACTION))
	assert.False(t, IsKeyword(LITERAL))
	assert.False(t, IsKeyword(TILDE))

	assert.True(t, IsWhitespace(SPACE))
	assert.True(t, IsWhitespace(LINEBREAK))
	assert.False(t, IsWhitespace(COMMENT))

	assert.True(t, IsLiteral(NUMBER))
	assert.True(t, IsLiteral(BOOLEAN))
	assert.False(t, IsLiteral(SSTRING))

	assert.True(t, IsString(TSTRING))
	assert.False(t, IsString(EXPR))
}

func TestIsBoolean(t *testing.T) {
	for _, s := range []string{"true", "false", "null"} {
		assert.True(t, IsBoolean(s), s)
	}
	for _, s := range []string{"", "True", "NULL", "nil", "0"} {
		assert.False(t, IsBoolean(s), s)
	}
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "TABLE", TABLE.String())
	assert.Equal(t, "COLOR_CODE", COLOR_CODE.String())
	assert.Equal(t, "TOKEN(9999)", TokenType(9999).String())
	assert.Equal(t, "LITERAL 'users'", Token{Type: LITERAL, Literal: "users"}.String())
	assert.Equal(t, "LINEBREAK", Token{Type: LINEBREAK, Literal: "\n"}.String())
	assert.Equal(t, "[3:14]", Position{Line: 3, Column: 14}.String())
}
