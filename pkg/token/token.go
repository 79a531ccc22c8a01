// Package token defines the lexical tokens of the DBML notation.
//
// Keywords are soft: the parser may reinterpret any keyword token as a plain
// LITERAL when the grammar expects a name at that position.
package token

import "fmt"

// TokenType represents the type of a lexical token.
//
//nolint:revive // Accept stutter as token.TokenType is clear and widely used
type TokenType int32

//nolint:revive // ALL_CAPS names follow the notation's keyword spelling
const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals
	LITERAL    // identifier
	NUMBER     // 12, 1.5, -3
	BOOLEAN    // true, false, null
	SSTRING    // 'single'
	DSTRING    // "double"
	TSTRING    // '''triple'''
	EXPR       // `expression`
	COLOR_CODE // #abc, #aabbcc
	COMMENT    // // line or /* block */

	// Whitespace
	LINEBREAK
	SPACE

	// Punctuation
	MINUS  // -
	LT     // <
	GT     // >
	NE     // <>
	LPAREN // (
	LBRACK // [
	LBRACE // {
	RPAREN // )
	RBRACK // ]
	RBRACE // }
	COLON  // :
	COMMA  // ,
	DOT    // .
	TILDE  // ~

	// Keywords (case-insensitive)
	PROJECT
	TABLE
	AS
	REF
	ENUM
	TABLEGROUP
	TABLEPARTIAL
	HEADERCOLOR
	COLOR
	NOTE
	PRIMARY
	KEY
	PK
	NOT
	NULL
	UNIQUE
	DEFAULT
	INCREMENT
	INDEXES
	BTREE
	HASH
	TYPE
	NAME
	DELETE
	UPDATE
	CASCADE
	RESTRICT
	SET
	NO
	ACTION
)

// String returns the token type name used in diagnostics.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

var tokenNames = map[TokenType]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	LITERAL:    "LITERAL",
	NUMBER:     "NUMBER",
	BOOLEAN:    "BOOLEAN",
	SSTRING:    "SSTRING",
	DSTRING:    "DSTRING",
	TSTRING:    "TSTRING",
	EXPR:       "EXPR",
	COLOR_CODE: "COLOR_CODE",
	COMMENT:    "COMMENT",

	LINEBREAK: "LINEBREAK",
	SPACE:     "SPACE",

	MINUS:  "MINUS",
	LT:     "LT",
	GT:     "GT",
	NE:     "NE",
	LPAREN: "LPAREN",
	LBRACK: "LBRACK",
	LBRACE: "LBRACE",
	RPAREN: "RPAREN",
	RBRACK: "RBRACK",
	RBRACE: "RBRACE",
	COLON:  "COLON",
	COMMA:  "COMMA",
	DOT:    "DOT",
	TILDE:  "TILDE",

	PROJECT:      "PROJECT",
	TABLE:        "TABLE",
	AS:           "AS",
	REF:          "REF",
	ENUM:         "ENUM",
	TABLEGROUP:   "TABLEGROUP",
	TABLEPARTIAL: "TABLEPARTIAL",
	HEADERCOLOR:  "HEADERCOLOR",
	COLOR:        "COLOR",
	NOTE:         "NOTE",
	PRIMARY:      "PRIMARY",
	KEY:          "KEY",
	PK:           "PK",
	NOT:          "NOT",
	NULL:         "NULL",
	UNIQUE:       "UNIQUE",
	DEFAULT:      "DEFAULT",
	INCREMENT:    "INCREMENT",
	INDEXES:      "INDEXES",
	BTREE:        "BTREE",
	HASH:         "HASH",
	TYPE:         "TYPE",
	NAME:         "NAME",
	DELETE:       "DELETE",
	UPDATE:       "UPDATE",
	CASCADE:      "CASCADE",
	RESTRICT:     "RESTRICT",
	SET:          "SET",
	NO:           "NO",
	ACTION:       "ACTION",
}

// keywords maps case-folded keyword strings to their token types.
var keywords = map[string]TokenType{
	"project":      PROJECT,
	"table":        TABLE,
	"as":           AS,
	"ref":          REF,
	"enum":         ENUM,
	"tablegroup":   TABLEGROUP,
	"tablepartial": TABLEPARTIAL,
	"headercolor":  HEADERCOLOR,
	"color":        COLOR,
	"note":         NOTE,
	"primary":      PRIMARY,
	"key":          KEY,
	"pk":           PK,
	"not":          NOT,
	"null":         NULL,
	"unique":       UNIQUE,
	"default":      DEFAULT,
	"increment":    INCREMENT,
	"indexes":      INDEXES,
	"btree":        BTREE,
	"hash":         HASH,
	"type":         TYPE,
	"name":         NAME,
	"delete":       DELETE,
	"update":       UPDATE,
	"cascade":      CASCADE,
	"restrict":     RESTRICT,
	"set":          SET,
	"no":           NO,
	"action":       ACTION,
}

// LookupKeyword returns the keyword token type for a case-folded word.
// Otherwise, LITERAL is returned.
func LookupKeyword(folded string) TokenType {
	if tok, ok := keywords[folded]; ok {
		return tok
	}
	return LITERAL
}

// IsKeyword returns true if the token type is a keyword.
func IsKeyword(t TokenType) bool {
	return t >= PROJECT && t <= ACTION
}

// IsWhitespace returns true for LINEBREAK and SPACE.
func IsWhitespace(t TokenType) bool {
	return t == LINEBREAK || t == SPACE
}

// IsLiteral returns true for the token types a plain word can be promoted to.
func IsLiteral(t TokenType) bool {
	return t == LITERAL || t == NUMBER || t == BOOLEAN
}

// IsString returns true for the three quoted string kinds.
func IsString(t TokenType) bool {
	return t == SSTRING || t == DSTRING || t == TSTRING
}

// IsBoolean reports whether s belongs to the boolean vocabulary.
// The match is exact: "True" is an identifier.
func IsBoolean(s string) bool {
	switch s {
	case "true", "false", "null":
		return true
	}
	return false
}

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// String renders the token for diagnostics.
func (t Token) String() string {
	switch t.Type {
	case LINEBREAK, SPACE, EOF:
		return t.Type.String()
	}
	return fmt.Sprintf("%s '%s'", t.Type, t.Literal)
}
