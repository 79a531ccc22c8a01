package parser

import (
	"io"
	"strings"
	"unicode"

	"github.com/leapstack-labs/leapdbml/pkg/token"
	"golang.org/x/text/cases"
)

// Lexer tokenizes DBML input.
//
// NextToken yields one token at a time. After EOF or ILLEGAL the lexer is
// exhausted. Whitespace is not collapsed here: every space or tab is a SPACE
// token and every line break a LINEBREAK token.
type Lexer struct {
	r     *Reader
	fold  cases.Caser
	ended bool
}

// NewLexer creates a Lexer reading from src.
func NewLexer(src io.Reader) *Lexer {
	return &Lexer{
		r:    NewReader(src),
		fold: cases.Fold(),
	}
}

// NewStringLexer creates a Lexer over an in-memory document.
func NewStringLexer(src string) *Lexer {
	return NewLexer(strings.NewReader(src))
}

// NextToken returns the next token, or false once the lexer is exhausted.
func (l *Lexer) NextToken() (token.Token, bool) {
	if l.ended {
		return token.Token{}, false
	}
	tok := l.nextToken()
	if tok.Type == token.EOF || tok.Type == token.ILLEGAL {
		l.ended = true
	}
	return tok, true
}

// Position returns the position of the last character consumed.
func (l *Lexer) Position() token.Position {
	return l.r.Position()
}

// Err returns the read error that ended the input early, if any.
func (l *Lexer) Err() error {
	return l.r.Err()
}

func (l *Lexer) nextToken() token.Token {
	c, ok := l.r.Next()
	pos := l.r.Position()
	if !ok {
		if l.r.Err() != nil {
			return token.Token{Type: token.ILLEGAL, Pos: pos}
		}
		return token.Token{Type: token.EOF, Pos: pos}
	}

	if isWordChar(c) {
		return l.readWord(c, pos)
	}

	switch c {
	case '-':
		return newToken(token.MINUS, "-", pos)
	case '<':
		if l.r.peek() == '>' {
			l.r.Next()
			return newToken(token.NE, "<>", pos)
		}
		return newToken(token.LT, "<", pos)
	case '>':
		return newToken(token.GT, ">", pos)
	case '(':
		return newToken(token.LPAREN, "(", pos)
	case '[':
		return newToken(token.LBRACK, "[", pos)
	case '{':
		return newToken(token.LBRACE, "{", pos)
	case ')':
		return newToken(token.RPAREN, ")", pos)
	case ']':
		return newToken(token.RBRACK, "]", pos)
	case '}':
		return newToken(token.RBRACE, "}", pos)
	case ':':
		return newToken(token.COLON, ":", pos)
	case ',':
		return newToken(token.COMMA, ",", pos)
	case '.':
		return newToken(token.DOT, ".", pos)
	case '~':
		return newToken(token.TILDE, "~", pos)
	case '\n', '\r':
		return newToken(token.LINEBREAK, "\n", pos)
	case ' ', '\t':
		return newToken(token.SPACE, " ", pos)
	case '\'':
		if l.r.Lookahead(2) == "''" {
			l.skip(2)
			return l.readMultiLine("'''", token.TSTRING, pos)
		}
		return l.readString('\'', token.SSTRING, pos)
	case '"':
		return l.readString('"', token.DSTRING, pos)
	case '`':
		return l.readString('`', token.EXPR, pos)
	case '/':
		return l.readComment(pos)
	case '#':
		return l.readColor(pos)
	}
	return newToken(token.ILLEGAL, string(c), pos)
}

func newToken(t token.TokenType, literal string, pos token.Position) token.Token {
	return token.Token{Type: t, Literal: literal, Pos: pos}
}

// readWord reads a maximal run of word characters. A digit-only run is a
// NUMBER; when '.' and another digit-only run follow, both join it as the
// fraction. Otherwise the dot is left for the next token.
func (l *Lexer) readWord(first rune, pos token.Position) token.Token {
	var b strings.Builder
	b.WriteRune(first)
	for isWordChar(l.r.peek()) {
		c, _ := l.r.Next()
		b.WriteRune(c)
	}
	word := b.String()

	if !isDigits(word) {
		return newToken(token.LookupKeyword(l.fold.String(word)), word, pos)
	}
	if l.r.peek() == '.' {
		if frac := l.peekWord(1); isDigits(frac) {
			l.skip(1 + len([]rune(frac)))
			word += "." + frac
		}
	}
	return newToken(token.NUMBER, word, pos)
}

// peekWord returns the run of word characters that starts offset runes
// ahead, without consuming anything.
func (l *Lexer) peekWord(offset int) string {
	for n := offset + 1; ; n++ {
		ahead := []rune(l.r.Lookahead(n))
		if len(ahead) < n || !isWordChar(ahead[n-1]) {
			return string(ahead[offset : n-1])
		}
	}
}

// readString reads a single-line string closed by quote.
func (l *Lexer) readString(quote rune, t token.TokenType, pos token.Position) token.Token {
	var b strings.Builder
	for {
		if l.r.peek() == quote {
			l.r.Next()
			return newToken(t, b.String(), pos)
		}
		c, ok := l.r.Next()
		if !ok {
			return newToken(token.ILLEGAL, string(quote)+b.String(), pos)
		}
		if c != '\\' {
			b.WriteRune(c)
			continue
		}
		switch next := l.r.peek(); {
		case next == quote || next == '\\':
			l.r.Next()
			b.WriteRune(next)
		case isLinebreak(next):
			l.r.Next()
		default:
			b.WriteRune(c)
		}
	}
}

// readMultiLine reads a triple-quoted string or block comment up to closer.
func (l *Lexer) readMultiLine(closer string, t token.TokenType, pos token.Position) token.Token {
	var ml multiLineBuilder
	var line strings.Builder
	for {
		if l.r.Lookahead(len(closer)) == closer {
			l.skip(len(closer))
			ml.appendLine(line.String())
			return newToken(t, ml.String(), pos)
		}
		c, ok := l.r.Next()
		if !ok {
			return newToken(token.ILLEGAL, line.String(), pos)
		}
		switch {
		case c == '\\':
			ahead := l.r.Lookahead(len(closer))
			switch {
			case strings.HasPrefix(ahead, `\`):
				l.r.Next()
				line.WriteByte('\\')
			case ahead == closer:
				l.skip(len(closer))
				line.WriteString(closer)
			case ahead != "" && isLinebreak([]rune(ahead)[0]):
				l.r.Next()
			default:
				line.WriteRune(c)
			}
		case isLinebreak(c):
			ml.appendLine(line.String())
			line.Reset()
		default:
			line.WriteRune(c)
		}
	}
}

func (l *Lexer) readComment(pos token.Position) token.Token {
	switch l.r.peek() {
	case '/':
		l.r.Next()
		var b strings.Builder
		for next := l.r.peek(); next != eof && !isLinebreak(next); next = l.r.peek() {
			c, _ := l.r.Next()
			b.WriteRune(c)
		}
		return newToken(token.COMMENT, b.String(), pos)
	case '*':
		l.r.Next()
		return l.readMultiLine("*/", token.COMMENT, pos)
	}
	return newToken(token.ILLEGAL, "/", pos)
}

// readColor reads up to six hex digits after '#'. Only runs of exactly
// three or six digits form a color.
func (l *Lexer) readColor(pos token.Position) token.Token {
	ahead := []rune(l.r.Lookahead(6))
	n := 0
	for n < len(ahead) && isHexDigit(ahead[n]) {
		n++
	}
	value := "#" + string(ahead[:n])
	if n != 3 && n != 6 {
		return newToken(token.ILLEGAL, value, pos)
	}
	l.skip(n)
	return newToken(token.COLOR_CODE, value, pos)
}

func (l *Lexer) skip(n int) {
	for i := 0; i < n; i++ {
		l.r.Next()
	}
}

func isWordChar(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Tokenize lexes an entire document. Comments and whitespace are included.
// Lexing stops at the first illegal token, which is returned as a *LexError
// together with the tokens read so far.
func Tokenize(src string) ([]token.Token, error) {
	l := NewStringLexer(src)
	var tokens []token.Token
	for {
		tok, ok := l.NextToken()
		if !ok {
			return tokens, nil
		}
		tokens = append(tokens, tok)
		if tok.Type == token.ILLEGAL {
			if err := l.Err(); err != nil {
				return tokens, err
			}
			return tokens, &LexError{Pos: tok.Pos, Message: "illegal token '" + tok.Literal + "'"}
		}
	}
}
