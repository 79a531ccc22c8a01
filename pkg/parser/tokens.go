package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// historySize is the number of consumed tokens shown in syntax errors.
const historySize = 5

type lookahead struct {
	tok token.Token
	pos token.Position // lexer position before the token was read
}

// tokenStream sits between the lexer and the grammar. It drops comments,
// filters or collapses whitespace, downgrades keywords to identifiers where
// the grammar asks for a name, and keeps the recent history for errors.
type tokenStream struct {
	lexer            *Lexer
	tok              token.Token
	queue            []lookahead
	history          []token.Token
	ignoreLinebreaks bool
	ignoreSpaces     bool
}

func newTokenStream(lexer *Lexer) *tokenStream {
	return &tokenStream{
		lexer:            lexer,
		ignoreLinebreaks: true,
		ignoreSpaces:     true,
	}
}

// next advances to the next token and fails unless it has one of types.
func (s *tokenStream) next(types ...token.TokenType) error {
	if len(types) == 0 {
		return nil
	}
	s.tok = s.pull()
	if s.shouldReclassify(types) {
		s.tok = s.reclassify(types)
	}
	s.remember(s.tok)
	if !slices.Contains(types, s.tok.Type) {
		return s.expected(types...)
	}
	return nil
}

func (s *tokenStream) pull() token.Token {
	if len(s.queue) > 0 {
		la := s.queue[0]
		s.queue = s.queue[1:]
		return la.tok
	}
	return s.fromLexer()
}

func (s *tokenStream) fromLexer() token.Token {
	for {
		tok, ok := s.lexer.NextToken()
		if !ok {
			return token.Token{Type: token.EOF, Pos: s.lexer.Position()}
		}
		if !s.skip(tok) {
			return tok
		}
	}
}

func (s *tokenStream) skip(tok token.Token) bool {
	switch tok.Type {
	case token.COMMENT:
		return true
	case token.LINEBREAK:
		return s.ignoreLinebreaks || s.previous().Type == token.LINEBREAK
	case token.SPACE:
		return s.ignoreSpaces || s.previous().Type == token.SPACE
	}
	return false
}

// previous is the token that precedes whatever the lexer yields next.
func (s *tokenStream) previous() token.Token {
	if n := len(s.queue); n > 0 {
		return s.queue[n-1].tok
	}
	return s.tok
}

func (s *tokenStream) shouldReclassify(types []token.TokenType) bool {
	return !token.IsWhitespace(s.tok.Type) &&
		!slices.Contains(types, s.tok.Type) &&
		slices.ContainsFunc(types, token.IsLiteral)
}

func (s *tokenStream) reclassify(types []token.TokenType) token.Token {
	tok := s.tok
	if slices.Contains(types, token.BOOLEAN) && token.IsBoolean(tok.Literal) {
		tok.Type = token.BOOLEAN
		return tok
	}
	if slices.Contains(types, token.NUMBER) && tok.Type == token.MINUS {
		if la := s.lookahead(); la.Type == token.NUMBER {
			s.pull()
			tok.Type = token.NUMBER
			tok.Literal = "-" + la.Literal
			return tok
		}
	}
	if !slices.Contains(types, token.LITERAL) {
		return tok
	}
	if token.IsKeyword(tok.Type) || (tok.Type == token.NUMBER && !strings.ContainsAny(tok.Literal, ".-")) {
		tok.Type = token.LITERAL
	}
	return tok
}

// lookahead returns the next significant token without consuming it.
func (s *tokenStream) lookahead() token.Token {
	if len(s.queue) > 0 {
		return s.queue[0].tok
	}
	pos := s.lexer.Position()
	tok := s.fromLexer()
	s.queue = append(s.queue, lookahead{tok: tok, pos: pos})
	return tok
}

func (s *tokenStream) lookaheadIs(t token.TokenType) bool {
	return s.lookahead().Type == t
}

func (s *tokenStream) is(types ...token.TokenType) bool {
	return slices.Contains(types, s.tok.Type)
}

func (s *tokenStream) typ() token.TokenType {
	return s.tok.Type
}

func (s *tokenStream) value() string {
	return s.tok.Literal
}

// position is where errors are reported: the position recorded for a
// pending lookahead, otherwise the lexer's current position.
func (s *tokenStream) position() token.Position {
	if len(s.queue) > 0 {
		return s.queue[0].pos
	}
	return s.lexer.Position()
}

func (s *tokenStream) expected(types ...token.TokenType) error {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return s.errorf(ErrUnexpectedToken, s.tok.Type, strings.Join(names, ", "), s.historyString())
}

func (s *tokenStream) errorf(format string, args ...any) error {
	return &ParseError{Pos: s.position(), Message: fmt.Sprintf(format, args...)}
}

func (s *tokenStream) remember(tok token.Token) {
	if len(s.history) == historySize {
		s.history = s.history[1:]
	}
	s.history = append(s.history, tok)
}

func (s *tokenStream) historyString() string {
	parts := make([]string, len(s.history))
	for i, tok := range s.history {
		parts[i] = tok.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// linebreakMode makes line breaks significant while fn runs.
func (s *tokenStream) linebreakMode(fn func() error) error {
	saved := s.ignoreLinebreaks
	s.ignoreLinebreaks = false
	defer func() { s.ignoreLinebreaks = saved }()
	return fn()
}
