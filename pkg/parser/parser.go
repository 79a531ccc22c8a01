// Package parser compiles DBML source into a core.Database.
//
// # Usage
//
//	db, err := parser.New(parser.WithLogger(logger)).ParseString(ctx, src)
//	if err != nil {
//	    var perr *parser.ParseError
//	    if errors.As(err, &perr) {
//	        // perr.Pos holds the line and column
//	    }
//	}
//
// # Grammar Overview
//
// The parser is a recursive descent parser over the token stream:
//
//	document     → { project | table | ref | enum | tablegroup | tablepartial | note } EOF
//	table        → TABLE name [AS alias] [settings] "{" { column | "~" name | indexes | note } "}"
//	column       → name type ["(" args ")"] [column_settings] LINEBREAK
//	indexes      → INDEXES "{" { index_entry } "}"
//	ref          → REF [name] ( ":" endpoint rel endpoint [settings] | "{" endpoint rel endpoint [settings] "}" )
//	enum         → ENUM name "{" { value [settings] } "}"
//	tablegroup   → TABLEGROUP name [settings] "{" { name | note } "}"
//	tablepartial → TABLEPARTIAL name [settings] "{" body "}"
//	note         → NOTE name [settings] "{" string "}"
//
// Parsing happens in two stages. The first stage builds the graph and
// records partial injections and relationships. The second stage injects
// partials and resolves relationships once every declaration is known.
// The first error aborts the parse.
package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// Parser parses DBML documents. It holds configuration only; every call
// to Parse works on fresh state. A Parser may be reused sequentially but
// not from several goroutines at once.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a whole document from r and returns its entity graph.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*core.Database, error) {
	id := uuid.NewString()
	logger := p.logger.With("session", id)
	start := time.Now()
	logger.Debug("parse started")

	s := newSession(ctx, r)
	db, pending, err := s.parse()
	if err == nil {
		err = resolve(db, pending)
	}
	if readErr := s.ts.lexer.Err(); readErr != nil {
		err = fmt.Errorf("read input: %w", readErr)
	}
	if err != nil {
		logger.Debug("parse failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	st := db.Stats()
	logger.Debug("parse finished",
		"tables", st.Tables,
		"partials", st.Partials,
		"enums", st.Enums,
		"relationships", st.Relationships,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return db, nil
}

// ParseString parses an in-memory document.
func (p *Parser) ParseString(ctx context.Context, src string) (*core.Database, error) {
	return p.Parse(ctx, strings.NewReader(src))
}

// Parse parses src with a default Parser.
func Parse(src string) (*core.Database, error) {
	return New().ParseString(context.Background(), src)
}

// session is the state of a single parse.
type session struct {
	ctx     context.Context
	ts      *tokenStream
	db      *core.Database
	pending pending
}

// pending is the work deferred until the whole document has been read.
type pending struct {
	refs      []partialRef
	relations []relationDef
}

// partialRef is one ~name marker inside a table or partial body.
type partialRef struct {
	table core.TableID
	name  string
	pos   token.Position
}

// endpoint names one side of a relationship before resolution.
type endpoint struct {
	schema  string
	table   string
	columns []string
	partial string // set when declared inline on a partial's column
}

func (e endpoint) String() string {
	cols := strings.Join(e.columns, ", ")
	if len(e.columns) > 1 {
		cols = "(" + cols + ")"
	}
	return core.QualifiedName(e.schema, e.table) + "." + cols
}

func (e endpoint) equal(o endpoint) bool {
	if e.schema != o.schema || e.table != o.table || e.partial != o.partial || len(e.columns) != len(o.columns) {
		return false
	}
	for i := range e.columns {
		if e.columns[i] != o.columns[i] {
			return false
		}
	}
	return true
}

// relationDef is a relationship as written, resolved after parsing.
type relationDef struct {
	pos      token.Position
	name     string
	kind     core.RelationKind
	from, to endpoint
	settings map[core.RelationshipSetting]string
}

func newSession(ctx context.Context, r io.Reader) *session {
	if ctx == nil {
		ctx = context.Background()
	}
	return &session{
		ctx: ctx,
		ts:  newTokenStream(NewLexer(r)),
		db:  core.NewDatabase(),
	}
}

// parse runs the first stage: declarations are read into the graph and
// cross-references are collected for resolve.
func (s *session) parse() (*core.Database, pending, error) {
	for {
		if err := s.ctx.Err(); err != nil {
			return nil, pending{}, err
		}
		err := s.next(token.PROJECT, token.TABLE, token.REF, token.ENUM, token.TABLEGROUP,
			token.TABLEPARTIAL, token.NOTE, token.EOF)
		if err != nil {
			return nil, pending{}, err
		}
		switch s.ts.typ() {
		case token.PROJECT:
			err = s.parseProject()
		case token.TABLE:
			err = s.parseTable()
		case token.REF:
			err = s.parseRelationship()
		case token.ENUM:
			err = s.parseEnum()
		case token.TABLEGROUP:
			err = s.parseTableGroup()
		case token.TABLEPARTIAL:
			err = s.parseTablePartial()
		case token.NOTE:
			err = s.parseNamedNote()
		default:
			return s.db, s.pending, nil
		}
		if err != nil {
			return nil, pending{}, err
		}
	}
}

// ---------- Token Helpers ----------

func (s *session) next(types ...token.TokenType) error {
	return s.ts.next(types...)
}

func (s *session) is(types ...token.TokenType) bool {
	return s.ts.is(types...)
}

func (s *session) lookaheadIs(t token.TokenType) bool {
	return s.ts.lookaheadIs(t)
}

func (s *session) value() string {
	return s.ts.value()
}

func (s *session) errorf(format string, args ...any) error {
	return s.ts.errorf(format, args...)
}

var stringTypes = []token.TokenType{token.SSTRING, token.DSTRING, token.TSTRING}

func stringTypesOr(types ...token.TokenType) []token.TokenType {
	return append(append([]token.TokenType{}, stringTypes...), types...)
}

// settingList parses "[" item { "," item } "]" after the opening bracket
// was consumed. each is called with the setting keyword as current token.
func (s *session) settingList(keys []token.TokenType, each func() error) error {
	for {
		if err := s.next(keys...); err != nil {
			return err
		}
		if err := each(); err != nil {
			return err
		}
		if err := s.next(token.COMMA, token.RBRACK); err != nil {
			return err
		}
		if s.is(token.RBRACK) {
			return nil
		}
	}
}

// settingValue consumes ": value" and returns the value.
func (s *session) settingValue(types ...token.TokenType) (string, error) {
	if err := s.next(token.COLON); err != nil {
		return "", err
	}
	if err := s.next(types...); err != nil {
		return "", err
	}
	return s.value(), nil
}

// tableName reads [schema "."] name.
func (s *session) tableName() (schema, name string, err error) {
	if err := s.next(token.LITERAL, token.DSTRING); err != nil {
		return "", "", err
	}
	schema, name = core.DefaultSchema, s.value()
	if s.lookaheadIs(token.DOT) {
		if err := s.next(token.DOT); err != nil {
			return "", "", err
		}
		if err := s.next(token.LITERAL, token.DSTRING); err != nil {
			return "", "", err
		}
		schema, name = name, s.value()
	}
	return schema, name, nil
}

// parseNote reads the body of a "Note" element: ": string" or "{ string }".
func (s *session) parseNote() (*core.Note, error) {
	if err := s.next(token.COLON, token.LBRACE); err != nil {
		return nil, err
	}
	braced := s.is(token.LBRACE)
	if err := s.next(stringTypes...); err != nil {
		return nil, err
	}
	note := core.NewNote(s.value())
	if braced {
		if err := s.next(token.RBRACE); err != nil {
			return nil, err
		}
	}
	return note, nil
}

func (s *session) parseInlineNote() (*core.Note, error) {
	v, err := s.settingValue(stringTypes...)
	if err != nil {
		return nil, err
	}
	return core.NewNote(v), nil
}
