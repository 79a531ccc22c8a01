package parser

import (
	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// ---------- Relationships ----------

// parseInlineRef parses the ref setting of a column:
//
//	REF [name] ":" rel [schema "."] table "." column
func (s *session) parseInlineRef(table *core.Table, column *core.Column) error {
	var name string
	if err := s.next(token.LITERAL, token.DSTRING, token.COLON); err != nil {
		return err
	}
	if s.is(token.LITERAL, token.DSTRING) {
		name = s.value()
		if err := s.next(token.COLON); err != nil {
			return err
		}
	}
	kind, err := s.parseRelation()
	if err != nil {
		return err
	}
	to, err := s.parseColumnName()
	if err != nil {
		return err
	}

	from := endpoint{columns: []string{column.Name}}
	if table.Partial {
		from.partial = table.Name
	} else {
		from.schema = s.db.SchemaByID(table.Schema).Name
		from.table = table.Name
	}
	s.pending.relations = append(s.pending.relations, relationDef{
		pos:      s.ts.position(),
		name:     name,
		kind:     kind,
		from:     from,
		to:       to,
		settings: make(map[core.RelationshipSetting]string),
	})
	return nil
}

// parseRelationship parses a standalone reference in short or block form:
//
//	REF [name] ":" endpoint rel endpoint [settings]
//	REF [name] "{" endpoint rel endpoint [settings] "}"
func (s *session) parseRelationship() error {
	return s.ts.linebreakMode(func() error {
		var (
			name      string
			linebreak bool
		)
		if err := s.next(token.LITERAL, token.DSTRING, token.LBRACE, token.COLON, token.LINEBREAK); err != nil {
			return err
		}
		if s.is(token.LINEBREAK) {
			linebreak = true
			if err := s.next(token.LITERAL, token.DSTRING, token.LBRACE, token.COLON); err != nil {
				return err
			}
		}
		if s.is(token.LITERAL, token.DSTRING) {
			name = s.value()
			if err := s.next(token.LBRACE, token.COLON, token.LINEBREAK); err != nil {
				return err
			}
			if s.is(token.LINEBREAK) {
				linebreak = true
				if err := s.next(token.LBRACE); err != nil {
					return err
				}
			}
		}
		if linebreak && s.is(token.COLON) {
			return s.ts.expected(token.LBRACE)
		}
		braced := s.is(token.LBRACE)
		if braced && s.lookaheadIs(token.LINEBREAK) {
			if err := s.next(token.LINEBREAK); err != nil {
				return err
			}
		}

		from, err := s.parseRefColumnNames()
		if err != nil {
			return err
		}
		kind, err := s.parseRelation()
		if err != nil {
			return err
		}
		to, err := s.parseRefColumnNames()
		if err != nil {
			return err
		}
		settings, err := s.parseRelationshipSettings()
		if err != nil {
			return err
		}

		pos := s.ts.position()
		if braced {
			if s.lookaheadIs(token.LINEBREAK) {
				if err := s.next(token.LINEBREAK); err != nil {
					return err
				}
			}
			if err := s.next(token.RBRACE); err != nil {
				return err
			}
			pos = s.ts.position()
		} else if !s.lookaheadIs(token.EOF) {
			if err := s.next(token.LINEBREAK); err != nil {
				return err
			}
		}
		s.pending.relations = append(s.pending.relations, relationDef{
			pos:      pos,
			name:     name,
			kind:     kind,
			from:     from,
			to:       to,
			settings: settings,
		})
		return nil
	})
}

func (s *session) parseRelationshipSettings() (map[core.RelationshipSetting]string, error) {
	settings := make(map[core.RelationshipSetting]string)
	if !s.lookaheadIs(token.LBRACK) {
		return settings, nil
	}
	if err := s.next(token.LBRACK); err != nil {
		return nil, err
	}
	err := s.settingList([]token.TokenType{token.DELETE, token.UPDATE, token.COLOR}, func() error {
		switch s.ts.typ() {
		case token.COLOR:
			v, err := s.settingValue(token.COLOR_CODE)
			if err != nil {
				return err
			}
			settings[core.RelationshipColor] = v
		case token.DELETE:
			v, err := s.parseReferentialAction()
			if err != nil {
				return err
			}
			settings[core.RelationshipDelete] = v
		case token.UPDATE:
			v, err := s.parseReferentialAction()
			if err != nil {
				return err
			}
			settings[core.RelationshipUpdate] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// parseReferentialAction reads ": cascade | restrict | set null | set default | no action".
// Two-word actions are joined with a single space.
func (s *session) parseReferentialAction() (string, error) {
	v, err := s.settingValue(token.CASCADE, token.RESTRICT, token.SET, token.NO)
	if err != nil {
		return "", err
	}
	var second []token.TokenType
	switch s.ts.typ() {
	case token.SET:
		second = []token.TokenType{token.NULL, token.DEFAULT}
	case token.NO:
		second = []token.TokenType{token.ACTION}
	default:
		return v, nil
	}
	if err := s.next(second...); err != nil {
		return "", err
	}
	return v + " " + s.value(), nil
}

func (s *session) parseRelation() (core.RelationKind, error) {
	if err := s.next(token.LT, token.GT, token.MINUS, token.NE); err != nil {
		return 0, err
	}
	kind, _ := core.ParseRelationKind(s.value())
	return kind, nil
}

// parseColumnName reads [schema "."] table "." column.
func (s *session) parseColumnName() (endpoint, error) {
	e := endpoint{schema: core.DefaultSchema}
	if err := s.next(token.LITERAL, token.DSTRING); err != nil {
		return e, err
	}
	e.table = s.value()
	if err := s.next(token.DOT); err != nil {
		return e, err
	}
	if err := s.next(token.LITERAL, token.DSTRING); err != nil {
		return e, err
	}
	column := s.value()
	if s.lookaheadIs(token.DOT) {
		if err := s.next(token.DOT); err != nil {
			return e, err
		}
		if err := s.next(token.LITERAL, token.DSTRING); err != nil {
			return e, err
		}
		e.schema, e.table, column = e.table, column, s.value()
	}
	e.columns = []string{column}
	return e, nil
}

// parseRefColumnNames reads an endpoint of a standalone reference:
//
//	[schema "."] table "." ( column | "(" column { "," column } ")" )
func (s *session) parseRefColumnNames() (endpoint, error) {
	e := endpoint{schema: core.DefaultSchema}
	if err := s.next(token.LITERAL, token.DSTRING); err != nil {
		return e, err
	}
	e.table = s.value()
	if err := s.next(token.DOT); err != nil {
		return e, err
	}
	if err := s.next(token.LITERAL, token.DSTRING, token.LPAREN); err != nil {
		return e, err
	}
	if s.is(token.LPAREN) {
		cols, err := s.parseColumnList()
		e.columns = cols
		return e, err
	}

	column := s.value()
	if !s.lookaheadIs(token.DOT) {
		e.columns = []string{column}
		return e, nil
	}
	if err := s.next(token.DOT); err != nil {
		return e, err
	}
	e.schema, e.table = e.table, column
	if err := s.next(token.LITERAL, token.DSTRING, token.LPAREN); err != nil {
		return e, err
	}
	if s.is(token.LPAREN) {
		cols, err := s.parseColumnList()
		e.columns = cols
		return e, err
	}
	e.columns = []string{s.value()}
	return e, nil
}

func (s *session) parseColumnList() ([]string, error) {
	var cols []string
	for !s.is(token.RPAREN) {
		if err := s.next(token.LITERAL, token.DSTRING); err != nil {
			return nil, err
		}
		cols = append(cols, s.value())
		if err := s.next(token.COMMA, token.RPAREN); err != nil {
			return nil, err
		}
	}
	return cols, nil
}
