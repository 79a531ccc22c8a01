package parser

import (
	"errors"
	"strings"

	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// ---------- Tables ----------

// parseTable parses:
//
//	TABLE [schema "."] name [AS alias] ["[" table_settings "]"] "{" body "}"
func (s *session) parseTable() error {
	schemaName, name, err := s.tableName()
	if err != nil {
		return err
	}
	schema, err := s.db.GetOrCreateSchema(schemaName)
	if err != nil {
		return s.errorf("%v", err)
	}
	table, err := s.db.AddTable(schema.ID, name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return s.errorf(ErrTableDefined, core.QualifiedName(schemaName, name))
		}
		return s.errorf("%v", err)
	}
	alias, err := s.parseTableHead(table)
	if err != nil {
		return err
	}
	if alias != "" {
		if err := s.db.SetAlias(table.ID, alias); err != nil {
			return s.errorf(ErrAliasDefined, alias)
		}
	}
	return s.parseTableBody(table)
}

// parseTablePartial parses a partial. It shares the table grammar but may
// not carry an alias.
func (s *session) parseTablePartial() error {
	if err := s.next(token.LITERAL, token.DSTRING); err != nil {
		return err
	}
	name := s.value()
	partial, err := s.db.AddPartial(name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return s.errorf(ErrPartialDefined, name)
		}
		return s.errorf("%v", err)
	}
	alias, err := s.parseTableHead(partial)
	if err != nil {
		return err
	}
	if alias != "" {
		return s.errorf(ErrPartialAlias)
	}
	return s.parseTableBody(partial)
}

// parseTableHead parses the part between the name and the body and
// returns the alias, if any. The alias is checked here but assigned by the
// caller.
func (s *session) parseTableHead(table *core.Table) (string, error) {
	if err := s.next(token.AS, token.LBRACK, token.LBRACE); err != nil {
		return "", err
	}
	var alias string
	if s.is(token.AS) {
		if err := s.next(token.LITERAL, token.DSTRING); err != nil {
			return "", err
		}
		alias = s.value()
		if s.db.HasAlias(alias) {
			return "", s.errorf(ErrAliasDefined, alias)
		}
		if err := s.next(token.LBRACK, token.LBRACE); err != nil {
			return "", err
		}
	}
	if s.is(token.LBRACK) {
		err := s.settingList([]token.TokenType{token.HEADERCOLOR, token.NOTE}, func() error {
			return s.parseTableSetting(table)
		})
		if err != nil {
			return "", err
		}
		if err := s.next(token.LBRACE); err != nil {
			return "", err
		}
	}
	return alias, nil
}

func (s *session) parseTableSetting(table *core.Table) error {
	if s.is(token.HEADERCOLOR) {
		v, err := s.settingValue(token.COLOR_CODE)
		if err != nil {
			return err
		}
		table.Settings[core.TableHeaderColor] = v
		return nil
	}
	note, err := s.parseInlineNote()
	if err != nil {
		return err
	}
	table.Note = note
	return nil
}

func (s *session) parseTableBody(table *core.Table) error {
	if err := s.next(token.LITERAL, token.DSTRING, token.TILDE); err != nil {
		return err
	}
	for {
		var err error
		switch s.ts.typ() {
		case token.LITERAL, token.DSTRING:
			err = s.parseColumn(table)
		case token.TILDE:
			err = s.parsePartialRef(table)
		case token.INDEXES:
			err = s.parseIndexes(table)
		case token.NOTE:
			table.Note, err = s.parseNote()
		default:
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.next(token.LITERAL, token.DSTRING, token.TILDE, token.INDEXES, token.NOTE, token.RBRACE); err != nil {
			return err
		}
	}
}

func (s *session) parsePartialRef(table *core.Table) error {
	if err := s.next(token.LITERAL); err != nil {
		return err
	}
	name := s.value()
	for _, ref := range table.Refs {
		if ref == name {
			return s.errorf(ErrDuplicateInjection, name)
		}
	}
	table.Refs = append(table.Refs, name)
	s.pending.refs = append(s.pending.refs, partialRef{table: table.ID, name: name, pos: s.ts.position()})
	return nil
}

// ---------- Columns ----------

// parseColumn parses a column whose name is the current token:
//
//	name type ["(" args ")"] ["[" column_settings "]"]
func (s *session) parseColumn(table *core.Table) error {
	name := s.value()
	if table.HasColumn(name) {
		return s.errorf(ErrColumnDefined, s.db.TableName(table.ID)+"."+name)
	}
	return s.ts.linebreakMode(func() error {
		typ, err := s.parseColumnType()
		if err != nil {
			return err
		}
		column, err := s.db.AddColumn(table.ID, name, typ)
		if err != nil {
			return s.errorf("%v", err)
		}
		if !s.is(token.LBRACK) {
			return nil
		}
		keys := []token.TokenType{token.NOT, token.NULL, token.PRIMARY, token.PK, token.UNIQUE,
			token.INCREMENT, token.NOTE, token.REF, token.DEFAULT}
		return s.settingList(keys, func() error {
			return s.parseColumnSetting(table, column)
		})
	})
}

// parseColumnType reads the type and its argument list, then the token
// that ends the type: a settings bracket or a line break. A closing brace
// also ends the type but is left for the table body.
func (s *session) parseColumnType() (string, error) {
	if err := s.next(token.LITERAL, token.DSTRING); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(s.value())
	if s.lookaheadIs(token.LPAREN) {
		if err := s.next(token.LPAREN); err != nil {
			return "", err
		}
		b.WriteString(s.value())
		for !s.is(token.RPAREN) {
			if err := s.next(token.LITERAL, token.NUMBER, token.COMMA, token.DOT, token.RPAREN, token.LINEBREAK); err != nil {
				return "", err
			}
			if !s.is(token.LINEBREAK) {
				b.WriteString(s.value())
			}
		}
	}
	if s.lookaheadIs(token.RBRACE) {
		return b.String(), nil
	}
	if err := s.next(token.LBRACK, token.LINEBREAK); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *session) parseColumnSetting(table *core.Table, column *core.Column) error {
	switch s.ts.typ() {
	case token.NOT:
		if err := s.next(token.NULL); err != nil {
			return err
		}
		column.Settings[core.ColumnNotNull] = ""
	case token.NULL:
		// nullable is the default
	case token.PRIMARY:
		if err := s.next(token.KEY); err != nil {
			return err
		}
		column.Settings[core.ColumnPrimaryKey] = ""
	case token.PK:
		column.Settings[core.ColumnPrimaryKey] = ""
	case token.UNIQUE:
		column.Settings[core.ColumnUnique] = ""
	case token.INCREMENT:
		column.Settings[core.ColumnIncrement] = ""
	case token.DEFAULT:
		v, err := s.settingValue(stringTypesOr(token.EXPR, token.BOOLEAN, token.NUMBER)...)
		if err != nil {
			return err
		}
		column.Settings[core.ColumnDefault] = v
		column.DefaultKind = valueKind(s.ts.typ())
	case token.NOTE:
		note, err := s.parseInlineNote()
		if err != nil {
			return err
		}
		column.Note = note
	case token.REF:
		return s.parseInlineRef(table, column)
	}
	return nil
}

func valueKind(t token.TokenType) core.ValueKind {
	switch t {
	case token.NUMBER:
		return core.ValueNumber
	case token.BOOLEAN:
		return core.ValueBoolean
	case token.EXPR:
		return core.ValueExpression
	}
	return core.ValueString
}

// ---------- Indexes ----------

func (s *session) parseIndexes(table *core.Table) error {
	if err := s.next(token.LBRACE); err != nil {
		return err
	}
	for {
		if err := s.next(token.LPAREN, token.LITERAL, token.EXPR); err != nil {
			return err
		}
		closed, err := s.parseIndex(table)
		if err != nil {
			return err
		}
		if closed {
			return nil
		}
		if s.lookaheadIs(token.RBRACE) {
			return s.next(token.RBRACE)
		}
	}
}

// parseIndex parses one index entry whose first token is current. It
// reports whether the entry was ended by the closing brace of the block.
func (s *session) parseIndex(table *core.Table) (bool, error) {
	var closed bool
	err := s.ts.linebreakMode(func() error {
		index, err := s.db.AddIndex(table.ID)
		if err != nil {
			return s.errorf("%v", err)
		}
		if s.is(token.LPAREN) {
			for !s.is(token.RPAREN) {
				if err := s.next(token.LITERAL, token.EXPR); err != nil {
					return err
				}
				if err := s.parseIndexColumn(table, index); err != nil {
					return err
				}
				if err := s.next(token.COMMA, token.RPAREN); err != nil {
					return err
				}
			}
		} else if err := s.parseIndexColumn(table, index); err != nil {
			return err
		}

		if s.lookaheadIs(token.LBRACK) {
			if err := s.next(token.LBRACK); err != nil {
				return err
			}
			if s.lookaheadIs(token.PK) {
				if err := s.next(token.PK); err != nil {
					return err
				}
				index.Settings[core.IndexPK] = ""
				if err := s.next(token.RBRACK); err != nil {
					return err
				}
			} else {
				keys := []token.TokenType{token.UNIQUE, token.NAME, token.TYPE, token.NOTE}
				err := s.settingList(keys, func() error {
					return s.parseIndexSetting(index)
				})
				if err != nil {
					return err
				}
			}
		}
		if err := s.next(token.LINEBREAK, token.RBRACE); err != nil {
			return err
		}
		closed = s.is(token.RBRACE)
		return nil
	})
	return closed, err
}

func (s *session) parseIndexColumn(table *core.Table, index *core.Index) error {
	name := s.value()
	entry := core.IndexColumn{Name: name, Expression: s.is(token.EXPR)}
	if !entry.Expression {
		id, ok := table.ColumnID(name)
		if !ok {
			return s.errorf(ErrColumnNotDefined, name)
		}
		entry.Column = id
	}
	if err := index.AddColumn(entry); err != nil {
		return s.errorf(ErrColumnDefined, name)
	}
	return nil
}

func (s *session) parseIndexSetting(index *core.Index) error {
	switch s.ts.typ() {
	case token.UNIQUE:
		index.Settings[core.IndexUnique] = ""
	case token.NAME:
		v, err := s.settingValue(stringTypes...)
		if err != nil {
			return err
		}
		index.Settings[core.IndexName] = v
	case token.TYPE:
		v, err := s.settingValue(token.BTREE, token.HASH)
		if err != nil {
			return err
		}
		index.Settings[core.IndexType] = v
	case token.NOTE:
		note, err := s.parseInlineNote()
		if err != nil {
			return err
		}
		index.Note = note
	}
	return nil
}
