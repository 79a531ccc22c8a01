package parser

import (
	"errors"

	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// ---------- Project ----------

// parseProject parses:
//
//	PROJECT [name] "{" { key ":" string | note } "}"
func (s *session) parseProject() error {
	if s.db.Project() != nil {
		return s.errorf(ErrProjectDefined)
	}
	project := &core.Project{}
	if err := s.next(token.LITERAL, token.DSTRING, token.LBRACE); err != nil {
		return err
	}
	if s.is(token.LITERAL, token.DSTRING) {
		project.Name = s.value()
		if err := s.next(token.LBRACE); err != nil {
			return err
		}
	}
	for {
		if err := s.next(token.LITERAL, token.NOTE, token.RBRACE); err != nil {
			return err
		}
		switch s.ts.typ() {
		case token.LITERAL:
			key := s.value()
			v, err := s.settingValue(stringTypes...)
			if err != nil {
				return err
			}
			project.SetProperty(key, v)
		case token.NOTE:
			note, err := s.parseNote()
			if err != nil {
				return err
			}
			project.Note = note
		default:
			if err := s.db.SetProject(project); err != nil {
				return s.errorf(ErrProjectDefined)
			}
			return nil
		}
	}
}

// ---------- Enums ----------

// parseEnum parses:
//
//	ENUM [schema "."] name "{" { value ["[" note "]"] LINEBREAK } "}"
func (s *session) parseEnum() error {
	schemaName, name, err := s.tableName()
	if err != nil {
		return err
	}
	schema, err := s.db.GetOrCreateSchema(schemaName)
	if err != nil {
		return s.errorf("%v", err)
	}
	enum, err := s.db.AddEnum(schema.ID, name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return s.errorf(ErrEnumDefined, core.QualifiedName(schemaName, name))
		}
		return s.errorf("%v", err)
	}
	if err := s.next(token.LBRACE); err != nil {
		return err
	}
	for {
		if err := s.next(token.LITERAL, token.DSTRING); err != nil {
			return err
		}
		value, err := enum.AddValue(s.value())
		if err != nil {
			if errors.Is(err, core.ErrDuplicate) {
				return s.errorf(ErrEnumValueDefined, s.db.EnumName(enum.ID)+"."+s.value())
			}
			return s.errorf("enum value: %v", err)
		}
		err = s.ts.linebreakMode(func() error {
			if err := s.next(token.LBRACK, token.LINEBREAK); err != nil {
				return err
			}
			if !s.is(token.LBRACK) {
				return nil
			}
			err := s.settingList([]token.TokenType{token.NOTE}, func() error {
				note, err := s.parseInlineNote()
				value.Note = note
				return err
			})
			if err != nil {
				return err
			}
			return s.next(token.LINEBREAK)
		})
		if err != nil {
			return err
		}
		if s.lookaheadIs(token.RBRACE) {
			return s.next(token.RBRACE)
		}
	}
}

// ---------- Table groups ----------

// parseTableGroup parses:
//
//	TABLEGROUP [schema "."] name ["[" group_settings "]"] "{" { table | note } "}"
func (s *session) parseTableGroup() error {
	schemaName, name, err := s.tableName()
	if err != nil {
		return err
	}
	qualified := core.QualifiedName(schemaName, name)
	group, err := s.db.AddTableGroup(qualified)
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return s.errorf(ErrGroupDefined, qualified)
		}
		return s.errorf("%v", err)
	}
	if err := s.next(token.LBRACK, token.LBRACE); err != nil {
		return err
	}
	if s.is(token.LBRACK) {
		err := s.settingList([]token.TokenType{token.COLOR, token.NOTE}, func() error {
			if s.is(token.COLOR) {
				v, err := s.settingValue(token.COLOR_CODE)
				group.Color = v
				return err
			}
			note, err := s.parseInlineNote()
			group.Note = note
			return err
		})
		if err != nil {
			return err
		}
		if err := s.next(token.LBRACE); err != nil {
			return err
		}
	}
	for !s.lookaheadIs(token.RBRACE) {
		if s.lookaheadIs(token.NOTE) {
			if err := s.next(token.NOTE); err != nil {
				return err
			}
			note, err := s.parseNote()
			if err != nil {
				return err
			}
			group.Note = note
			continue
		}
		table, err := s.findTable()
		if err != nil {
			return err
		}
		if err := group.AddTable(table.ID); err != nil {
			return s.errorf(ErrTableDefined, s.db.TableName(table.ID))
		}
	}
	return s.next(token.RBRACE)
}

// findTable reads a table name and resolves it, trying aliases first.
func (s *session) findTable() (*core.Table, error) {
	schema, name, err := s.tableName()
	if err != nil {
		return nil, err
	}
	if t := s.db.AliasTable(name); t != nil {
		return t, nil
	}
	if t := s.db.LookupTable(schema, name); t != nil {
		return t, nil
	}
	return nil, s.errorf(ErrTableNotDefined, core.QualifiedName(schema, name))
}

// ---------- Named notes ----------

// parseNamedNote parses:
//
//	NOTE name ["[" HEADERCOLOR ":" color "]"] "{" string "}"
func (s *session) parseNamedNote() error {
	if err := s.next(token.LITERAL, token.DSTRING); err != nil {
		return err
	}
	name := s.value()
	note, err := s.db.AddNamedNote(name)
	if err != nil {
		if errors.Is(err, core.ErrDuplicate) {
			return s.errorf(ErrNoteDefined, name)
		}
		return s.errorf("%v", err)
	}
	if err := s.next(token.LBRACK, token.LBRACE); err != nil {
		return err
	}
	if s.is(token.LBRACK) {
		err := s.settingList([]token.TokenType{token.HEADERCOLOR}, func() error {
			v, err := s.settingValue(token.COLOR_CODE)
			note.HeaderColor = v
			return err
		})
		if err != nil {
			return err
		}
		if err := s.next(token.LBRACE); err != nil {
			return err
		}
	}
	if err := s.next(stringTypes...); err != nil {
		return err
	}
	note.Value = s.value()
	return s.next(token.RBRACE)
}
