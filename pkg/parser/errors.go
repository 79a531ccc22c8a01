package parser

import (
	"fmt"

	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// ParseError represents a parsing error with position information.
type ParseError struct {
	Pos     token.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken = "unexpected token '%s', expected %s. Last tokens: %s"

	ErrProjectDefined     = "Project is already defined"
	ErrTableDefined       = "Table '%s' is already defined"
	ErrTableNotDefined    = "Table '%s' is not defined"
	ErrSchemaNotDefined   = "Schema '%s' is not defined"
	ErrAliasDefined       = "Alias '%s' is already defined"
	ErrPartialAlias       = "A TablePartial shouldn't have an alias"
	ErrPartialDefined     = "TablePartial '%s' is already defined"
	ErrPartialNotDefined  = "TablePartial '%s' is not defined"
	ErrDuplicateInjection = "Duplicate injection %s"
	ErrCircularInjection  = "Circular injection %s"
	ErrColumnDefined      = "Column '%s' is already defined"
	ErrColumnNotDefined   = "Column '%s' is not defined"
	ErrEnumDefined        = "Enum '%s' is already defined"
	ErrEnumValueDefined   = "Enum value '%s' is already defined"
	ErrGroupDefined       = "TableGroup '%s' is already defined"
	ErrNoteDefined        = "NamedNote '%s' is already defined"
	ErrSameEndpoints      = "Two endpoints are the same"
	ErrUnequalEndpoints   = "Two endpoints have unequal number of fields"
	ErrReferenceDefined   = "Reference with the same endpoints already exists"
)
