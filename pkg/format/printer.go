package format

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/leapstack-labs/leapdbml/pkg/core"
	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// Printer writes DBML with configurable indentation and line breaks.
type Printer struct {
	db          *core.Database
	opts        Options
	output      *bytes.Buffer
	depth       int
	atLineStart bool
}

func newPrinter(db *core.Database, opts Options) *Printer {
	if opts.Indent == "" {
		opts.Indent = DefaultOptions().Indent
	}
	if opts.Linebreak == "" {
		opts.Linebreak = DefaultOptions().Linebreak
	}
	return &Printer{
		db:          db,
		opts:        opts,
		output:      &bytes.Buffer{},
		atLineStart: true,
	}
}

// String returns the formatted output, ending with one line break.
func (p *Printer) String() string {
	out := strings.TrimRight(p.output.String(), p.opts.Linebreak)
	if out == "" {
		return ""
	}
	return out + p.opts.Linebreak
}

func (p *Printer) write(s string) {
	if p.atLineStart && s != "" {
		p.writeIndent()
	}
	p.output.WriteString(s)
	p.atLineStart = false
}

func (p *Printer) writeln() {
	p.output.WriteString(p.opts.Linebreak)
	p.atLineStart = true
}

// line writes s on its own line at the current depth.
func (p *Printer) line(s string) {
	p.write(s)
	p.writeln()
}

func (p *Printer) writeIndent() {
	for range p.depth {
		p.output.WriteString(p.opts.Indent)
	}
	p.atLineStart = false
}

func (p *Printer) indent() {
	p.depth++
}

func (p *Printer) dedent() {
	if p.depth > 0 {
		p.depth--
	}
}

// block prints "head {", the body one level deeper, then "}".
func (p *Printer) block(head string, body func()) {
	p.line(head + " {")
	p.indent()
	body()
	p.dedent()
	p.write("}")
	p.writeln()
}

// settings renders a setting list as " [a, b]", or "" when empty.
func settings(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return " [" + strings.Join(items, ", ") + "]"
}

// ---------- Quoting ----------

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

// quoteName leaves word names bare and double-quotes anything else. Names
// that would lex as a number or open a body element are quoted too.
func quoteName(s string) string {
	if isWord(s) && !isDigits(s) && !isBodyKeyword(s) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// isBodyKeyword reports whether s reads as a keyword inside a table or
// group body, where no keyword is downgraded to a name.
func isBodyKeyword(s string) bool {
	switch token.LookupKeyword(cases.Fold().String(s)) {
	case token.NOTE, token.INDEXES:
		return true
	}
	return false
}

// qualify renders schema.name with the default schema omitted.
func qualify(schema, name string) string {
	if schema == "" || schema == core.DefaultSchema {
		return quoteName(name)
	}
	return quoteName(schema) + "." + quoteName(name)
}

// quoteString single-quotes s, switching to triple quotes for multi-line text.
func quoteString(s string) string {
	if strings.ContainsAny(s, "\n\r") {
		r := strings.NewReplacer(`\`, `\\`, `'''`, `\'''`)
		return "'''" + r.Replace(s) + "'''"
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}

// quoteType leaves types like varchar(255) or decimal(10,2) bare.
func quoteType(s string) string {
	base, args, hasArgs := strings.Cut(s, "(")
	if !isWord(base) {
		return quoteName(s)
	}
	if !hasArgs {
		return s
	}
	inner, ok := strings.CutSuffix(args, ")")
	if !ok {
		return quoteName(s)
	}
	for _, c := range inner {
		if c != '_' && c != ',' && c != '.' && c != ' ' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return quoteName(s)
		}
	}
	return s
}

func quoteDefault(v string, kind core.ValueKind) string {
	switch kind {
	case core.ValueNumber, core.ValueBoolean:
		return v
	case core.ValueExpression:
		return "`" + v + "`"
	}
	return quoteString(v)
}

func hasNote(n *core.Note) bool {
	return n != nil && strings.TrimSpace(n.Value()) != ""
}
