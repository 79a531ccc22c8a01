// Package format prints a core.Database back to DBML.
//
// Tables and partials are printed as declared: ~name markers are kept and
// elements that were injected from a partial are left out. Parsing the
// output yields an equivalent graph.
package format

import (
	"github.com/leapstack-labs/leapdbml/pkg/core"
)

// Options control whitespace in the output.
type Options struct {
	Indent    string `koanf:"indent"`
	Linebreak string `koanf:"linebreak"`
}

// DefaultOptions returns two-space indentation and "\n" line breaks.
func DefaultOptions() Options {
	return Options{Indent: "  ", Linebreak: "\n"}
}

// Format prints the whole database. Top-level elements are separated by a
// blank line in this order: project, enums, partials, tables,
// relationships, table groups, named notes.
func Format(db *core.Database, opts Options) string {
	p := newPrinter(db, opts)
	for i, el := range db.Elements() {
		if i > 0 {
			p.writeln()
		}
		p.element(el)
	}
	return p.String()
}

// Element prints a single top-level element of db.
func Element(db *core.Database, el core.Element, opts Options) string {
	p := newPrinter(db, opts)
	p.element(el)
	return p.String()
}
