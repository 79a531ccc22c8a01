// Package config provides shared configuration defaults and project root
// discovery for leapdbml tools.
package config

import (
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultSchemaDir   = "."
	DefaultInclude     = "*.dbml"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultIndent      = "  "
	DefaultLinebreak   = "\n"
	DefaultConcurrency = 0 // one worker per CPU
	DefaultDebounce    = 100 * time.Millisecond
)

// Linebreak names accepted in place of the literal sequences.
var linebreakNames = map[string]string{
	"lf":   "\n",
	"crlf": "\r\n",
	"\n":   "\n",
	"\r\n": "\r\n",
}

// NormalizeLinebreak maps "lf"/"crlf" (any case) or a literal sequence to the
// sequence itself. ok is false for anything else.
func NormalizeLinebreak(s string) (lb string, ok bool) {
	if lb, ok = linebreakNames[s]; ok {
		return lb, true
	}
	lb, ok = linebreakNames[strings.ToLower(s)]
	return lb, ok
}
