package parser

import (
	"bufio"
	"errors"
	"io"

	"github.com/leapstack-labs/leapdbml/pkg/token"
)

// eof is returned by peek when no character is left.
const eof rune = -1

// Reader reads characters with lookahead, pushback and line/column tracking.
//
// A "\r\n" pair is delivered as a single '\n'. The line advances, and the
// column resets, on the character after a line break. Position reports the
// location of the last character returned by Next.
type Reader struct {
	src          *bufio.Reader
	buf          []rune // characters read ahead or pushed back, buf[0] comes next
	line         int
	column       int
	wasLinebreak bool
	done         bool
	err          error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{src: br, line: 1}
}

// Next consumes and returns the next character. It returns false at the
// end of input or after a read error (see Err).
func (r *Reader) Next() (rune, bool) {
	c, ok := r.read()
	if !ok {
		return 0, false
	}
	if r.wasLinebreak {
		r.line++
		r.column = 0
		r.wasLinebreak = false
	}
	if isLinebreak(c) {
		if c == '\r' && r.peek() == '\n' {
			return r.Next()
		}
		r.wasLinebreak = true
	}
	r.column++
	return c, true
}

// Lookahead returns up to n upcoming characters without consuming them.
func (r *Reader) Lookahead(n int) string {
	r.fill(n)
	if n > len(r.buf) {
		n = len(r.buf)
	}
	return string(r.buf[:n])
}

// Pushback puts s back in front of the remaining input.
// The position is left unchanged.
func (r *Reader) Pushback(s string) {
	if s == "" {
		return
	}
	r.buf = append([]rune(s), r.buf...)
}

// Position returns the position of the last character read.
func (r *Reader) Position() token.Position {
	return token.Position{Line: r.line, Column: r.column}
}

// Err returns the first read error other than io.EOF.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) peek() rune {
	r.fill(1)
	if len(r.buf) == 0 {
		return eof
	}
	return r.buf[0]
}

func (r *Reader) read() (rune, bool) {
	if len(r.buf) > 0 {
		c := r.buf[0]
		r.buf = r.buf[1:]
		return c, true
	}
	return r.readSource()
}

func (r *Reader) fill(n int) {
	for len(r.buf) < n {
		c, ok := r.readSource()
		if !ok {
			return
		}
		r.buf = append(r.buf, c)
	}
}

func (r *Reader) readSource() (rune, bool) {
	if r.done {
		return 0, false
	}
	c, _, err := r.src.ReadRune()
	if err != nil {
		r.done = true
		if !errors.Is(err, io.EOF) {
			r.err = err
		}
		return 0, false
	}
	return c, true
}

func isLinebreak(c rune) bool {
	return c == '\n' || c == '\r'
}
