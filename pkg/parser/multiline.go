package parser

import "strings"

// multiLineBuilder accumulates the lines of a triple-quoted string or block
// comment and normalizes them: the smallest indentation of the non-blank
// lines is removed from every line, then blank lines at both ends are dropped.
type multiLineBuilder struct {
	lines []string
}

func (b *multiLineBuilder) appendLine(line string) {
	b.lines = append(b.lines, line)
}

func (b *multiLineBuilder) String() string {
	lines := make([]string, len(b.lines))
	copy(lines, b.lines)

	indent := -1
	for _, l := range lines {
		if isBlank(l) {
			continue
		}
		if n := leadingSpaces(l); indent < 0 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, l := range lines {
			lines[i] = l[min(indent, leadingSpaces(l)):]
		}
	}

	start, end := 0, len(lines)
	for start < end && isBlank(lines[start]) {
		start++
	}
	for end > start && isBlank(lines[end-1]) {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func leadingSpaces(s string) int {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return i
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
