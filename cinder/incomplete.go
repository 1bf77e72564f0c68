package cinder

import "strings"

// bracketScan is the result of walking text with comments and string
// literals skipped. open is set when a block comment or string runs to the
// end, broken when a string literal spans a line break, and stray holds the
// first closing bracket that had no opener.
type bracketScan struct {
	depth    int
	open     bool
	broken   bool
	stray    Position
	hasStray bool
}

func scanBrackets(text string) bracketScan {
	var s bracketScan
	line, col := 1, 0
	advance := func(c byte) {
		if c == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		advance(c)
		switch {
		case c == '/' && i+1 < len(text) && text[i+1] == '/':
			for i+1 < len(text) && text[i+1] != '\n' {
				i++
				advance(text[i])
			}
		case c == '/' && i+1 < len(text) && text[i+1] == '*':
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				s.open = true
				return s
			}
			for _, r := range []byte(text[i+1 : i+end+4]) {
				advance(r)
			}
			i += end + 3
		case c == '"':
			for {
				i++
				if i >= len(text) {
					s.open = true
					return s
				}
				advance(text[i])
				if text[i] == '"' {
					break
				}
				if text[i] == '\n' {
					s.broken = true
					return s
				}
				if text[i] == '\\' && i+1 < len(text) {
					i++
					advance(text[i])
				}
			}
		case c == '(' || c == '{':
			s.depth++
		case c == ')' || c == '}':
			s.depth--
			if s.depth < 0 && !s.hasStray {
				s.stray = Position{Line: line, Column: col}
				s.hasStray = true
			}
		}
	}
	return s
}

// IsIncomplete reports whether text needs more lines before it can be
// compiled: a bracket or block comment is still open, a string literal is
// unterminated, or the last line ends with a backslash.
func IsIncomplete(text string) bool {
	if strings.HasSuffix(strings.TrimRight(text, " \t\r\n"), "\\") {
		return true
	}
	s := scanBrackets(text)
	if s.broken {
		return false
	}
	return s.open || s.depth > 0
}

// escapesWrapper finds a closing bracket in text that would end the
// function a fragment is wrapped in.
func escapesWrapper(text string) (Position, bool) {
	s := scanBrackets(text)
	return s.stray, s.hasStray
}
