package cinder

import (
	"strings"
	"unicode"
)

// CanWrap reports whether text may be placed inside a wrapper function.
// Preprocessor directives and fragments starting with `extern`, `static` or
// `namespace` must stay at the top level. The check is purely lexical:
// it may refuse text that would wrap fine, never the other way round.
func CanWrap(text string) bool {
	trimmed := strings.TrimLeftFunc(text, unicode.IsSpace)
	if len(trimmed) > 1 && trimmed[0] == '#' {
		return false
	}
	switch firstWord(trimmed) {
	case "extern", "static", "namespace":
		return false
	}
	return true
}

func firstWord(s string) string {
	end := strings.IndexFunc(s, func(r rune) bool {
		return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if end < 0 {
		return s
	}
	return s[:end]
}
