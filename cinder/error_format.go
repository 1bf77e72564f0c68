package cinder

import (
	"errors"
	"fmt"
	"strings"
)

// formatCodeFrame renders the source line at pos with a caret under the
// column. Tabs before the column are kept so the caret lines up.
func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	text := strings.TrimRight(lines[pos.Line-1], "\r")
	runes := []rune(text)
	col := min(max(pos.Column, 1), len(runes)+1)

	var pad strings.Builder
	for _, r := range runes[:col-1] {
		if r == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteByte(' ')
		}
	}

	gutter := fmt.Sprintf("%5d", pos.Line)
	return fmt.Sprintf("%s | %s\n%s | %s^", gutter, text, strings.Repeat(" ", len(gutter)), pad.String())
}

// combineErrors returns nil, the only error, or all of them joined.
func combineErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
