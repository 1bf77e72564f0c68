package cinder

import (
	"fmt"
	"io"
	"strings"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Warning codes that callers may mute per compile.
const (
	WarnUnusedExpr = "unused-expr"
	WarnUnusedCall = "unused-call"
)

// Diagnostic is one message produced while compiling a fragment.
type Diagnostic struct {
	Severity Severity
	Code     string
	Pos      Position
	Message  string
	File     string
	source   string
}

func (d Diagnostic) Error() string {
	var b strings.Builder
	if d.File != "" {
		fmt.Fprintf(&b, "%s:%d:%d: ", d.File, d.Pos.Line, d.Pos.Column)
	}
	fmt.Fprintf(&b, "%s: %s", d.Severity, d.Message)
	if d.Code != "" {
		fmt.Fprintf(&b, " [-W%s]", d.Code)
	}
	if frame := formatCodeFrame(d.source, d.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// Diagnostics accumulates messages for the compile in progress.
type Diagnostics struct {
	items  []Diagnostic
	errors int
	muted  map[string]bool
	file   string
	source string
}

func (d *Diagnostics) reset(file, source string, muted []string) {
	d.items = nil
	d.errors = 0
	d.file = file
	d.source = source
	d.muted = make(map[string]bool, len(muted))
	for _, code := range muted {
		d.muted[code] = true
	}
}

// withSource switches the file and text used for new diagnostics and
// returns a function restoring the previous ones.
func (d *Diagnostics) withSource(file, source string) func() {
	prevFile, prevSource := d.file, d.source
	d.file, d.source = file, source
	return func() {
		d.file, d.source = prevFile, prevSource
	}
}

func (d *Diagnostics) errorf(pos Position, format string, args ...any) {
	d.items = append(d.items, Diagnostic{
		Severity: SeverityError,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		File:     d.file,
		source:   d.source,
	})
	d.errors++
}

func (d *Diagnostics) warnf(code string, pos Position, format string, args ...any) {
	if d.muted[code] {
		return
	}
	d.items = append(d.items, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
		File:     d.file,
		source:   d.source,
	})
}

// HasErrors reports whether the last compile produced an error.
func (d *Diagnostics) HasErrors() bool { return d.errors > 0 }

// Items returns the diagnostics of the last compile.
func (d *Diagnostics) Items() []Diagnostic {
	return append([]Diagnostic(nil), d.items...)
}

// Warnings returns only the warnings of the last compile.
func (d *Diagnostics) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, item := range d.items {
		if item.Severity == SeverityWarning {
			out = append(out, item)
		}
	}
	return out
}

// writeWarnings prints the warnings of the last compile, one per line.
func (d *Diagnostics) writeWarnings(w io.Writer) {
	if w == nil {
		return
	}
	for _, item := range d.Warnings() {
		fmt.Fprintln(w, item.Error())
	}
}

func (d *Diagnostics) asError() error {
	if d.errors == 0 {
		return nil
	}
	var errs []Diagnostic
	for _, item := range d.items {
		if item.Severity == SeverityError {
			errs = append(errs, item)
		}
	}
	return &CompileError{Diagnostics: errs}
}
