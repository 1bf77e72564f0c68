package cinder

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExecutionNotFound reports that a compiled wrapper could not be found
	// again by name. It signals an internal inconsistency.
	ErrExecutionNotFound = errors.New("cinder: compiled function not found for execution")
	// ErrAmbiguousLookup reports a name that resolves to more than one
	// declaration where exactly one is required.
	ErrAmbiguousLookup = errors.New("cinder: ambiguous lookup")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("cinder: interpreter is closed")
	// ErrBusy is returned when a fragment is submitted while another one is
	// still being compiled.
	ErrBusy = errors.New("cinder: a compilation is already in progress")
)

// CompilationResult is the outcome of driving the front end once.
type CompilationResult int

const (
	Success CompilationResult = iota
	Failure
)

func (r CompilationResult) String() string {
	if r == Success {
		return "success"
	}
	return "failure"
}

// ResultOf maps an error returned by the interpreter to a CompilationResult.
func ResultOf(err error) CompilationResult {
	if err == nil {
		return Success
	}
	return Failure
}

// CompileError carries the error diagnostics of a rejected fragment.
type CompileError struct {
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	errs := make([]error, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		errs[i] = d
	}
	if err := combineErrors(errs); err != nil {
		return err.Error()
	}
	return "compile error"
}

// LinkError reports a symbol the backend could not resolve.
type LinkError struct {
	Symbol string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("unresolved symbol %q", e.Symbol)
}

// StackFrame is one guest call frame of a RuntimeError.
type StackFrame struct {
	Function string
	Pos      Position
}

// RuntimeError reports a failure while running guest code.
type RuntimeError struct {
	Message   string
	CodeFrame string
	Frames    []StackFrame
	cause     error
}

const (
	runtimeErrorFrameHead = 8
	runtimeErrorFrameTail = 8
)

func (re *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	renderFrame := func(frame StackFrame) {
		if frame.Pos.Line > 0 && frame.Pos.Column > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Function, frame.Pos.Line, frame.Pos.Column)
		} else if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (line %d)", frame.Function, frame.Pos.Line)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}

	if len(re.Frames) <= runtimeErrorFrameHead+runtimeErrorFrameTail {
		for _, frame := range re.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range re.Frames[:runtimeErrorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(re.Frames) - (runtimeErrorFrameHead + runtimeErrorFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range re.Frames[len(re.Frames)-runtimeErrorFrameTail:] {
		renderFrame(frame)
	}

	return b.String()
}

// Unwrap exposes the host error a native function or callback returned.
func (re *RuntimeError) Unwrap() error {
	return re.cause
}
