package cinder

// ValuePrinting selects whether a captured value is written to the
// interpreter's output.
type ValuePrinting int

const (
	ValuePrintingDisabled ValuePrinting = iota
	ValuePrintingEnabled
	// ValuePrintingAuto prints unless the fragment ends with `;` after its
	// trailing expression.
	ValuePrintingAuto
)

func (vp ValuePrinting) String() string {
	switch vp {
	case ValuePrintingEnabled:
		return "enabled"
	case ValuePrintingAuto:
		return "auto"
	default:
		return "disabled"
	}
}

// CompilationOptions configures one compile of the session.
type CompilationOptions struct {
	// DeclarationExtraction hoists declarations written in a wrapped
	// fragment into the translation unit.
	DeclarationExtraction bool
	ValuePrinting         ValuePrinting
	// ResultEvaluation asks the wrapper synthesizer to capture the value
	// of a trailing expression.
	ResultEvaluation bool
	// DynamicScoping turns unresolved names into dynamic lookups.
	DynamicScoping bool
	// Debug prints the syntax tree of each committed transaction.
	Debug         bool
	MutedWarnings []string
}

// Source is the text handed to the front end.
type Source struct {
	Text string
	// Display is shown in code frames when it differs from Text, as for
	// wrapped fragments.
	Display    string
	File       string
	LineOffset int
}

func (s Source) display() string {
	if s.Display != "" {
		return s.Display
	}
	return s.Text
}
