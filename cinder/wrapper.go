package cinder

import (
	"fmt"
	"strings"
)

// wrapInput places a fragment inside a zero-argument function. The
// trailing `;` terminates an expression written without one; when the user
// did write one it becomes an empty statement, which marks the value as
// not to be printed.
func wrapInput(input, name string) string {
	var b strings.Builder
	b.Grow(len(input) + len(name) + 16)
	b.WriteString("void ")
	b.WriteString(name)
	b.WriteString("() {\n")
	b.WriteString(input)
	b.WriteString("\n;\n}")
	return b.String()
}

// wrapper tracks one synthesized function through compilation.
type wrapper struct {
	name string
	fn   *FuncDecl

	// result is the captured type of the trailing expression; invalid
	// when nothing was captured.
	result Type
	// suppressed is set when the user ended the fragment with `;`.
	suppressed bool

	// hoisted holds declarations moved to the translation unit; deduced
	// lists the variables whose initializer was kept only to deduce `auto`.
	hoisted []Decl
	deduced []*VarDecl
}

func newWrapper(name string) *wrapper {
	return &wrapper{name: name, result: TypeInvalid}
}

// bind locates the wrapper function in a parsed unit.
func (w *wrapper) bind(unit *Unit) error {
	for _, d := range unit.Decls {
		if fn, ok := d.(*FuncDecl); ok && fn.Name == w.name && fn.Body != nil {
			fn.Wrapper = true
			w.fn = fn
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrExecutionNotFound, w.name)
}

// extractDeclarations hoists the declarations written at the top of the
// wrapper body into the unit, just before the wrapper. Variables keep their
// place in the statement order: the declaration moves, its initializer
// stays behind as an assignment.
func (w *wrapper) extractDeclarations(unit *Unit) {
	var body []Stmt
	for _, stmt := range w.fn.Body.Stmts {
		ds, ok := stmt.(*DeclStmt)
		if !ok {
			body = append(body, stmt)
			continue
		}
		for _, d := range ds.Decls {
			v, ok := d.(*VarDecl)
			if !ok || v.Init == nil || v.Storage == StorageExtern {
				w.hoisted = append(w.hoisted, d)
				continue
			}
			init := v.Init
			if v.TypeRef != nil && v.TypeRef.Name == "auto" && len(v.TypeRef.Qualifier) == 0 {
				v.Init = cloneExpr(init)
				w.deduced = append(w.deduced, v)
			} else {
				v.Init = nil
			}
			w.hoisted = append(w.hoisted, v)
			body = append(body, &ExprStmt{
				X: &AssignExpr{
					exprBase: at(v.Pos()),
					Op:       tokenAssign,
					Target:   &Ident{exprBase: at(v.Pos()), Name: v.Name, Global: true},
					Value:    init,
				},
				Synthesized: true,
				position:    v.Pos(),
			})
		}
	}
	if len(w.hoisted) == 0 {
		return
	}
	w.fn.Body.Stmts = body

	decls := make([]Decl, 0, len(unit.Decls)+len(w.hoisted))
	for _, d := range unit.Decls {
		if d == Decl(w.fn) {
			decls = append(decls, w.hoisted...)
		}
		decls = append(decls, d)
	}
	unit.Decls = decls
}

// dropDeducedInitializers removes the initializers that were only needed to
// deduce `auto`; the wrapper body performs the initialization.
func (w *wrapper) dropDeducedInitializers() {
	for _, v := range w.deduced {
		v.Init = nil
	}
}

// capture turns the trailing expression statement of the checked body into
// a return of its value and records its type.
func (w *wrapper) capture(fe Frontend) error {
	stmts := w.fn.Body.Stmts
	end := len(stmts)
	for end > 0 {
		if _, ok := stmts[end-1].(*NullStmt); !ok {
			break
		}
		end--
	}
	w.suppressed = end < len(stmts)
	if end == 0 {
		return nil
	}
	es, ok := stmts[end-1].(*ExprStmt)
	if !ok || es.Synthesized {
		return nil
	}

	t := es.X.Type()
	w.result = t
	if t.IsVoid() || !t.IsValid() {
		return nil
	}
	spliced := make([]Stmt, 0, end)
	spliced = append(spliced, stmts[:end-1]...)
	spliced = append(spliced, &ReturnStmt{Result: es.X, position: es.Pos()})
	return fe.ReplaceBody(w.fn, spliced, t)
}

// shouldPrint applies the value printing policy to a captured value.
func shouldPrint(mode ValuePrinting, suppressed bool) bool {
	switch mode {
	case ValuePrintingEnabled:
		return true
	case ValuePrintingAuto:
		return !suppressed
	default:
		return false
	}
}
