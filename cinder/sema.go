package cinder

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
)

// frontend parses fragments and checks them against one persistent
// translation unit.
type frontend struct {
	tu       *TranslationUnit
	diags    Diagnostics
	undo     undoLog
	contexts []DeclContext

	includePaths []string
	includeStack []string
	readFile     func(string) ([]byte, error)

	// dynamic is set only while a compile with DynamicScoping runs.
	dynamic       bool
	placeholderID int

	logger *slog.Logger
}

func newFrontend(includePaths []string, readFile func(string) ([]byte, error), logger *slog.Logger) *frontend {
	if readFile == nil {
		readFile = os.ReadFile
	}
	return &frontend{
		tu:           newTranslationUnit(),
		includePaths: append([]string(nil), includePaths...),
		readFile:     readFile,
		logger:       logger,
	}
}

func (fe *frontend) TranslationUnit() *TranslationUnit { return fe.tu }

func (fe *frontend) Diagnostics() *Diagnostics { return &fe.diags }

func (fe *frontend) Mark() undoMark { return fe.undo.mark() }

func (fe *frontend) Rollback(m undoMark) { fe.undo.rollback(fe.tu, m) }

func (fe *frontend) Commit() { fe.undo.commit() }

// PushContext makes dc the context used to resolve names of wrapped
// fragments until the returned function runs.
func (fe *frontend) PushContext(dc DeclContext) func() {
	fe.contexts = append(fe.contexts, dc)
	return func() {
		fe.contexts = fe.contexts[:len(fe.contexts)-1]
	}
}

func (fe *frontend) currentContext() DeclContext {
	if len(fe.contexts) == 0 {
		return fe.tu
	}
	return fe.contexts[len(fe.contexts)-1]
}

func (fe *frontend) AddIncludePath(dir string) {
	fe.includePaths = append(fe.includePaths, dir)
}

func (fe *frontend) IncludePaths() []string {
	return append([]string(nil), fe.includePaths...)
}

// Parse turns source text into an unchecked unit.
func (fe *frontend) Parse(src Source) (*Unit, error) {
	p := newParser(src.Text, src.LineOffset, src.display(), src.File)
	unit, errs := p.ParseUnit()
	if len(errs) == 0 {
		return unit, nil
	}
	for _, err := range errs {
		var pe *parseError
		if errors.As(err, &pe) {
			fe.diags.errorf(pe.pos, "%s", pe.msg)
			continue
		}
		fe.diags.errorf(Position{}, "%s", err.Error())
	}
	return nil, fe.diags.asError()
}

// Check runs semantic analysis on unit, inserting its declarations into the
// translation unit. Insertions are recorded for Rollback.
func (fe *frontend) Check(unit *Unit, opts CompilationOptions) ([]Decl, error) {
	fe.dynamic = opts.DynamicScoping
	defer func() { fe.dynamic = false }()

	var out []Decl
	for _, d := range unit.Decls {
		for _, checked := range fe.checkDecl(d, fe.tu) {
			fe.undo.recordTopLevel(fe.tu, checked)
			out = append(out, checked)
		}
	}
	if err := fe.diags.asError(); err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceBody swaps the statements of a function that is still being
// compiled and sets its result type.
func (fe *frontend) ReplaceBody(fn *FuncDecl, stmts []Stmt, result Type) error {
	if fn.Body == nil {
		return fmt.Errorf("cannot replace the body of %s: it has no definition", fn.Name)
	}
	fn.Body = &CompoundStmt{Stmts: stmts, position: fn.Body.position}
	fn.Result = result
	return nil
}

func (fe *frontend) checkDecl(d Decl, dc DeclContext) []Decl {
	switch decl := d.(type) {
	case *DirectiveDecl:
		return fe.checkDirective(decl, dc)
	case *VarDecl:
		fe.checkGlobalVar(decl, dc)
	case *FuncDecl:
		fe.checkFunction(decl, dc)
	case *ClassDecl:
		fe.checkClass(decl, dc)
	case *NamespaceDecl:
		fe.checkNamespace(decl, dc)
	default:
		fe.diags.errorf(d.Pos(), "unsupported declaration")
	}
	return []Decl{d}
}

func (fe *frontend) checkGlobalVar(v *VarDecl, dc DeclContext) {
	v.setParent(dc)
	v.Global = true

	fc := fe.initChecker(dc)
	typ, isAuto := fe.resolveTypeRef(v.TypeRef, dc, true)
	switch {
	case isAuto:
		if v.Init == nil {
			fe.diags.errorf(v.Pos(), "declaration of variable '%s' with deduced type 'auto' requires an initializer", v.Name)
			return
		}
		v.Init = fc.fullExpr(v.Init, TypeInvalid)
		v.Type = v.Init.Type()
		if !fc.deducible(v.Name, v.Init) {
			return
		}
	case !typ.IsValid():
		return
	case typ.IsVoid():
		fe.diags.errorf(v.Pos(), "variable has incomplete type 'void'")
		return
	default:
		v.Type = typ
		if v.Init != nil {
			v.Init = fc.fullExpr(v.Init, v.Type)
		}
	}

	table := dc.scope()
	for _, prior := range table.lookup(v.Name) {
		pv, ok := prior.(*VarDecl)
		if !ok {
			fe.diags.errorf(v.Pos(), "redefinition of '%s' as different kind of symbol", v.Name)
			return
		}
		if !pv.Type.Equal(v.Type) {
			fe.diags.errorf(v.Pos(), "redefinition of '%s' with a different type: '%s' vs '%s'", v.Name, v.Type, pv.Type)
			return
		}
		if pv.IsDefinition() && v.IsDefinition() {
			fe.diags.errorf(v.Pos(), "redefinition of '%s'", v.Name)
			return
		}
		if v.IsDefinition() {
			v.ExternC = v.ExternC || pv.ExternC
			fe.undo.recordReplace(table, pv, v)
		}
		return
	}
	fe.undo.recordInsert(table, v)
}

func (fe *frontend) checkFunction(fn *FuncDecl, dc DeclContext) {
	fn.setParent(dc)
	if !fe.resolveSignature(fn, dc) {
		return
	}
	if fn.Wrapper {
		if ctx := fe.currentContext(); ctx != fe.tu {
			fn.lookupContext = ctx
		}
	}

	table := dc.scope()
	var redeclared *FuncDecl
	for _, prior := range table.lookup(fn.Name) {
		pf, ok := prior.(*FuncDecl)
		if !ok {
			fe.diags.errorf(fn.Pos(), "redefinition of '%s' as different kind of symbol", fn.Name)
			return
		}
		if !sameParams(pf, fn) {
			if pf.ExternC || fn.ExternC {
				fe.diags.errorf(fn.Pos(), "conflicting types for '%s'", fn.Name)
				return
			}
			continue
		}
		if !pf.Result.Equal(fn.Result) {
			fe.diags.errorf(fn.Pos(), "functions that differ only in their return type cannot be overloaded")
			return
		}
		if pf.Body != nil && fn.Body != nil {
			fe.diags.errorf(fn.Pos(), "redefinition of '%s'", fn.Name)
			return
		}
		redeclared = pf
	}

	switch {
	case redeclared == nil:
		fe.undo.recordInsert(table, fn)
	case fn.Body != nil:
		fn.ExternC = fn.ExternC || redeclared.ExternC
		fe.undo.recordReplace(table, redeclared, fn)
	}

	if fn.Body != nil {
		fe.checkFunctionBody(fn)
	}
}

func sameParams(a, b *FuncDecl) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !a.Params[i].Type.Equal(b.Params[i].Type) {
			return false
		}
	}
	return true
}

// resolveSignature resolves parameter and result types and builds the
// parameter scope. dc is where type names are looked up.
func (fe *frontend) resolveSignature(fn *FuncDecl, dc DeclContext) bool {
	ok := true
	fn.table = newScope()
	for _, param := range fn.Params {
		param.setParent(fn)
		typ, isAuto := fe.resolveTypeRef(param.TypeRef, dc, false)
		switch {
		case isAuto || !typ.IsValid():
			ok = false
			continue
		case typ.IsVoid():
			fe.diags.errorf(param.Pos(), "parameter has incomplete type 'void'")
			ok = false
			continue
		}
		param.Type = typ
		if param.Name == "" {
			continue
		}
		if len(fn.table.lookup(param.Name)) > 0 {
			fe.diags.errorf(param.Pos(), "redefinition of parameter '%s'", param.Name)
			ok = false
			continue
		}
		fn.table.insert(param)
	}

	if fn.ResultRef == nil {
		fn.Result = TypeVoid
		return ok
	}
	typ, isAuto := fe.resolveTypeRef(fn.ResultRef, dc, false)
	if isAuto || !typ.IsValid() {
		return false
	}
	fn.Result = typ
	return ok
}

// resolveTypeRef maps a spelled type to a Type. The second result is true
// for `auto` when allowAuto is set.
func (fe *frontend) resolveTypeRef(ref *TypeRef, dc DeclContext, allowAuto bool) (Type, bool) {
	if ref == nil {
		return TypeVoid, false
	}
	if len(ref.Qualifier) == 0 {
		switch ref.Name {
		case "void":
			return TypeVoid, false
		case "bool":
			return TypeBool, false
		case "int":
			return TypeInt, false
		case "double":
			return TypeDouble, false
		case "string":
			return TypeString, false
		case "auto":
			if !allowAuto {
				fe.diags.errorf(ref.Pos(), "'auto' not allowed here")
				return TypeInvalid, true
			}
			return TypeInvalid, true
		}
	}

	decls, msg := lookupQualified(fe.tu, dc, ref.Qualifier, ref.Name, false)
	if len(decls) == 0 {
		if msg == "" {
			msg = fmt.Sprintf("unknown type name '%s'", ref)
		}
		fe.diags.errorf(ref.Pos(), "%s", msg)
		return TypeInvalid, false
	}
	class, ok := decls[0].(*ClassDecl)
	if !ok || len(decls) != 1 {
		fe.diags.errorf(ref.Pos(), "'%s' does not name a type", ref)
		return TypeInvalid, false
	}
	return ClassType(class), false
}

func (fe *frontend) checkClass(c *ClassDecl, dc DeclContext) {
	c.setParent(dc)
	table := dc.scope()
	if len(table.lookup(c.Name)) > 0 {
		fe.diags.errorf(c.Pos(), "redefinition of '%s'", c.Name)
		return
	}
	fe.undo.recordInsert(table, c)
	c.table = newScope()

	for _, field := range c.Fields {
		field.setParent(c)
		typ, isAuto := fe.resolveTypeRef(field.TypeRef, c, false)
		switch {
		case isAuto || !typ.IsValid():
			continue
		case typ.IsVoid():
			fe.diags.errorf(field.Pos(), "field has incomplete type 'void'")
			continue
		case typ.Kind == KindClass && !typ.Class.complete:
			fe.diags.errorf(field.Pos(), "field has incomplete type '%s'", typ)
			continue
		}
		field.Type = typ
		if len(c.table.lookup(field.Name)) > 0 {
			fe.diags.errorf(field.Pos(), "duplicate member '%s'", field.Name)
			continue
		}
		c.table.insert(field)
	}

	for _, method := range c.Methods {
		method.setParent(c)
		if !fe.resolveSignature(method, c) {
			continue
		}
		clash := false
		for _, prior := range c.table.lookup(method.Name) {
			pm, ok := prior.(*FuncDecl)
			if !ok {
				fe.diags.errorf(method.Pos(), "duplicate member '%s'", method.Name)
				clash = true
				break
			}
			if sameParams(pm, method) {
				fe.diags.errorf(method.Pos(), "class member cannot be redeclared")
				clash = true
				break
			}
		}
		if !clash {
			c.table.insert(method)
		}
	}
	if c.Destructor != nil {
		c.Destructor.setParent(c)
		c.Destructor.Result = TypeVoid
		c.Destructor.table = newScope()
		c.table.insert(c.Destructor)
	}
	c.complete = true

	fc := fe.initChecker(c)
	for _, field := range c.Fields {
		if field.Init != nil && field.Type.IsValid() {
			field.Init = fc.fullExpr(field.Init, field.Type)
		}
	}
	for _, method := range c.Methods {
		if method.Body != nil {
			fe.checkFunctionBody(method)
		}
	}
	if c.Destructor != nil {
		fe.checkFunctionBody(c.Destructor)
	}
}

func (fe *frontend) checkNamespace(ns *NamespaceDecl, dc DeclContext) {
	ns.setParent(dc)
	if _, ok := dc.(*ClassDecl); ok {
		fe.diags.errorf(ns.Pos(), "namespaces cannot be declared inside a class")
		return
	}
	table := dc.scope()
	prior := table.lookup(ns.Name)
	switch {
	case len(prior) == 0:
		fe.undo.recordInsert(table, ns)
	case len(prior) == 1:
		orig, ok := prior[0].(*NamespaceDecl)
		if !ok {
			fe.diags.errorf(ns.Pos(), "redefinition of '%s' as different kind of symbol", ns.Name)
			return
		}
		for orig.Original != nil {
			orig = orig.Original
		}
		ns.Original = orig
	default:
		fe.diags.errorf(ns.Pos(), "redefinition of '%s' as different kind of symbol", ns.Name)
		return
	}

	var members []Decl
	for _, d := range ns.Decls {
		members = append(members, fe.checkDecl(d, ns)...)
	}
	ns.Decls = members
}

func (fe *frontend) checkDirective(d *DirectiveDecl, dc DeclContext) []Decl {
	switch d.Kind {
	case "pragma":
		fe.logger.Debug("ignoring pragma", "pragma", d.Arg)
		return nil
	case "include":
	default:
		fe.diags.errorf(d.Pos(), "invalid preprocessing directive '#%s'", d.Kind)
		return nil
	}

	if d.Arg == "" {
		fe.diags.errorf(d.Pos(), "#include expects \"FILENAME\"")
		return nil
	}
	path, data, err := fe.findInclude(d.Arg)
	if err != nil {
		fe.diags.errorf(d.Pos(), "'%s' file not found", d.Arg)
		return nil
	}
	if slices.Contains(fe.includeStack, path) {
		fe.diags.errorf(d.Pos(), "recursive inclusion of '%s'", d.Arg)
		return nil
	}
	fe.logger.Debug("including file", "path", path)

	text := string(data)
	restore := fe.diags.withSource(path, text)
	defer restore()

	unit, err := fe.Parse(Source{Text: text, File: path})
	if err != nil {
		return nil
	}

	fe.includeStack = append(fe.includeStack, path)
	defer func() { fe.includeStack = fe.includeStack[:len(fe.includeStack)-1] }()

	var out []Decl
	for _, decl := range unit.Decls {
		out = append(out, fe.checkDecl(decl, dc)...)
	}
	return out
}

// findInclude searches the directory of the including file first, then
// the configured include paths.
func (fe *frontend) findInclude(name string) (string, []byte, error) {
	var candidates []string
	if filepath.IsAbs(name) {
		candidates = append(candidates, name)
	} else {
		if n := len(fe.includeStack); n > 0 {
			candidates = append(candidates, filepath.Join(filepath.Dir(fe.includeStack[n-1]), name))
		} else {
			candidates = append(candidates, name)
		}
		for _, dir := range fe.includePaths {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}

	var lastErr error
	for _, candidate := range candidates {
		data, err := fe.readFile(candidate)
		if err == nil {
			return filepath.Clean(candidate), data, nil
		}
		lastErr = err
	}
	return "", nil, lastErr
}

func (fe *frontend) nextPlaceholderID() int {
	fe.placeholderID++
	return fe.placeholderID
}
