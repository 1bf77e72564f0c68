package cinder

import (
	"log/slog"
	"slices"
)

// atexitSymbol is the native the backend calls to register the destructor
// of a global object when its initializer runs.
const atexitSymbol = "__cinder_atexit"

// jit is the program image: compiled functions and global storage keyed by
// linkage name, plus natives added by the host.
type jit struct {
	functions map[string]*FuncDecl
	natives   map[string]NativeFunc
	globals   map[string]*GenericValue
	pending   []*VarDecl
	lazy      LazyFunctionCreator

	stepQuota      int
	recursionLimit int

	// dynamic evaluates a DynamicExpr; it is installed by the interpreter.
	dynamic func(expr *DynamicExpr, exec *execution) (GenericValue, error)

	logger *slog.Logger
}

func newJIT(stepQuota, recursionLimit int, logger *slog.Logger) *jit {
	return &jit{
		functions:      make(map[string]*FuncDecl),
		natives:        make(map[string]NativeFunc),
		globals:        make(map[string]*GenericValue),
		stepQuota:      stepQuota,
		recursionLimit: recursionLimit,
		logger:         logger,
	}
}

// Emit adds function definitions and global storage of decls to the image.
func (j *jit) Emit(decls []Decl) error {
	for _, d := range decls {
		j.emitDecl(d)
	}
	return nil
}

func (j *jit) emitDecl(d Decl) {
	switch decl := d.(type) {
	case *FuncDecl:
		j.emitFunction(decl)
	case *VarDecl:
		if !decl.Global || !decl.IsDefinition() {
			return
		}
		name := Mangle(decl)
		if _, exists := j.globals[name]; exists {
			return
		}
		j.globals[name] = &GenericValue{}
		j.pending = append(j.pending, decl)
	case *ClassDecl:
		for _, method := range decl.Methods {
			j.emitFunction(method)
		}
		if decl.Destructor != nil {
			j.emitFunction(decl.Destructor)
		}
	case *NamespaceDecl:
		for _, member := range decl.Decls {
			j.emitDecl(member)
		}
	}
}

func (j *jit) emitFunction(fn *FuncDecl) {
	if fn.Body == nil {
		return
	}
	name := Mangle(fn)
	j.functions[name] = fn
	j.logger.Debug("emitted function", "symbol", name)
}

func (j *jit) AddSymbol(name string, fn NativeFunc) {
	j.natives[name] = fn
}

func (j *jit) InstallLazyFunctionCreator(fn LazyFunctionCreator) {
	j.lazy = fn
}

func (j *jit) Symbols() []string {
	names := make([]string, 0, len(j.functions)+len(j.natives)+len(j.globals))
	for name := range j.functions {
		names = append(names, name)
	}
	for name := range j.natives {
		names = append(names, name)
	}
	for name := range j.globals {
		names = append(names, name)
	}
	slices.Sort(names)
	return slices.Compact(names)
}

// resolveFunction finds code for a linkage name: compiled functions first,
// then natives, then the lazy function creator.
func (j *jit) resolveFunction(name string) (*FuncDecl, NativeFunc, error) {
	if fn, ok := j.functions[name]; ok {
		return fn, nil, nil
	}
	if native, ok := j.natives[name]; ok {
		return nil, native, nil
	}
	if j.lazy != nil {
		if native, ok := j.lazy(name); ok && native != nil {
			j.natives[name] = native
			return nil, native, nil
		}
	}
	return nil, nil, &LinkError{Symbol: name}
}

// Run calls the zero-argument function with the given linkage name.
func (j *jit) Run(name string) (GenericValue, error) {
	fn, native, err := j.resolveFunction(name)
	if err != nil {
		return GenericValue{}, err
	}
	if native != nil {
		return native(nil)
	}
	if len(fn.Params) > 0 {
		return GenericValue{}, &LinkError{Symbol: name}
	}
	exec := j.newExecution()
	return exec.callFunction(fn, nil, nil, Position{})
}

// RunStaticInitializersOnce initializes globals emitted since the last
// call. Each initializer runs exactly once even when it fails.
func (j *jit) RunStaticInitializersOnce() error {
	pending := j.pending
	j.pending = nil

	var errs []error
	for _, v := range pending {
		if err := j.initializeGlobal(v); err != nil {
			errs = append(errs, err)
		}
	}
	return combineErrors(errs)
}

func (j *jit) initializeGlobal(v *VarDecl) error {
	slot := j.globals[Mangle(v)]
	exec := j.newExecution()
	if err := exec.enter(nil, "initializer of "+QualifiedName(v), Position{}, nil); err != nil {
		return err
	}
	defer exec.leave()

	var (
		gv  GenericValue
		err error
	)
	if v.Init != nil {
		gv, err = exec.eval(v.Init)
		gv = copyGeneric(gv, v.Type)
	} else {
		gv, err = exec.zeroValue(v.Type)
	}
	if err != nil {
		return err
	}
	*slot = gv

	if v.Type.Kind == KindClass && v.Type.Class.Destructor != nil {
		return j.registerDestructor(v, slot)
	}
	return nil
}

func (j *jit) registerDestructor(v *VarDecl, slot *GenericValue) error {
	atexit, ok := j.natives[atexitSymbol]
	if !ok {
		return &LinkError{Symbol: atexitSymbol}
	}
	dtor := v.Type.Class.Destructor
	cleanup := func() error {
		obj, _ := slot.PtrVal.(*Object)
		if obj == nil {
			return nil
		}
		exec := j.newExecution()
		_, err := exec.callFunction(dtor, obj, nil, Position{})
		return err
	}
	_, err := atexit([]GenericValue{{PtrVal: cleanup}, {PtrVal: slot.PtrVal, StrVal: Mangle(v)}})
	return err
}
