package cinder

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const preludeSource = `
void print(int v);
void print(double v);
void print(bool v);
void print(string v);
void println();
void println(int v);
void println(double v);
void println(bool v);
void println(string v);
string to_string(int v);
string to_string(double v);
string to_string(bool v);
int len(string s);
double sqrt(double x);

namespace cinder {
bool declare(string code);
bool process(string code);
}
`

// pureBuiltins have no effect besides their result.
var pureBuiltins = map[string]bool{
	"to_string": true,
	"len":       true,
	"sqrt":      true,
}

// installPrelude declares the builtins in the translation unit and provides
// their code as natives. The prelude is not part of the history.
func (in *Interpreter) installPrelude() error {
	in.fe.Diagnostics().reset("<prelude>", preludeSource, nil)
	unit, err := in.fe.Parse(Source{Text: preludeSource, File: "<prelude>"})
	if err != nil {
		return err
	}
	decls, err := in.fe.Check(unit, CompilationOptions{})
	if err != nil {
		return err
	}
	in.fe.Commit()

	natives := in.builtinNatives()
	var install func(ds []Decl) error
	install = func(ds []Decl) error {
		for _, d := range ds {
			switch decl := d.(type) {
			case *NamespaceDecl:
				if err := install(decl.Decls); err != nil {
					return err
				}
			case *FuncDecl:
				key := builtinKey(decl)
				native, ok := natives[key]
				if !ok {
					return fmt.Errorf("no native for builtin %s", key)
				}
				decl.Pure = pureBuiltins[decl.Name]
				in.be.AddSymbol(Mangle(decl), native)
			}
		}
		return nil
	}
	if err := install(decls); err != nil {
		return err
	}

	in.be.AddSymbol(atexitSymbol, in.atexit)
	return nil
}

// builtinKey renders a signature such as `print(int)`.
func builtinKey(fn *FuncDecl) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Type.String()
	}
	return QualifiedName(fn) + "(" + strings.Join(params, ",") + ")"
}

// builtinText renders a builtin argument the way print shows it: strings
// without quotes.
func builtinText(gv GenericValue, t Type) string {
	if t.Kind == KindString {
		return gv.StrVal
	}
	return formatGeneric(gv, t, 0)
}

func (in *Interpreter) builtinNatives() map[string]NativeFunc {
	natives := make(map[string]NativeFunc)
	printer := func(t Type, newline bool) NativeFunc {
		return func(args []GenericValue) (GenericValue, error) {
			text := builtinText(args[0], t)
			if newline {
				text += "\n"
			}
			_, err := io.WriteString(in.cfg.Stdout, text)
			return GenericValue{}, err
		}
	}
	for _, t := range []Type{TypeInt, TypeDouble, TypeBool, TypeString} {
		natives["print("+t.String()+")"] = printer(t, false)
		natives["println("+t.String()+")"] = printer(t, true)
		if t.Kind != KindString {
			natives["to_string("+t.String()+")"] = func(args []GenericValue) (GenericValue, error) {
				return GenericValue{StrVal: builtinText(args[0], t)}, nil
			}
		}
	}
	natives["println()"] = func([]GenericValue) (GenericValue, error) {
		_, err := io.WriteString(in.cfg.Stdout, "\n")
		return GenericValue{}, err
	}
	natives["len(string)"] = func(args []GenericValue) (GenericValue, error) {
		return GenericValue{IntVal: int64(len(args[0].StrVal))}, nil
	}
	natives["sqrt(double)"] = func(args []GenericValue) (GenericValue, error) {
		return GenericValue{FloatVal: math.Sqrt(args[0].FloatVal)}, nil
	}
	natives["cinder::declare(string)"] = func(args []GenericValue) (GenericValue, error) {
		_, err := in.Declare(args[0].StrVal)
		return in.nestedResult(err), nil
	}
	natives["cinder::process(string)"] = func(args []GenericValue) (GenericValue, error) {
		_, err := in.ProcessLine(args[0].StrVal)
		return in.nestedResult(err), nil
	}
	return natives
}

// nestedResult reports a compile requested by guest code as a bool and
// shows its error on Stderr.
func (in *Interpreter) nestedResult(err error) GenericValue {
	if err != nil {
		fmt.Fprintln(in.cfg.Stderr, err)
		return boolGeneric(false)
	}
	return boolGeneric(true)
}

// atexit registers the destructor of a global object as a cleanup. The
// first argument carries the call, the second the object and its symbol.
func (in *Interpreter) atexit(args []GenericValue) (GenericValue, error) {
	if len(args) != 2 {
		return GenericValue{}, fmt.Errorf("%s expects 2 arguments, got %d", atexitSymbol, len(args))
	}
	call, ok := args[0].PtrVal.(func() error)
	if !ok {
		return GenericValue{}, fmt.Errorf("%s: invalid destructor", atexitSymbol)
	}
	in.RegisterCleanup(func(any) error { return call() }, args[1].PtrVal, args[1].StrVal)
	return GenericValue{}, nil
}
