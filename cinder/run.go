package cinder

import "errors"

var errLastCompileFailed = errors.New("cinder: the last compilation failed")

// runFunction runs the compiled zero-argument function called name. Outside
// syntax-only mode the function is looked up again in the translation unit
// and run under its linkage name.
func (in *Interpreter) runFunction(name string) (GenericValue, error) {
	if in.fe.Diagnostics().HasErrors() {
		return GenericValue{}, errLastCompileFailed
	}
	if in.cfg.SyntaxOnly {
		return GenericValue{}, nil
	}

	fn, ok := in.LookupDecl(name, nil).SingleDecl().(*FuncDecl)
	if !ok || fn.Body == nil {
		in.logger.Error("compiled function not found", "name", name)
		return GenericValue{}, ErrExecutionNotFound
	}
	symbol := Mangle(fn)
	in.logger.Debug("running function", "name", name, "symbol", symbol)
	return in.be.Run(symbol)
}

// RunStaticInitializersOnce runs the initializers of globals that have not
// been initialized yet.
func (in *Interpreter) RunStaticInitializersOnce() error {
	if in.closed {
		return ErrClosed
	}
	if in.cfg.SyntaxOnly {
		return nil
	}
	return in.be.RunStaticInitializersOnce()
}
