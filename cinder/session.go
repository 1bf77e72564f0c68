package cinder

import (
	"errors"
	"io"
	"log/slog"
)

// unitHooks let a caller reshape a unit around semantic analysis. prepare
// runs on the parsed unit; finalize runs on the checked declarations
// before the transaction is sealed. An error from either rolls the compile
// back.
type unitHooks struct {
	prepare  func(unit *Unit) error
	finalize func(decls []Decl) error
}

// session drives the front end over one fragment at a time and keeps the
// history of committed transactions.
type session struct {
	fe Frontend
	be Backend

	history []*Transaction
	active  []*Transaction

	compiling  bool
	syntaxOnly bool
	printAST   bool
	debugOut   io.Writer

	logger *slog.Logger
}

// Compile parses and checks src. On success the declarations are sealed
// into a new transaction, handed to the backend and any new static
// initializers run. On failure every declaration the compile inserted is
// removed again and the history is unchanged.
func (s *session) Compile(src Source, opts CompilationOptions, hooks unitHooks) (*Transaction, error) {
	if s.compiling {
		return nil, ErrBusy
	}
	s.fe.Diagnostics().reset(src.File, src.display(), opts.MutedWarnings)

	unit, err := s.fe.Parse(src)
	if err != nil {
		s.logger.Debug("parse failed", "file", src.File, "error", err)
		return nil, err
	}
	return s.CompileUnit(unit, src.display(), opts, hooks)
}

// CompileUnit runs the compile pipeline on a unit built without parsing.
func (s *session) CompileUnit(unit *Unit, source string, opts CompilationOptions, hooks unitHooks) (*Transaction, error) {
	if s.compiling {
		return nil, ErrBusy
	}
	s.compiling = true
	tx, err := s.check(unit, source, opts, hooks)
	s.compiling = false
	if err != nil {
		return nil, err
	}

	if opts.Debug || s.printAST {
		s.dumpAST(tx)
	}
	if s.syntaxOnly {
		return tx, nil
	}
	if err := s.be.Emit(tx.decls); err != nil {
		return tx, err
	}
	if err := s.be.RunStaticInitializersOnce(); err != nil {
		return tx, err
	}
	return tx, nil
}

func (s *session) check(unit *Unit, source string, opts CompilationOptions, hooks unitHooks) (*Transaction, error) {
	mark := s.fe.Mark()
	fail := func(err error) (*Transaction, error) {
		s.fe.Rollback(mark)
		s.logger.Debug("compile failed", "error", err)
		return nil, err
	}

	if hooks.prepare != nil {
		if err := hooks.prepare(unit); err != nil {
			return fail(err)
		}
	}
	decls, err := s.fe.Check(unit, opts)
	if err != nil {
		return fail(err)
	}
	if hooks.finalize != nil {
		if err := hooks.finalize(decls); err != nil {
			return fail(err)
		}
	}
	s.fe.Commit()
	return s.seal(decls, source, opts), nil
}

func (s *session) seal(decls []Decl, source string, opts CompilationOptions) *Transaction {
	tx := &Transaction{
		index:  len(s.history),
		decls:  decls,
		source: source,
		opts:   opts,
		parent: s.current(),
	}
	s.history = append(s.history, tx)
	s.logger.Debug("transaction committed", "index", tx.index, "decls", len(decls))
	return tx
}

// pushActive marks tx as the transaction whose code is running until the
// returned function is called.
func (s *session) pushActive(tx *Transaction) func() {
	s.active = append(s.active, tx)
	depth := len(s.active)
	return func() {
		s.active = s.active[:depth-1]
	}
}

// current is the running transaction, or nil when no guest code runs.
func (s *session) current() *Transaction {
	if len(s.active) == 0 {
		return nil
	}
	return s.active[len(s.active)-1]
}

func (s *session) Transactions() []*Transaction {
	return append([]*Transaction(nil), s.history...)
}

func (s *session) LastTransaction() *Transaction {
	if len(s.history) == 0 {
		return nil
	}
	return s.history[len(s.history)-1]
}

// LastTopLevelDecl is the last declaration of the most recent transaction
// that produced any.
func (s *session) LastTopLevelDecl() Decl {
	for i := len(s.history) - 1; i >= 0; i-- {
		if d := s.history[i].LastDecl(); d != nil {
			return d
		}
	}
	return nil
}

func (s *session) dumpAST(tx *Transaction) {
	if s.debugOut == nil {
		return
	}
	for _, d := range tx.decls {
		if _, err := io.WriteString(s.debugOut, RenderDecl(d)); err != nil {
			s.logger.Warn("printing syntax tree failed", "error", err)
			return
		}
	}
}

// isCompileError reports whether err was produced by a rejected fragment
// rather than by running it.
func isCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}
