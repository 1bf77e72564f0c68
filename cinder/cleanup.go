package cinder

// cleanupEntry is a deferred teardown action and the transaction that was
// current when it was registered.
type cleanupEntry struct {
	fn     func(arg any) error
	arg    any
	module string
	tx     *Transaction
}

type cleanupRegistry struct {
	entries []cleanupEntry
}

func (r *cleanupRegistry) register(entry cleanupEntry) int {
	r.entries = append(r.entries, entry)
	return len(r.entries) - 1
}

// run invokes the entries last registered first. The first failure stops
// teardown; the remaining entries are dropped.
func (r *cleanupRegistry) run() error {
	for len(r.entries) > 0 {
		last := len(r.entries) - 1
		entry := r.entries[last]
		r.entries = r.entries[:last]
		if err := entry.fn(entry.arg); err != nil {
			r.entries = nil
			return err
		}
	}
	return nil
}

// RegisterCleanup arranges for fn(arg) to run when the interpreter is
// closed. module is an opaque tag for the caller. The returned handle is
// the registration index.
func (in *Interpreter) RegisterCleanup(fn func(arg any) error, arg any, module string) int {
	tx := in.session.current()
	if tx == nil {
		tx = in.session.LastTransaction()
	}
	return in.cleanups.register(cleanupEntry{fn: fn, arg: arg, module: module, tx: tx})
}

// Close runs the registered cleanups in reverse order and returns the
// first error. Every operation fails with ErrClosed afterwards.
func (in *Interpreter) Close() error {
	if in.closed {
		return ErrClosed
	}
	in.closed = true
	err := in.cleanups.run()
	if err != nil {
		in.logger.Error("cleanup failed", "error", err)
	}
	return err
}
