package cinder

// Transaction is the sealed result of one successful compile: the
// declarations it added to the translation unit, in order. Transactions
// are owned by the session and never change once committed.
type Transaction struct {
	index  int
	decls  []Decl
	source string
	opts   CompilationOptions
	parent *Transaction
}

// Index is the position of the transaction in the session history.
func (tx *Transaction) Index() int { return tx.index }

func (tx *Transaction) Decls() []Decl {
	return append([]Decl(nil), tx.decls...)
}

func (tx *Transaction) FirstDecl() Decl {
	if len(tx.decls) == 0 {
		return nil
	}
	return tx.decls[0]
}

func (tx *Transaction) LastDecl() Decl {
	if len(tx.decls) == 0 {
		return nil
	}
	return tx.decls[len(tx.decls)-1]
}

// Source is the text that produced the transaction as the user wrote it.
func (tx *Transaction) Source() string { return tx.source }

func (tx *Transaction) Options() CompilationOptions { return tx.opts }

// Parent is the transaction whose code was running when this one was
// compiled, or nil for a compile started by the host.
func (tx *Transaction) Parent() *Transaction { return tx.parent }
