package cinder

// Scope maps names to the declarations visible in one declaration context.
// Overloaded functions share a name and occupy several entries.
type Scope struct {
	entries map[string][]Decl
}

func newScope() *Scope {
	return &Scope{entries: make(map[string][]Decl)}
}

func (s *Scope) lookup(name string) []Decl {
	return s.entries[name]
}

func (s *Scope) insert(d Decl) {
	s.entries[d.DeclName()] = append(s.entries[d.DeclName()], d)
}

func (s *Scope) remove(d Decl) {
	name := d.DeclName()
	list := s.entries[name]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i] == d {
			list = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.entries, name)
		return
	}
	s.entries[name] = list
}

// replace swaps old for repl in place, keeping overload order stable.
func (s *Scope) replace(old, repl Decl) bool {
	list := s.entries[old.DeclName()]
	for i, d := range list {
		if d == old {
			list[i] = repl
			return true
		}
	}
	return false
}

// scopeEdit is one reversible symbol-table change recorded by a compile.
type scopeEdit struct {
	table *Scope
	added Decl
	// replaced is set when added took the place of an earlier declaration.
	replaced Decl
	// tuIndex is the length of the translation unit decl list to restore.
	tuIndex int
}

// undoLog records symbol-table edits so a failed compile can be unwound.
type undoLog struct {
	edits []scopeEdit
}

// undoMark is a position in the undo log.
type undoMark int

func (u *undoLog) mark() undoMark { return undoMark(len(u.edits)) }

func (u *undoLog) recordInsert(table *Scope, d Decl) {
	table.insert(d)
	u.edits = append(u.edits, scopeEdit{table: table, added: d, tuIndex: -1})
}

func (u *undoLog) recordReplace(table *Scope, old, repl Decl) {
	if !table.replace(old, repl) {
		u.recordInsert(table, repl)
		return
	}
	u.edits = append(u.edits, scopeEdit{table: table, added: repl, replaced: old, tuIndex: -1})
}

func (u *undoLog) recordTopLevel(tu *TranslationUnit, d Decl) {
	u.edits = append(u.edits, scopeEdit{tuIndex: len(tu.decls)})
	tu.decls = append(tu.decls, d)
}

func (u *undoLog) rollback(tu *TranslationUnit, m undoMark) {
	for i := len(u.edits) - 1; i >= int(m); i-- {
		edit := u.edits[i]
		switch {
		case edit.tuIndex >= 0:
			tu.decls = tu.decls[:edit.tuIndex]
		case edit.replaced != nil:
			edit.table.replace(edit.added, edit.replaced)
		default:
			edit.table.remove(edit.added)
		}
	}
	u.edits = u.edits[:m]
}

// commit forgets edits up to the end of the log; they can no longer be
// unwound.
func (u *undoLog) commit() {
	u.edits = u.edits[:0]
}
