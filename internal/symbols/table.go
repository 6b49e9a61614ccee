// Package symbols provides interned-string tables for the four separate
// namespaces a compiled spec needs: CDFA state names, terminal token kinds,
// grammar non-terminals, and pattern variables. Interning is scoped to a
// single compiled spec and is frozen once compilation completes; see
// package padd for the concurrency guarantees this buys.
package symbols

import "fmt"

// ID is a stable integer identifier for an interned string. IDs are never
// reused within a Table.
type ID int

// Table interns strings into a single namespace, handing back the same ID
// for the same string on every call.
type Table struct {
	byString map[string]ID
	byID     []string
	frozen   bool
}

// NewTable returns an empty, writable Table.
func NewTable() *Table {
	return &Table{
		byString: make(map[string]ID),
	}
}

// Intern returns the ID for s, allocating a new one if s has not been seen
// before. Panics if the table has been frozen.
func (t *Table) Intern(s string) ID {
	if id, ok := t.byString[s]; ok {
		return id
	}
	if t.frozen {
		panic(fmt.Sprintf("symbols: attempt to intern %q into a frozen table", s))
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, s)
	t.byString[s] = id
	return id
}

// Lookup returns the ID already assigned to s, if any.
func (t *Table) Lookup(s string) (ID, bool) {
	id, ok := t.byString[s]
	return id, ok
}

// String returns the canonical string for id. Panics if id is out of range.
func (t *Table) String(id ID) string {
	return t.byID[id]
}

// Len returns the number of interned strings.
func (t *Table) Len() int {
	return len(t.byID)
}

// Freeze prevents any further interning. Compiled specs freeze all of their
// tables at the end of compilation so they may be shared read-only across
// concurrent formatting jobs.
func (t *Table) Freeze() {
	t.frozen = true
}

// Frozen reports whether the table has been frozen.
func (t *Table) Frozen() bool {
	return t.frozen
}

// Namespaces groups the four separate interning namespaces a compiled spec
// needs. Each is independent: the same string may have different IDs (or no
// ID at all) across namespaces.
type Namespaces struct {
	States       *Table
	Terminals    *Table
	NonTerminals *Table
	Variables    *Table
}

// NewNamespaces returns a fresh, writable set of namespaces.
func NewNamespaces() *Namespaces {
	return &Namespaces{
		States:       NewTable(),
		Terminals:    NewTable(),
		NonTerminals: NewTable(),
		Variables:    NewTable(),
	}
}

// Freeze freezes every namespace table. Called once at the end of spec
// compilation.
func (n *Namespaces) Freeze() {
	n.States.Freeze()
	n.Terminals.Freeze()
	n.NonTerminals.Freeze()
	n.Variables.Freeze()
}
