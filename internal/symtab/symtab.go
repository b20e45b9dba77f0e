// Package symtab implements the compiler's symbol table: the mapping from
// an identifier to its last-known Datum, with the pointer/vector queries
// the object-table pass and expression parser both need.
//
// The table is scope-agnostic in the sense the specification describes: B
// has program scope (globals, hoisted ahead of time) and one function scope
// at a time, so a single flat map with define/remove is enough — there is
// no nested block scoping to manage.
package symtab

import (
	"strings"

	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	"bcc/internal/quad"
)

// Table is a mapping from identifier to its currently-known Datum, mirroring
// the teacher's environment map but keyed by name-to-Datum rather than
// name-to-runtime-value.
type Table struct {
	entries map[string]quad.Datum
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{entries: make(map[string]quad.Datum)}
}

// Define idempotently inserts or overwrites name's binding.
func (t *Table) Define(name string, d quad.Datum) {
	t.entries[name] = d
}

// Remove deletes name's binding, used for parameter teardown at function
// exit. Removing an absent name is a no-op.
func (t *Table) Remove(name string) {
	delete(t.entries, name)
}

// Lookup returns name's bound Datum. An undefined name is a compile error,
// never a silent default.
func (t *Table) Lookup(name string) quad.Datum {
	d, ok := t.entries[name]
	if !ok {
		compileerr.Raise(compileerr.UndefinedSymbol, compileerr.Location{}, "undefined symbol %s", name)
	}
	return d
}

// IsDefined reports whether name has a current binding.
func (t *Table) IsDefined(name string) bool {
	_, ok := t.entries[name]
	return ok
}

// IsPointer reports whether name's bound datum is a pointer: its spelling
// begins with '&', or its type tag is word and its spelling looks like a
// resolved address rather than the generic placeholder.
func (t *Table) IsPointer(name string) bool {
	d, ok := t.entries[name]
	if !ok {
		return false
	}
	if strings.HasPrefix(d.Value, "&") {
		return true
	}
	return d.Type == catalog.Word && d.Value != "" && d.Value != "__WORD__"
}

// PointerTarget returns the Datum a pointer lvalue refers to. It requires
// name to currently be bound to a pointer; callers that have already
// checked IsPointer can rely on this not raising.
func (t *Table) PointerTarget(name string) quad.Datum {
	d := t.Lookup(name)
	if !t.IsPointer(name) {
		compileerr.Raise(compileerr.TypeMismatch, compileerr.Location{}, "%s is not a pointer", name)
	}
	return d
}

// Snapshot returns a shallow copy of the table's current bindings. The
// invocation hands it to the object-table pass as that pass's global
// scope once the ITA build is done, so later changes to the table do not
// reach the copy.
func (t *Table) Snapshot() map[string]quad.Datum {
	out := make(map[string]quad.Datum, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
