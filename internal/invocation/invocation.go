// Package invocation ties the middle-end stages into one compilation:
// it owns the per-invocation symbol table, mirrors the role the
// teacher's internal/compiler.StmtCompiler plays as the thing holding a
// single compilation's mutable state, and attaches a correlation id to
// every error it returns so a caller driving many invocations (see
// cmd/bcc's concurrent batch compile) can tell which translation unit an
// error came from.
package invocation

import (
	"fmt"

	"github.com/google/uuid"

	"bcc/internal/ast"
	"bcc/internal/emit"
	"bcc/internal/ita"
	"bcc/internal/object"
	"bcc/internal/quad"
	"bcc/internal/runtimecatalog"
	"bcc/internal/symtab"
)

// Result is one successful compilation's output: the lowered instruction
// stream, its pretty-printed text, and the completed object table.
type Result struct {
	ITA     quad.Instructions
	Text    string
	Objects *object.Table
}

// Error wraps a *compileerr.Error (or any error a stage returned) with
// the Invocation's correlation id.
type Error struct {
	ID  uuid.UUID
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("[%s] %s", e.ID, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Invocation holds one compilation's identity and hoisted front-end
// input. The program AST itself is passed to Compile rather than stored,
// since a single Invocation may in principle compile more than one
// program sharing the same hoisted symbol set (spec.md §5's "no shared
// mutable state exists across compilation units" is honoured by giving
// each Invocation its own fresh symtab.Table per Compile call).
type Invocation struct {
	ID      uuid.UUID
	Hoisted ast.Symbols
	Runtime *runtimecatalog.Catalog
}

// New returns an Invocation for one translation unit's hoisted symbol
// set, seeding its runtime/stdlib catalog from runtimecatalog.New(). The
// catalog's platform-specific syscall table is selected at build time via
// the runtimecatalog package's //go:build files; New takes no OS or arch
// argument and cannot reselect it.
func New(hoisted ast.Symbols) *Invocation {
	return &Invocation{
		ID:      uuid.New(),
		Hoisted: hoisted,
		Runtime: runtimecatalog.New(),
	}
}

// functions adapts the hoisted symbol set and the runtime/stdlib catalog
// into the single expr.FunctionCatalog / object.FunctionCatalog shape
// both stages need. This is spec.md §4.H's "these names are injected
// into the hoisted symbol set marked function_definition" requirement,
// implemented as a read-only union instead of mutating ast.Symbols
// (which internal/ast documents as "consulted, never mutated").
type functions struct {
	hoisted ast.Symbols
	runtime *runtimecatalog.Catalog
}

func (f functions) IsDeclared(name string) bool {
	return f.hoisted.IsFunction(name) || f.runtime.IsDeclared(name)
}

// voidCatalog adapts the runtime catalog to temp.VoidCatalog. No
// user-defined B function is ever void (every function returns a word,
// possibly unused); only a runtime/stdlib entry can be.
type voidCatalog struct {
	runtime *runtimecatalog.Catalog
}

func (v voidCatalog) IsVoid(name string) bool { return v.runtime.IsVoid(name) }

// Compile runs the full middle end over program: component F (ITA
// build), component G (object/type table), and component I (emission),
// in that order, matching spec.md §5's "compilation either completes or
// fails fast on the first compile error."
func (inv *Invocation) Compile(program *ast.Node) (*Result, error) {
	symbols := symtab.New()
	fc := functions{hoisted: inv.Hoisted, runtime: inv.Runtime}
	vc := voidCatalog{runtime: inv.Runtime}

	ins, err := ita.Build(program, symbols, inv.Hoisted, fc, vc)
	if err != nil {
		return nil, &Error{ID: inv.ID, Err: err}
	}

	objects, err := object.Build(ins, symbols.Snapshot(), fc)
	if err != nil {
		return nil, &Error{ID: inv.ID, Err: err}
	}

	return &Result{
		ITA:     ins,
		Text:    emit.Instructions(ins),
		Objects: objects,
	}, nil
}
