package object

import (
	"strings"

	"bcc/internal/compileerr"
	"bcc/internal/quad"
)

// maxFrameDepth bounds the recursive temporary-chain resolution walk
// (credence/ir/object.h's Function::max_depth), guarding against a
// malformed ITA stream producing an infinite resolution loop.
const maxFrameDepth = 999

// Frame is one function's open bookkeeping while the object-table pass
// walks its instruction range: its locals, its temporaries, its label
// table, its pointer map, and the running stack-height/allocation
// counters the back end will need.
type Frame struct {
	Name       string
	StartIndex int
	EndIndex   int

	// params is the raw parameter name list parsed from the entry
	// label's parenthesised suffix, pointer parameters still carrying
	// their leading '*' (credence's is_pointer_parameter /
	// is_scaler_parameter / is_parameter distinction, SPEC_FULL §5.4).
	params []string

	Locals   map[string]quad.Datum
	Temps    map[string]quad.Datum
	Pointers map[string]string // name -> pointee type tag

	labels *orderedMap[int]

	StackHeight    int
	AllocatedBytes int

	returnSet   bool
	ReturnValue string
}

func newFrame(name string, startIndex int, params []string) *Frame {
	return &Frame{
		Name:       name,
		StartIndex: startIndex,
		EndIndex:   -1,
		params:     params,
		Locals:     make(map[string]quad.Datum),
		Temps:      make(map[string]quad.Datum),
		Pointers:   make(map[string]string),
		labels:     newOrderedMap[int](),
	}
}

// IsParameter reports whether name (bare, without a leading '*') was
// declared as one of this frame's parameters.
func (f *Frame) IsParameter(name string) bool {
	for _, p := range f.params {
		if strings.TrimPrefix(p, "*") == name {
			return true
		}
	}
	return false
}

// IsPointerParameter reports whether name was declared a pointer
// parameter — tested against the frame's recorded parameter spellings
// rather than re-derived from the symbol table, per SPEC_FULL §5.4.
func (f *Frame) IsPointerParameter(name string) bool {
	for _, p := range f.params {
		if strings.HasPrefix(p, "*") && strings.TrimPrefix(p, "*") == name {
			return true
		}
	}
	return false
}

// IsScalarParameter reports whether name is a parameter and not a
// pointer parameter.
func (f *Frame) IsScalarParameter(name string) bool {
	return f.IsParameter(name) && !f.IsPointerParameter(name)
}

func (f *Frame) loc() compileerr.Location {
	return compileerr.Location{Function: f.Name}
}

// declareLabel records name -> index. credence/ir/table.cc's
// from_label_ita_instruction rejects a re-declared label purely by name —
// it never consults the instruction index a label resolves to, so two
// distinct label names resolving to the same index (e.g. one LABEL
// immediately following another) are unremarkable, not a special case.
func (f *Frame) declareLabel(name string, index int) {
	if _, ok := f.labels.get(name); ok {
		compileerr.Raise(compileerr.DuplicateDefinition, f.loc(), "label %s is already defined", name)
		return
	}
	f.labels.set(name, index)
}

func (f *Frame) declareLocal(name string, d quad.Datum) {
	f.Locals[name] = d
}

func (f *Frame) isTempName(name string) bool {
	return strings.HasPrefix(name, "_t") || strings.HasPrefix(name, "_p")
}

// setReturnValue is SPEC_FULL §5.5's dedicated helper: kept separate from
// the general MOV/RETURN dispatch because credence treats "at most one
// return per frame" as its own concern, not a byproduct of assignment
// type-checking.
func (f *Frame) setReturnValue(value string) {
	if f.returnSet {
		compileerr.Raise(compileerr.DuplicateDefinition, f.loc(), "function %s already has a recorded return value", f.Name)
	}
	f.returnSet = true
	f.ReturnValue = value
}

// resolveRoot walks a chain of temporary assignments back to its root
// datum spelling, bounded by maxFrameDepth to guard against a cyclic or
// malformed ITA stream (SPEC_FULL §5.3). A name with no entry in Temps
// (not itself a temporary, or never assigned) resolves to itself.
func (f *Frame) resolveRoot(name string) string {
	cur := name
	for depth := 0; depth < maxFrameDepth; depth++ {
		d, ok := f.Temps[cur]
		if !ok {
			return cur
		}
		if !f.isTempName(d.Value) {
			return d.Value
		}
		cur = d.Value
	}
	compileerr.Raise(compileerr.InvalidAST, f.loc(), "temporary chain resolving %s exceeds max frame depth", name)
	return ""
}
