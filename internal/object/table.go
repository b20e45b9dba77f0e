// Package object implements the object/type table pass (component G): a
// single forward walk over the finished ITA stream that opens and closes
// per-function stack frames, classifies and type-checks every MOV as a
// scalar, pointer, or vector assignment, collects the literal
// side-channel the back end needs for rip-relative data, and performs the
// one dead-code elimination this stage is responsible for (a GOTO
// immediately following another GOTO).
package object

import (
	"strconv"
	"strings"

	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	"bcc/internal/quad"
)

// FunctionCatalog is consulted when a CALL's callee is not a label this
// pass has seen — the runtime/stdlib catalog (component H) satisfies this,
// the same narrow interface internal/expr uses so this package does not
// import component H directly.
type FunctionCatalog interface {
	IsDeclared(name string) bool
}

// Table is the object table this pass builds: one sealed Frame per
// function, the program-scope vector registry, and the literal
// side-channel.
type Table struct {
	Frames   map[string]*Frame
	frameOrder []string
	Vectors  map[string]*Vector
	Literals Literals
	literals *Literals // alias so vector.go's helper methods can reach it uniformly

	globals   map[string]quad.Datum
	functions FunctionCatalog

	current    *Frame
	lastReturn *quad.Datum // the most recently completed CALL's RET value, if any
}

// Build runs a single forward walk over ins and returns the completed
// Table, or an error recovered from the first compile-error panic
// (spec.md §5: "first error aborts compilation").
func Build(ins quad.Instructions, globals map[string]quad.Datum, functions FunctionCatalog) (t *Table, err error) {
	defer compileerr.Recover(&err)
	t = newTable(globals, functions)
	t.run(eliminateDeadGotos(ins))
	return t, nil
}

func newTable(globals map[string]quad.Datum, functions FunctionCatalog) *Table {
	t := &Table{
		Frames:    make(map[string]*Frame),
		Vectors:   make(map[string]*Vector),
		globals:   globals,
		functions: functions,
	}
	t.literals = &t.Literals
	return t
}

// eliminateDeadGotos drops any GOTO quadruple immediately following
// another GOTO — spec.md §4.G's one permitted dead-code elimination.
func eliminateDeadGotos(ins quad.Instructions) quad.Instructions {
	out := make(quad.Instructions, 0, len(ins))
	for i, q := range ins {
		if q.Op == quad.OpGoto && i > 0 && ins[i-1].Op == quad.OpGoto {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (t *Table) loc() compileerr.Location {
	name := ""
	if t.current != nil {
		name = t.current.Name
	}
	return compileerr.Location{Function: name}
}

func (t *Table) raiseOverflow(vectorName string, size int) {
	compileerr.Raise(compileerr.StackOverflow, t.loc(), "vector %s has %d elements, exceeds the %d-element cap", vectorName, size, maxVectorSize)
}

// run is the single forward walk spec.md §4.G describes. Function entry
// labels are pre-scanned so a CALL to a function defined later in the
// stream still resolves (mutual recursion, forward calls).
func (t *Table) run(ins quad.Instructions) {
	t.prescanFunctionLabels(ins)

	var pendingLabel string
	// pendingInFrame buffers label names seen since the last non-LABEL
	// instruction: consecutive LABEL quadruples all resolve to the same
	// *target* instruction index, the next non-label instruction, rather
	// than the raw position of the LABEL quadruple itself.
	var pendingInFrame []string
	for idx, q := range ins {
		if q.Op == quad.OpLabel {
			if t.current == nil {
				pendingLabel = q.Op1
			} else {
				pendingInFrame = append(pendingInFrame, q.Op1)
			}
			continue
		}

		if len(pendingInFrame) > 0 {
			for _, name := range pendingInFrame {
				t.current.declareLabel(name, idx)
			}
			pendingInFrame = nil
		}

		switch q.Op {
		case quad.OpFuncStart:
			t.openFrame(pendingLabel, idx)
			pendingLabel = ""
		case quad.OpFuncEnd:
			t.closeFrame(idx)
		case quad.OpLocl:
			t.requireFrame().declareLocal(q.Op1, quad.NullDatum())
		case quad.OpGlobl:
			t.applyGlobl(q.Op1)
		case quad.OpCall:
			t.applyCall(q.Op1)
		case quad.OpPush:
			t.applyPush(q.Op1)
		case quad.OpPop:
			t.applyPop(q.Op1)
		case quad.OpRet:
			t.requireFrame().setReturnValue(q.Op1)
		case quad.OpMov:
			t.applyMov(idx, q.Op1, q.Op2)
		}
	}
}

func (t *Table) requireFrame() *Frame {
	if t.current == nil {
		compileerr.Raise(compileerr.InvalidAST, t.loc(), "instruction outside any function frame")
	}
	return t.current
}

// prescanFunctionLabels records every function entry label's bare name so
// CALL validation (and forward references) do not depend on walk order.
func (t *Table) prescanFunctionLabels(ins quad.Instructions) {
	for i, q := range ins {
		if q.Op != quad.OpLabel {
			continue
		}
		if i+1 < len(ins) && ins[i+1].Op == quad.OpFuncStart {
			name := quad.FunctionNameFromLabel(quad.Label(q.Op1))
			if _, exists := t.Frames[name]; !exists {
				t.Frames[name] = nil // placeholder: "declared", sealed later
			}
		}
	}
}

func (t *Table) openFrame(label string, idx int) {
	name := quad.FunctionNameFromLabel(quad.Label(label))
	params := parseParams(label)
	t.current = newFrame(name, idx, params)
}

func (t *Table) closeFrame(idx int) {
	f := t.requireFrame()
	f.EndIndex = idx
	t.Frames[f.Name] = f
	t.frameOrder = append(t.frameOrder, f.Name)
	t.current = nil
}

// parseParams extracts a function entry label's parenthesised parameter
// list, e.g. "__add(a,*b)" -> ["a", "*b"].
func parseParams(label string) []string {
	open := strings.IndexByte(label, '(')
	if open < 0 || !strings.HasSuffix(label, ")") {
		return nil
	}
	inner := label[open+1 : len(label)-1]
	if inner == "" {
		return nil
	}
	return strings.Split(inner, ",")
}

func (t *Table) applyGlobl(name string) {
	f := t.requireFrame()
	d, ok := t.globals[name]
	if !ok {
		compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "global %s is undeclared", name)
	}
	f.declareLocal(name, d)
}

func (t *Table) applyCall(callee string) {
	t.requireFrame()
	if _, known := t.Frames[callee]; known {
		return
	}
	if t.functions != nil && t.functions.IsDeclared(callee) {
		return
	}
	compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "call to undeclared function %s", callee)
}

func (t *Table) applyPush(operand string) {
	f := t.requireFrame()
	if !f.isTempName(operand) {
		compileerr.Raise(compileerr.InvalidAST, t.loc(), "PUSH operand %s is not a temporary", operand)
	}
	if _, ok := f.Temps[operand]; !ok {
		compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "PUSH operand %s is not defined in the current frame", operand)
	}
	f.StackHeight++
}

func (t *Table) applyPop(operandBytes string) {
	f := t.requireFrame()
	n, err := strconv.Atoi(operandBytes)
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, t.loc(), "malformed POP operand %q", operandBytes)
	}
	words := n / catalog.PointerWidth
	if words > f.StackHeight {
		compileerr.Raise(compileerr.StackOverflow, t.loc(), "POP of %d words underflows stack height %d", words, f.StackHeight)
	}
	f.StackHeight -= words
}
