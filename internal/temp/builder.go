// Package temp implements the temporary builder (component E): it
// consumes an operand queue from package expr and emits the flat
// three-address quadruple sequence for one expression statement, minting
// fresh "_tN" temporaries and "_pN" parameter slots as it goes.
package temp

import (
	"fmt"

	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	"bcc/internal/expr"
	"bcc/internal/quad"
)

// VoidCatalog reports whether a callee name is known to return no value,
// so the builder can skip minting a "_tN = RET" temporary for it. The
// runtime/stdlib catalog (component H) satisfies this; it is kept as a
// narrow interface so this package does not need to import it.
type VoidCatalog interface {
	IsVoid(name string) bool
}

// entry is one item on the operand stack: a raw literal/lvalue leaf, or a
// binary result that was wrapped back into operand form because neither
// of its own operands needed an instruction to resolve (credence/ir/
// temp.cc's binary_operands_to_temporary_stack, oss>=2 branch).
type entry struct {
	text     string
	isLValue bool
	isTemp   bool // set on entries popAny() lifts off the temp stack
	wrapped  bool
}

// Builder holds one expression statement's lowering state. Per spec.md
// §4.E it keeps two independent stacks rather than one combined LIFO:
// operands holds rvalue operands not yet consumed, temps holds textual
// temporary-lvalue names (or pending combined text not yet flushed into
// its own instruction) already produced by some operator. binary() picks
// which stack(s) to pop from by a three-case priority rule, not by push
// order — grounded on credence/ir/temp.cc's
// binary_operands_to_temporary_stack and its balanced/unbalanced/raw
// helpers.
type Builder struct {
	operands     []entry
	temps        []string
	tempCounter  int
	paramCounter int
	VoidCatalog  VoidCatalog
	out          quad.Instructions
}

// New returns a Builder with fresh counters, ready to lower one
// expression statement.
func New() *Builder {
	return &Builder{}
}

// ResetTemps zeroes the temporary counter. The ITA builder calls this once
// per function entry (spec.md §3: "Temporaries' index counter resets to 0
// at each function entry").
func (b *Builder) ResetTemps() {
	b.tempCounter = 0
}

// TempCounter reports the index of the last temporary minted (the next
// one is TempCounter()+1), so
// callers (the ITA builder) can thread a single running counter across
// multiple statements within one function.
func (b *Builder) TempCounter() int { return b.tempCounter }

// SetTempCounter restores a previously observed counter value, letting a
// function's statements share one monotonic sequence across separate
// Builder invocations (one per statement).
func (b *Builder) SetTempCounter(n int) { b.tempCounter = n }

// Lower runs q through the pop policies and returns the emitted
// quadruples for one expression statement. The final value, if any,
// remains on the builder's internal stacks (Result reads it).
func (b *Builder) Lower(q expr.Queue) quad.Instructions {
	b.out = nil
	b.operands = nil
	b.temps = nil
	for _, item := range q {
		switch item.Kind {
		case expr.ItemOperand:
			b.pushOperand(pushEntry(item.Operand))
		case expr.ItemOperator:
			b.applyOperator(item.Operator, item.ArgCount)
		}
	}
	return b.out
}

// Result returns the expression statement's final value, if any is still
// pending. A temp-stack entry that was never flushed into its own
// instruction is as valid an rvalue text as a resolved name — quad.Mov's
// rhs is free-form text, so callers may use it directly as an assignment
// or return value's source.
func (b *Builder) Result() (string, bool) {
	if n := len(b.temps); n > 0 {
		return b.temps[n-1], true
	}
	if n := len(b.operands); n > 0 {
		return b.operands[n-1].text, true
	}
	return "", false
}

func (b *Builder) emit(q quad.Quadruple) {
	b.out = b.out.Append(q)
}

func (b *Builder) pushOperand(e entry) { b.operands = append(b.operands, e) }

func (b *Builder) popOperand() entry {
	if len(b.operands) == 0 {
		compileerr.Raise(compileerr.InvalidAST, compileerr.Location{}, "temporary builder: operand stack underflow")
	}
	e := b.operands[len(b.operands)-1]
	b.operands = b.operands[:len(b.operands)-1]
	return e
}

func (b *Builder) pushTemp(s string) { b.temps = append(b.temps, s) }

func (b *Builder) popTemp() string {
	if len(b.temps) == 0 {
		compileerr.Raise(compileerr.InvalidAST, compileerr.Location{}, "temporary builder: temporary stack underflow")
	}
	s := b.temps[len(b.temps)-1]
	b.temps = b.temps[:len(b.temps)-1]
	return s
}

// popAny pops the top of the temp stack if it is non-empty, and the top of
// the operand stack otherwise. Operators that don't need binary()'s
// priority split between raw operands and already-emitted temporaries
// (unary and in-place unary, call, ternary) use this instead.
func (b *Builder) popAny() entry {
	if n := len(b.temps); n > 0 {
		t := b.temps[n-1]
		b.temps = b.temps[:n-1]
		return entry{text: t, isTemp: true}
	}
	return b.popOperand()
}

func (b *Builder) hasAnyTemp() bool { return len(b.temps) > 0 }

func (b *Builder) freshTemp() string {
	b.tempCounter++
	return fmt.Sprintf("_t%d", b.tempCounter)
}

func (b *Builder) freshParam() string {
	b.paramCounter++
	return fmt.Sprintf("_p%d", b.paramCounter)
}

func pushEntry(e *expr.Expression) entry {
	return entry{text: spellingOf(e), isLValue: e.Kind == expr.KindLValue}
}

// spellingOf renders an Expression's textual operand form: a literal's
// serialised Datum, or an lvalue's name (already carrying any "[idx]" or
// "*" decoration the parser attached).
func spellingOf(e *expr.Expression) string {
	switch e.Kind {
	case expr.KindLiteral:
		return e.Datum.Format()
	case expr.KindLValue:
		return e.Name
	default:
		return ""
	}
}

func (b *Builder) applyOperator(op catalog.Operator, argCount int) {
	switch op {
	case catalog.OpCall:
		b.call(argCount)
	case catalog.OpAssign:
		b.assign()
	case catalog.OpTernary:
		b.ternary()
	default:
		if catalog.IsInPlace(op) {
			b.unaryInPlace(op)
			return
		}
		if catalog.ArityOf(op) == catalog.Unary {
			b.unary(op)
			return
		}
		b.binary(op)
	}
}

// binary implements spec.md §4.E's three-case pop priority: combining two
// already-emitted temporaries always wins over combining an operand with
// a temporary, which always wins over combining two raw operands —
// regardless of which was pushed more recently. Grounded on
// credence/ir/temp.cc's binary_operands_to_temporary_stack dispatch.
func (b *Builder) binary(op catalog.Operator) {
	oss := len(b.operands)
	tss := len(b.temps)
	switch {
	case tss >= 2:
		b.binaryTwoTemps(op)
	case oss >= 1 && tss == 1:
		b.binaryBalanced(op)
	case oss == 1:
		b.binaryUnbalanced(op)
	case oss < 1:
		// nothing pending to combine
	default: // oss >= 2, tss == 0
		b.binaryRawOperands(op)
	}
}

// binaryTwoTemps pops the top two already-emitted temporaries and combines
// them directly. The result is deliberately not pushed onto either
// stack — credence/ir/temp.cc doesn't either; a later operator (or
// assign's single-operand case) recovers it by reading back the target of
// this MOV from the instruction stream.
func (b *Builder) binaryTwoTemps(op catalog.Operator) {
	rhs := b.popTemp()
	lhs := b.popTemp()
	result := b.freshTemp()
	b.emit(quad.Mov(result, lhs+" "+catalog.Spelling(op)+" "+rhs))
}

// binaryBalanced handles exactly one pending temporary with at least one
// operand still on the stack: the operand supplies the textual lhs, the
// pending temporary gets flushed into its own instruction and supplies the
// rhs, and the combined text is pushed back as a new pending temporary
// rather than emitted right away. Grounded on
// binary_operands_balanced_temporary_stack.
func (b *Builder) binaryBalanced(op catalog.Operator) {
	operand1 := b.operands[len(b.operands)-1]
	rhs := b.popTemp()
	if len(b.operands) > 1 {
		b.popOperand()
	}

	tempRhs := b.freshTemp()
	b.emit(quad.Mov(tempRhs, rhs))

	combined := operand1.text + " " + catalog.Spelling(op) + " " + tempRhs
	b.pushTemp(combined)

	// The extra flush below needs an empty operand stack, but the operand
	// is popped above only when another lies beneath it, so at least one
	// operand always remains here and the combined text stays pending on
	// the temp stack alone.
	if operand1.isLValue && len(b.operands) == 0 {
		extra := b.freshTemp()
		b.emit(quad.Mov(extra, combined))
	}
}

// binaryUnbalanced handles a single remaining operand with no pending
// temporary: the lvalue target of the most recent MOV before the very
// last instruction (backtracking further if that slot isn't a MOV)
// supplies the lhs, and the last instruction's target supplies the rhs.
// Grounded on binary_operands_unbalanced_temporary_stack.
func (b *Builder) binaryUnbalanced(op catalog.Operator) {
	if len(b.out) == 0 {
		return
	}
	last := b.out[len(b.out)-1]
	if len(b.out) > 1 {
		lhsName, ok := b.lastMovTargetBefore(len(b.out) - 1)
		if !ok {
			lhsName = last.Op1
		}
		result := b.freshTemp()
		b.emit(quad.Mov(result, lhsName+" "+catalog.Spelling(op)+" "+last.Op1))
		b.pushTemp(result)
		return
	}

	rhsOperand := b.operands[len(b.operands)-1]
	result := b.freshTemp()
	b.emit(quad.Mov(result, rhsOperand.text+" "+catalog.Spelling(op)+" "+last.Op1))
	b.pushTemp(result)
}

func (b *Builder) lastMovTargetBefore(idx int) (string, bool) {
	for i := idx - 1; i >= 0; i-- {
		if b.out[i].Op == quad.OpMov {
			return b.out[i].Op1, true
		}
	}
	return "", false
}

// binaryRawOperands handles two raw operands with nothing pending on the
// temp stack: if neither operand itself required an instruction to
// resolve, the combination is emitted immediately and re-pushed as a new
// operand (not a temp) so a sibling binary can still reach it through this
// same case; otherwise the combined text is deferred onto the temp stack.
// Grounded on the oss>=2 branch of binary_operands_to_temporary_stack.
func (b *Builder) binaryRawOperands(op catalog.Operator) {
	rhs := b.popOperand()
	lhs := b.popOperand()
	text := lhs.text + " " + catalog.Spelling(op) + " " + rhs.text
	if !lhs.wrapped && !rhs.wrapped {
		result := b.freshTemp()
		b.emit(quad.Mov(result, text))
		b.pushOperand(entry{text: result, wrapped: true})
		return
	}
	b.pushTemp(text)
}

// unary materialises a non-in-place unary operator's operand into a fresh
// temporary.
func (b *Builder) unary(op catalog.Operator) {
	operand := b.popAny()
	result := b.freshTemp()
	b.emit(quad.Mov(result, unaryText(op, operand.text)))
	b.pushTemp(result)
}

// unaryInPlace implements the pre/post inc/dec policy: when applied to a
// plain lvalue with no pending temporaries, mutate it directly with no new
// temporary and re-push the same lvalue name; otherwise fall back to the
// general unary materialisation.
func (b *Builder) unaryInPlace(op catalog.Operator) {
	operand := b.popAny()
	if operand.isLValue && !operand.isTemp && !b.hasAnyTemp() {
		b.emit(quad.Mov(operand.text, unaryText(op, operand.text)))
		b.pushOperand(entry{text: operand.text, isLValue: true})
		return
	}
	result := b.freshTemp()
	b.emit(quad.Mov(result, unaryText(op, operand.text)))
	b.pushTemp(result)
}

// unaryText renders a unary operator's RHS text. Prefix operators read
// "op operand"; the two postfix forms read "operand op".
func unaryText(op catalog.Operator, operand string) string {
	switch op {
	case catalog.OpPostInc, catalog.OpPostDec:
		return operand + " " + catalog.Spelling(op)
	default:
		return catalog.Spelling(op) + " " + operand
	}
}

// assign mirrors assignment_operands_to_temporary_stack's three cases: a
// pending temporary (rhs already resolved onto the temp stack), a bare
// single operand (rhs was already flushed as the last instruction, e.g.
// by binaryTwoTemps), or two raw operands (a literal assigned straight
// into an lvalue).
func (b *Builder) assign() {
	oss := len(b.operands)
	tss := len(b.temps)
	switch {
	case oss >= 1 && tss >= 1:
		lvalue := b.popOperand()
		rhs := b.popTemp()
		b.emit(quad.Mov(lvalue.text, rhs))
	case oss == 1:
		lvalue := b.popOperand()
		if len(b.out) > 0 {
			last := b.out[len(b.out)-1]
			b.emit(quad.Mov(lvalue.text, last.Op1))
		}
	default: // oss >= 2, tss == 0
		lvalue := b.popOperand()
		rhs := b.popOperand()
		b.emit(quad.Mov(lvalue.text, rhs.text))
	}
}

// call implements the call policy: assign each argument into a fresh
// parameter slot (left to right), push the slots in reverse order (the
// callee's-own-call-site convention this core follows, matching spec.md
// §8 scenario S1's "_p2 pushed before _p1" shape for a two-argument
// call), call, reclaim the stack, and read the return value unless the
// callee is void. The callee and each argument are popped with popAny
// since either may already be a temporary rather than a raw operand (for
// example, a call passed the result of a nested call).
func (b *Builder) call(argCount int) {
	callee := b.popAny()
	args := make([]entry, argCount)
	for i := argCount - 1; i >= 0; i-- {
		args[i] = b.popAny()
	}
	params := make([]string, argCount)
	for i, a := range args {
		pname := b.freshParam()
		b.emit(quad.Mov(pname, a.text))
		params[i] = pname
	}
	for i := len(params) - 1; i >= 0; i-- {
		b.emit(quad.Push(params[i]))
	}
	b.emit(quad.Call(callee.text))
	b.emit(quad.Pop(argCount * catalog.PointerWidth))

	if b.VoidCatalog != nil && b.VoidCatalog.IsVoid(callee.text) {
		return
	}
	result := b.freshTemp()
	b.emit(quad.Mov(result, "RET"))
	b.pushTemp(result)
}

// ternary resolves the four-operand Relation (cond, then, else, sentinel)
// into a two-step binary chain, then emits the PUSH/POP pair spec.md §9's
// open question describes: the sentinel is pushed and immediately popped
// to keep stack bookkeeping balanced regardless of which branch's value
// is actually consumed by the surrounding statement. The branch value
// itself survives as a pending temporary.
func (b *Builder) ternary() {
	sentinel := b.popAny()
	elseBranch := b.popAny()
	thenBranch := b.popAny()
	cond := b.popAny()

	chain := b.freshTemp()
	b.emit(quad.Mov(chain, cond.text+" ? "+thenBranch.text))
	b.emit(quad.Mov(chain, chain+" : "+elseBranch.text))

	b.emit(quad.Push(sentinel.text))
	b.emit(quad.Pop(catalog.SizeOf(catalog.Word)))

	b.pushTemp(chain)
}
