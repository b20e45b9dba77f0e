package quad

import "strconv"

// Quadruple is one ITA instruction: (Opcode, op1, op2, op3). Operands are
// strings drawn from a temporary name, a parameter slot, a declared
// identifier, a serialised Datum, an operator spelling, or "" when unused
// (spec.md §3).
type Quadruple struct {
	Op   Opcode
	Op1  string
	Op2  string
	Op3  string
	Line int // source line this quadruple was lowered from, 0 if unknown
}

// Instructions is a flat, ordered ITA instruction list.
type Instructions []Quadruple

// Append returns instructions with q appended — a small helper so callers
// building up a stream read as a sequence of appends rather than raw
// slice syntax, matching the teacher's Chunk.WriteOp/WriteByte shape of
// "one call per emitted unit".
func (ins Instructions) Append(q Quadruple) Instructions {
	return append(ins, q)
}

// Mov builds a MOV quadruple. The rhs is either a single fully-resolved
// operand or a binary expression's whole textual form ("a + b"); either
// way it goes into op2 and op3 is left empty — spec.md §3's invariant is
// that binary RHS is stored as one textual operand in op2 with op3 empty.
func Mov(lhs, rhs string) Quadruple {
	return Quadruple{Op: OpMov, Op1: lhs, Op2: rhs}
}

// LabelQuad builds a LABEL quadruple.
func LabelQuad(l Label) Quadruple {
	return Quadruple{Op: OpLabel, Op1: string(l)}
}

// Goto builds a GOTO quadruple.
func Goto(l Label) Quadruple {
	return Quadruple{Op: OpGoto, Op1: string(l)}
}

// If builds an "IF cond GOTO target" quadruple.
func If(cond string, target Label) Quadruple {
	return Quadruple{Op: OpIf, Op1: cond, Op3: string(target)}
}

// JmpE builds a "JMP_E switchTemp caseValue target" quadruple.
func JmpE(switchTemp, caseValue string, target Label) Quadruple {
	return Quadruple{Op: OpJmpE, Op1: switchTemp, Op2: caseValue, Op3: string(target)}
}

// Push builds a PUSH quadruple.
func Push(operand string) Quadruple {
	return Quadruple{Op: OpPush, Op1: operand}
}

// Pop builds a POP quadruple; operand is a byte count (stringified).
func Pop(bytes int) Quadruple {
	return Quadruple{Op: OpPop, Op1: strconv.Itoa(bytes)}
}

// Call builds a CALL quadruple.
func Call(callee string) Quadruple {
	return Quadruple{Op: OpCall, Op1: callee}
}

// Ret builds a RET quadruple.
func Ret(value string) Quadruple {
	return Quadruple{Op: OpRet, Op1: value}
}

// Leave, FuncStart, FuncEnd are the zero-operand frame bracket quadruples.
func Leave() Quadruple     { return Quadruple{Op: OpLeave} }
func FuncStart() Quadruple { return Quadruple{Op: OpFuncStart} }
func FuncEnd() Quadruple   { return Quadruple{Op: OpFuncEnd} }

// Locl declares a local in the object table pass's frame.
func Locl(name string) Quadruple { return Quadruple{Op: OpLocl, Op1: name} }

// Globl copies a global's datum into the current frame's locals.
func Globl(name string) Quadruple { return Quadruple{Op: OpGlobl, Op1: name} }
