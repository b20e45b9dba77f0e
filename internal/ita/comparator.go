package ita

import (
	"bcc/internal/ast"
	"bcc/internal/compileerr"
	"bcc/internal/expr"
	"bcc/internal/quad"
)

// truthyComparator lowers a predicate node and returns an operand spelling
// usable directly as an IF/JMP_E condition. A Relation, Unary, or Pointer
// result is already a comparison or a value the object-table pass can test
// for truthiness in place, so it is used as-is. A bare LValue or Literal
// predicate ("if (x)", "if (1)") and a Function call predicate ("if (f())")
// carry no comparison of their own, so a synthetic "MOV tmp CMP <spelling>"
// quadruple is minted to make the truth test explicit — a call additionally
// needs its own invocation lowered first, since the comparator reads the
// call's result a second time via "CMP RET" (spec.md §4.F).
func (b *Builder) truthyComparator(n *ast.Node) string {
	p := b.parserFor(n)
	e := p.Parse(n)

	switch e.Kind {
	case expr.KindRelation, expr.KindUnary, expr.KindPointer:
		q := expr.BuildQueue(e)
		b.emit(b.temps.Lower(q)...)
		result, ok := b.temps.Result()
		if !ok {
			compileerr.Raise(compileerr.InvalidStatement, b.loc(), "predicate produced no value")
		}
		return result

	case expr.KindSymbol:
		q := expr.BuildQueue(e)
		b.emit(b.temps.Lower(q)...)
		if e.LHS == nil {
			compileerr.Raise(compileerr.InvalidAST, b.loc(), "malformed assignment predicate")
		}
		return e.LHS.Name

	case expr.KindFunction:
		q := expr.BuildQueue(e)
		b.emit(b.temps.Lower(q)...)
		tmp := b.mintTemp()
		b.emit(quad.Mov(tmp, "CMP RET"))
		return tmp

	default:
		tmp := b.mintTemp()
		b.emit(quad.Mov(tmp, "CMP "+comparatorSpelling(e)))
		return tmp
	}
}

// comparatorSpelling renders a predicate Expression's own textual form
// for the synthetic comparator MOV's operand.
func comparatorSpelling(e *expr.Expression) string {
	switch e.Kind {
	case expr.KindLiteral:
		return e.Datum.Format()
	case expr.KindLValue:
		return e.Name
	default:
		return e.Name
	}
}
