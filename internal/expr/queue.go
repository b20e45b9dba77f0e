package expr

import "bcc/internal/catalog"

// ItemKind discriminates an operand-queue Item: either a reference into the
// Expression tree, or an operator token to apply to items already queued.
type ItemKind int

const (
	ItemOperand ItemKind = iota
	ItemOperator
)

// Item is one element of a flattened operand queue.
type Item struct {
	Kind     ItemKind
	Operand  *Expression      // set when Kind == ItemOperand
	Operator catalog.Operator // set when Kind == ItemOperator

	// ArgCount is set on the ItemOperator entry for catalog.OpCall: the
	// number of operands immediately preceding the callee operand that
	// belong to this call's argument list. Carrying the count directly
	// (computed once, here, from len(e.CallArgs)) lets the temporary
	// builder pop exactly the right number of entries without having to
	// reconstruct call boundaries from a flat run of U_PUSH markers,
	// which would otherwise require matching nested calls' pushes
	// against the wrong frame.
	ArgCount int
}

// Queue is the precedence-ordered, postfix-equivalent operand/operator
// sequence the temporary builder (component E) consumes.
type Queue []Item

// BuildQueue flattens e into a Queue. Because the Expression tree already
// encodes precedence structurally (every subtree was itself built via
// Parse, so nesting already reflects binding strength), flattening is a
// straightforward post-order walk: operands before the operator that
// combines them. A Pointer node is a transparent grouping barrier — its
// inner expression is flattened in full before the walk returns control to
// whatever operator encloses the Pointer, which is exactly what "fully
// pushed before any surrounding operator" means once the tree is already
// shaped by precedence.
func BuildQueue(e *Expression) Queue {
	var q Queue
	flatten(e, &q)
	return q
}

func flatten(e *Expression, q *Queue) {
	if e == nil {
		return
	}
	switch e.Kind {
	case KindLiteral, KindLValue:
		if e.Sub != nil {
			// A vector-indexed lvalue's index must itself be fully
			// resolved before the vector access is treated as one
			// operand (spec.md §4.C's vector_lvalue rule).
			flatten(e.Sub, q)
		}
		*q = append(*q, Item{Kind: ItemOperand, Operand: e})

	case KindPointer:
		flatten(e.Inner, q)

	case KindUnary:
		flatten(e.Sub, q)
		*q = append(*q, Item{Kind: ItemOperator, Operator: e.Op})

	case KindRelation:
		for _, arg := range e.Args {
			flatten(arg, q)
		}
		*q = append(*q, Item{Kind: ItemOperator, Operator: e.Op})

	case KindFunction:
		for _, arg := range e.CallArgs {
			flatten(arg, q)
		}
		*q = append(*q, Item{Kind: ItemOperand, Operand: e.Callee})
		*q = append(*q, Item{Kind: ItemOperator, Operator: catalog.OpCall, ArgCount: len(e.CallArgs)})

	case KindSymbol:
		flatten(e.RHS, q)
		*q = append(*q, Item{Kind: ItemOperand, Operand: e.LHS})
		*q = append(*q, Item{Kind: ItemOperator, Operator: catalog.OpAssign})

	case KindArray:
		*q = append(*q, Item{Kind: ItemOperand, Operand: e})
	}
}
