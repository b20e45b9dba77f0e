package ita

import (
	"strconv"

	"bcc/internal/ast"
	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	"bcc/internal/quad"
)

// buildBlock lowers a "block" statement node's children in order.
func (b *Builder) buildBlock(n *ast.Node) {
	stmts, err := n.RightNodes()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed block node")
	}
	for _, s := range stmts {
		b.buildStatement(s)
	}
}

// buildStatement dispatches one statement node by its kind (spec.md §4.F).
func (b *Builder) buildStatement(n *ast.Node) {
	if n == nil {
		compileerr.Raise(compileerr.InvalidAST, b.loc(), "malformed statement: nil node")
	}
	if n.Kind != ast.KindStatement {
		compileerr.Raise(compileerr.InvalidAST, b.loc(), "malformed statement node: unexpected kind %q", n.Kind)
	}
	kindStr, err := n.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed statement node: missing kind")
	}

	switch ast.StatementKind(kindStr) {
	case ast.StmtAuto:
		b.buildAuto(n)
	case ast.StmtExtrn:
		b.buildExtrn(n)
	case ast.StmtIf:
		b.buildIf(n)
	case ast.StmtWhile:
		b.buildWhile(n)
	case ast.StmtSwitch:
		b.buildSwitch(n)
	case ast.StmtRvalue:
		b.buildRvalue(n)
	case ast.StmtLabel:
		b.buildLabel(n)
	case ast.StmtGoto:
		b.buildGoto(n)
	case ast.StmtReturn:
		b.buildReturn(n)
	case ast.StmtBlock:
		b.buildBlock(n)
	case ast.StmtBreak:
		b.buildBreak(n)
	case ast.StmtCase:
		compileerr.Raise(compileerr.InvalidStatement, b.loc(), "case statement outside switch")
	default:
		compileerr.Raise(compileerr.InvalidAST, b.loc(), "malformed statement node: unknown kind %q", kindStr)
	}
}

// buildAuto binds each declared name to a fresh local (null scalar, word
// pointer, or sized byte vector depending on its declared form) and
// records a LOCL quadruple per name so the object-table pass can open a
// frame slot for it — no instructions compute an initial value, since
// every auto form starts at its type's zero value (spec.md §4.F).
func (b *Builder) buildAuto(n *ast.Node) {
	decls, err := n.LeftNodes()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed auto statement")
	}
	p := b.parserFor(n)
	for _, d := range decls {
		name, derr := d.RootString()
		if derr != nil {
			compileerr.RaiseWrap(derr, compileerr.InvalidAST, b.loc(), "malformed auto declaration")
		}
		var datum quad.Datum
		switch d.Kind {
		case ast.KindIndirectLValue:
			datum = quad.NewWordDatum()
		case ast.KindVectorLValue:
			sizeNode, serr := d.LeftNode()
			size := 0
			if serr == nil {
				sizeExpr := p.Parse(sizeNode)
				size, _ = strconv.Atoi(sizeExpr.Datum.Value)
			}
			if size > 999 {
				compileerr.Raise(compileerr.StackOverflow, b.loc(), "vector %s declared with %d elements, exceeds the 999-element cap", name, size)
			}
			datum = quad.Datum{Value: "", Type: catalog.Byte, Size: size}
		default:
			datum = quad.NullDatum()
		}
		b.Symbols.Define(name, datum)
		b.emit(quad.Locl(name))
	}
}

// buildExtrn copies each named global's current datum into local scope
// and emits a GLOBL quadruple per name.
func (b *Builder) buildExtrn(n *ast.Node) {
	decls, err := n.LeftNodes()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed extrn statement")
	}
	for _, d := range decls {
		name, derr := d.RootString()
		if derr != nil {
			compileerr.RaiseWrap(derr, compileerr.InvalidAST, b.loc(), "malformed extrn declaration")
		}
		if !b.Symbols.IsDefined(name) {
			compileerr.Raise(compileerr.UndefinedSymbol, b.loc(), "undefined symbol %s", name)
		}
		b.Symbols.Define(name, b.Symbols.Lookup(name))
		b.emit(quad.Globl(name))
	}
}

// buildRvalue delegates a bare expression statement to the temporary
// builder, discarding any final result (spec.md §4.F).
func (b *Builder) buildRvalue(n *ast.Node) {
	exprNode, err := n.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed rvalue statement")
	}
	b.lowerExpression(exprNode)
}

func (b *Builder) buildLabel(n *ast.Node) {
	name, err := n.LeftString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed label statement")
	}
	b.emit(quad.LabelQuad(quad.UserLabel(name)))
}

func (b *Builder) buildGoto(n *ast.Node) {
	name, err := n.LeftString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed goto statement")
	}
	if !b.Hoisted.IsLabel(name) {
		compileerr.Raise(compileerr.UndefinedSymbol, b.loc(), "undefined label %s", name)
	}
	b.emit(quad.Goto(quad.UserLabel(name)))
}

func (b *Builder) buildReturn(n *ast.Node) {
	exprNode, err := n.LeftNode()
	if err != nil {
		// A bare "return;" has no expression.
		b.emit(quad.Ret(""))
		return
	}
	result, ok := b.lowerExpression(exprNode)
	if !ok {
		b.emit(quad.Ret(""))
		return
	}
	b.emit(quad.Ret(result))
}

func (b *Builder) buildBreak(n *ast.Node) {
	target, ok := b.topBranch()
	if !ok {
		compileerr.Raise(compileerr.InvalidStatement, b.loc(), "break outside switch or while")
	}
	b.emit(quad.Goto(target))
}

// buildIf lowers if/if-else: compute the predicate into a truthy
// comparator, branch to the then-block on true, otherwise fall through
// to (or jump past, when an else exists) the else-block, converging at a
// trailing label. This is the conventional three-address if/else shape;
// spec.md §9's Design Notes explicitly permit a CFG-equivalent rewrite of
// §4.F's label choreography provided the observable label/jump sequence
// matches scenario S2's shape modulo renaming, which this does.
func (b *Builder) buildIf(n *ast.Node) {
	predNode, err := n.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed if statement: missing predicate")
	}
	branches, err := n.RightNodes()
	if err != nil || len(branches) == 0 {
		compileerr.Raise(compileerr.InvalidAST, b.loc(), "malformed if statement: missing then-block")
	}

	thenLabel := b.freshLabel()
	endLabel := b.freshLabel()

	cmp := b.truthyComparator(predNode)
	b.emit(quad.If(cmp, thenLabel))

	if len(branches) > 1 {
		elseLabel := b.freshLabel()
		b.emit(quad.Goto(elseLabel))
		b.emit(quad.LabelQuad(thenLabel))
		b.buildStatement(branches[0])
		if !b.lastIsTerminal() {
			b.emit(quad.Goto(endLabel))
		}
		b.emit(quad.LabelQuad(elseLabel))
		b.buildStatement(branches[1])
		b.emit(quad.LabelQuad(endLabel))
		return
	}

	b.emit(quad.Goto(endLabel))
	b.emit(quad.LabelQuad(thenLabel))
	b.buildStatement(branches[0])
	b.emit(quad.LabelQuad(endLabel))
}

// buildWhile lowers a while loop: predicate retest label, conditional
// jump into the body, unconditional jump past it, body bracketed by a
// break target, and a closing jump back to the retest label unless the
// body already ends in a GOTO or RET (spec.md §4.F, scenario S3).
func (b *Builder) buildWhile(n *ast.Node) {
	predNode, err := n.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed while statement: missing predicate")
	}
	bodyNode, err := n.RightNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed while statement: missing body")
	}

	start := b.freshLabel()
	bodyLabel := b.freshLabel()
	end := b.freshLabel()

	b.emit(quad.LabelQuad(start))
	cmp := b.truthyComparator(predNode)
	b.emit(quad.If(cmp, bodyLabel))
	b.emit(quad.Goto(end))
	b.emit(quad.LabelQuad(bodyLabel))

	b.pushBranch(end)
	b.buildStatement(bodyNode)
	b.popBranch()

	if !b.lastIsTerminal() {
		b.emit(quad.Goto(start))
	}
	b.emit(quad.LabelQuad(end))
}

// buildSwitch lowers a switch statement: the predicate is compared once
// into a comparator temporary, then each case's value is tested against
// it via JMP_E in source order, before any case body is emitted — so the
// predicate stream groups all comparisons ahead of the fall-through
// bodies (spec.md §4.F, scenario S4).
func (b *Builder) buildSwitch(n *ast.Node) {
	predNode, err := n.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed switch statement: missing predicate")
	}
	cases, err := n.RightNodes()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed switch statement: missing cases")
	}

	cmp := b.truthyComparator(predNode)
	end := b.freshLabel()

	caseLabels := make([]quad.Label, len(cases))
	for i := range cases {
		caseLabels[i] = b.freshLabel()
	}
	p := b.parserFor(n)
	for i, c := range cases {
		valNode, cerr := c.LeftNode()
		if cerr != nil {
			compileerr.RaiseWrap(cerr, compileerr.InvalidAST, b.loc(), "malformed case statement: missing value")
		}
		valExpr := p.Parse(valNode)
		b.emit(quad.JmpE(cmp, valExpr.Datum.Format(), caseLabels[i]))
	}

	b.pushBranch(end)
	for i, c := range cases {
		b.emit(quad.LabelQuad(caseLabels[i]))
		b.buildCaseBody(c, end)
	}
	b.popBranch()
	b.emit(quad.LabelQuad(end))
}

// buildCaseBody lowers one case's statement list. A trailing break is
// stripped and replaced with an unconditional jump to the switch's exit
// label; its absence is B's ordinary C-style fall-through into the next
// case's label, which is already adjacent in the emitted stream.
func (b *Builder) buildCaseBody(c *ast.Node, exit quad.Label) {
	stmts, err := c.RightNodes()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed case statement: missing body")
	}
	for _, s := range stmts {
		kindStr, _ := s.RootString()
		if ast.StatementKind(kindStr) == ast.StmtBreak {
			b.emit(quad.Goto(exit))
			return
		}
		b.buildStatement(s)
	}
}
