package expr

import (
	"bcc/internal/ast"
	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	"bcc/internal/quad"
	"bcc/internal/symtab"
)

// FunctionCatalog is consulted when a function_expression's callee is not
// in the symbol table — the runtime/stdlib catalog (component H) or a
// label set of already-lowered user functions satisfies this. Kept as a
// narrow interface so this package does not import component H directly.
type FunctionCatalog interface {
	IsDeclared(name string) bool
}

// Parser walks one AST expression node at a time into an Expression tree.
// It shares its symbol table with the surrounding ITA builder, the same
// way the teacher's Parser shares token/position state across statement
// and expression parsing.
type Parser struct {
	Symbols   *symtab.Table
	Functions FunctionCatalog
	Location  compileerr.Location
}

// New builds a Parser bound to symbols and an optional runtime/stdlib
// catalog (may be nil, in which case only symbol-table-defined functions
// are accepted).
func New(symbols *symtab.Table, functions FunctionCatalog, loc compileerr.Location) *Parser {
	return &Parser{Symbols: symbols, Functions: functions, Location: loc}
}

// Parse dispatches on node.Kind and returns the corresponding Expression.
// Any malformed or unsupported node panics with a *compileerr.Error,
// matching the fail-fast propagation the rest of the middle end uses.
func (p *Parser) Parse(node *ast.Node) *Expression {
	if node == nil {
		compileerr.Raise(compileerr.InvalidAST, p.Location, "malformed expression node: nil")
	}
	switch node.Kind {
	case ast.KindNumberLiteral:
		return p.parseNumberLiteral(node)
	case ast.KindStringLiteral:
		return p.parseStringLiteral(node)
	case ast.KindConstantLiteral:
		return p.parseConstantLiteral(node)
	case ast.KindLValue:
		return p.parseLValue(node)
	case ast.KindVectorLValue:
		return p.parseVectorLValue(node)
	case ast.KindIndirectLValue:
		return p.parseIndirectLValue(node)
	case ast.KindAssignmentExpr:
		return p.parseAssignment(node)
	case ast.KindFunctionExpr:
		return p.parseFunction(node)
	case ast.KindRelationExpr:
		return p.parseRelation(node)
	case ast.KindUnaryExpr, ast.KindPreIncDecExpr, ast.KindPostIncDecExpr, ast.KindAddressOfExpr:
		return p.parseUnary(node)
	case ast.KindEvaluatedExpr:
		return p.parsePointer(node)
	default:
		compileerr.Raise(compileerr.InvalidAST, p.Location, "malformed expression node: unknown kind %q", node.Kind)
		return nil
	}
}

func (p *Parser) parseNumberLiteral(node *ast.Node) *Expression {
	spelling, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed number_literal node")
	}
	return &Expression{Kind: KindLiteral, Datum: parseNumberLiteral(spelling)}
}

func (p *Parser) parseStringLiteral(node *ast.Node) *Expression {
	spelling, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed string_literal node")
	}
	return &Expression{Kind: KindLiteral, Datum: parseStringLiteral(spelling)}
}

func (p *Parser) parseConstantLiteral(node *ast.Node) *Expression {
	spelling, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed constant_literal node")
	}
	return &Expression{Kind: KindLiteral, Datum: parseConstantLiteral(spelling)}
}

func (p *Parser) parseLValue(node *ast.Node) *Expression {
	name, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed lvalue node")
	}
	if !p.Symbols.IsDefined(name) {
		compileerr.Raise(compileerr.UndefinedSymbol, p.Location, "undefined symbol %s", name)
	}
	return &Expression{Kind: KindLValue, Name: name, Datum: p.Symbols.Lookup(name)}
}

func (p *Parser) parseVectorLValue(node *ast.Node) *Expression {
	name, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed vector_lvalue node")
	}
	if !p.Symbols.IsDefined(name) {
		compileerr.Raise(compileerr.UndefinedSymbol, p.Location, "undefined symbol %s", name)
	}
	idxNode, err := node.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed vector_lvalue node: missing index")
	}
	idx := p.Parse(idxNode)
	elem := p.Symbols.Lookup(name)
	return &Expression{
		Kind:  KindLValue,
		Name:  name + "[" + operandSpelling(idx) + "]",
		Datum: elem,
		Sub:   idx,
	}
}

func (p *Parser) parseIndirectLValue(node *ast.Node) *Expression {
	name, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed indirect_lvalue node")
	}
	if !p.Symbols.IsDefined(name) {
		compileerr.Raise(compileerr.UndefinedSymbol, p.Location, "undefined symbol %s", name)
	}
	target := p.Symbols.PointerTarget(name)
	return &Expression{Kind: KindLValue, Name: "*" + name, Datum: target}
}

func (p *Parser) parseAssignment(node *ast.Node) *Expression {
	lhsNode, err := node.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed assignment_expression node: missing lhs")
	}
	rhsNode, err := node.RightNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed assignment_expression node: missing rhs")
	}
	lhs := p.Parse(lhsNode)
	if !lhs.IsLValueLike() {
		compileerr.Raise(compileerr.InvalidAST, p.Location, "invalid assignment target")
	}
	rhs := p.Parse(rhsNode)
	return &Expression{Kind: KindSymbol, LHS: lhs, RHS: rhs}
}

func (p *Parser) parseFunction(node *ast.Node) *Expression {
	name, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed function_expression node")
	}
	defined := p.Symbols.IsDefined(name)
	declared := defined || (p.Functions != nil && p.Functions.IsDeclared(name))
	if !declared {
		compileerr.Raise(compileerr.UndefinedSymbol, p.Location, "undefined symbol %s", name)
	}
	var calleeDatum quad.Datum
	if defined {
		calleeDatum = p.Symbols.Lookup(name)
	} else {
		calleeDatum = quad.NewWordDatum()
	}
	callee := &Expression{Kind: KindLValue, Name: name, Datum: calleeDatum}

	argNodes, err := node.LeftNodes()
	if err != nil {
		argNodes = nil // a call with zero arguments has no "left" array
	}
	args := make([]*Expression, 0, len(argNodes))
	for _, a := range argNodes {
		args = append(args, p.Parse(a))
	}
	return &Expression{Kind: KindFunction, Callee: callee, CallArgs: args}
}

func (p *Parser) parseRelation(node *ast.Node) *Expression {
	opSpelling, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed relation_expression node")
	}
	op := catalog.Operator(opSpelling)
	if _, ok := catalog.Lookup(op); !ok {
		compileerr.Raise(compileerr.InvalidAST, p.Location, "malformed expression node: unknown operator %q", opSpelling)
	}

	if op == catalog.OpTernary {
		condNode, err := node.LeftNode()
		if err != nil {
			compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed ternary node: missing condition")
		}
		branches, err := node.RightNodes()
		if err != nil || len(branches) != 2 {
			compileerr.Raise(compileerr.InvalidAST, p.Location, "malformed ternary node: expected [then, else]")
		}
		cond := p.Parse(condNode)
		then := p.Parse(branches[0])
		els := p.Parse(branches[1])
		sentinel := &Expression{Kind: KindLiteral, Datum: quad.Datum{Value: "1", Type: catalog.Int, Size: catalog.SizeOf(catalog.Int)}}
		return &Expression{Kind: KindRelation, Op: op, Args: []*Expression{cond, then, els, sentinel}}
	}

	lhsNode, err := node.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed relation_expression node: missing lhs")
	}
	rhsNode, err := node.RightNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed relation_expression node: missing rhs")
	}
	lhs := p.Parse(lhsNode)
	rhs := p.Parse(rhsNode)
	return &Expression{Kind: KindRelation, Op: op, Args: []*Expression{lhs, rhs}}
}

func (p *Parser) parseUnary(node *ast.Node) *Expression {
	opSpelling, err := node.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed unary node")
	}
	op := catalog.Operator(opSpelling)
	if _, ok := catalog.Lookup(op); !ok {
		compileerr.Raise(compileerr.InvalidAST, p.Location, "malformed expression node: unknown operator %q", opSpelling)
	}
	subNode, err := node.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed unary node: missing operand")
	}
	sub := p.Parse(subNode)
	return &Expression{Kind: KindUnary, Op: op, Sub: sub}
}

func (p *Parser) parsePointer(node *ast.Node) *Expression {
	subNode, err := node.LeftNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, p.Location, "malformed evaluated_expression node: missing operand")
	}
	return &Expression{Kind: KindPointer, Inner: p.Parse(subNode)}
}

// operandSpelling renders an already-parsed Expression's textual spelling
// for embedding inside a compound lvalue name (e.g. a vector index).
// Literals spell as their raw value; lvalues spell as their name.
func operandSpelling(e *Expression) string {
	switch e.Kind {
	case KindLiteral:
		return e.Datum.Value
	case KindLValue:
		return e.Name
	default:
		return ""
	}
}
