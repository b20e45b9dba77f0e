// Package ita implements the ITA builder / branch manager (component F):
// it walks the program AST's statements and emits the flat, labelled
// quadruple stream the object-table pass (package object) consumes.
// Expression statements and predicates are delegated to package expr
// (component C/D) and package temp (component E); this package owns only
// the structured-control-flow choreography — label allocation, the
// branch stack, and per-function frame bracketing.
package ita

import (
	"strconv"
	"strings"

	"bcc/internal/ast"
	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	"bcc/internal/expr"
	"bcc/internal/quad"
	"bcc/internal/symtab"
	"bcc/internal/temp"
)

// Builder holds the mutable state of one compilation's ITA construction:
// the shared symbol table, the catalogs needed to resolve a call or a
// goto target, the running label counter (label numbering is
// invocation-wide, unlike the temporary counter which resets per
// function — spec.md §9), the branch stack, and the emitted stream.
type Builder struct {
	Symbols   *symtab.Table
	Hoisted   ast.Symbols
	Functions expr.FunctionCatalog
	Void      temp.VoidCatalog

	labelCounter int
	branch       []branchEntry
	temps        *temp.Builder
	currentFunc  string
	root         quad.Label
	out          quad.Instructions
}

// New returns a Builder ready to process one program AST.
func New(symbols *symtab.Table, hoisted ast.Symbols, functions expr.FunctionCatalog, void temp.VoidCatalog) *Builder {
	temps := temp.New()
	temps.VoidCatalog = void
	return &Builder{
		Symbols:   symbols,
		Hoisted:   hoisted,
		Functions: functions,
		Void:      void,
		temps:     temps,
	}
}

// Build runs New(...).BuildFromDefinitions(program) and recovers any
// compile error panic into a returned error, the single exported entry
// point this stage's callers (package invocation) use.
func Build(program *ast.Node, symbols *symtab.Table, hoisted ast.Symbols, functions expr.FunctionCatalog, void temp.VoidCatalog) (ins quad.Instructions, err error) {
	defer compileerr.Recover(&err)
	b := New(symbols, hoisted, functions, void)
	b.BuildFromDefinitions(program)
	return b.out, nil
}

func (b *Builder) emit(qs ...quad.Quadruple) {
	for _, q := range qs {
		b.out = b.out.Append(q)
	}
}

func (b *Builder) loc() compileerr.Location {
	return compileerr.Location{Function: b.currentFunc}
}

func (b *Builder) freshLabel() quad.Label {
	b.labelCounter++
	return quad.AutoLabel(b.labelCounter)
}

// mintTemp allocates a fresh "_tN" name sharing the per-function counter
// the temp.Builder also advances, so comparator temporaries minted
// directly by this package never collide with ones the expression
// lowering mints.
func (b *Builder) mintTemp() string {
	n := b.temps.TempCounter() + 1
	b.temps.SetTempCounter(n)
	return "_t" + strconv.Itoa(n)
}

func (b *Builder) parserFor(n *ast.Node) *expr.Parser {
	loc := b.loc()
	loc.Line = n.Line
	return expr.New(b.Symbols, b.Functions, loc)
}

// lowerExpression parses n as an expression, lowers it through the
// operand queue and temporary builder, appends the resulting quadruples,
// and returns the statement's final value spelling, if any remains.
func (b *Builder) lowerExpression(n *ast.Node) (string, bool) {
	p := b.parserFor(n)
	e := p.Parse(n)
	q := expr.BuildQueue(e)
	b.emit(b.temps.Lower(q)...)
	return b.temps.Result()
}

func (b *Builder) lastIsTerminal() bool {
	if len(b.out) == 0 {
		return false
	}
	switch b.out[len(b.out)-1].Op {
	case quad.OpGoto, quad.OpRet:
		return true
	}
	return false
}

// BuildFromDefinitions is the component F top-level dispatch: vector
// definitions are processed first (spec.md §4.F), populating global
// symbols before any function body is lowered, then function
// definitions in source order.
func (b *Builder) BuildFromDefinitions(program *ast.Node) {
	defs, err := program.LeftNodes()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed program: missing definitions")
	}
	for _, d := range defs {
		if d.Kind == ast.KindVectorDefinition {
			b.buildVectorDefinition(d)
		}
	}
	for _, d := range defs {
		if d.Kind == ast.KindFunctionDefinition {
			b.buildFunctionDefinition(d)
		}
	}
}

// buildVectorDefinition registers a program-scope vector: it defines the
// vector's own symbol (so later vector_lvalue references resolve), then
// emits one program-scope MOV per declared initialiser element, outside
// any function frame. The object-table pass (component G) recognises
// these as vector registrations: a MOV whose lhs has the "name[idx]"
// shape and occurs outside a FUNC_START/FUNC_END bracket populates the
// object table's vector-by-name map and its literal side-channel
// (spec.md §8 scenario S6), rather than this package inventing a
// dedicated vector-definition opcode the Quadruple model does not have.
func (b *Builder) buildVectorDefinition(n *ast.Node) {
	name, err := n.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed vector_definition node")
	}

	elements, err := n.RightNodes()
	if err != nil {
		elements = nil
	}

	declaredSize := len(elements)
	if sizeNode, serr := n.LeftNode(); serr == nil {
		p := b.parserFor(n)
		sizeExpr := p.Parse(sizeNode)
		if n, aerr := strconv.Atoi(sizeExpr.Datum.Value); aerr == nil && n > declaredSize {
			declaredSize = n
		}
	}
	if declaredSize > 999 {
		compileerr.Raise(compileerr.StackOverflow, b.loc(), "vector %s declared with %d elements, exceeds the 999-element cap", name, declaredSize)
	}

	b.Symbols.Define(name, quad.Datum{Value: "__WORD__", Type: catalog.Word, Size: catalog.PointerWidth})

	p := b.parserFor(n)
	for i, el := range elements {
		elExpr := p.Parse(el)
		b.emit(quad.Mov(name+"["+strconv.Itoa(i)+"]", elExpr.Datum.Format()))
	}
}

// buildFunctionDefinition implements spec.md §4.F's six-step per-function
// recipe exactly.
func (b *Builder) buildFunctionDefinition(n *ast.Node) {
	name, err := n.RootString()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "malformed function_definition node")
	}
	b.currentFunc = name

	paramNodes, err := n.LeftNodes()
	if err != nil {
		paramNodes = nil // a nullary function has no "left" array
	}
	bodyNode, err := n.RightNode()
	if err != nil {
		compileerr.RaiseWrap(err, compileerr.InvalidAST, b.loc(), "function %s: missing body", name)
	}

	paramNames := make([]string, 0, len(paramNodes))
	for _, pn := range paramNodes {
		pname, perr := pn.RootString()
		if perr != nil {
			compileerr.RaiseWrap(perr, compileerr.InvalidAST, b.loc(), "function %s: malformed parameter", name)
		}
		paramNames = append(paramNames, pname)
	}
	labelText := name
	if len(paramNames) > 0 {
		labelText += "(" + strings.Join(paramNames, ",") + ")"
	}

	// 1. LABEL, FUNC_START.
	b.emit(quad.LabelQuad(quad.Label("__"+labelText)), quad.FuncStart())

	// 2. Reset the temporary counter, mint a fresh root continuation label.
	// This is the function's single convergence point before LEAVE, not a
	// break target, so it is kept outside the branch stack: a bare break
	// with no enclosing while/switch must still be rejected (spec.md §4.F).
	b.temps.ResetTemps()
	root := b.freshLabel()
	prevRoot := b.root
	b.root = root

	// 3. Bind parameters.
	for _, pn := range paramNodes {
		pname, _ := pn.RootString()
		b.Symbols.Define(pname, paramDatum(pn))
	}

	// 4. Recurse into the body.
	b.buildBlock(bodyNode)

	// 5. Root label, LEAVE, FUNC_END.
	b.root = prevRoot
	b.emit(quad.LabelQuad(root), quad.Leave(), quad.FuncEnd())

	// 6. Unbind parameters.
	for _, pn := range paramNodes {
		pname, _ := pn.RootString()
		b.Symbols.Remove(pname)
	}
	b.currentFunc = ""
}

// paramDatum infers a parameter's initial datum from its declared AST
// shape: word by default, a pointer-sized word if declared
// indirect_lvalue, or a byte-vector marker if declared vector_lvalue
// (spec.md §4.F step 3).
func paramDatum(pn *ast.Node) quad.Datum {
	switch pn.Kind {
	case ast.KindIndirectLValue:
		return quad.NewWordDatum()
	case ast.KindVectorLValue:
		return quad.Datum{Value: "", Type: catalog.Byte, Size: 0}
	default:
		return quad.NewWordDatum()
	}
}
