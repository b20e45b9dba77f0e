package temp

import (
	"encoding/json"
	"testing"

	"bcc/internal/ast"
	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	exprpkg "bcc/internal/expr"
	"bcc/internal/quad"
	"bcc/internal/symtab"
)

func node(t *testing.T, src string) *ast.Node {
	t.Helper()
	var n ast.Node
	if err := json.Unmarshal([]byte(src), &n); err != nil {
		t.Fatalf("node(%q): %v", src, err)
	}
	return &n
}

func countOp(ins quad.Instructions, op quad.Opcode) int {
	n := 0
	for _, q := range ins {
		if q.Op == op {
			n++
		}
	}
	return n
}

func TestBinarySimpleLvalues(t *testing.T) {
	syms := symtab.New()
	syms.Define("a", quad.Datum{Value: "1", Type: catalog.Int, Size: 4})
	syms.Define("b", quad.Datum{Value: "2", Type: catalog.Int, Size: 4})
	p := exprpkg.New(syms, nil, compileerr.Location{})
	e := p.Parse(node(t, `{
		"node":"relation_expression","root":"B_ADD",
		"left":{"node":"lvalue","root":"a"},
		"right":{"node":"lvalue","root":"b"}
	}`))
	q := exprpkg.BuildQueue(e)
	b := New()
	ins := b.Lower(q)
	if countOp(ins, quad.OpMov) != 1 {
		t.Fatalf("expected exactly 1 MOV, got %d: %+v", countOp(ins, quad.OpMov), ins)
	}
	result, ok := b.Result()
	if !ok || result != "_t1" {
		t.Fatalf("Result = %q, %v; want _t1, true", result, ok)
	}
}

func TestAssignmentEmitsSingleMov(t *testing.T) {
	syms := symtab.New()
	syms.Define("x", quad.Datum{Value: "0", Type: catalog.Int, Size: 4})
	p := exprpkg.New(syms, nil, compileerr.Location{})
	e := p.Parse(node(t, `{
		"node":"assignment_expression",
		"left":{"node":"lvalue","root":"x"},
		"right":{"node":"number_literal","root":"5"}
	}`))
	q := exprpkg.BuildQueue(e)
	b := New()
	ins := b.Lower(q)
	if len(ins) != 1 || ins[0].Op != quad.OpMov || ins[0].Op1 != "x" {
		t.Fatalf("got %+v", ins)
	}
	if _, ok := b.Result(); ok {
		t.Fatal("assignment should leave nothing on the result stack")
	}
}

type stubCatalog map[string]bool

func (s stubCatalog) IsDeclared(name string) bool { return s[name] }

func TestCallStackBalance(t *testing.T) {
	p := exprpkg.New(symtab.New(), stubCatalog{"exp": true}, compileerr.Location{})
	e := p.Parse(node(t, `{
		"node":"function_expression","root":"exp",
		"left":[{"node":"number_literal","root":"5"},{"node":"number_literal","root":"5"}]
	}`))
	q := exprpkg.BuildQueue(e)
	b := New()
	ins := b.Lower(q)

	pushes := countOp(ins, quad.OpPush)
	var popBytes int
	for _, i := range ins {
		if i.Op == quad.OpPop {
			switch i.Op1 {
			case "16":
				popBytes = 16
			}
		}
	}
	if pushes != 2 {
		t.Fatalf("expected 2 PUSH, got %d", pushes)
	}
	if popBytes != 16 {
		t.Fatalf("expected POP 16 (2 args * word size 8), got %d", popBytes)
	}
	if countOp(ins, quad.OpCall) != 1 {
		t.Fatalf("expected 1 CALL")
	}
	result, ok := b.Result()
	if !ok || result != "_t1" {
		t.Fatalf("Result = %q, %v", result, ok)
	}
}

func TestCallVoidSkipsReturnTemp(t *testing.T) {
	p := exprpkg.New(symtab.New(), stubCatalog{"putchar": true}, compileerr.Location{})
	e := p.Parse(node(t, `{
		"node":"function_expression","root":"putchar",
		"left":[{"node":"number_literal","root":"65"}]
	}`))
	q := exprpkg.BuildQueue(e)
	b := New()
	b.VoidCatalog = stubCatalog{"putchar": true}
	ins := b.Lower(q)
	for _, i := range ins {
		if i.Op == quad.OpMov && i.Op2 == "RET" {
			t.Fatalf("did not expect a RET read for a void call: %+v", ins)
		}
	}
	if _, ok := b.Result(); ok {
		t.Fatal("a void call should leave nothing on the result stack")
	}
}

func TestTemporaryFreshnessAcrossMultipleStatements(t *testing.T) {
	syms := symtab.New()
	syms.Define("a", quad.Datum{Value: "1", Type: catalog.Int, Size: 4})
	syms.Define("b", quad.Datum{Value: "2", Type: catalog.Int, Size: 4})
	p := exprpkg.New(syms, nil, compileerr.Location{})

	seen := map[string]bool{}
	counter := 0
	for i := 0; i < 3; i++ {
		e := p.Parse(node(t, `{
			"node":"relation_expression","root":"B_ADD",
			"left":{"node":"lvalue","root":"a"},
			"right":{"node":"lvalue","root":"b"}
		}`))
		q := exprpkg.BuildQueue(e)
		b := New()
		b.SetTempCounter(counter)
		ins := b.Lower(q)
		counter = b.TempCounter()
		for _, ins := range ins {
			if ins.Op == quad.OpMov {
				if seen[ins.Op1] {
					t.Fatalf("temporary %s assigned more than once", ins.Op1)
				}
				seen[ins.Op1] = true
			}
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct temporaries across 3 statements, got %d", len(seen))
	}
}

func TestUnaryInPlacePreIncrement(t *testing.T) {
	syms := symtab.New()
	syms.Define("x", quad.Datum{Value: "1", Type: catalog.Int, Size: 4})
	p := exprpkg.New(syms, nil, compileerr.Location{})
	e := p.Parse(node(t, `{"node":"pre_inc_dec_expression","root":"PRE_INC","left":{"node":"lvalue","root":"x"}}`))
	q := exprpkg.BuildQueue(e)
	b := New()
	ins := b.Lower(q)
	if len(ins) != 1 || ins[0].Op1 != "x" {
		t.Fatalf("expected a single in-place MOV on x, got %+v", ins)
	}
	result, ok := b.Result()
	if !ok || result != "x" {
		t.Fatalf("expected the lvalue to be re-pushed, got %q, %v", result, ok)
	}
}

// TestBinaryPrioritizesPendingTempOverRawOperand demonstrates the
// two-stack priority rule credence/ir/temp.cc's
// binary_operands_to_temporary_stack implements: when a call's "_tN =
// RET" result is still pending on the temporary stack and a later plain
// lvalue sits on the operand stack, a following binary operator must
// combine the pending temporary with the operand (the "balanced" case),
// not just pop whichever two entries were pushed most recently. Combining
// the two requires first flushing the pending temp into its own
// instruction — the "_tN = _tM" rewrap line a single unified LIFO stack
// has no equivalent step for, since it would just pop the top two entries
// and combine them in one instruction with no intervening flush.
func TestBinaryPrioritizesPendingTempOverRawOperand(t *testing.T) {
	q := exprpkg.Queue{
		{Kind: exprpkg.ItemOperand, Operand: &exprpkg.Expression{Kind: exprpkg.KindLValue, Name: "f"}},
		{Kind: exprpkg.ItemOperator, Operator: catalog.OpCall, ArgCount: 0},
		{Kind: exprpkg.ItemOperand, Operand: &exprpkg.Expression{Kind: exprpkg.KindLValue, Name: "b"}},
		{Kind: exprpkg.ItemOperator, Operator: catalog.OpAdd},
	}
	b := New()
	ins := b.Lower(q)

	var movs quad.Instructions
	for _, i := range ins {
		if i.Op == quad.OpMov {
			movs = append(movs, i)
		}
	}
	if len(movs) != 2 {
		t.Fatalf("expected 2 MOVs (the call's RET and the flush), got %+v", movs)
	}
	ret := movs[0]
	if ret.Op2 != "RET" {
		t.Fatalf("expected movs[0] to mint the call's RET temporary, got %+v", ret)
	}
	flush := movs[1]
	if flush.Op2 != ret.Op1 {
		t.Fatalf("expected movs[1] to flush the pending RET temp %q into its own instruction, got %+v", ret.Op1, flush)
	}

	result, ok := b.Result()
	want := "b + " + flush.Op1
	if !ok || result != want {
		t.Fatalf("Result() = %q, %v; want %q (the combine text, still pending rather than emitted)", result, ok, want)
	}
}

func TestTernaryBalancesStack(t *testing.T) {
	syms := symtab.New()
	syms.Define("x", quad.Datum{Value: "1", Type: catalog.Int, Size: 4})
	p := exprpkg.New(syms, nil, compileerr.Location{})
	e := p.Parse(node(t, `{
		"node":"relation_expression","root":"B_TERNARY",
		"left":{"node":"lvalue","root":"x"},
		"right":[{"node":"number_literal","root":"1"},{"node":"number_literal","root":"0"}]
	}`))
	q := exprpkg.BuildQueue(e)
	b := New()
	ins := b.Lower(q)
	if countOp(ins, quad.OpPush) != 1 || countOp(ins, quad.OpPop) != 1 {
		t.Fatalf("expected exactly one PUSH/POP pair, got %+v", ins)
	}
	last := ins[len(ins)-1]
	if last.Op != quad.OpPop || last.Op1 != "8" {
		t.Fatalf("expected trailing POP 8, got %+v", last)
	}
	if _, ok := b.Result(); !ok {
		t.Fatal("expected the ternary's value to remain usable")
	}
}
