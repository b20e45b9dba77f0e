package ast

import (
	"encoding/json"
	"testing"
)

func TestParseProgram(t *testing.T) {
	doc := []byte(`{
		"node": "program",
		"root": "definitions",
		"left": [
			{"node": "function_definition", "root": "main", "left": [], "right": {"node":"statement","root":"block","left":null,"right":[]}}
		]
	}`)
	prog, err := ParseProgram(doc)
	if err != nil {
		t.Fatalf("ParseProgram: %v", err)
	}
	defs, err := prog.LeftNodes()
	if err != nil {
		t.Fatalf("LeftNodes: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("len(defs) = %d, want 1", len(defs))
	}
	name, err := defs[0].RootString()
	if err != nil {
		t.Fatalf("RootString: %v", err)
	}
	if name != "main" {
		t.Fatalf("name = %q, want main", name)
	}
}

func TestParseProgramWrongRoot(t *testing.T) {
	doc := []byte(`{"node": "statement", "root": "if"}`)
	if _, err := ParseProgram(doc); err == nil {
		t.Fatal("expected an error for a non-program document root")
	}
}

func TestNodeAccessorsOnNestedNode(t *testing.T) {
	doc := []byte(`{"node":"relation_expression","root":"R_EQ","left":{"node":"lvalue","root":"x"},"right":{"node":"number_literal","root":"1"}}`)
	var n Node
	if err := json.Unmarshal(doc, &n); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	op, err := n.RootString()
	if err != nil || op != "R_EQ" {
		t.Fatalf("RootString = %q, %v", op, err)
	}
	left, err := n.LeftNode()
	if err != nil {
		t.Fatalf("LeftNode: %v", err)
	}
	if left.Kind != KindLValue {
		t.Fatalf("left.Kind = %q, want lvalue", left.Kind)
	}
}

func TestParseSymbols(t *testing.T) {
	doc := []byte(`{
		"main": {"type":"function_definition","line":1,"column":1,"start_pos":0,"end_pos":4,"end_column":5},
		"mess": {"type":"vector_lvalue","line":2,"column":1,"start_pos":10,"end_pos":14,"end_column":5,"size":6},
		"ADD": {"type":"label","line":3,"column":1,"start_pos":20,"end_pos":23,"end_column":4}
	}`)
	syms, err := ParseSymbols(doc)
	if err != nil {
		t.Fatalf("ParseSymbols: %v", err)
	}
	if !syms.IsFunction("main") {
		t.Error("expected main to be a function")
	}
	if !syms.IsVector("mess") {
		t.Error("expected mess to be a vector")
	}
	if syms["mess"].Size != 6 {
		t.Errorf("mess size = %d, want 6", syms["mess"].Size)
	}
	if !syms.IsLabel("ADD") {
		t.Error("expected ADD to be a label")
	}
}
