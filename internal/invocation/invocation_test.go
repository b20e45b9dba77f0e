package invocation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"bcc/internal/ast"
	"bcc/internal/compileerr"
	"bcc/internal/runtimecatalog"
)

func node(t *testing.T, src string) *ast.Node {
	t.Helper()
	var n ast.Node
	if err := json.Unmarshal([]byte(src), &n); err != nil {
		t.Fatalf("node(%q): %v", src, err)
	}
	return &n
}

// program is a single "main" function: auto x; x = 1; return x;
const program = `{
	"node":"program","left":[
		{"node":"function_definition","root":"main","left":[],
		 "right":{"node":"statement","root":"block","right":[
			{"node":"statement","root":"auto","left":[{"node":"lvalue","root":"x"}]},
			{"node":"statement","root":"rvalue","left":{
				"node":"assignment_expression","root":"B_ASSIGN",
				"left":{"node":"lvalue","root":"x"},
				"right":{"node":"number_literal","root":"1"}
			}},
			{"node":"statement","root":"return","left":{"node":"lvalue","root":"x"}}
		 ]}}
	]
}`

func TestNewSeedsIdentityAndRuntimeCatalog(t *testing.T) {
	inv := New(ast.Symbols{})
	if inv.ID.String() == "" {
		t.Fatalf("expected a non-empty correlation id")
	}
	if inv.Runtime == nil {
		t.Fatalf("expected a seeded runtime catalog")
	}
}

func TestFunctionsIsDeclaredUnionsHoistedAndRuntime(t *testing.T) {
	hoisted := ast.Symbols{"main": {Type: ast.SymbolFunctionDefinition}}
	fc := functions{hoisted: hoisted, runtime: runtimecatalog.New()}

	if !fc.IsDeclared("main") {
		t.Fatalf("expected main to be declared via the hoisted set")
	}
	if fc.IsDeclared("not_a_real_function") {
		t.Fatalf("did not expect an unknown name to be declared")
	}
}

func TestVoidCatalogDelegatesToRuntime(t *testing.T) {
	rt := runtimecatalog.New()
	vc := voidCatalog{runtime: rt}
	if vc.IsVoid("main") {
		t.Fatalf("a user function is never void")
	}
}

func TestCompileHappyPathProducesText(t *testing.T) {
	inv := New(ast.Symbols{})
	result, err := inv.Compile(node(t, program))
	if err != nil {
		t.Fatalf("Compile returned an error: %v", err)
	}
	if len(result.ITA) == 0 {
		t.Fatalf("expected a non-empty instruction stream")
	}
	if result.Text == "" {
		t.Fatalf("expected non-empty emitted text")
	}
	if !strings.Contains(result.Text, "__main") {
		t.Fatalf("expected emitted text to mention the main entry label, got %q", result.Text)
	}
	if result.Objects == nil || result.Objects.Frames["main"] == nil {
		t.Fatalf("expected an object table with a sealed main frame")
	}
}

func TestCompileWrapsITAErrorWithCorrelationID(t *testing.T) {
	inv := New(ast.Symbols{})
	broken := node(t, `{
		"node":"program","left":[
			{"node":"function_definition","root":"main","left":[],
			 "right":{"node":"statement","root":"block","right":[
				{"node":"statement","root":"goto","left":"nowhere"}
			 ]}}
		]
	}`)

	_, err := inv.Compile(broken)
	if err == nil {
		t.Fatalf("expected an error for a goto to an unhoisted label")
	}

	var invErr *Error
	if !errors.As(err, &invErr) {
		t.Fatalf("expected an *invocation.Error, got %T: %v", err, err)
	}
	if invErr.ID != inv.ID {
		t.Fatalf("expected the wrapped error to carry the invocation's own id")
	}
	var compileErr *compileerr.Error
	if !errors.As(invErr.Unwrap(), &compileErr) {
		t.Fatalf("expected Unwrap to reach the underlying *compileerr.Error, got %v", invErr.Unwrap())
	}
	if !strings.Contains(invErr.Error(), inv.ID.String()) {
		t.Fatalf("expected Error() to include the correlation id, got %q", invErr.Error())
	}
}
