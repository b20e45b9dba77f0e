package catalog

import "testing"

func TestOperatorMetadata(t *testing.T) {
	m, ok := Lookup(OpAdd)
	if !ok {
		t.Fatal("expected OpAdd to be in the catalog")
	}
	if m.Arity != Binary {
		t.Fatalf("OpAdd arity = %v, want Binary", m.Arity)
	}
	if m.Spelling != "+" {
		t.Fatalf("OpAdd spelling = %q, want %q", m.Spelling, "+")
	}
}

func TestInPlaceOperators(t *testing.T) {
	for _, op := range []Operator{OpPreInc, OpPostInc, OpPreDec, OpPostDec} {
		if !IsInPlace(op) {
			t.Errorf("expected %s to be in-place", op)
		}
	}
	if IsInPlace(OpAdd) {
		t.Error("expected OpAdd not to be in-place")
	}
}

func TestPrecedenceOrdering(t *testing.T) {
	if PrecedenceOf(OpAssign) >= PrecedenceOf(OpOr) {
		t.Fatal("assignment must bind looser than logical or")
	}
	if PrecedenceOf(OpMul) <= PrecedenceOf(OpAdd) {
		t.Fatal("multiplicative must bind tighter than additive")
	}
	if PrecedenceOf(OpPostInc) <= PrecedenceOf(OpMul) {
		t.Fatal("postfix must bind tighter than multiplicative")
	}
}

func TestSizeOf(t *testing.T) {
	cases := map[TypeTag]int{
		Null: 0, Byte: 1, Char: 1, Int: 4, Float: 4, Long: 8, Double: 8, Word: 8,
	}
	for tag, want := range cases {
		if got := SizeOf(tag); got != want {
			t.Errorf("SizeOf(%s) = %d, want %d", tag, got, want)
		}
	}
}

func TestInferNumberTag(t *testing.T) {
	cases := []struct {
		spelling string
		want     TypeTag
	}{
		{"5", Int},
		{"2147483647", Int},
		{"2147483648", Long},
		{"9999999999", Long},
		{"6.0", Float},
		{"3.14159265358979", Double},
	}
	for _, c := range cases {
		if got := InferNumberTag(c.spelling); got != c.want {
			t.Errorf("InferNumberTag(%q) = %s, want %s", c.spelling, got, c.want)
		}
	}
}

func TestSizeOfStringIsContentLength(t *testing.T) {
	if got := SizeOfString("hello"); got != 5 {
		t.Fatalf("SizeOfString(hello) = %d, want 5", got)
	}
}
