package runtimecatalog

import "testing"

func TestStdlibDeclared(t *testing.T) {
	c := New()
	for _, name := range []string{"printf", "print", "putchar", "getchar"} {
		if !c.IsDeclared(name) {
			t.Fatalf("expected %s to be declared", name)
		}
	}
}

func TestUndeclaredName(t *testing.T) {
	c := New()
	if c.IsDeclared("not_a_real_function") {
		t.Fatal("expected undeclared name to report false")
	}
}

func TestVariadicOnlyPrintf(t *testing.T) {
	c := New()
	if !c.IsVariadic("printf") {
		t.Fatal("expected printf to be variadic")
	}
	for _, name := range []string{"print", "putchar", "getchar"} {
		if c.IsVariadic(name) {
			t.Fatalf("expected %s to be non-variadic", name)
		}
	}
}

func TestCheckArity(t *testing.T) {
	c := New()
	cases := []struct {
		name  string
		count int
		want  bool
	}{
		{"printf", 1, true},
		{"printf", 10, true},
		{"printf", 11, false},
		{"print", 2, true},
		{"print", 1, false},
		{"getchar", 0, true},
		{"getchar", 1, false},
		{"mystery", 0, false},
	}
	for _, c2 := range cases {
		if got := c.CheckArity(c2.name, c2.count); got != c2.want {
			t.Errorf("CheckArity(%q, %d) = %v, want %v", c2.name, c2.count, got, c2.want)
		}
	}
}

func TestArityOf(t *testing.T) {
	c := New()
	if n, ok := c.ArityOf("putchar"); !ok || n != 1 {
		t.Fatalf("ArityOf(putchar) = %d, %v; want 1, true", n, ok)
	}
	if _, ok := c.ArityOf("mystery"); ok {
		t.Fatal("expected ArityOf for an undeclared name to report false")
	}
}

func TestIsVoidAlwaysFalseToday(t *testing.T) {
	c := New()
	for _, name := range []string{"printf", "print", "putchar", "getchar", "mystery"} {
		if c.IsVoid(name) {
			t.Fatalf("did not expect %s to be void", name)
		}
	}
}

func TestSyscallNamesSorted(t *testing.T) {
	names := SyscallNames()
	for i := 1; i < len(names); i++ {
		if names[i] <= names[i-1] {
			t.Fatalf("SyscallNames() not sorted: %v", names)
		}
	}
}

func TestSyscallsAreDeclaredInCatalog(t *testing.T) {
	c := New()
	for _, name := range SyscallNames() {
		if !c.IsDeclared(name) {
			t.Fatalf("syscall %s registered but not declared in catalog", name)
		}
	}
}
