// Package runtimecatalog implements component H: the runtime/standard
// library catalog. It declares which names are pre-existing — B's tiny
// standard library (printf, print, putchar, getchar) plus the current
// (OS, arch) target's syscalls — so that calls to them are accepted
// without requiring an ITA body; the back end links against a prebuilt
// object file for these instead.
package runtimecatalog

import "sort"

// Entry is one standard-library function's declared shape: its arity, and
// whether it accepts a variable number of arguments up to that arity.
type Entry struct {
	Name     string
	Arity    int
	Variadic bool
}

// stdlib is the fixed standard-library table spec.md §4.H enumerates.
var stdlib = []Entry{
	{Name: "printf", Arity: 10, Variadic: true},
	{Name: "print", Arity: 2, Variadic: false},
	{Name: "putchar", Arity: 1, Variadic: false},
	{Name: "getchar", Arity: 0, Variadic: false},
}

// platformSyscalls is populated by the GOOS-specific init() in this
// package (see syscalls_linux.go, syscalls_darwin.go, syscalls_bsd.go,
// syscalls_other.go): a name -> raw syscall number mapping backed by
// golang.org/x/sys's generated per-(OS,arch) constants, so the catalog
// reflects the real syscall table of the platform it was built for
// instead of a hand-maintained list.
var platformSyscalls = map[string]uintptr{}

func registerSyscalls(m map[string]uintptr) {
	platformSyscalls = m
}

// Catalog answers the declared-name queries the hoisting pass and the
// expression parser need before the object-table pass runs.
type Catalog struct {
	byName map[string]Entry
}

// New builds a Catalog seeded with the standard-library table and the
// current platform's syscall names (each syscall is registered as a
// single-argument, non-variadic entry — the back end resolves the actual
// calling convention; this core only needs to know the name is declared).
func New() *Catalog {
	c := &Catalog{byName: make(map[string]Entry, len(stdlib)+len(platformSyscalls))}
	for _, e := range stdlib {
		c.byName[e.Name] = e
	}
	for name := range platformSyscalls {
		c.byName[name] = Entry{Name: name, Arity: 1, Variadic: false}
	}
	return c
}

// IsDeclared reports whether name is a known stdlib function or syscall.
func (c *Catalog) IsDeclared(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Lookup returns name's declared Entry, if any.
func (c *Catalog) Lookup(name string) (Entry, bool) {
	e, ok := c.byName[name]
	return e, ok
}

// IsVariadic reports whether name accepts a variable argument count up to
// its declared arity.
func (c *Catalog) IsVariadic(name string) bool {
	e, ok := c.byName[name]
	return ok && e.Variadic
}

// ArityOf returns name's declared arity, and whether name is declared at
// all.
func (c *Catalog) ArityOf(name string) (int, bool) {
	e, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	return e.Arity, true
}

// CheckArity reports whether calling name with argCount arguments is
// compatible with its declared arity: an exact match for non-variadic
// entries, or up to the declared cap for variadic ones.
func (c *Catalog) CheckArity(name string, argCount int) bool {
	e, ok := c.byName[name]
	if !ok {
		return false
	}
	if e.Variadic {
		return argCount <= e.Arity
	}
	return argCount == e.Arity
}

// IsVoid reports whether name is known to produce no return value. None
// of B's four standard-library functions are void (putchar and printf
// both return a count in the original implementation), so this is
// reserved for future catalog entries and always returns false today.
func (c *Catalog) IsVoid(name string) bool {
	return false
}

// SyscallNames returns the current platform's declared syscall names, in
// sorted order.
func SyscallNames() []string {
	names := make([]string, 0, len(platformSyscalls))
	for name := range platformSyscalls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
