// Package compileerr defines the compiler's single error taxonomy.
//
// Every stage of the middle end (expr, ita, object, symtab, temp) raises
// errors of this shape and nothing else. Propagation is fail-fast: a stage
// panics with a *Error on the first fatal condition and recovers at its own
// entry point (see the Recover helper), which matches the "no local
// recovery... first error aborts compilation" policy the spec requires
// without threading an error return through every recursive call.
package compileerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind enumerates the compile error taxonomy.
type Kind string

const (
	UndefinedSymbol    Kind = "UndefinedSymbol"
	DuplicateDefinition Kind = "DuplicateDefinition"
	TypeMismatch       Kind = "TypeMismatch"
	OutOfRangeIndex    Kind = "OutOfRangeIndex"
	InvalidAST         Kind = "InvalidAST"
	InvalidStatement   Kind = "InvalidStatement"
	StackOverflow      Kind = "StackOverflow"
	RuntimeCatalogMismatch Kind = "RuntimeCatalogMismatch"
)

// Location is a source position drawn from the hoisted symbol table when
// the offending identifier has an entry there; otherwise it carries the
// enclosing function name only (Line/Column are zero in that case).
type Location struct {
	Function string
	Line     int
	Column   int
}

func (l Location) String() string {
	if l.Line == 0 && l.Column == 0 {
		if l.Function == "" {
			return "<unknown>"
		}
		return l.Function
	}
	if l.Function == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.Function, l.Line, l.Column)
}

// Error is the single error type every compile stage produces.
type Error struct {
	Kind     Kind
	Detail   string
	Location Location
	cause    error
}

// New builds a compile error with no wrapped cause.
func New(kind Kind, location Location, detail string, args ...interface{}) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{Kind: kind, Detail: detail, Location: location}
}

// Wrap builds a compile error that carries an underlying cause (e.g. a
// strconv failure while parsing a literal's spelling into a Datum). The
// cause is attached with pkg/errors so a %+v on the returned error prints
// the originating stack trace alongside the compiler-level message.
func Wrap(cause error, kind Kind, location Location, detail string, args ...interface{}) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{Kind: kind, Detail: detail, Location: location, cause: errors.WithStack(cause)}
}

// Error implements the error interface with the wire format spec.md's
// External Interfaces section mandates: "<location> error: <kind>: <detail>".
func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s: %s", e.Location, e.Kind, e.Detail)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// Cause returns the deepest pkg/errors-wrapped cause, or nil.
func (e *Error) Cause() error {
	if e.cause == nil {
		return nil
	}
	return errors.Cause(e.cause)
}

// Recover turns a panic carrying a *Error into a returned error. Call it
// deferred at the single exported entry point of a compile stage:
//
//	func Build(...) (result Result, err error) {
//	    defer compileerr.Recover(&err)
//	    ...
//	}
//
// A panic with any other value is re-raised; only *Error panics are this
// package's business.
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if ce, ok := r.(*Error); ok {
		*err = ce
		return
	}
	panic(r)
}

// Raise panics with a freshly built *Error. Stages call this instead of
// returning an error from deep recursive helpers.
func Raise(kind Kind, location Location, detail string, args ...interface{}) {
	panic(New(kind, location, detail, args...))
}

// RaiseWrap panics with a freshly built *Error that wraps cause.
func RaiseWrap(cause error, kind Kind, location Location, detail string, args ...interface{}) {
	panic(Wrap(cause, kind, location, detail, args...))
}
