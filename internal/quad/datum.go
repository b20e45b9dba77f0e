package quad

import (
	"fmt"
	"strconv"
	"strings"

	"bcc/internal/catalog"
)

// Datum is spec.md §3's "Data_Type" triple: a literal's lexical spelling,
// its inferred type tag, and its size in bytes.
type Datum struct {
	Value string
	Type  catalog.TypeTag
	Size  int
}

// Format renders a Datum into its canonical serialised form "(value:type:size)",
// the form immediates take inside ITA operands (spec.md §3).
func (d Datum) Format() string {
	return fmt.Sprintf("(%s:%s:%d)", d.Value, d.Type, d.Size)
}

func (d Datum) String() string { return d.Format() }

// ParseDatum parses the canonical "(value:type:size)" form back into a
// Datum. It is the inverse of Format, and together they must satisfy
// spec.md §8's round-trip law: ParseDatum(d.Format()) == d.
//
// The value field may itself contain ':' (e.g. a string literal's
// contents), so parsing splits from the right: the last two ':'-separated
// fields are always type and size, everything before them is value.
func ParseDatum(s string) (Datum, error) {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return Datum{}, fmt.Errorf("quad: malformed datum %q: missing parens", s)
	}
	inner := s[1 : len(s)-1]
	lastColon := strings.LastIndex(inner, ":")
	if lastColon < 0 {
		return Datum{}, fmt.Errorf("quad: malformed datum %q: missing size field", s)
	}
	sizeStr := inner[lastColon+1:]
	rest := inner[:lastColon]
	secondColon := strings.LastIndex(rest, ":")
	if secondColon < 0 {
		return Datum{}, fmt.Errorf("quad: malformed datum %q: missing type field", s)
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil {
		return Datum{}, fmt.Errorf("quad: malformed datum %q: bad size: %w", s, err)
	}
	return Datum{
		Value: rest[:secondColon],
		Type:  catalog.TypeTag(rest[secondColon+1:]),
		Size:  size,
	}, nil
}

// IsImmediate reports whether s looks like a serialised Datum (as opposed
// to a bare name such as a temporary, parameter, or identifier).
func IsImmediate(s string) bool {
	return len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')'
}

// NewWordDatum is the conventional "__WORD__" placeholder datum spec.md
// §4.F uses for a function's own symbol table entry and for untyped
// parameters before their real type is known.
func NewWordDatum() Datum {
	return Datum{Value: "__WORD__", Type: catalog.Word, Size: catalog.SizeOf(catalog.Word)}
}

// NullDatum is the zero-valued datum auto-bound locals start as.
func NullDatum() Datum {
	return Datum{Value: "", Type: catalog.Null, Size: 0}
}
