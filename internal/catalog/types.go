package catalog

import (
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// TypeTag is one of spec.md §3's primitive type tags.
type TypeTag string

const (
	Null   TypeTag = "null"
	Word   TypeTag = "word"
	Int    TypeTag = "int"
	Long   TypeTag = "long"
	Float  TypeTag = "float"
	Double TypeTag = "double"
	Byte   TypeTag = "byte"
	Char   TypeTag = "char"
	String TypeTag = "string"
)

// PointerWidth is the width, in bytes, of a pointer on the compilation's
// target. 64-bit targets (x86-64, ARM64 — the only backends this core's
// ITA feeds) use 8.
const PointerWidth = 8

// fixedSizes holds every tag whose size does not depend on its spelling;
// "string" is handled separately by SizeOfString since its size is the
// length of its contents.
var fixedSizes = map[TypeTag]int{
	Null:   0,
	Byte:   1,
	Char:   1,
	Int:    4,
	Float:  4,
	Long:   8,
	Double: 8,
	Word:   PointerWidth,
}

// SizeOf returns tag's storage width in bytes. Panics (a programmer error,
// not a compile error) if tag is "string" — callers must use SizeOfString,
// since a string's size depends on its spelling.
func SizeOf(tag TypeTag) int {
	if tag == String {
		panic("catalog: SizeOf(String) has no fixed width; use SizeOfString")
	}
	return fixedSizes[tag]
}

// SizeOfString returns the size of a string datum: the length of its
// (already unescaped) contents.
func SizeOfString(contents string) int {
	return len(contents)
}

// clampedWidth reports whether v fits in a signed type of byteWidth bytes,
// generic over any integer kind via constraints.Integer (the role
// golang.org/x/exp/constraints plays before the stdlib "cmp"/generic
// numeric constraints existed).
func clampedWidth[T constraints.Integer](v T, byteWidth int) bool {
	bits := byteWidth * 8
	if bits >= 64 {
		return true
	}
	max := int64(1)<<(bits-1) - 1
	min := -(int64(1) << (bits - 1))
	iv := int64(v)
	return iv >= min && iv <= max
}

// InferNumberTag classifies a numeric literal's lexical spelling the way
// spec.md §4.C requires: integer spellings that fit in "int" (32-bit
// signed) take tag Int, otherwise Long; decimal spellings default to
// Float unless the spelling carries more significant digits than a
// float32 can round-trip, in which case Double.
func InferNumberTag(spelling string) TypeTag {
	if strings.ContainsAny(spelling, ".eE") {
		if fitsFloat32(spelling) {
			return Float
		}
		return Double
	}
	n, err := strconv.ParseInt(spelling, 10, 64)
	if err != nil {
		// Overflows int64's own range: still a Long, the widest integer tag.
		return Long
	}
	if clampedWidth(n, fixedSizes[Int]) {
		return Int
	}
	return Long
}

// fitsFloat32 reports whether spelling round-trips through a float32
// without losing significant digits, per spec.md §4.C's "enough
// significant digits to lose precision at 32-bit" rule.
func fitsFloat32(spelling string) bool {
	f64, err := strconv.ParseFloat(spelling, 64)
	if err != nil {
		return false
	}
	f32 := float32(f64)
	// Round-trip: render the float32 at its own shortest precision and
	// reparse it; a significant digit the float32 dropped shows up as a
	// difference from the original spelling's value.
	back, err := strconv.ParseFloat(strconv.FormatFloat(float64(f32), 'g', -1, 32), 64)
	return err == nil && back == f64
}

// SizeOfNumber returns the storage size implied by InferNumberTag(spelling).
func SizeOfNumber(spelling string) int {
	tag := InferNumberTag(spelling)
	return SizeOf(tag)
}
