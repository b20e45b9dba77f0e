package object

import (
	"strconv"
	"strings"

	"bcc/internal/catalog"
	"bcc/internal/quad"
)

const maxVectorSize = 999 // credence/ir/object.h, Vector::max_size (SPEC_FULL §5.2)

// Vector tracks one named byte vector's element types and known size,
// populated from the program-scope MOV quadruples internal/ita emits per
// initialiser element (outside any FUNC_START/FUNC_END bracket).
type Vector struct {
	Name        string
	Size        int
	ElementType catalog.TypeTag
	Elements    map[int]quad.Datum
}

func newVector(name string) *Vector {
	return &Vector{Name: name, Elements: make(map[int]quad.Datum)}
}

// splitIndex parses a "name[idx]"-shaped operand into its name and
// integer index. ok is false if s is not index-shaped at all.
func splitIndex(s string) (name string, idx int, ok bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return "", 0, false
	}
	name = s[:open]
	idxStr := s[open+1 : len(s)-1]
	n, err := strconv.Atoi(idxStr)
	if err != nil {
		return "", 0, false
	}
	return name, n, true
}

func (t *Table) registerVectorElement(lhs, rhs string) {
	name, idx, ok := splitIndex(lhs)
	if !ok {
		return
	}
	v, exists := t.Vectors[name]
	if !exists {
		v = newVector(name)
		t.Vectors[name] = v
	}
	if idx+1 > v.Size {
		v.Size = idx + 1
	}
	if v.Size > maxVectorSize {
		t.raiseOverflow(name, v.Size)
	}
	if quad.IsImmediate(rhs) {
		d, err := quad.ParseDatum(rhs)
		if err == nil {
			v.Elements[idx] = d
			t.literals.collect(d)
			if v.ElementType == "" {
				v.ElementType = d.Type
			}
		}
	}
}
