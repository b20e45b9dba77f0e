package object

import (
	"strings"

	"bcc/internal/catalog"
	"bcc/internal/compileerr"
	"bcc/internal/quad"
)

// applyMov is the heart of the type check (spec.md §4.G). Dispatch is
// primarily on the shape of lhs, resolving rhs through the frame's
// temporary chain when it names one, per the five-case recipe the spec
// lays out.
func (t *Table) applyMov(idx int, lhs, rhs string) {
	if t.current == nil {
		// A program-scope vector initialiser MOV, emitted by internal/ita
		// outside any function frame (spec.md §8 scenario S6).
		t.registerVectorElement(lhs, rhs)
		return
	}
	f := t.current

	switch {
	case f.isTempName(lhs):
		// Case 1: store rhs into the frame's temporary map verbatim.
		f.Temps[lhs] = quad.Datum{Value: rhs}
		t.collectIfImmediate(rhs)

	case isVectorIndexed(lhs):
		t.assignVectorElement(f, lhs, rhs)

	case strings.HasPrefix(lhs, "*"):
		t.assignThroughPointer(f, lhs, rhs)

	default:
		t.assignNamed(f, lhs, rhs)
	}
}

func isVectorIndexed(s string) bool {
	_, _, ok := splitIndex(s)
	return ok
}

func (t *Table) collectIfImmediate(s string) {
	if !quad.IsImmediate(s) {
		return
	}
	d, err := quad.ParseDatum(s)
	if err != nil {
		return
	}
	t.literals.collect(d)
}

// resolvedRHS follows rhs through the current frame's temporary chain
// when it names one, otherwise returns rhs unchanged (spec.md §4.G rule
// 2's "resolve the temporary chain back to its root datum").
func (f *Frame) resolvedRHS(rhs string) string {
	if f.isTempName(rhs) {
		return f.resolveRoot(rhs)
	}
	return rhs
}

// assignNamed handles a named-local lhs: rule 2 (temp/param rhs chasing
// RET and pointer/vector delegation), rule 5 (unary-expression rhs), and
// rule 4 (scalar-to-scalar), in that priority order.
func (t *Table) assignNamed(f *Frame, lhs, rhs string) {
	resolved := f.resolvedRHS(rhs)

	if resolved == "RET" {
		if t.lastReturn == nil {
			compileerr.Raise(compileerr.InvalidAST, t.loc(), "%s = RET with no preceding CALL result", lhs)
		}
		f.declareLocal(lhs, *t.lastReturn)
		f.AllocatedBytes += t.lastReturn.Size
		return
	}

	if quad.IsImmediate(resolved) {
		d, err := quad.ParseDatum(resolved)
		if err != nil {
			compileerr.RaiseWrap(err, compileerr.InvalidAST, t.loc(), "malformed immediate %q", resolved)
		}
		if dst, dstOk := f.Locals[lhs]; dstOk && dst.Size != 0 && dst.Size != d.Size {
			compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s = %s: size mismatch (%d vs %d)", lhs, resolved, dst.Size, d.Size)
		}
		t.literals.collect(d)
		f.declareLocal(lhs, d)
		f.AllocatedBytes += d.Size
		return
	}

	if strings.HasPrefix(resolved, "&") || isVectorIndexed(resolved) || f.Pointers[lhs] != "" || f.Pointers[resolved] != "" {
		t.assignPointerOrVectorRule(f, lhs, resolved)
		return
	}

	if op, sub, ok := parseUnary(resolved); ok {
		t.assignUnary(f, lhs, op, sub)
		return
	}

	// Rule 4: plain scalar-to-scalar. Enforce equal-size assignment
	// against whatever datum the source name currently carries.
	src, ok := t.lookupDatum(f, resolved)
	if !ok {
		compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined symbol %s", resolved)
	}
	if dst, dstOk := f.Locals[lhs]; dstOk && dst.Size != 0 && dst.Size != src.Size {
		compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s = %s: size mismatch (%d vs %d)", lhs, resolved, dst.Size, src.Size)
	}
	f.declareLocal(lhs, src)
	f.AllocatedBytes += src.Size
}

// parseUnary recognises the textual unary-expression RHS forms the
// temporary builder emits ("&x", "*x", "+x", "-x", "++x", "--x", "~x").
func parseUnary(s string) (op catalog.Operator, operand string, ok bool) {
	switch {
	case strings.HasPrefix(s, "&"):
		return catalog.OpAddrOf, s[1:], true
	case strings.HasPrefix(s, "++"):
		return catalog.OpPreInc, s[2:], true
	case strings.HasPrefix(s, "--"):
		return catalog.OpPreDec, s[2:], true
	case strings.HasPrefix(s, "*"):
		return catalog.OpIndirection, s[1:], true
	case strings.HasPrefix(s, "~"):
		return catalog.OpOnesComplement, s[1:], true
	case strings.HasPrefix(s, "+"):
		return catalog.OpUnaryPlus, s[1:], true
	case strings.HasPrefix(s, "-"):
		return catalog.OpUnaryMinus, s[1:], true
	default:
		return "", "", false
	}
}

// assignUnary implements rule 5's unary re-dispatch.
func (t *Table) assignUnary(f *Frame, lhs string, op catalog.Operator, operand string) {
	switch op {
	case catalog.OpAddrOf:
		t.assignPointerOrVectorRule(f, lhs, "&"+operand)
		return
	case catalog.OpIndirection:
		if f.Pointers[lhs] != "" {
			compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s: *%s target cannot itself be a pointer", lhs, operand)
		}
		f.declareLocal(lhs, quad.NewWordDatum())
		f.AllocatedBytes += catalog.PointerWidth
		return
	case catalog.OpUnaryPlus, catalog.OpUnaryMinus, catalog.OpPreInc, catalog.OpPreDec, catalog.OpOnesComplement:
		src, ok := t.lookupDatum(f, operand)
		if !ok {
			compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined symbol %s", operand)
		}
		if !isIntegral(src.Type) {
			compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s requires an integral operand, got %s", op, src.Type)
		}
		f.declareLocal(lhs, src)
		f.AllocatedBytes += src.Size
		return
	default:
		// Propagate lhs's existing type, unchanged.
		existing, ok := f.Locals[lhs]
		if !ok {
			existing = quad.NewWordDatum()
		}
		f.declareLocal(lhs, existing)
		f.AllocatedBytes += existing.Size
	}
}

func isIntegral(tag catalog.TypeTag) bool {
	switch tag {
	case catalog.Int, catalog.Long, catalog.Byte, catalog.Char, catalog.Word:
		return true
	default:
		return false
	}
}

// lookupDatum resolves a name against the current frame's locals/temps
// first, then the hoisted global scope.
func (t *Table) lookupDatum(f *Frame, name string) (quad.Datum, bool) {
	if d, ok := f.Locals[name]; ok {
		return d, true
	}
	if d, ok := t.globals[name]; ok {
		return d, true
	}
	return quad.Datum{}, false
}

// assignPointerOrVectorRule implements the pointer/vector assignment
// table (spec.md §4.G).
func (t *Table) assignPointerOrVectorRule(f *Frame, lhs, rhs string) {
	if strings.HasPrefix(rhs, "&") {
		target := rhs[1:]
		if name, idx, ok := splitIndex(target); ok {
			vec, known := t.Vectors[name]
			if !known {
				compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined vector %s", name)
			}
			if idx < 0 || idx >= vec.Size {
				compileerr.Raise(compileerr.OutOfRangeIndex, t.loc(), "%s[%d] is out of range (size %d)", name, idx, vec.Size)
			}
			f.Pointers[lhs] = string(vec.ElementType)
			f.declareLocal(lhs, quad.NewWordDatum())
			f.AllocatedBytes += catalog.PointerWidth
			return
		}

		targetDatum, ok := t.lookupDatum(f, target)
		if !ok {
			compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined symbol %s", target)
		}
		f.Pointers[lhs] = string(targetDatum.Type)
		f.declareLocal(lhs, quad.NewWordDatum())
		f.AllocatedBytes += catalog.PointerWidth
		return
	}

	if name, idx, ok := splitIndex(rhs); ok {
		// scalar = array[i]: scalar takes the element's type.
		vec, known := t.Vectors[name]
		if !known {
			compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined vector %s", name)
		}
		if idx < 0 || idx >= vec.Size {
			compileerr.Raise(compileerr.OutOfRangeIndex, t.loc(), "%s[%d] is out of range (size %d)", name, idx, vec.Size)
		}
		elem, hasElem := vec.Elements[idx]
		if !hasElem {
			elem = quad.Datum{Type: vec.ElementType}
		}
		f.declareLocal(lhs, elem)
		f.AllocatedBytes += elem.Size
		return
	}

	// pointer = pointer
	srcPointee, known := f.Pointers[rhs]
	if !known {
		compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s is not a pointer", rhs)
	}
	if dstPointee, dstKnown := f.Pointers[lhs]; dstKnown && dstPointee != srcPointee {
		compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s = %s: pointee type mismatch (%s vs %s)", lhs, rhs, dstPointee, srcPointee)
	}
	f.Pointers[lhs] = srcPointee
	f.declareLocal(lhs, quad.NewWordDatum())
	f.AllocatedBytes += catalog.PointerWidth
}

// assignVectorElement handles "array[i] = ..." (lhs index-shaped).
func (t *Table) assignVectorElement(f *Frame, lhs, rhs string) {
	name, idx, _ := splitIndex(lhs)
	vec, known := t.Vectors[name]
	if !known {
		vec = newVector(name)
		t.Vectors[name] = vec
	}
	if idx < 0 {
		compileerr.Raise(compileerr.OutOfRangeIndex, t.loc(), "%s[%d]: negative index", name, idx)
	}
	if idx >= vec.Size {
		if idx+1 > maxVectorSize {
			t.raiseOverflow(name, idx+1)
		}
		vec.Size = idx + 1
	}

	resolved := f.resolvedRHS(rhs)

	if quad.IsImmediate(resolved) {
		d, err := quad.ParseDatum(resolved)
		if err != nil {
			compileerr.RaiseWrap(err, compileerr.InvalidAST, t.loc(), "malformed immediate %q", resolved)
		}
		if vec.ElementType != "" && d.Type != vec.ElementType {
			compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s[%d]: element type mismatch (%s vs %s)", name, idx, d.Type, vec.ElementType)
		}
		if vec.ElementType == "" {
			vec.ElementType = d.Type
		}
		vec.Elements[idx] = d
		t.literals.collect(d)
		return
	}

	if srcName, srcIdx, ok := splitIndex(resolved); ok {
		// array[i] = array[j]: element types must match.
		srcVec, srcKnown := t.Vectors[srcName]
		if !srcKnown {
			compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined vector %s", srcName)
		}
		if srcIdx < 0 || srcIdx >= srcVec.Size {
			compileerr.Raise(compileerr.OutOfRangeIndex, t.loc(), "%s[%d] is out of range (size %d)", srcName, srcIdx, srcVec.Size)
		}
		if vec.ElementType != "" && srcVec.ElementType != "" && vec.ElementType != srcVec.ElementType {
			compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s[%d] = %s[%d]: element type mismatch", name, idx, srcName, srcIdx)
		}
		return
	}

	// array[i] = scalar
	src, ok := t.lookupDatum(f, resolved)
	if !ok {
		compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined symbol %s", resolved)
	}
	if vec.ElementType != "" && src.Type != vec.ElementType {
		compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s[%d]: element type mismatch (%s vs %s)", name, idx, src.Type, vec.ElementType)
	}
	if vec.ElementType == "" {
		vec.ElementType = src.Type
	}
	vec.Elements[idx] = src
}

// assignThroughPointer handles "*p = ..." (lhs is a dereferenced pointer).
func (t *Table) assignThroughPointer(f *Frame, lhs, rhs string) {
	pname := strings.TrimPrefix(lhs, "*")
	pointee, known := f.Pointers[pname]
	if !known {
		compileerr.Raise(compileerr.TypeMismatch, t.loc(), "%s is not a pointer", pname)
	}

	resolved := f.resolvedRHS(rhs)
	var srcSize int
	if quad.IsImmediate(resolved) {
		d, err := quad.ParseDatum(resolved)
		if err != nil {
			compileerr.RaiseWrap(err, compileerr.InvalidAST, t.loc(), "malformed immediate %q", resolved)
		}
		t.literals.collect(d)
		srcSize = d.Size
	} else {
		src, ok := t.lookupDatum(f, resolved)
		if !ok {
			compileerr.Raise(compileerr.UndefinedSymbol, t.loc(), "undefined symbol %s", resolved)
		}
		srcSize = src.Size
	}

	if pointee != "" {
		pointeeSize := catalog.SizeOf(catalog.TypeTag(pointee))
		if srcSize > pointeeSize {
			compileerr.Raise(compileerr.TypeMismatch, t.loc(), "*%s = value of size %d exceeds pointee size %d", pname, srcSize, pointeeSize)
		}
	}
}
