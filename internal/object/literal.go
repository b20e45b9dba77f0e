package object

import (
	"bcc/internal/catalog"
	"bcc/internal/quad"
)

// Literals is the object table's side-channel for immediates the back end
// must reserve rip-relative data labels for. Ints and chars travel inline
// in the instruction stream and never reach here (spec.md §4.G).
type Literals struct {
	Strings []string
	Floats  []string
	Doubles []string
}

func (l *Literals) collect(d quad.Datum) {
	switch d.Type {
	case catalog.String:
		l.Strings = append(l.Strings, d.Value)
	case catalog.Float:
		l.Floats = append(l.Floats, d.Value)
	case catalog.Double:
		l.Doubles = append(l.Doubles, d.Value)
	}
}
