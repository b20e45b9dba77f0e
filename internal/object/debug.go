package object

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// DebugDump renders a human-readable summary of every sealed frame's
// allocation footprint and label table, in the order frames were closed.
// Not on the compile hot path — intended for `-debug`-style CLI output.
func (t *Table) DebugDump() string {
	var b strings.Builder
	for _, name := range t.frameOrder {
		f := t.Frames[name]
		fmt.Fprintf(&b, "%s: [%d, %d] allocated=%s locals=%d labels=%d\n",
			f.Name, f.StartIndex, f.EndIndex,
			humanize.Bytes(uint64(f.AllocatedBytes)),
			len(f.Locals), len(f.labels.orderedKeys()))
	}
	return b.String()
}
