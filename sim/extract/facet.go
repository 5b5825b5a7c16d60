package extract

import (
	"bufio"
	"fmt"
	"io"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// Facets writes the interface segments implied by the named volume-fraction
// field: two coordinate lines per segment followed by a blank separator
// line, flushed on completion. A field uniformly 0 or 1 yields no output.
func Facets(m *mesh.Mesh, field string, w io.Writer) error {
	segs, err := m.Facets(field)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, s := range segs {
		fmt.Fprintf(bw, "%g %g\n%g %g\n\n", s.X0, s.Y0, s.X1, s.Y1)
	}
	return bw.Flush()
}
