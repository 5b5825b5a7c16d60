// Package extract post-processes simulation checkpoints: it resamples field
// data onto regular grids and pulls the polygonal interface geometry out of
// a volume-fraction field. Both operations are single-pass, read-only
// consumers of one restored checkpoint.
package extract

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// Rect is the requested output rectangle.
type Rect struct {
	Xmin, Ymin float64
	Xmax, Ymax float64
}

func (r Rect) valid() bool {
	return r.Xmax > r.Xmin && r.Ymax > r.Ymin
}

// Grid resamples the named fields of a restored checkpoint onto a regular
// lattice and writes one row per grid point: x, y, then one column per field
// in the given order, %g formatted.
//
// The lattice is forced to near-square cells derived from the vertical
// spacing: dy = (ymax-ymin)/ny, nx = floor((xmax-xmin)/dy), dx spread over
// the remainder. Sample points are cell centers; rows iterate i (outer) then
// j (inner), so all y at a fixed x are contiguous.
//
// normalize, when non-empty, names a field rescaled in place by its own
// maximum over all leaf cells before sampling; a vanishing maximum is a
// fatal precondition failure rather than a source of non-finite output.
func Grid(m *mesh.Mesh, rect Rect, ny int, fields []string, normalize string, w io.Writer) error {
	if ny < 1 {
		return fmt.Errorf("extract: ny must be >= 1, got %d", ny)
	}
	if !rect.valid() {
		return fmt.Errorf("extract: empty rectangle [%g,%g]x[%g,%g]", rect.Xmin, rect.Xmax, rect.Ymin, rect.Ymax)
	}
	for _, name := range fields {
		if _, err := m.FieldIndex(name); err != nil {
			return err
		}
	}

	if normalize != "" {
		st, err := m.Stats(normalize)
		if err != nil {
			return err
		}
		if math.Abs(st.Max) < 1e-12 {
			return fmt.Errorf("extract: cannot normalize %s by its maximum %g", normalize, st.Max)
		}
		if err := m.Scale(normalize, 1/st.Max); err != nil {
			return err
		}
	}

	dy := (rect.Ymax - rect.Ymin) / float64(ny)
	nx := int((rect.Xmax - rect.Xmin) / dy)
	if nx == 0 {
		// Rectangle narrower than one near-square column: nothing to emit.
		return nil
	}
	dx := (rect.Xmax - rect.Xmin) / float64(nx)

	// Sample everything first, then print, so a failed interpolation
	// produces no partial output.
	vals := make([]float64, nx*ny*len(fields))
	for i := 0; i < nx; i++ {
		x := dx*(float64(i)+0.5) + rect.Xmin
		for j := 0; j < ny; j++ {
			y := dy*(float64(j)+0.5) + rect.Ymin
			for k, name := range fields {
				v, err := m.Interpolate(name, x, y)
				if err != nil {
					return fmt.Errorf("extract: sample %s at (%g, %g): %w", name, x, y, err)
				}
				vals[(i*ny+j)*len(fields)+k] = v
			}
		}
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < nx; i++ {
		x := dx*(float64(i)+0.5) + rect.Xmin
		for j := 0; j < ny; j++ {
			y := dy*(float64(j)+0.5) + rect.Ymin
			fmt.Fprintf(bw, "%g %g", x, y)
			for k := range fields {
				fmt.Fprintf(bw, " %g", vals[(i*ny+j)*len(fields)+k])
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
