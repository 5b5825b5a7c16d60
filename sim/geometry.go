package sim

import (
	"fmt"
	"math"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// Registered field names, in checkpoint column order. f is the volume
// fraction (1 = liquid film, 0 = gas), u the velocity, p the pressure, T the
// passive tracer and kappa the interface curvature derived from f.
const (
	FieldF     = "f"
	FieldUx    = "u.x"
	FieldUy    = "u.y"
	FieldP     = "p"
	FieldT     = "T"
	FieldKappa = "kappa"
)

// SimFields returns the field set registered on every simulation mesh.
func SimFields() []string {
	return []string{FieldF, FieldUx, FieldUy, FieldP, FieldT, FieldKappa}
}

// NewMesh builds the initial uniform mesh for a scenario.
func NewMesh(p *Params) *mesh.Mesh {
	return mesh.New(p.X0, p.Y0, p.DomainSize, SimFields(), p.InitLevel)
}

// Bubble center.
const (
	xCent = 0.0
	yCent = 0.0
)

func sq(v float64) float64 { return v * v }

// r2Center is the squared distance from the bubble center.
func r2Center(x, y float64) float64 { return sq(x-xCent) + sq(y-yCent) }

// Pressure bands by squared radius from the bubble center.
const (
	regionInner = iota // inside the film
	regionFilm         // within the film shell
	regionOuter        // surrounding gas
)

// pressureRegion classifies a squared radius into exactly one band. The
// comparisons are closed on the shell side so no radius is unassigned or
// double-assigned.
func pressureRegion(r2, h float64) int {
	switch {
	case r2 < sq(1-h):
		return regionInner
	case r2 <= 1: // here r2 >= (1-h)^2
		return regionFilm
	default:
		return regionOuter
	}
}

// innerPressure is the Laplace pressure inside the bubble: one jump across
// each of the two film surfaces.
func innerPressure(h float64) float64 { return 2 + 2/(1-h) }

// InitGeometry constructs the initial state on a fresh mesh: the two-piece
// implicit film surface converted to a volume fraction, the tracer, the
// banded pressure field and zero velocity. The interface band is refined to
// the maximum level first, so the implicit surface is sampled at the target
// resolution. Only called when no restart checkpoint exists; re-running it on
// a partially initialized state is undefined.
func InitGeometry(m *mesh.Mesh, p *Params) error {
	h := p.FilmThickness()
	yp := 0.1
	x1 := math.Sqrt(sq(1-h) - sq(yp))
	x2 := math.Sqrt(1 - sq(yp))
	xp := (x1 + x2) / 2

	m.Refine(func(x, y, delta float64, level int) bool {
		r2 := r2Center(x, y)
		return r2 < 1.05 && r2 > sq(0.98-h) && level < p.MaxLevel
	})

	// Two-piece implicit surface: a circular cap closing the film at the
	// bottom, a spherical shell of thickness h elsewhere.
	phi := func(x, y float64) float64 {
		if y < yp && x > 0 {
			return sq(h/2) - (sq(x-xp) + sq(y-yp))
		}
		r := math.Sqrt(r2Center(x, y))
		return math.Min(1-r, r-(1-h))
	}
	if err := m.Fractions(FieldF, phi); err != nil {
		return fmt.Errorf("init fractions: %w", err)
	}

	if p.TracerScale > 0 {
		err := m.Fractions(FieldT, func(x, y float64) float64 {
			return sq(0.5*(1-h)) - r2Center(x, y)
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		if err := m.Scale(FieldT, p.TracerScale); err != nil {
			return err
		}
	}

	fi, err := m.FieldIndex(FieldF)
	if err != nil {
		return err
	}
	pi, err := m.FieldIndex(FieldP)
	if err != nil {
		return err
	}
	uxi, _ := m.FieldIndex(FieldUx)
	uyi, _ := m.FieldIndex(FieldUy)

	m.ForEachLeaf(func(c *mesh.Cell) {
		switch pressureRegion(r2Center(c.X(), c.Y()), h) {
		case regionInner:
			c.SetVal(pi, innerPressure(h))
		case regionFilm:
			c.SetVal(pi, 2*c.Val(fi))
		default:
			c.SetVal(pi, 0)
		}
		c.SetVal(uxi, 0)
		c.SetVal(uyi, 0)
	})
	return nil
}
