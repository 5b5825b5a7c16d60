package sim

import (
	"math"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// Solver advances the discretized two-phase flow state by one substep. The
// time integration itself (momentum/continuity solve, surface tension, VOF
// advection) is an external capability; the scheduler only depends on this
// interface.
type Solver interface {
	// Step advances the fields on m from time t by at most dtMax and
	// returns the increment actually taken, which must lie in (0, dtMax].
	// dtMax is how the scheduler makes the clock land exactly on snapshot
	// instants.
	Step(m *mesh.Mesh, t, dtMax float64) (float64, error)
}

// SolverFunc adapts a plain function to the Solver interface.
type SolverFunc func(m *mesh.Mesh, t, dtMax float64) (float64, error)

func (f SolverFunc) Step(m *mesh.Mesh, t, dtMax float64) (float64, error) {
	return f(m, t, dtMax)
}

// FixedStep is a placeholder integrator: it leaves all fields untouched and
// proposes a constant time increment. It stands in for the external
// Navier-Stokes binding in dry runs and tests of the scheduling machinery.
type FixedStep struct {
	Dt float64
}

func (s FixedStep) Step(_ *mesh.Mesh, _ float64, dtMax float64) (float64, error) {
	return math.Min(s.Dt, dtMax), nil
}
