package sim

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// timeEps absorbs floating-point drift when comparing simulation times.
const timeEps = 1e-9

// Action is one scheduled activity of the simulation loop. Due must be a
// pure function of the scheduler state (iteration count and simulation
// time); Fire performs the activity. Actions run once per iteration in the
// order they are registered.
type Action interface {
	Name() string
	Due(s *Scheduler) bool
	Fire(s *Scheduler) error
}

// adaptAction re-derives the curvature field and re-equilibrates the mesh
// every iteration, so checkpoints and logs of the same iteration see the
// refined mesh.
type adaptAction struct{}

func (adaptAction) Name() string        { return "adapt" }
func (adaptAction) Due(*Scheduler) bool { return true }

func (adaptAction) Fire(s *Scheduler) error {
	if err := s.mesh.Curvature(FieldF, FieldKappa); err != nil {
		return err
	}
	p := s.params
	refined, coarsened, err := s.mesh.Adapt(
		[]string{FieldF, FieldUx, FieldUy, FieldKappa},
		[]float64{p.FTol, p.VelTol, p.VelTol, p.KappaTol},
		p.MaxLevel, p.MinLevel(),
	)
	if err != nil {
		return err
	}
	if refined > 0 || coarsened > 0 {
		logrus.Debugf("adapt: %d refined, %d coarsened, %d leaves", refined, coarsened, s.mesh.NumLeaves())
	}
	return nil
}

// snapshotAction writes the canonical restart checkpoint (overwriting it)
// and a timestamped checkpoint into the snapshot directory, preserving a
// full time series without losing restart capability. Only the coordinator
// touches the filesystem; every process still records the firing time so
// the schedule stays identical across processes.
type snapshotAction struct{}

func (snapshotAction) Name() string { return "snapshot" }

func (snapshotAction) Due(s *Scheduler) bool {
	if s.time > s.params.Tmax+timeEps {
		return false
	}
	return s.time-s.lastSnap >= s.params.Tsnap-timeEps
}

func (snapshotAction) Fire(s *Scheduler) error {
	s.lastSnap = s.time
	if !s.coordinator {
		return nil
	}
	if err := mesh.Dump(s.params.RestartPath, s.mesh, s.iter, s.time); err != nil {
		return err
	}
	name := filepath.Join(s.params.SnapshotDir, fmt.Sprintf("snapshot-%.4f", s.time))
	return mesh.Dump(name, s.mesh, s.iter, s.time)
}

// logAction appends one row (iteration, step size, time) to the log file
// every iteration and mirrors it to the status stream. The very first
// iteration writes the parameter header first.
type logAction struct{}

func (logAction) Name() string        { return "log" }
func (logAction) Due(*Scheduler) bool { return true }

func (logAction) Fire(s *Scheduler) error {
	if !s.coordinator {
		return nil
	}
	fp, err := s.openLog()
	if err != nil {
		return err
	}
	if s.iter == 0 && !s.headerWritten {
		p := s.params
		if _, err := fmt.Fprintf(fp, "Level %d, tmax %g, Oh %3.2e, Bo %2.1e, Lo %g\n",
			p.MaxLevel, p.Tmax, p.Ohnesorge, p.Bond, p.DomainSize); err != nil {
			return fmt.Errorf("write log header: %w", err)
		}
		fmt.Fprintf(fp, "i dt t\n")
		fmt.Fprintf(s.status, "i dt t\n")
		s.headerWritten = true
	}
	if _, err := fmt.Fprintf(fp, "%d %g %g\n", s.iter, s.dt, s.time); err != nil {
		return fmt.Errorf("write log row: %w", err)
	}
	fmt.Fprintf(s.status, "%d %g %g\n", s.iter, s.dt, s.time)
	return nil
}

// injectAction sets the tracer to 1 inside a circle at the configured time,
// once. It runs before adaptation so the freshly injected blob is refined
// before it is checkpointed.
type injectAction struct {
	done bool
}

func (*injectAction) Name() string { return "inject" }

func (a *injectAction) Due(s *Scheduler) bool {
	return !a.done && s.params.Injection != nil && s.time >= s.params.Injection.Time-timeEps
}

func (a *injectAction) Fire(s *Scheduler) error {
	a.done = true
	inj := s.params.Injection
	ti, err := s.mesh.FieldIndex(FieldT)
	if err != nil {
		return err
	}
	logrus.Infof("injecting tracer at t = %g, position = (%g, %g), radius = %g",
		s.time, inj.X, inj.Y, inj.Radius)
	s.mesh.ForEachLeaf(func(c *mesh.Cell) {
		if math.Hypot(c.X()-inj.X, c.Y()-inj.Y) <= inj.Radius {
			c.SetVal(ti, 1.0)
		}
	})
	return nil
}
