package sim

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// Scheduler drives the simulation as an event-scheduled loop. Each iteration
// fires the registered actions in a fixed, documented order:
//
//	init-check -> solver step -> (inject) -> adapt -> snapshot -> log
//
// init runs exactly once before the first iteration: it restores the
// canonical checkpoint when one is readable, otherwise it runs the geometry
// initializer. The scheduler owns the mesh for the duration of Run.
type Scheduler struct {
	params      *Params
	solver      Solver
	coordinator bool
	status      io.Writer

	mesh    *mesh.Mesh
	actions []Action

	iter     int64
	time     float64
	dt       float64
	lastSnap float64

	logFile       *os.File
	headerWritten bool
}

// NewScheduler prepares a scheduler for one run. coordinator marks the
// single process of a process group that performs file I/O; the decision is
// taken once here, never re-queried. status receives a mirror of every log
// row and defaults to stderr.
func NewScheduler(p *Params, solver Solver, coordinator bool, status io.Writer) *Scheduler {
	if status == nil {
		status = os.Stderr
	}
	return &Scheduler{
		params:      p,
		solver:      solver,
		coordinator: coordinator,
		status:      status,
		actions: []Action{
			&injectAction{},
			adaptAction{},
			snapshotAction{},
			logAction{},
		},
		lastSnap: math.Inf(-1),
	}
}

// Mesh exposes the simulation mesh; nil before Run has initialized it.
func (s *Scheduler) Mesh() *mesh.Mesh { return s.mesh }

// Iter returns the current iteration count.
func (s *Scheduler) Iter() int64 { return s.iter }

// Time returns the current simulation time.
func (s *Scheduler) Time() float64 { return s.time }

// Run executes the simulation until the clock reaches tmax. Restart
// problems fall through to fresh initialization; any subsequent checkpoint
// or log write failure aborts the run, there is no retry.
func (s *Scheduler) Run() error {
	defer s.closeLog()

	if err := s.initOnce(); err != nil {
		return err
	}

	first := true
	for {
		if !first {
			dtMax := s.nextStop() - s.time
			dt, err := s.solver.Step(s.mesh, s.time, dtMax)
			if err != nil {
				return fmt.Errorf("solver step: %w", err)
			}
			if dt <= 0 || dt > dtMax+timeEps {
				return fmt.Errorf("solver step returned increment %g outside (0, %g]", dt, dtMax)
			}
			s.dt = dt
			s.time += dt
			s.iter++
		}
		first = false

		for _, a := range s.actions {
			if !a.Due(s) {
				continue
			}
			if err := a.Fire(s); err != nil {
				return fmt.Errorf("%s: %w", a.Name(), err)
			}
		}

		if s.time >= s.params.Tmax-timeEps {
			logrus.Infof("simulation finished at i=%d t=%g", s.iter, s.time)
			return nil
		}
	}
}

// initOnce decides restart versus fresh initialization. Checkpoint presence
// is the sole branch condition: a missing or unreadable restart file is not
// an error, it means first run.
func (s *Scheduler) initOnce() error {
	p := s.params
	if m, iter, t, err := mesh.Restore(p.RestartPath); err == nil {
		s.mesh = m
		s.iter = iter
		s.time = t
		s.lastSnap = math.Floor(t/p.Tsnap+timeEps) * p.Tsnap
		logrus.Infof("restored %s at i=%d t=%g (%d leaves)", p.RestartPath, iter, t, m.NumLeaves())
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		logrus.Warnf("restart checkpoint unusable, initializing fresh: %v", err)
	}
	s.mesh = NewMesh(p)
	return InitGeometry(s.mesh, p)
}

// nextStop returns the next instant the clock must land on exactly: the
// upcoming snapshot time or tmax, whichever comes first.
func (s *Scheduler) nextStop() float64 {
	return math.Min(s.lastSnap+s.params.Tsnap, s.params.Tmax)
}

func (s *Scheduler) openLog() (*os.File, error) {
	if s.logFile != nil {
		return s.logFile, nil
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if s.iter == 0 {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	fp, err := os.OpenFile(s.params.LogPath, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", s.params.LogPath, err)
	}
	s.logFile = fp
	return fp, nil
}

func (s *Scheduler) closeLog() {
	if s.logFile != nil {
		s.logFile.Close()
		s.logFile = nil
	}
}
