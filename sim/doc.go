// Package sim provides the event-scheduled driver for the axisymmetric
// bubble-wrinkling simulation.
//
// # Reading Guide
//
// Start with these three files to understand the driver:
//   - params.go: scenario parameter record, presets and YAML overrides
//   - event.go: the per-iteration actions (adapt, snapshot, log, inject)
//   - scheduler.go: the loop, restart-or-initialize and dt clipping
//
// # Architecture
//
// The sim package holds orchestration; the mesh lives in a sub-package:
//   - sim/mesh/: quadtree mesh, interpolation, fractions, facets, codec
//   - sim/extract/: offline checkpoint post-processing (grid, facets)
//
// # Key Interfaces
//
// The PDE time integration is an external capability behind the Solver
// interface; FixedStep is the placeholder binding used by tests and dry
// runs. Actions implement the small Action interface and fire in a fixed,
// documented order each iteration.
package sim
