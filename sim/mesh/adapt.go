package mesh

import (
	"fmt"
	"math"
)

// coarsenFactor is the hysteresis between the refine and coarsen thresholds.
// Sibling quads only merge when their spread and the predicted variation of
// the merged cell sit well below the refinement tolerance, so a freshly
// refined region is never immediately coarsened back.
const coarsenFactor = 4

// Adapt refines and coarsens the mesh until every monitored field varies by
// less than its tolerance across neighboring leaves (or the level bounds are
// hit). Both passes run to a fixed point, so calling Adapt again with
// unchanged field values performs no further refinement or coarsening.
// Returns the number of cells split and merged.
func (m *Mesh) Adapt(fields []string, tols []float64, maxLevel, minLevel int) (refined, coarsened int, err error) {
	if len(fields) != len(tols) {
		return 0, 0, fmt.Errorf("mesh: %d monitored fields but %d tolerances", len(fields), len(tols))
	}
	idx := make([]int, len(fields))
	for k, name := range fields {
		if idx[k], err = m.FieldIndex(name); err != nil {
			return 0, 0, err
		}
	}

	// Alternate refine and coarsen passes until neither changes the tree.
	// The level bounds make each pass finite; the cap guards against a
	// pathological ping-pong between the two.
	for round := 0; round < 4*(maxLevel+1); round++ {
		r := m.refinePass(idx, tols, maxLevel)
		c := m.coarsenPass(idx, tols, minLevel)
		refined += r
		coarsened += c
		if r == 0 && c == 0 {
			return refined, coarsened, nil
		}
	}
	return refined, coarsened, nil
}

// variation returns the largest absolute difference between the cell value
// and the leaf values one cell spacing away in the four face directions.
func (m *Mesh) variation(c *Cell, i int) float64 {
	v := c.vals[i]
	d := c.delta
	maxDiff := 0.0
	for _, off := range [4][2]float64{{d, 0}, {-d, 0}, {0, d}, {0, -d}} {
		n := m.Locate(c.x+off[0], c.y+off[1])
		if n == nil {
			continue
		}
		if diff := math.Abs(v - n.vals[i]); diff > maxDiff {
			maxDiff = diff
		}
	}
	return maxDiff
}

func (m *Mesh) exceeds(c *Cell, idx []int, tols []float64) bool {
	for k, i := range idx {
		if m.variation(c, i) > tols[k] {
			return true
		}
	}
	return false
}

func (m *Mesh) refinePass(idx []int, tols []float64, maxLevel int) int {
	total := 0
	for {
		var due []*Cell
		m.ForEachLeaf(func(c *Cell) {
			if c.level < maxLevel && m.exceeds(c, idx, tols) {
				due = append(due, c)
			}
		})
		if len(due) == 0 {
			return total
		}
		for _, c := range due {
			m.prolong(c)
		}
		total += len(due)
	}
}

// prolong splits a leaf, giving each child the linearly reconstructed value
// at its center so smooth gradients halve across one refinement step.
func (m *Mesh) prolong(c *Cell) {
	q := c.delta / 4
	offsets := [4][2]float64{{-q, -q}, {q, -q}, {-q, q}, {q, q}}
	kidVals := make([][]float64, 4)
	for k, off := range offsets {
		kidVals[k] = make([]float64, len(m.fields))
		for i, name := range m.fields {
			v, err := m.Interpolate(name, c.x+off[0], c.y+off[1])
			if err != nil {
				v = c.vals[i]
			}
			kidVals[k][i] = v
		}
	}
	m.split(c)
	for k, kid := range c.kids {
		copy(kid.vals, kidVals[k])
	}
}

func (m *Mesh) coarsenPass(idx []int, tols []float64, minLevel int) int {
	total := 0
	for {
		var due []*Cell
		m.collectMergeable(m.root, idx, tols, minLevel, &due)
		if len(due) == 0 {
			return total
		}
		for _, c := range due {
			m.merge(c)
		}
		total += len(due)
	}
}

// collectMergeable gathers interior cells whose four children are leaves with
// a tight value spread, and whose merged value would still sit well inside
// the refinement tolerance of the surrounding leaves.
func (m *Mesh) collectMergeable(c *Cell, idx []int, tols []float64, minLevel int, due *[]*Cell) {
	if c.leaf() {
		return
	}
	allLeaves := true
	for _, k := range c.kids {
		if !k.leaf() {
			allLeaves = false
			m.collectMergeable(k, idx, tols, minLevel, due)
		}
	}
	if !allLeaves || c.kids[0].level <= minLevel {
		return
	}
	for kk, i := range idx {
		mean := 0.0
		for _, k := range c.kids {
			mean += k.vals[i]
		}
		mean /= 4
		for _, k := range c.kids {
			if math.Abs(k.vals[i]-mean) > tols[kk]/coarsenFactor {
				return
			}
		}
		// Predict the merged cell's variation against its would-be
		// neighbors at the parent spacing.
		for _, off := range [4][2]float64{{c.delta, 0}, {-c.delta, 0}, {0, c.delta}, {0, -c.delta}} {
			n := m.Locate(c.x+off[0], c.y+off[1])
			if n == nil {
				continue
			}
			if math.Abs(mean-n.vals[i]) > tols[kk]/2 {
				return
			}
		}
	}
	*due = append(*due, c)
}
