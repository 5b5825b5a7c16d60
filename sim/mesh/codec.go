package mesh

import (
	"encoding/gob"
	"fmt"
	"os"
)

// checkpoint is the gob wire form of a full mesh state plus the scheduler
// clock. Leaves are recorded by level and center, which is enough to rebuild
// the tree since leaf cells partition the domain.
type checkpoint struct {
	X0, Y0 float64
	Size   float64
	Fields []string
	Leaves []leafRecord
	Iter   int64
	Time   float64
}

type leafRecord struct {
	Level int
	X, Y  float64
	Vals  []float64
}

// Dump writes the mesh state and scheduler clock to path. The write is
// atomic (temp file plus rename): a reader either sees a complete checkpoint
// or none at all.
func Dump(path string, m *Mesh, iter int64, t float64) error {
	cp := checkpoint{
		X0:     m.x0,
		Y0:     m.y0,
		Size:   m.size,
		Fields: m.fields,
		Iter:   iter,
		Time:   t,
	}
	m.ForEachLeaf(func(c *Cell) {
		cp.Leaves = append(cp.Leaves, leafRecord{
			Level: c.level,
			X:     c.x,
			Y:     c.y,
			Vals:  append([]float64(nil), c.vals...),
		})
	})

	tmp := path + ".tmp"
	fp, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("mesh: create checkpoint: %w", err)
	}
	if err := gob.NewEncoder(fp).Encode(cp); err != nil {
		fp.Close()
		os.Remove(tmp)
		return fmt.Errorf("mesh: encode checkpoint: %w", err)
	}
	if err := fp.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("mesh: close checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("mesh: commit checkpoint: %w", err)
	}
	return nil
}

// Restore loads a checkpoint written by Dump and rebuilds the mesh, returning
// the stored iteration count and simulation time alongside it.
func Restore(path string) (*Mesh, int64, float64, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("mesh: open checkpoint: %w", err)
	}
	defer fp.Close()

	var cp checkpoint
	if err := gob.NewDecoder(fp).Decode(&cp); err != nil {
		return nil, 0, 0, fmt.Errorf("mesh: decode checkpoint %s: %w", path, err)
	}
	m := New(cp.X0, cp.Y0, cp.Size, cp.Fields, 0)
	for _, lr := range cp.Leaves {
		if len(lr.Vals) != len(cp.Fields) {
			return nil, 0, 0, fmt.Errorf("mesh: checkpoint %s: leaf has %d values, want %d", path, len(lr.Vals), len(cp.Fields))
		}
		c := m.root
		for c.level < lr.Level {
			if c.leaf() {
				m.split(c)
			}
			q := 0
			if lr.X >= c.x {
				q |= 1
			}
			if lr.Y >= c.y {
				q |= 2
			}
			c = c.kids[q]
		}
		if !c.leaf() {
			return nil, 0, 0, fmt.Errorf("mesh: checkpoint %s: overlapping leaf records", path)
		}
		copy(c.vals, lr.Vals)
	}
	return m, cp.Iter, cp.Time, nil
}
