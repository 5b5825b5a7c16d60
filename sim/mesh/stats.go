package mesh

import (
	"gonum.org/v1/gonum/floats"
)

// FieldStats summarizes a field over the current leaf cells.
type FieldStats struct {
	Min  float64
	Max  float64
	Sum  float64
	Mean float64
	N    int
}

// Stats computes min/max/sum/mean of the named field over all leaf cells.
func (m *Mesh) Stats(name string) (FieldStats, error) {
	i, err := m.FieldIndex(name)
	if err != nil {
		return FieldStats{}, err
	}
	var vals []float64
	m.ForEachLeaf(func(c *Cell) {
		vals = append(vals, c.vals[i])
	})
	if len(vals) == 0 {
		return FieldStats{}, nil
	}
	sum := floats.Sum(vals)
	return FieldStats{
		Min:  floats.Min(vals),
		Max:  floats.Max(vals),
		Sum:  sum,
		Mean: sum / float64(len(vals)),
		N:    len(vals),
	}, nil
}

// Scale multiplies the named field by s on every leaf cell.
func (m *Mesh) Scale(name string, s float64) error {
	i, err := m.FieldIndex(name)
	if err != nil {
		return err
	}
	m.ForEachLeaf(func(c *Cell) {
		c.vals[i] *= s
	})
	return nil
}
