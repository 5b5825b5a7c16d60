package mesh

import (
	"math"
)

// Curvature estimates the interface curvature of the volume-fraction field
// src into dst, as the divergence of the normalized fraction gradient sampled
// at the cell spacing. Cells without an interface get zero.
func (m *Mesh) Curvature(src, dst string) error {
	si, err := m.FieldIndex(src)
	if err != nil {
		return err
	}
	di, err := m.FieldIndex(dst)
	if err != nil {
		return err
	}
	m.ForEachLeaf(func(c *Cell) {
		fc := c.vals[si]
		if fc < interfaceEps || fc > 1-interfaceEps {
			c.vals[di] = 0
			return
		}
		d := c.delta
		fe := m.Sample(si, c.x+d, c.y, fc)
		fw := m.Sample(si, c.x-d, c.y, fc)
		fn := m.Sample(si, c.x, c.y+d, fc)
		fs := m.Sample(si, c.x, c.y-d, fc)
		fne := m.Sample(si, c.x+d, c.y+d, fc)
		fnw := m.Sample(si, c.x-d, c.y+d, fc)
		fse := m.Sample(si, c.x+d, c.y-d, fc)
		fsw := m.Sample(si, c.x-d, c.y-d, fc)

		fx := (fe - fw) / (2 * d)
		fy := (fn - fs) / (2 * d)
		fxx := (fe - 2*fc + fw) / (d * d)
		fyy := (fn - 2*fc + fs) / (d * d)
		fxy := (fne - fnw - fse + fsw) / (4 * d * d)

		g2 := fx*fx + fy*fy
		if g2 < 1e-30 {
			c.vals[di] = 0
			return
		}
		c.vals[di] = -(fxx*fy*fy - 2*fxy*fx*fy + fyy*fx*fx) / math.Pow(g2, 1.5)
	})
	return nil
}
