package mesh

import (
	"math"
)

// interfaceEps is the volume-fraction band outside of which a cell is
// treated as pure phase (no interface).
const interfaceEps = 1e-6

// Fractions fills the named field with the area fraction of each leaf cell
// where phi > 0. phi is evaluated at the four cell corners and the zero
// contour is reconstructed linearly along the edges, so a cell fully on one
// side gets exactly 0 or 1.
func (m *Mesh) Fractions(name string, phi func(x, y float64) float64) error {
	i, err := m.FieldIndex(name)
	if err != nil {
		return err
	}
	m.ForEachLeaf(func(c *Cell) {
		h := c.delta / 2
		corners := [4][2]float64{
			{c.x - h, c.y - h},
			{c.x + h, c.y - h},
			{c.x + h, c.y + h},
			{c.x - h, c.y + h},
		}
		var vals [4]float64
		for k, p := range corners {
			vals[k] = phi(p[0], p[1])
		}
		c.vals[i] = positiveAreaFraction(vals)
	})
	return nil
}

// positiveAreaFraction returns the fraction of the unit square covered by
// the region where a bilinear-ish corner sampling is positive, clipping the
// square against the linearly interpolated zero contour. Corner values are
// given counter-clockwise from the lower-left.
func positiveAreaFraction(v [4]float64) float64 {
	// Unit-square corners in the same counter-clockwise order.
	pts := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	var poly [][2]float64
	for k := 0; k < 4; k++ {
		a, b := k, (k+1)%4
		if v[a] >= 0 {
			poly = append(poly, pts[a])
		}
		if (v[a] >= 0) != (v[b] >= 0) {
			t := v[a] / (v[a] - v[b])
			poly = append(poly, [2]float64{
				pts[a][0] + t*(pts[b][0]-pts[a][0]),
				pts[a][1] + t*(pts[b][1]-pts[a][1]),
			})
		}
	}
	if len(poly) < 3 {
		return 0
	}
	area := 0.0
	for k := range poly {
		p, q := poly[k], poly[(k+1)%len(poly)]
		area += p[0]*q[1] - q[0]*p[1]
	}
	area = math.Abs(area) / 2
	return math.Min(1, math.Max(0, area))
}

// Segment is one interface facet: a line segment in physical coordinates.
type Segment struct {
	X0, Y0 float64
	X1, Y1 float64
}

// Facets reconstructs the interface implied by the named volume-fraction
// field, one line segment per interface cell. Cells with fraction 0 or 1
// contribute nothing, so a uniform field yields an empty set.
func (m *Mesh) Facets(name string) ([]Segment, error) {
	i, err := m.FieldIndex(name)
	if err != nil {
		return nil, err
	}
	var segs []Segment
	m.ForEachLeaf(func(c *Cell) {
		f := c.vals[i]
		if f < interfaceEps || f > 1-interfaceEps {
			return
		}
		d := c.delta
		// Youngs-style normal from central differences of the fraction.
		nx := m.Sample(i, c.x-d, c.y, f) - m.Sample(i, c.x+d, c.y, f)
		ny := m.Sample(i, c.x, c.y-d, f) - m.Sample(i, c.x, c.y+d, f)
		nn := math.Abs(nx) + math.Abs(ny)
		if nn < 1e-30 {
			return
		}
		nx /= nn
		ny /= nn
		alpha := lineAlpha(f, nx, ny)
		p, ok := lineSquareClip(nx, ny, alpha)
		if !ok {
			return
		}
		segs = append(segs, Segment{
			X0: c.x + p[0][0]*d, Y0: c.y + p[0][1]*d,
			X1: c.x + p[1][0]*d, Y1: c.y + p[1][1]*d,
		})
	})
	return segs, nil
}

// lineAlpha returns the intercept alpha of the line n.r = alpha that cuts a
// unit square centered at the origin so the fraction on the side the normal
// points away from equals c. The normal must satisfy |nx|+|ny| = 1.
func lineAlpha(c, nx, ny float64) float64 {
	n1 := math.Abs(nx)
	n2 := math.Abs(ny)
	if n1 > n2 {
		n1, n2 = n2, n1
	}
	c = math.Min(1, math.Max(0, c))
	v1 := n1 / 2
	var alpha float64
	switch {
	case c <= v1/n2:
		alpha = math.Sqrt(2 * c * n1 * n2)
	case c <= 1-v1/n2:
		alpha = c*n2 + v1
	default:
		alpha = n1 + n2 - math.Sqrt(2*n1*n2*(1-c))
	}
	if nx < 0 {
		alpha += nx
	}
	if ny < 0 {
		alpha += ny
	}
	return alpha - (nx+ny)/2
}

// lineSquareClip intersects the line nx*x + ny*y = alpha with the boundary
// of the square [-1/2, 1/2]^2 and returns the two intersection points.
func lineSquareClip(nx, ny, alpha float64) ([2][2]float64, bool) {
	var pts [][2]float64
	add := func(x, y float64) {
		const eps = 1e-9
		if x < -0.5-eps || x > 0.5+eps || y < -0.5-eps || y > 0.5+eps {
			return
		}
		for _, p := range pts {
			if math.Abs(p[0]-x) < eps && math.Abs(p[1]-y) < eps {
				return
			}
		}
		pts = append(pts, [2]float64{x, y})
	}
	if math.Abs(ny) > 1e-30 {
		for _, x := range [2]float64{-0.5, 0.5} {
			add(x, (alpha-nx*x)/ny)
		}
	}
	if math.Abs(nx) > 1e-30 {
		for _, y := range [2]float64{-0.5, 0.5} {
			add((alpha-ny*y)/nx, y)
		}
	}
	if len(pts) < 2 {
		return [2][2]float64{}, false
	}
	return [2][2]float64{pts[0], pts[1]}, true
}
