// Package mesh provides the reference computational mesh for the bubble
// simulation: a quadtree over a square domain whose leaf cells carry named
// field values.
//
// # Reading Guide
//
// Start with these files to understand the engine:
//   - mesh.go: quadtree structure, field registry, predicate refinement
//   - adapt.go: tolerance-driven refine/coarsen (the AMR entry point)
//   - fractions.go: level-set to volume-fraction conversion and VOF facets
//   - codec.go: checkpoint dump/restore
//
// The sim package consumes the mesh through point queries (Interpolate,
// Sample), predicate refinement and whole-field iteration; it never assumes
// anything about the tree layout.
package mesh

import (
	"fmt"
)

// quadrant child ordering: 0 SW, 1 SE, 2 NW, 3 NE.

// Cell is a node of the quadtree. Leaf cells carry one value per registered
// field; interior cells only route point queries to their children.
type Cell struct {
	x, y  float64 // center
	delta float64 // edge length
	level int
	vals  []float64
	kids  *[4]*Cell
}

// X returns the x coordinate of the cell center.
func (c *Cell) X() float64 { return c.x }

// Y returns the y coordinate of the cell center.
func (c *Cell) Y() float64 { return c.y }

// Delta returns the cell edge length.
func (c *Cell) Delta() float64 { return c.delta }

// Level returns the refinement depth of the cell (root is 0).
func (c *Cell) Level() int { return c.level }

// Val returns the value of field i stored on the cell.
func (c *Cell) Val(i int) float64 { return c.vals[i] }

// SetVal stores v as the value of field i on the cell.
func (c *Cell) SetVal(i int, v float64) { c.vals[i] = v }

func (c *Cell) leaf() bool { return c.kids == nil }

// Mesh is a quadtree mesh over the square domain
// [x0, x0+size] x [y0, y0+size].
type Mesh struct {
	x0, y0 float64
	size   float64
	fields []string
	index  map[string]int
	root   *Cell
}

// New creates a mesh over the given square domain with the named fields
// registered and the tree uniformly refined to initLevel. Field values start
// at zero.
func New(x0, y0, size float64, fields []string, initLevel int) *Mesh {
	index := make(map[string]int, len(fields))
	for i, name := range fields {
		index[name] = i
	}
	m := &Mesh{
		x0:     x0,
		y0:     y0,
		size:   size,
		fields: append([]string(nil), fields...),
		index:  index,
		root: &Cell{
			x:     x0 + size/2,
			y:     y0 + size/2,
			delta: size,
			vals:  make([]float64, len(fields)),
		},
	}
	m.Refine(func(x, y, delta float64, level int) bool {
		return level < initLevel
	})
	return m
}

// Origin returns the lower-left corner of the domain.
func (m *Mesh) Origin() (x0, y0 float64) { return m.x0, m.y0 }

// Size returns the domain edge length.
func (m *Mesh) Size() float64 { return m.size }

// Fields returns the registered field names in registration order.
func (m *Mesh) Fields() []string { return append([]string(nil), m.fields...) }

// FieldIndex resolves a field name to its storage index.
func (m *Mesh) FieldIndex(name string) (int, error) {
	i, ok := m.index[name]
	if !ok {
		return 0, fmt.Errorf("mesh: unknown field %q", name)
	}
	return i, nil
}

// Inside reports whether the point lies within the domain.
func (m *Mesh) Inside(x, y float64) bool {
	return x >= m.x0 && x <= m.x0+m.size && y >= m.y0 && y <= m.y0+m.size
}

// Locate descends to the leaf cell containing the point, or nil if the point
// is outside the domain. Points on internal cell boundaries resolve to the
// east/north neighbor.
func (m *Mesh) Locate(x, y float64) *Cell {
	if !m.Inside(x, y) {
		return nil
	}
	c := m.root
	for !c.leaf() {
		q := 0
		if x >= c.x {
			q |= 1
		}
		if y >= c.y {
			q |= 2
		}
		c = c.kids[q]
	}
	return c
}

// Sample returns the leaf-cell value of field i at the point, falling back
// to def when the point is outside the domain.
func (m *Mesh) Sample(i int, x, y float64, def float64) float64 {
	c := m.Locate(x, y)
	if c == nil {
		return def
	}
	return c.vals[i]
}

// ForEachLeaf invokes fn for every leaf cell. fn may split the cell it is
// visiting (the new children are picked up on a later sweep) but must not
// touch other parts of the tree.
func (m *Mesh) ForEachLeaf(fn func(c *Cell)) {
	m.walk(m.root, fn)
}

func (m *Mesh) walk(c *Cell, fn func(c *Cell)) {
	if c.leaf() {
		fn(c)
		return
	}
	for _, k := range c.kids {
		m.walk(k, fn)
	}
}

// NumLeaves returns the current leaf-cell count.
func (m *Mesh) NumLeaves() int {
	n := 0
	m.ForEachLeaf(func(*Cell) { n++ })
	return n
}

// Refine splits every leaf for which pred is true, re-testing freshly created
// children until the predicate holds nowhere. Children inherit the parent
// value. Returns the number of cells split.
func (m *Mesh) Refine(pred func(x, y, delta float64, level int) bool) int {
	total := 0
	for {
		n := 0
		m.ForEachLeaf(func(c *Cell) {
			if pred(c.x, c.y, c.delta, c.level) {
				m.split(c)
				n++
			}
		})
		// Children created during a sweep are not revisited until the next
		// sweep, so keep sweeping while splits happen.
		total += n
		if n == 0 {
			return total
		}
	}
}

func (m *Mesh) split(c *Cell) {
	d := c.delta / 2
	q := d / 2
	kids := new([4]*Cell)
	offsets := [4][2]float64{{-q, -q}, {q, -q}, {-q, q}, {q, q}}
	for i, off := range offsets {
		kids[i] = &Cell{
			x:     c.x + off[0],
			y:     c.y + off[1],
			delta: d,
			level: c.level + 1,
			vals:  append([]float64(nil), c.vals...),
		}
	}
	c.kids = kids
	c.vals = nil
}

// merge collapses a cell whose four children are all leaves, averaging the
// child values onto the parent.
func (m *Mesh) merge(c *Cell) {
	vals := make([]float64, len(m.fields))
	for _, k := range c.kids {
		for i, v := range k.vals {
			vals[i] += v
		}
	}
	for i := range vals {
		vals[i] /= 4
	}
	c.vals = vals
	c.kids = nil
}
