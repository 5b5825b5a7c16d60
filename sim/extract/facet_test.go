package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

func TestFacets_UniformFieldIsEmpty(t *testing.T) {
	// GIVEN a volume fraction that is 1 everywhere
	m := mesh.New(0, 0, 2, []string{"f"}, 4)
	require.NoError(t, m.Fractions("f", func(x, y float64) float64 { return 1 }))

	// WHEN extracting facets
	var out bytes.Buffer
	require.NoError(t, Facets(m, "f", &out))

	// THEN no segments come out
	assert.Empty(t, out.String())
}

func TestFacets_CircleSegments(t *testing.T) {
	// GIVEN the volume fractions of a circle of radius 0.5 at (1,1)
	m := mesh.New(0, 0, 2, []string{"f"}, 6)
	require.NoError(t, m.Fractions("f", func(x, y float64) float64 {
		return 0.25 - (x-1)*(x-1) - (y-1)*(y-1)
	}))

	var out bytes.Buffer
	require.NoError(t, Facets(m, "f", &out))

	// THEN segments arrive as two coordinate lines plus a blank separator
	blocks := strings.Split(strings.TrimRight(out.String(), "\n"), "\n\n")
	require.NotEmpty(t, blocks)
	for _, b := range blocks {
		lines := strings.Split(b, "\n")
		require.Len(t, lines, 2, b)
		for _, ln := range lines {
			var x, y float64
			_, err := fmt.Sscanf(ln, "%g %g", &x, &y)
			require.NoError(t, err, ln)
			// AND every endpoint sits near the circle
			r := math.Hypot(x-1, y-1)
			assert.InDelta(t, 0.5, r, 0.03, ln)
		}
	}
}

func TestFacets_UnknownField(t *testing.T) {
	m := mesh.New(0, 0, 2, []string{"f"}, 3)
	var out bytes.Buffer
	assert.Error(t, Facets(m, "missing", &out))
	assert.Empty(t, out.String())
}
