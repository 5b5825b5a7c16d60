package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/comphy-lab/bubblesim/sim"
	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// writeCheckpoint dumps a small initialized mesh and returns its path.
func writeCheckpoint(t *testing.T) string {
	t.Helper()
	m := mesh.New(-1, -1, 2.4, sim.SimFields(), 4)
	require.NoError(t, m.Fractions(sim.FieldF, func(x, y float64) float64 {
		return 1 - x*x - y*y
	}))
	ti, err := m.FieldIndex(sim.FieldT)
	require.NoError(t, err)
	m.ForEachLeaf(func(c *mesh.Cell) {
		c.SetVal(ti, 2.0)
	})
	path := filepath.Join(t.TempDir(), "dump")
	require.NoError(t, mesh.Dump(path, m, 0, 0))
	return path
}

// execute runs the root command with args, capturing the process stderr that
// the extraction commands stream rows to.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stderr = w

	rootCmd.SetArgs(args)
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	runErr := rootCmd.Execute()

	_ = w.Close()
	os.Stderr = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String(), runErr
}

func TestExtract_WrongArity(t *testing.T) {
	// GIVEN a valid checkpoint but a missing ny argument
	path := writeCheckpoint(t)

	// WHEN invoking extract with five arguments
	out, err := execute(t, "extract", path, "0", "0", "1", "1")

	// THEN the command fails and emits zero rows
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestExtract_NonNumericArgument(t *testing.T) {
	path := writeCheckpoint(t)
	out, err := execute(t, "extract", path, "0", "0", "banana", "1", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a number")
	assert.Empty(t, out)
}

func TestExtract_MissingCheckpoint(t *testing.T) {
	out, err := execute(t, "extract", filepath.Join(t.TempDir(), "nope"), "0", "0", "1", "1", "4")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestExtract_EmitsGridRows(t *testing.T) {
	// GIVEN a checkpoint with a uniform tracer
	path := writeCheckpoint(t)

	// WHEN resampling a 4x4-cell band inside the domain
	out, err := execute(t, "extract", path, "0", "0", "1", "1", "4")

	// THEN one row per lattice point lands on stderr, tracer normalized to 1
	require.NoError(t, err)
	rows := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, rows, 16)
	for _, row := range rows {
		assert.True(t, strings.HasSuffix(row, " 1"), row)
	}
}

func TestFacets_WrongArity(t *testing.T) {
	out, err := execute(t, "facets")
	require.Error(t, err)
	assert.Empty(t, out)
}

func TestFacets_EmitsSegments(t *testing.T) {
	// GIVEN a checkpoint holding a circular interface
	path := writeCheckpoint(t)

	// WHEN extracting facets
	out, err := execute(t, "facets", path)

	// THEN blank-line separated segment blocks land on stderr
	require.NoError(t, err)
	require.NotEmpty(t, out)
	blocks := strings.Split(strings.TrimRight(out, "\n"), "\n\n")
	for _, b := range blocks {
		assert.Len(t, strings.Split(b, "\n"), 2, b)
	}
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	path := writeCheckpoint(t)
	out, err := execute(t, "--log", "shout", "facets", path)
	require.Error(t, err)
	assert.Empty(t, out)
}
