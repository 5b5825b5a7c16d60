package sim

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comphy-lab/bubblesim/sim/mesh"
)

// testParams returns a shrunken soap-bubble scenario whose files live under
// dir.
func testParams(dir string) *Params {
	p := SoapBubble()
	p.MaxLevel = 5
	p.InitLevel = 3
	p.Tmax = 0.03
	p.Tsnap = 0.01
	p.RestartPath = filepath.Join(dir, "dump")
	p.SnapshotDir = filepath.Join(dir, "intermediate")
	p.LogPath = filepath.Join(dir, "log")
	return &p
}

func mustMkdir(t *testing.T, p *Params) {
	t.Helper()
	require.NoError(t, os.MkdirAll(p.SnapshotDir, 0o755))
}

func snapshotNames(t *testing.T, p *Params) []string {
	t.Helper()
	entries, err := os.ReadDir(p.SnapshotDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_SnapshotSeries(t *testing.T) {
	// GIVEN tsnap=0.01 and tmax=0.03 with a 0.004 placeholder increment
	p := testParams(t.TempDir())
	mustMkdir(t, p)
	var status bytes.Buffer
	s := NewScheduler(p, FixedStep{Dt: 0.004}, true, &status)

	// WHEN the run completes
	require.NoError(t, s.Run())

	// THEN exactly four timestamped checkpoints exist, clipped onto the
	// snapshot instants
	assert.ElementsMatch(t, []string{
		"snapshot-0.0000",
		"snapshot-0.0100",
		"snapshot-0.0200",
		"snapshot-0.0300",
	}, snapshotNames(t, p))

	// AND the restart checkpoint holds the final state
	_, iter, tm, err := mesh.Restore(p.RestartPath)
	require.NoError(t, err)
	assert.Equal(t, s.Iter(), iter)
	assert.InDelta(t, 0.03, tm, 1e-12)
}

func TestRun_LogFileFormat(t *testing.T) {
	// GIVEN a completed run
	p := testParams(t.TempDir())
	mustMkdir(t, p)
	var status bytes.Buffer
	s := NewScheduler(p, FixedStep{Dt: 0.01}, true, &status)
	require.NoError(t, s.Run())

	// THEN the log starts with the parameter header and the column header
	data, err := os.ReadFile(p.LogPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "Level 5, tmax 0.03"), lines[0])
	assert.Equal(t, "i dt t", lines[1])

	// AND one data row per iteration: i dt t
	rows := lines[2:]
	assert.Len(t, rows, int(s.Iter())+1)
	var i int64
	var dt, tm float64
	_, err = fmt.Sscanf(rows[0], "%d %g %g", &i, &dt, &tm)
	require.NoError(t, err)
	assert.Zero(t, i)
	assert.Zero(t, tm)

	// AND every row is mirrored to the status stream
	for _, row := range rows {
		assert.Contains(t, status.String(), row)
	}
}

func TestRun_RestartContinues(t *testing.T) {
	// GIVEN a run that stopped at tmax=0.01
	dir := t.TempDir()
	p := testParams(dir)
	p.Tmax = 0.01
	mustMkdir(t, p)
	first := NewScheduler(p, FixedStep{Dt: 0.004}, true, new(bytes.Buffer))
	require.NoError(t, first.Run())
	iterAfterFirst := first.Iter()

	// WHEN a fresh scheduler runs with tmax=0.03 against the same files
	p2 := testParams(dir)
	second := NewScheduler(p2, FixedStep{Dt: 0.004}, true, new(bytes.Buffer))
	require.NoError(t, second.Run())

	// THEN it resumed from the checkpoint instead of reinitializing
	assert.Greater(t, second.Iter(), iterAfterFirst)
	assert.ElementsMatch(t, []string{
		"snapshot-0.0000",
		"snapshot-0.0100",
		"snapshot-0.0200",
		"snapshot-0.0300",
	}, snapshotNames(t, p2))
}

func TestRun_CorruptRestartFallsThroughToFreshInit(t *testing.T) {
	// GIVEN a garbage restart checkpoint
	p := testParams(t.TempDir())
	mustMkdir(t, p)
	require.NoError(t, os.WriteFile(p.RestartPath, []byte("garbage"), 0o644))

	// WHEN running
	s := NewScheduler(p, FixedStep{Dt: 0.01}, true, new(bytes.Buffer))

	// THEN the corrupt file is treated as absent, not fatal
	require.NoError(t, s.Run())
	assert.InDelta(t, 0.03, s.Time(), 1e-12)
}

func TestRun_NonCoordinatorWritesNothing(t *testing.T) {
	// GIVEN a non-coordinator process
	p := testParams(t.TempDir())
	mustMkdir(t, p)
	s := NewScheduler(p, FixedStep{Dt: 0.01}, false, new(bytes.Buffer))

	// WHEN the run completes
	require.NoError(t, s.Run())

	// THEN no checkpoint or log file was produced
	assert.Empty(t, snapshotNames(t, p))
	_, err := os.Stat(p.RestartPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(p.LogPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_MissingSnapshotDirIsFatal(t *testing.T) {
	// GIVEN a snapshot directory that does not exist
	p := testParams(t.TempDir())

	// WHEN running
	s := NewScheduler(p, FixedStep{Dt: 0.01}, true, new(bytes.Buffer))

	// THEN the first snapshot write aborts the run
	err := s.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snapshot")
}

func TestRun_Injection(t *testing.T) {
	// GIVEN an injection at t=0.01 near the bubble center
	p := testParams(t.TempDir())
	p.Injection = &Injection{Time: 0.01, X: 0.2, Y: 0.2, Radius: 0.05}
	mustMkdir(t, p)
	s := NewScheduler(p, FixedStep{Dt: 0.01}, true, new(bytes.Buffer))

	// WHEN the run completes
	require.NoError(t, s.Run())

	// THEN the tracer carries mass inside the injection circle. Later
	// adapt passes may coarsen the interior and dilute the cell average,
	// so only positivity is checked.
	ti, err := s.Mesh().FieldIndex(FieldT)
	require.NoError(t, err)
	c := s.Mesh().Locate(0.2, 0.2)
	require.NotNil(t, c)
	assert.Greater(t, c.Val(ti), 0.0)
}

func TestFixedStep_RespectsDtMax(t *testing.T) {
	dt, err := FixedStep{Dt: 0.01}.Step(nil, 0, 0.003)
	require.NoError(t, err)
	assert.Equal(t, 0.003, dt)
}
