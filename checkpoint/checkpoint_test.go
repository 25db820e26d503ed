package checkpoint_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/polycount/checkpoint"
	"github.com/katalvlaran/polycount/cube"
	"github.com/katalvlaran/polycount/polycube"
)

func TestDefaultFilename(t *testing.T) {
	ts := time.Date(2026, 7, 30, 14, 5, 9, 0, time.UTC)
	assert.Equal(t, "halt-n10-20260730T140509.json.gz", checkpoint.DefaultFilename(10, ts))
}

func TestWriteRead_RoundTrip(t *testing.T) {
	s := polycube.NewSingleton()
	require.NoError(t, s.Add(cube.NewPosition(1, 0, 0)))
	require.NoError(t, s.Add(cube.NewPosition(2, 0, 0)))

	cp := checkpoint.Build(10, 6, []int64{0, 1, 1, 2, 8, 29, 166, 0, 0, 0, 0}, 12500*time.Millisecond, []*polycube.Store{s})

	path := filepath.Join(t.TempDir(), "test.json.gz")
	require.NoError(t, checkpoint.Write(path, cp))

	got, err := checkpoint.Read(path)
	require.NoError(t, err)

	assert.Equal(t, cp.N, got.N)
	assert.Equal(t, cp.SpawnAt, got.SpawnAt)
	assert.Equal(t, cp.Counts, got.Counts)
	assert.InDelta(t, 12.5, got.TotalElapsedSec, 0.001)
	assert.Len(t, got.UnevaluatedPolycubes, 1)
	assert.Len(t, got.UnevaluatedPolycubes[0], 3)
}

func TestRestore_RebuildsConnectedStores(t *testing.T) {
	s := polycube.NewSingleton()
	require.NoError(t, s.Add(cube.NewPosition(1, 0, 0)))
	require.NoError(t, s.Add(cube.NewPosition(1, 1, 0)))

	cp := checkpoint.Build(8, 6, make([]int64, 9), time.Second, []*polycube.Store{s})

	restored, err := checkpoint.Restore(cp)
	require.NoError(t, err)
	require.Len(t, restored, 1)

	assert.Equal(t, s.Size(), restored[0].Size())
	assert.NoError(t, restored[0].CheckInvariants())
}

func TestRestore_RejectsEmptyPolycube(t *testing.T) {
	cp := &checkpoint.Checkpoint{N: 4, UnevaluatedPolycubes: [][]int64{{}}}
	_, err := checkpoint.Restore(cp)
	assert.Error(t, err)
}
