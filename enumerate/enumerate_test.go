package enumerate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/polycount/enumerate"
	"github.com/katalvlaran/polycount/polycube"
)

func TestExtend_N1(t *testing.T) {
	counts := make([]int64, 2)
	s := polycube.NewSingleton()
	err := enumerate.Extend(s, 1, counts, nil)
	assert.NoError(t, err)
	assert.Equal(t, []int64{0, 1}, counts)
	assert.Equal(t, 1, s.Size(), "Extend must restore the polycube to its entry state")
}

func TestExtend_N2(t *testing.T) {
	counts := make([]int64, 3)
	s := polycube.NewSingleton()
	err := enumerate.Extend(s, 2, counts, nil)
	assert.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 1}, counts)
}

func TestExtend_N4_MatchesKnownSequence(t *testing.T) {
	counts := make([]int64, 5)
	s := polycube.NewSingleton()
	err := enumerate.Extend(s, 4, counts, nil)
	assert.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 1, 2, 8}, counts)
}

func TestExtend_RestoresPolycubeOnNormalReturn(t *testing.T) {
	counts := make([]int64, 6)
	s := polycube.NewSingleton()
	before := s.Copy()
	err := enumerate.Extend(s, 5, counts, nil)
	assert.NoError(t, err)
	assert.Equal(t, before.Size(), s.Size())
	assert.NoError(t, s.CheckInvariants())
}

func TestExtend_HaltsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var halted *polycube.Store
	counts := make([]int64, 7)
	s := polycube.NewSingleton()
	err := enumerate.Extend(s, 6, counts, &enumerate.Options{
		Ctx:    ctx,
		OnHalt: func(cur *polycube.Store) { halted = cur },
	})
	assert.ErrorIs(t, err, enumerate.ErrHalted)
	assert.NotNil(t, halted)
}

func TestExtend_SpawnAt_InvokesOnSpawnInsteadOfRecursing(t *testing.T) {
	var spawned []*polycube.Store
	counts := make([]int64, 5)
	s := polycube.NewSingleton()
	err := enumerate.Extend(s, 4, counts, &enumerate.Options{
		SpawnAt: 2,
		OnSpawn: func(child *polycube.Store) { spawned = append(spawned, child) },
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), counts[2], "size-2 polycubes are counted by whoever extends the spawned copy, not here")
	assert.NotEmpty(t, spawned)
	for _, child := range spawned {
		assert.Equal(t, 2, child.Size())
	}
	// Above SpawnAt, nothing was explored by this call.
	assert.Equal(t, int64(0), counts[3])
	assert.Equal(t, int64(0), counts[4])
}
