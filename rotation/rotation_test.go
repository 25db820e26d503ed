package rotation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/polycount/rotation"
)

// TestPermutations_AreValid checks every rotation is a genuine
// permutation of 0..5: a bijection, not just 6 numbers in range.
func TestPermutations_AreValid(t *testing.T) {
	for r, perm := range rotation.Permutations {
		seen := make(map[int]bool)
		for _, v := range perm {
			assert.GreaterOrEqual(t, v, 0)
			assert.Less(t, v, 6)
			assert.Falsef(t, seen[v], "rotation %d: direction index %d repeated", r, v)
			seen[v] = true
		}
	}
}

// TestPermutations_IncludeIdentity checks the identity rotation is present.
func TestPermutations_IncludeIdentity(t *testing.T) {
	identity := [6]int{0, 1, 2, 3, 4, 5}
	assert.Equal(t, identity, rotation.Permutations[0])
}

// TestTables_MaxValue_IsActualMax verifies MaxValue[enc] really is the
// maximum over Rotated[enc][*], and MaxIndices names only the rotations
// that achieve it.
func TestTables_MaxValue_IsActualMax(t *testing.T) {
	tbl := rotation.Get()
	for enc := 0; enc < rotation.NumEncodings; enc++ {
		want := -1
		for _, v := range tbl.Rotated[enc] {
			if v > want {
				want = v
			}
		}
		assert.Equal(t, want, tbl.MaxValue[enc])

		for _, idx := range tbl.MaxIndices[enc] {
			assert.Equal(t, tbl.MaxValue[enc], tbl.Rotated[enc][idx])
		}
		assert.NotEmpty(t, tbl.MaxIndices[enc])
	}
}

// TestTables_ZeroAndFullEncodingsAreFixedPoints: an empty neighborhood
// and a fully-occupied neighborhood are invariant under every rotation.
func TestTables_ZeroAndFullEncodingsAreFixedPoints(t *testing.T) {
	tbl := rotation.Get()
	for r := 0; r < rotation.NumRotations; r++ {
		assert.Equal(t, 0, tbl.Rotated[0][r])
		assert.Equal(t, 63, tbl.Rotated[63][r])
	}
}

// TestGet_IsSingleton checks repeated calls return the same table.
func TestGet_IsSingleton(t *testing.T) {
	assert.Same(t, rotation.Get(), rotation.Get())
}
