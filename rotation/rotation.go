// Package rotation precomputes, for every possible 6-bit cube
// neighborhood encoding, the value of that encoding under each of the
// 24 proper rotations of a cube, plus the indices of the rotations
// that maximize it. The canonicalizer consults these tables on every
// cube it visits, so they are built once and read without locking.
//
// What:
//
//   - Permutations: the 24 rotations, each a permutation of the six
//     face directions (-x,+x,-y,+y,-z,+z).
//   - Tables.Rotated[enc][r]: enc rotated by rotation r.
//   - Tables.MaxValue[enc] / Tables.MaxIndices[enc]: the maximum
//     rotated value of enc and the rotations achieving it.
//
// Why: pruning the canonicalizer's search to only the rotations that
// could possibly contribute to the maximal fingerprint turns an
// O(24n) scan into a small, usually single-digit, candidate set.
package rotation

import "sync"

// NumRotations is the size of the rotation group of the cube.
const NumRotations = 24

// NumEncodings covers every 6-bit neighborhood mask, 0 through 63.
const NumEncodings = 64

// Permutations holds the 24 proper rotations of the cube, each given
// as a permutation of direction indices 0..5 (order -x,+x,-y,+y,-z,+z).
// perm[i] names the direction whose pre-rotation occupancy bit lands
// at position i after rotation.
var Permutations = [NumRotations][6]int{
	{0, 1, 2, 3, 4, 5}, {0, 1, 3, 2, 5, 4}, {0, 1, 4, 5, 3, 2}, {0, 1, 5, 4, 2, 3},
	{1, 0, 2, 3, 5, 4}, {1, 0, 3, 2, 4, 5}, {1, 0, 4, 5, 2, 3}, {1, 0, 5, 4, 3, 2},
	{2, 3, 0, 1, 5, 4}, {2, 3, 1, 0, 4, 5}, {2, 3, 4, 5, 0, 1}, {2, 3, 5, 4, 1, 0},
	{3, 2, 0, 1, 4, 5}, {3, 2, 1, 0, 5, 4}, {3, 2, 4, 5, 1, 0}, {3, 2, 5, 4, 0, 1},
	{4, 5, 0, 1, 2, 3}, {4, 5, 1, 0, 3, 2}, {4, 5, 2, 3, 1, 0}, {4, 5, 3, 2, 0, 1},
	{5, 4, 0, 1, 3, 2}, {5, 4, 1, 0, 2, 3}, {5, 4, 2, 3, 0, 1}, {5, 4, 3, 2, 1, 0},
}

// Tables holds the precomputed rotation results for every encoding.
type Tables struct {
	Rotated    [NumEncodings][NumRotations]int
	MaxValue   [NumEncodings]int
	MaxIndices [NumEncodings][]int
}

var (
	tables *Tables
	once   sync.Once
)

// Get returns the process-wide rotation tables, building them on first
// call. The result is immutable and safe for concurrent use.
func Get() *Tables {
	once.Do(func() { tables = build() })
	return tables
}

func build() *Tables {
	t := &Tables{}
	for enc := 0; enc < NumEncodings; enc++ {
		best := -1
		for r, perm := range Permutations {
			v := rotateValue(enc, perm)
			t.Rotated[enc][r] = v
			if v > best {
				best = v
			}
		}
		t.MaxValue[enc] = best
		for r := 0; r < NumRotations; r++ {
			if t.Rotated[enc][r] == best {
				t.MaxIndices[enc] = append(t.MaxIndices[enc], r)
			}
		}
	}
	return t
}

// rotateValue applies perm to the 6-bit encoding value: the bit at
// position i of the result is the bit at position perm[i] of value.
func rotateValue(value int, perm [6]int) int {
	var bits [6]int
	for i := 0; i < 6; i++ {
		bits[i] = (value >> uint(5-i)) & 1
	}
	result := 0
	for i := 0; i < 6; i++ {
		result |= bits[perm[i]] << uint(5-i)
	}
	return result
}
