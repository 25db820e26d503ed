// Package canonical computes a rotation-invariant fingerprint for a
// polycube: the lexicographically greatest integer obtainable by
// serializing the polycube via depth-first traversal, over every
// candidate (starting cube, rotation) pair. Two polycubes are the same
// free polycube iff their fingerprints are equal.
package canonical

import (
	"math/big"
	"sort"

	"github.com/katalvlaran/polycount/cube"
	"github.com/katalvlaran/polycount/polycube"
	"github.com/katalvlaran/polycount/rotation"
)

// Info is the canonical form of a polycube: its fingerprint, the set
// of "tail" positions (last cube visited by a maximizing traversal),
// and the sorted per-cube maxima (kept for debugging only; equality
// of Fingerprint is sufficient to compare two polycubes).
type Info struct {
	Fingerprint *big.Int
	Tails       map[cube.Position]struct{}
	MaxValues   []int
}

// Compute returns the canonical info for s, using and populating s's
// cache. The cache is invalidated by the store on every Add/Remove, so
// repeated calls between mutations are free.
func Compute(s *polycube.Store) *Info {
	if fp, tails, maxValues, ok := s.CachedCanonical(); ok {
		return &Info{Fingerprint: fp, Tails: tailSet(tails), MaxValues: maxValues}
	}
	info := compute(s)
	s.SetCachedCanonical(info.Fingerprint, tailSlice(info.Tails), info.MaxValues)
	return info
}

func compute(s *polycube.Store) *Info {
	tbl := rotation.Get()
	positions := s.Positions()
	n := len(positions)

	maxValues := make([]int, 0, n)
	maxOfAny := -1
	for _, p := range positions {
		c, _ := s.Cube(p)
		mv := tbl.MaxValue[c.Enc]
		maxValues = append(maxValues, mv)
		if mv > maxOfAny {
			maxOfAny = mv
		}
	}
	sort.Ints(maxValues)

	var best *big.Int
	tails := make(map[cube.Position]struct{})

	for _, p := range positions {
		c, _ := s.Cube(p)
		if tbl.MaxValue[c.Enc] != maxOfAny {
			continue
		}
		for _, r := range tbl.MaxIndices[c.Enc] {
			val, tailPos, ok := serialize(s, tbl, p, r, n, best)
			if !ok {
				continue // pruned: cannot tie or exceed best
			}
			if best == nil {
				best = val
				tails = map[cube.Position]struct{}{tailPos: {}}
				continue
			}
			switch val.Cmp(best) {
			case 1:
				best = val
				tails = map[cube.Position]struct{}{tailPos: {}}
			case 0:
				tails[tailPos] = struct{}{}
			}
		}
	}

	return &Info{Fingerprint: best, Tails: tails, MaxValues: maxValues}
}

// serialize performs the DFS-serialization of s starting at start under
// rotation index r, returning the encoded value and the position of
// the last cube visited. ok is false if the partial encoding was
// pruned because it can no longer tie or exceed best (nil best means
// no candidate has been found yet, so nothing is ever pruned).
func serialize(s *polycube.Store, tbl *rotation.Tables, start cube.Position, r int, n int, best *big.Int) (*big.Int, cube.Position, bool) {
	sr := &serializer{
		s:        s,
		tbl:      tbl,
		perm:     rotation.Permutations[r],
		rotIdx:   r,
		n:        n,
		best:     best,
		visited:  make(map[cube.Position]bool, n),
		val:      new(big.Int),
	}
	sr.visit(start)
	if sr.pruned {
		return nil, 0, false
	}
	return sr.val, sr.lastPos, true
}

type serializer struct {
	s       *polycube.Store
	tbl     *rotation.Tables
	perm    [6]int
	rotIdx  int
	n       int
	best    *big.Int
	visited map[cube.Position]bool
	val     *big.Int
	count   int
	lastPos cube.Position
	pruned  bool
}

func (sr *serializer) visit(pos cube.Position) {
	if sr.pruned {
		return
	}
	sr.visited[pos] = true
	c, _ := sr.s.Cube(pos)

	rv := sr.tbl.Rotated[c.Enc][sr.rotIdx]
	sr.val.Lsh(sr.val, 6)
	sr.val.Or(sr.val, big.NewInt(int64(rv)))
	sr.count++
	sr.lastPos = pos

	if sr.best != nil && sr.count < sr.n {
		remaining := uint(6 * (sr.n - sr.count))
		prefix := new(big.Int).Rsh(sr.best, remaining)
		if sr.val.Cmp(prefix) < 0 {
			sr.pruned = true
			return
		}
	}

	for _, dd := range sr.perm {
		if sr.pruned {
			return
		}
		d := cube.Direction(dd)
		if !c.HasNeighbor(d) {
			continue
		}
		q := c.Neighbors[d]
		if !sr.visited[q] {
			sr.visit(q)
		}
	}
}

func tailSet(tails []cube.Position) map[cube.Position]struct{} {
	m := make(map[cube.Position]struct{}, len(tails))
	for _, t := range tails {
		m[t] = struct{}{}
	}
	return m
}

func tailSlice(tails map[cube.Position]struct{}) []cube.Position {
	out := make([]cube.Position, 0, len(tails))
	for t := range tails {
		out = append(out, t)
	}
	return out
}
