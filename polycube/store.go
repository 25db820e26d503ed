// Package polycube maintains the set of cubes making up a polycube,
// their positions and per-cube neighbor encodings, and supports O(1)
// add/remove with exact invariant maintenance. It also holds the
// lazily-computed canonical-form cache on behalf of the canonicalizer,
// so that invalidation on mutation lives in one place.
package polycube

import (
	"errors"
	"math/big"

	"github.com/katalvlaran/polycount/cube"
)

// Sentinel errors for Store operations, in the teacher's style of
// package-scoped sentinel errors rather than ad-hoc strings.
var (
	// ErrOccupied indicates Add was called on a position already in the store.
	ErrOccupied = errors.New("polycube: position already occupied")
	// ErrAbsent indicates Remove was called on a position not in the store.
	ErrAbsent = errors.New("polycube: position not present")
	// ErrDisconnected indicates Add would create a cube with no existing neighbor.
	ErrDisconnected = errors.New("polycube: new cube has no neighbor in the store")
)

// Store is a mapping from position to Cube, plus the cached canonical
// info belonging to the polycube it represents. The zero value is not
// usable; construct with New or NewSingleton.
type Store struct {
	cubes map[cube.Position]*cube.Cube
	size  int

	canonValid       bool
	canonFingerprint *big.Int
	canonTails       []cube.Position
	canonMaxValues   []int
}

// New returns an empty store.
func New() *Store {
	return &Store{cubes: make(map[cube.Position]*cube.Cube)}
}

// NewSingleton returns a store holding one cube at the origin, the
// standard seed for enumeration.
func NewSingleton() *Store {
	s := New()
	s.cubes[0] = &cube.Cube{Pos: 0}
	s.size = 1
	return s
}

// Size returns the number of cubes currently in the store.
func (s *Store) Size() int { return s.size }

// Has reports whether a cube exists at p.
func (s *Store) Has(p cube.Position) bool {
	_, ok := s.cubes[p]
	return ok
}

// Cube returns the cube at p, if any.
func (s *Store) Cube(p cube.Position) (*cube.Cube, bool) {
	c, ok := s.cubes[p]
	return c, ok
}

// Positions returns every occupied position, in no particular order.
func (s *Store) Positions() []cube.Position {
	out := make([]cube.Position, 0, len(s.cubes))
	for p := range s.cubes {
		out = append(out, p)
	}
	return out
}

// Add inserts a new cube at p, wiring it to every already-present
// face-neighbor. Except for the very first cube in an empty store, p
// must have at least one existing neighbor.
func (s *Store) Add(p cube.Position) error {
	if _, exists := s.cubes[p]; exists {
		return ErrOccupied
	}
	if s.size > 0 {
		connected := false
		for d := cube.Direction(0); d < cube.NumDirections; d++ {
			if _, ok := s.cubes[p.Neighbor(d)]; ok {
				connected = true
				break
			}
		}
		if !connected {
			return ErrDisconnected
		}
	}

	nc := &cube.Cube{Pos: p}
	for d := cube.Direction(0); d < cube.NumDirections; d++ {
		q := p.Neighbor(d)
		nb, ok := s.cubes[q]
		if !ok {
			continue
		}
		nc.Neighbors[d] = q
		nc.Enc |= d.Bit()
		nb.Neighbors[d.Opposite()] = p
		nb.Enc |= d.Opposite().Bit()
	}
	s.cubes[p] = nc
	s.size++
	s.invalidate()
	return nil
}

// Remove deletes the cube at p, clearing its neighbors' back-references.
// Uses bit-clear (AND-NOT) rather than subtraction to drop the
// neighbor's encoding bit, since subtraction is only correct because
// the invariant guarantees the bit is already set.
func (s *Store) Remove(p cube.Position) error {
	c, ok := s.cubes[p]
	if !ok {
		return ErrAbsent
	}
	for d := cube.Direction(0); d < cube.NumDirections; d++ {
		if !c.HasNeighbor(d) {
			continue
		}
		q := c.Neighbors[d]
		nb := s.cubes[q]
		nb.Neighbors[d.Opposite()] = 0
		nb.Enc &^= d.Opposite().Bit()
	}
	delete(s.cubes, p)
	s.size--
	s.invalidate()
	return nil
}

// Copy returns a deep clone of the store, including the canonical
// cache if valid. Neighbor slots are positions, not pointers, so
// duplicating the map is sufficient.
func (s *Store) Copy() *Store {
	ns := &Store{cubes: make(map[cube.Position]*cube.Cube, len(s.cubes)), size: s.size}
	for pos, c := range s.cubes {
		ns.cubes[pos] = c.Clone()
	}
	if s.canonValid {
		ns.canonValid = true
		ns.canonFingerprint = new(big.Int).Set(s.canonFingerprint)
		ns.canonTails = append([]cube.Position(nil), s.canonTails...)
		ns.canonMaxValues = append([]int(nil), s.canonMaxValues...)
	}
	return ns
}

// CachedCanonical returns the cached canonical info, if any is valid.
func (s *Store) CachedCanonical() (fingerprint *big.Int, tails []cube.Position, maxValues []int, ok bool) {
	if !s.canonValid {
		return nil, nil, nil, false
	}
	return s.canonFingerprint, s.canonTails, s.canonMaxValues, true
}

// SetCachedCanonical stores a freshly computed canonical info.
func (s *Store) SetCachedCanonical(fingerprint *big.Int, tails []cube.Position, maxValues []int) {
	s.canonValid = true
	s.canonFingerprint = fingerprint
	s.canonTails = tails
	s.canonMaxValues = maxValues
}

func (s *Store) invalidate() {
	s.canonValid = false
	s.canonFingerprint = nil
	s.canonTails = nil
	s.canonMaxValues = nil
}

// CheckInvariants verifies the bidirectional neighbor/encoding
// invariants described in the data model. It is not on any hot path;
// only tests call it, to catch a bug in Add/Remove.
func (s *Store) CheckInvariants() error {
	for pos, c := range s.cubes {
		if c.Pos != pos {
			return errors.New("polycube: cube stored under wrong position")
		}
		for d := cube.Direction(0); d < cube.NumDirections; d++ {
			_, present := s.cubes[pos.Neighbor(d)]
			if present != c.HasNeighbor(d) {
				return errors.New("polycube: enc bit disagrees with neighbor presence")
			}
			if !c.HasNeighbor(d) {
				continue
			}
			nb, ok := s.cubes[c.Neighbors[d]]
			if !ok || !nb.HasNeighbor(d.Opposite()) || nb.Neighbors[d.Opposite()] != pos {
				return errors.New("polycube: asymmetric neighbor reference")
			}
		}
	}
	return nil
}
