package cube_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/polycount/cube"
)

func TestNewPosition_Encoding(t *testing.T) {
	assert.Equal(t, cube.Position(0), cube.NewPosition(0, 0, 0))
	assert.Equal(t, cube.Position(1), cube.NewPosition(1, 0, 0))
	assert.Equal(t, cube.Position(100), cube.NewPosition(0, 1, 0))
	assert.Equal(t, cube.Position(10000), cube.NewPosition(0, 0, 1))
	assert.Equal(t, cube.Position(10101), cube.NewPosition(1, 1, 1))
}

func TestDirection_Opposite(t *testing.T) {
	assert.Equal(t, cube.PosX, cube.NegX.Opposite())
	assert.Equal(t, cube.NegX, cube.PosX.Opposite())
	assert.Equal(t, cube.PosY, cube.NegY.Opposite())
	assert.Equal(t, cube.PosZ, cube.NegZ.Opposite())
}

func TestDirection_Bit_Distinct(t *testing.T) {
	seen := make(map[uint8]bool)
	for d := cube.Direction(0); d < cube.NumDirections; d++ {
		bit := d.Bit()
		assert.Falsef(t, seen[bit], "direction %d collides with a previous bit %b", d, bit)
		seen[bit] = true
	}
}

func TestPosition_Neighbor_RoundTrip(t *testing.T) {
	p := cube.NewPosition(3, -2, 5)
	for d := cube.Direction(0); d < cube.NumDirections; d++ {
		q := p.Neighbor(d)
		back := q.Neighbor(d.Opposite())
		assert.Equal(t, p, back, "neighbor then opposite-neighbor must return to the origin position")
	}
}

func TestCube_HasNeighbor_AndClone(t *testing.T) {
	c := &cube.Cube{Pos: 0}
	c.Enc = cube.PosX.Bit() | cube.NegZ.Bit()
	c.Neighbors[cube.PosX] = 1
	c.Neighbors[cube.NegZ] = -10000

	assert.True(t, c.HasNeighbor(cube.PosX))
	assert.True(t, c.HasNeighbor(cube.NegZ))
	assert.False(t, c.HasNeighbor(cube.NegX))

	clone := c.Clone()
	clone.Neighbors[cube.PosX] = 999
	assert.Equal(t, cube.Position(1), c.Neighbors[cube.PosX], "mutating the clone must not affect the original")
}
