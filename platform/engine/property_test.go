package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ownBrown hands player a the full brown group (tiles 1 and 3).
func ownBrown(r *Room) {
	r.tiles[1].Owner = "a"
	r.tiles[3].Owner = "a"
}

func TestBuildRequiresFullGroup(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[1].Owner = "a"

	err := r.Build("a", 1)
	assert.True(t, IsKind(err, OwnershipViolation))

	r.tiles[3].Owner = "a"
	require.NoError(t, r.Build("a", 1))
	assert.Equal(t, 1, r.tiles[1].Level)
	assert.Equal(t, 1450, r.byID["a"].Cash)
}

func TestBuildEvenAcrossGroup(t *testing.T) {
	r := testRoom(t, "a", "b")
	ownBrown(r)

	require.NoError(t, r.Build("a", 1))
	err := r.Build("a", 1) // tile 3 is still at 0
	assert.True(t, IsKind(err, InvalidState))

	require.NoError(t, r.Build("a", 3))
	require.NoError(t, r.Build("a", 1))
}

func TestBuildCapsAtHotel(t *testing.T) {
	r := testRoom(t, "a", "b")
	ownBrown(r)
	r.tiles[1].Level = 5
	r.tiles[3].Level = 5

	err := r.Build("a", 1)
	assert.True(t, IsKind(err, InvalidState))
}

func TestBuildOnMortgagedTile(t *testing.T) {
	r := testRoom(t, "a", "b")
	ownBrown(r)
	r.tiles[1].Mortgaged = true

	err := r.Build("a", 1)
	assert.True(t, IsKind(err, InvalidState))
}

func TestBuildOnForeignTile(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[1].Owner = "b"
	r.tiles[3].Owner = "b"

	err := r.Build("a", 1)
	assert.True(t, IsKind(err, OwnershipViolation))
}

func TestBuildOnRailroad(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[5].Owner = "a"

	err := r.Build("a", 5)
	assert.True(t, IsKind(err, InvalidState))
}

func TestSellRefundsHalf(t *testing.T) {
	r := testRoom(t, "a", "b")
	ownBrown(r)
	r.tiles[1].Level = 1
	r.tiles[3].Level = 1

	require.NoError(t, r.Sell("a", 1))
	assert.Equal(t, 0, r.tiles[1].Level)
	assert.Equal(t, 1525, r.byID["a"].Cash)

	// tile 3 is now the high one, tile 1 cannot go below the group minimum
	err := r.Sell("a", 1)
	assert.True(t, IsKind(err, InvalidState))
	require.NoError(t, r.Sell("a", 3))
}

func TestMortgageCycle(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[1].Owner = "a"

	require.NoError(t, r.Mortgage("a", 1))
	assert.True(t, r.tiles[1].Mortgaged)
	assert.Equal(t, 1530, r.byID["a"].Cash)

	err := r.Mortgage("a", 1)
	assert.True(t, IsKind(err, InvalidState))

	// buy-back costs mortgage value plus 10%
	require.NoError(t, r.Unmortgage("a", 1))
	assert.False(t, r.tiles[1].Mortgaged)
	assert.Equal(t, 1530-33, r.byID["a"].Cash)

	err = r.Unmortgage("a", 1)
	assert.True(t, IsKind(err, InvalidState))
}

func TestMortgageWithBuildings(t *testing.T) {
	r := testRoom(t, "a", "b")
	ownBrown(r)
	r.tiles[1].Level = 1

	err := r.Mortgage("a", 1)
	assert.True(t, IsKind(err, InvalidState))
}

func TestMortgageForeignTile(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[1].Owner = "b"

	err := r.Mortgage("a", 1)
	assert.True(t, IsKind(err, OwnershipViolation))
}

func TestMortgageUnknownTile(t *testing.T) {
	r := testRoom(t, "a", "b")
	err := r.Mortgage("a", 99)
	assert.True(t, IsKind(err, NotFound))
}

func TestMonopolyDoublesBaseRent(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[1].Owner = "b"
	r.tiles[3].Owner = "b"
	rig(r, [2]int{2, 1}) // a lands on Baltic

	_, _, err := r.Roll("a")
	require.NoError(t, err)
	assert.Equal(t, 1500-8, r.byID["a"].Cash) // 2x base rent of 4
}

func TestRailroadRentScalesWithCount(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[5].Owner = "b"
	r.tiles[15].Owner = "b"
	r.tiles[25].Owner = "b"
	rig(r, [2]int{2, 3}) // a lands on Reading Railroad

	_, _, err := r.Roll("a")
	require.NoError(t, err)
	assert.Equal(t, 1500-100, r.byID["a"].Cash) // 25 * 2^(3-1)
}

func TestUtilityRentUsesDice(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[12].Owner = "b"
	r.byID["a"].Pos = 5
	rig(r, [2]int{3, 4}) // total 7, lands on Electric Company

	_, _, err := r.Roll("a")
	require.NoError(t, err)
	assert.Equal(t, 1500-4*7, r.byID["a"].Cash)

	// both utilities owned pays 10x
	r2 := testRoom(t, "a", "b")
	r2.tiles[12].Owner = "b"
	r2.tiles[28].Owner = "b"
	r2.byID["a"].Pos = 5
	rig(r2, [2]int{3, 4})
	_, _, err = r2.Roll("a")
	require.NoError(t, err)
	assert.Equal(t, 1500-10*7, r2.byID["a"].Cash)
}

func TestRentWithHouses(t *testing.T) {
	r := testRoom(t, "a", "b")
	r.tiles[1].Owner = "b"
	r.tiles[3].Owner = "b"
	r.tiles[3].Level = 2
	r.tiles[1].Level = 2
	rig(r, [2]int{2, 1}) // a lands on Baltic, level 2

	_, _, err := r.Roll("a")
	require.NoError(t, err)
	assert.Equal(t, 1500-60, r.byID["a"].Cash)
}
