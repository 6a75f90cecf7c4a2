package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// landOnUnowned drives player a onto St. Charles Place (11) with an open
// purchase decision.
func landOnUnowned(t *testing.T, r *Room) {
	t.Helper()
	rig(r, [2]int{5, 6})
	_, _, err := r.Roll("a")
	require.NoError(t, err)
	require.Equal(t, 11, r.pendingBuy)
}

func TestAuctionAllPassNoSale(t *testing.T) {
	r := testRoom(t, "a", "b", "c")
	landOnUnowned(t, r)

	require.NoError(t, r.DeclineAndStartAuction("a"))
	assert.Equal(t, PhaseAuction, r.phase)
	assert.Equal(t, []string{"b", "c", "a"}, r.auction.Order)

	require.NoError(t, r.PassAuction("b"))
	require.NoError(t, r.PassAuction("c"))
	require.NoError(t, r.PassAuction("a"))

	assert.Nil(t, r.auction)
	assert.Equal(t, "", r.tiles[11].Owner)
	assert.Equal(t, PhaseAwaitAction, r.phase)
	require.NoError(t, r.EndTurn("a"))
}

func TestAuctionSingleBidderWins(t *testing.T) {
	r := testRoom(t, "a", "b", "c")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))

	require.NoError(t, r.Bid("b", 100))
	require.NoError(t, r.PassAuction("c"))
	require.NoError(t, r.PassAuction("a"))

	assert.Nil(t, r.auction)
	assert.Equal(t, "b", r.tiles[11].Owner)
	assert.Equal(t, 1400, r.byID["b"].Cash)
}

func TestAuctionBidWar(t *testing.T) {
	r := testRoom(t, "a", "b", "c")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))

	require.NoError(t, r.Bid("b", 50))
	require.NoError(t, r.Bid("c", 60))
	require.NoError(t, r.Bid("a", 70))
	require.NoError(t, r.Bid("b", 120))
	require.NoError(t, r.PassAuction("c"))
	require.NoError(t, r.PassAuction("a"))

	assert.Equal(t, "b", r.tiles[11].Owner)
	assert.Equal(t, 1380, r.byID["b"].Cash)
}

func TestAuctionBidValidation(t *testing.T) {
	r := testRoom(t, "a", "b", "c")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))

	// c bids out of order
	err := r.Bid("c", 50)
	assert.True(t, IsKind(err, OutOfTurn))

	require.NoError(t, r.Bid("b", 50))

	// must raise strictly
	err = r.Bid("c", 50)
	assert.True(t, IsKind(err, InvalidState))

	// cannot bid beyond cash
	err = r.Bid("c", 2000)
	assert.True(t, IsKind(err, InsufficientFunds))
}

func TestHighBidderCannotPass(t *testing.T) {
	r := testRoom(t, "a", "b")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))

	require.NoError(t, r.Bid("b", 50))
	require.NoError(t, r.Bid("a", 60))
	err := r.PassAuction("b")
	require.NoError(t, err)
	// a holds the high bid and is the only one left: sold
	assert.Equal(t, "a", r.tiles[11].Owner)
	assert.Equal(t, 1440, r.byID["a"].Cash)
}

func TestAuctionBlocksRoomMutation(t *testing.T) {
	r := testRoom(t, "a", "b")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))

	_, _, err := r.Roll("a")
	assert.True(t, IsKind(err, InvalidState))
	err = r.EndTurn("a")
	assert.True(t, IsKind(err, InvalidState))
	err = r.Build("a", 11)
	assert.True(t, IsKind(err, InvalidState))
	err = r.ProposeTrade("a", "b", 10, 0, -1, -1)
	assert.True(t, IsKind(err, InvalidState))
}

func TestSecondAuctionImpossible(t *testing.T) {
	r := testRoom(t, "a", "b")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))

	// declining again while the auction runs is rejected
	err := r.DeclineAndStartAuction("a")
	assert.True(t, IsKind(err, InvalidState))
}

func TestAutoPassResolvesAuction(t *testing.T) {
	r := testRoom(t, "a", "b", "c")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))
	require.NoError(t, r.Bid("b", 50))

	// simulate the timeout firing for c and then a
	r.mu.Lock()
	r.autoPassBidderLocked()
	r.autoPassBidderLocked()
	r.mu.Unlock()

	assert.Equal(t, "b", r.tiles[11].Owner)
	assert.Equal(t, 1450, r.byID["b"].Cash)
}
