package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestEventSequenceIsMonotonic(t *testing.T) {
	r := testRoom(t, "a", "b")
	ch, cancel := r.Subscribe()
	defer cancel()

	r.tiles[1].Owner = "a"
	require.NoError(t, r.Mortgage("a", 1))
	require.NoError(t, r.Unmortgage("a", 1))
	rig(r, [2]int{1, 3})
	_, _, err := r.Roll("a")
	require.NoError(t, err)
	require.NoError(t, r.EndTurn("a"))

	events := drain(ch)
	require.NotEmpty(t, events)
	for i, ev := range events {
		if i > 0 {
			assert.Equal(t, events[i-1].Seq+1, ev.Seq)
		}
	}
	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
	}
	assert.Equal(t, []string{
		EvMortgaged, EvUnmortgaged, EvDiceRolled, EvPlayerMoved, EvTaxPaid, EvTurnChanged,
	}, kinds)
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	r := testRoom(t, "a", "b")
	_, cancel := r.Subscribe()
	cancel()
	cancel()
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	r := testRoom(t, "a", "b")
	ch, cancel := r.Subscribe()
	defer cancel()

	r.tiles[1].Owner = "a"
	// mortgage/unmortgage produce two events per cycle; overflow the buffer
	for i := 0; i < subscriberBuffer; i++ {
		require.NoError(t, r.Mortgage("a", 1))
		require.NoError(t, r.Unmortgage("a", 1))
	}

	n := 0
	closed := false
	for {
		ev, ok := <-ch
		if !ok {
			closed = true
			break
		}
		_ = ev
		n++
	}
	assert.True(t, closed)
	assert.Equal(t, subscriberBuffer, n)

	// the room is unaffected and keeps accepting mutations
	require.NoError(t, r.Mortgage("a", 1))
}

func TestSnapshotIdempotent(t *testing.T) {
	r := testRoom(t, "a", "b")
	rig(r, [2]int{5, 6})
	_, _, err := r.Roll("a")
	require.NoError(t, err)

	s1 := r.Snapshot()
	s2 := r.Snapshot()
	assert.Equal(t, s1, s2)
}

func TestSnapshotReflectsState(t *testing.T) {
	r := testRoom(t, "a", "b")
	rig(r, [2]int{5, 6})
	_, _, err := r.Roll("a")
	require.NoError(t, err)
	require.NoError(t, r.Buy("a"))
	require.NoError(t, r.ProposeTrade("b", "a", 20, 0, -1, 11))

	s := r.Snapshot()
	assert.Equal(t, "test", s.Room)
	assert.Equal(t, "a", s.Turn)
	assert.Equal(t, PhaseAwaitAction, s.Phase)
	assert.Equal(t, [2]int{5, 6}, s.Dice)
	require.NotNil(t, s.Trade)
	assert.Equal(t, "b", s.Trade.Proposer)
	assert.Equal(t, 11, s.Trade.WantTile)

	var owned *TileSnapshot
	for i := range s.Tiles {
		if s.Tiles[i].Index == 11 {
			owned = &s.Tiles[i]
		}
	}
	require.NotNil(t, owned)
	assert.Equal(t, "a", owned.Owner)
}

func TestSnapshotDuringAuction(t *testing.T) {
	r := testRoom(t, "a", "b", "c")
	landOnUnowned(t, r)
	require.NoError(t, r.DeclineAndStartAuction("a"))
	require.NoError(t, r.Bid("b", 75))

	s := r.Snapshot()
	require.NotNil(t, s.Auction)
	assert.Equal(t, 11, s.Auction.Tile)
	assert.Equal(t, 75, s.Auction.HighBid)
	assert.Equal(t, "b", s.Auction.HighBidder)
	assert.Equal(t, "c", s.Auction.Bidder)
	assert.Equal(t, PhaseAuction, s.Phase)
}
