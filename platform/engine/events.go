package engine

// Event is one accepted room mutation, published to every subscriber in
// sequence order. Data carries the fields a client needs to patch its view
// without refetching the whole snapshot.
type Event struct {
	Seq    uint64                 `json:"seq"`
	Kind   string                 `json:"kind"`
	Player string                 `json:"player,omitempty"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

const (
	EvGameStarted    = "game-started"
	EvDiceRolled     = "dice-rolled"
	EvPlayerMoved    = "player-moved"
	EvPassedStart    = "passed-start"
	EvPurchaseOffer  = "purchase-offer"
	EvPropertyBought = "property-bought"
	EvRentPaid       = "rent-paid"
	EvTaxPaid        = "tax-paid"
	EvCardDrawn      = "card-drawn"
	EvWentToJail     = "went-to-jail"
	EvLeftJail       = "left-jail"
	EvJailFinePaid   = "jail-fine-paid"
	EvHouseBuilt     = "house-built"
	EvHouseSold      = "house-sold"
	EvMortgaged      = "mortgaged"
	EvUnmortgaged    = "unmortgaged"
	EvAuctionStarted = "auction-started"
	EvAuctionBid     = "auction-bid"
	EvAuctionPassed  = "auction-passed"
	EvAuctionWon     = "auction-won"
	EvAuctionClosed  = "auction-closed"
	EvTradeProposed  = "trade-proposed"
	EvTradeAccepted  = "trade-accepted"
	EvTradeRejected  = "trade-rejected"
	EvTradeExpired   = "trade-expired"
	EvTurnChanged    = "turn-changed"
	EvPlayerBankrupt = "player-bankrupt"
	EvGameOver       = "game-over"
)

// subscriber channel capacity. A consumer that falls this far behind is
// dropped; the transport is expected to resubscribe and resnapshot.
const subscriberBuffer = 64

// publish stamps the next sequence number and fans the event out. Must be
// called with the room lock held. Sends never block: a full subscriber
// channel is closed and removed so a stalled consumer cannot stall the room.
func (r *Room) publish(ev Event) {
	r.seq++
	ev.Seq = r.seq
	kept := r.subs[:0]
	for _, ch := range r.subs {
		select {
		case ch <- ev:
			kept = append(kept, ch)
		default:
			close(ch)
		}
	}
	r.subs = kept
}

// Subscribe registers a listener for all future room events. The returned
// cancel function detaches the listener and closes the channel; it is safe
// to call more than once.
func (r *Room) Subscribe() (<-chan Event, func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	r.subs = append(r.subs, ch)

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, sub := range r.subs {
			if sub == ch {
				r.subs = append(r.subs[:i], r.subs[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (r *Room) event(kind, player string, data map[string]interface{}) {
	r.publish(Event{Kind: kind, Player: player, Data: data})
}
