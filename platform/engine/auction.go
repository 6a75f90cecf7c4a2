package engine

import "time"

// auction is the sub-state-machine entered when the current player declines
// to buy. While it runs, every other room mutation is rejected.
type auction struct {
	Tile       int
	Order      []string // remaining bidders, bidding rotates through this
	Turn       int      // index into Order
	HighBid    int
	HighBidder string
}

func (a *auction) bidder() string {
	return a.Order[a.Turn]
}

// DeclineAndStartAuction puts the tile the current player refused up for
// open bidding among all non-bankrupt players, starting with the player
// after the decliner.
func (r *Room) DeclineAndStartAuction(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	if r.pendingBuy < 0 {
		return newError(InvalidState, "no purchase decision is pending")
	}

	var order []string
	for i := 1; i <= len(r.players); i++ {
		p := r.players[(r.turn+i)%len(r.players)]
		if !p.Bankrupt {
			order = append(order, p.ID)
		}
	}

	r.auction = &auction{Tile: r.pendingBuy, Order: order}
	r.pendingBuy = -1
	r.phase = PhaseAuction
	r.event(EvAuctionStarted, playerID, map[string]interface{}{
		"tile": r.auction.Tile, "participants": order, "bidder": r.auction.bidder(),
	})
	r.armAuctionTimer()
	return nil
}

// Bid raises the auction price. Only the participant whose bidding turn it
// is may act, the amount must beat the standing bid and fit their cash.
func (r *Room) Bid(playerID string, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireActor(playerID)
	if err != nil {
		return err
	}
	a := r.auction
	if a == nil {
		return newError(InvalidState, "no auction is running")
	}
	if a.bidder() != playerID {
		return newError(OutOfTurn, "it is not %s's turn to bid", playerID)
	}
	if amount <= a.HighBid {
		return newError(InvalidState, "bid must be higher than %d", a.HighBid)
	}
	if amount > p.Cash {
		return newError(InsufficientFunds, "%s has %d, bid %d", playerID, p.Cash, amount)
	}

	a.HighBid = amount
	a.HighBidder = playerID
	r.event(EvAuctionBid, playerID, map[string]interface{}{
		"tile": a.Tile, "amount": amount,
	})

	if len(a.Order) == 1 {
		r.sellToHighBidder()
		return nil
	}
	a.Turn = (a.Turn + 1) % len(a.Order)
	r.armAuctionTimer()
	return nil
}

// PassAuction drops the participant out of the auction for good.
func (r *Room) PassAuction(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requireActor(playerID); err != nil {
		return err
	}
	a := r.auction
	if a == nil {
		return newError(InvalidState, "no auction is running")
	}
	if a.bidder() != playerID {
		return newError(OutOfTurn, "it is not %s's turn to bid", playerID)
	}
	if a.HighBidder == playerID {
		return newError(InvalidState, "the highest bidder cannot pass")
	}
	r.passCurrentBidder(false)
	return nil
}

// passCurrentBidder removes the current bidder and resolves the auction if
// it is decided. Must be called with the lock held.
func (r *Room) passCurrentBidder(auto bool) {
	a := r.auction
	id := a.bidder()
	a.Order = append(a.Order[:a.Turn], a.Order[a.Turn+1:]...)
	if len(a.Order) > 0 {
		a.Turn %= len(a.Order)
	}
	r.event(EvAuctionPassed, id, map[string]interface{}{
		"tile": a.Tile, "auto": auto,
	})

	switch {
	case len(a.Order) == 0:
		// everyone passed without a bid, no sale
		r.event(EvAuctionClosed, "", map[string]interface{}{"tile": a.Tile})
		r.endAuction()
	case len(a.Order) == 1 && a.HighBidder == a.Order[0]:
		r.sellToHighBidder()
	default:
		// either several bidders remain, or the last one still has to
		// decide between bidding and passing
		r.armAuctionTimer()
	}
}

func (r *Room) sellToHighBidder() {
	a := r.auction
	winner := r.byID[a.HighBidder]
	// affordability was checked at bid time and nothing else can touch cash
	// while the auction blocks the room
	winner.Cash -= a.HighBid
	r.tiles[a.Tile].Owner = winner.ID
	r.event(EvAuctionWon, winner.ID, map[string]interface{}{
		"tile": a.Tile, "price": a.HighBid, "balance": winner.Cash,
	})
	r.endAuction()
}

func (r *Room) endAuction() {
	r.auction = nil
	r.auctionGen++
	r.afterAction()
}

// armAuctionTimer schedules an auto-pass for the bidder now on turn, so a
// vanished participant cannot freeze the whole room.
func (r *Room) armAuctionTimer() {
	if r.cfg.BidTimeout <= 0 {
		return
	}
	r.auctionGen++
	gen := r.auctionGen
	time.AfterFunc(r.cfg.BidTimeout, func() {
		r.autoPassBidder(gen)
	})
}

func (r *Room) autoPassBidder(gen int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.auction == nil || gen != r.auctionGen {
		return
	}
	r.autoPassBidderLocked()
}

func (r *Room) autoPassBidderLocked() {
	a := r.auction
	if a == nil {
		return
	}
	if a.HighBidder == a.bidder() {
		// never time the leader out of their own bid
		a.Turn = (a.Turn + 1) % len(a.Order)
		r.armAuctionTimer()
		return
	}
	r.passCurrentBidder(true)
}
