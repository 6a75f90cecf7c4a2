package engine

import "time"

// tradeOffer is the single pending trade a room may carry. A pending offer
// does not block turn actions; Accept revalidates the whole bundle instead.
type tradeOffer struct {
	Proposer  string
	Target    string
	GiveMoney int // proposer -> target
	WantMoney int // target -> proposer
	GiveTile  int // proposer's tile, -1 for none
	WantTile  int // target's tile, -1 for none
	Created   time.Time
}

// ProposeTrade offers the target a bundle of money and/or one tile in each
// direction. Only one offer may be pending per room.
func (r *Room) ProposeTrade(playerID, targetID string, giveMoney, wantMoney, giveTile, wantTile int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	proposer, err := r.requireActor(playerID)
	if err != nil {
		return err
	}
	target, err := r.requireActor(targetID)
	if err != nil {
		return err
	}
	if r.phase == PhaseFinished {
		return newError(InvalidState, "game in room %s is over", r.ID)
	}
	if r.auction != nil {
		return newError(InvalidState, "an auction is in progress")
	}
	if playerID == targetID {
		return newError(InvalidState, "cannot trade with yourself")
	}
	if r.trade != nil {
		return newError(AlreadyActive, "another trade is already pending")
	}
	if giveMoney < 0 || wantMoney < 0 {
		return newError(InvalidState, "trade amounts cannot be negative")
	}
	if giveMoney == 0 && wantMoney == 0 && giveTile < 0 && wantTile < 0 {
		return newError(InvalidState, "empty trade offer")
	}
	if err := r.checkTradeSide(proposer, giveMoney, giveTile); err != nil {
		return err
	}
	if err := r.checkTradeSide(target, wantMoney, wantTile); err != nil {
		return err
	}

	r.trade = &tradeOffer{
		Proposer:  playerID,
		Target:    targetID,
		GiveMoney: giveMoney,
		WantMoney: wantMoney,
		GiveTile:  normTile(giveTile),
		WantTile:  normTile(wantTile),
		Created:   time.Now(),
	}
	r.event(EvTradeProposed, playerID, map[string]interface{}{
		"target": targetID, "giveMoney": giveMoney, "wantMoney": wantMoney,
		"giveTile": r.trade.GiveTile, "wantTile": r.trade.WantTile,
	})
	r.armTradeTimer()
	return nil
}

// AcceptTrade executes the pending offer. Everything is re-checked first:
// the room may have moved on since the proposal, and the transfer is all or
// nothing.
func (r *Room) AcceptTrade(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requireActor(playerID); err != nil {
		return err
	}
	t := r.trade
	if t == nil {
		return newError(InvalidState, "no trade is pending")
	}
	if t.Target != playerID {
		return newError(InvalidState, "only %s may respond to this trade", t.Target)
	}
	if r.auction != nil {
		return newError(InvalidState, "an auction is in progress")
	}

	proposer := r.byID[t.Proposer]
	target := r.byID[t.Target]
	if proposer.Bankrupt ||
		r.checkTradeSide(proposer, t.GiveMoney, t.GiveTile) != nil ||
		r.checkTradeSide(target, t.WantMoney, t.WantTile) != nil {
		r.clearTrade()
		return newError(InvalidState, "the offer is no longer valid")
	}

	proposer.Cash += t.WantMoney - t.GiveMoney
	target.Cash += t.GiveMoney - t.WantMoney
	if t.GiveTile >= 0 {
		r.tiles[t.GiveTile].Owner = t.Target
	}
	if t.WantTile >= 0 {
		r.tiles[t.WantTile].Owner = t.Proposer
	}

	ev := map[string]interface{}{
		"proposer": t.Proposer, "giveMoney": t.GiveMoney, "wantMoney": t.WantMoney,
		"giveTile": t.GiveTile, "wantTile": t.WantTile,
	}
	r.clearTrade()
	r.event(EvTradeAccepted, playerID, ev)
	return nil
}

// RejectTrade clears the pending offer. Only the target may respond.
func (r *Room) RejectTrade(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requireActor(playerID); err != nil {
		return err
	}
	t := r.trade
	if t == nil {
		return newError(InvalidState, "no trade is pending")
	}
	if t.Target != playerID {
		return newError(InvalidState, "only %s may respond to this trade", t.Target)
	}
	proposer := t.Proposer
	r.clearTrade()
	r.event(EvTradeRejected, playerID, map[string]interface{}{"proposer": proposer})
	return nil
}

// checkTradeSide validates one direction of a bundle against current state.
func (r *Room) checkTradeSide(p *Player, money, tilePos int) error {
	if p.Cash < money {
		return newError(InsufficientFunds, "%s has %d, offers %d", p.ID, p.Cash, money)
	}
	if tilePos < 0 {
		return nil
	}
	tile, st, err := r.ownableOwnedBy(p, tilePos)
	if err != nil {
		return err
	}
	if st.Level > 0 {
		return newError(InvalidState, "tile %d carries buildings, sell them first", tile.Index)
	}
	return nil
}

func (r *Room) clearTrade() {
	r.trade = nil
	r.tradeGen++
}

func (r *Room) armTradeTimer() {
	if r.cfg.TradeTTL <= 0 {
		return
	}
	r.tradeGen++
	gen := r.tradeGen
	time.AfterFunc(r.cfg.TradeTTL, func() {
		r.expireTrade(gen)
	})
}

func (r *Room) expireTrade(gen int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.trade == nil || gen != r.tradeGen {
		return
	}
	proposer := r.trade.Proposer
	r.clearTrade()
	r.event(EvTradeExpired, proposer, nil)
}

func normTile(pos int) int {
	if pos < 0 {
		return -1
	}
	return pos
}
