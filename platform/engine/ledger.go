package engine

import "github.com/DedS3t/monopoly-engine/platform/board"

// groupLevels returns the lowest and highest building level in a color
// group. Used for the even-building rule in both directions.
func (r *Room) groupLevels(group string) (min, max int) {
	positions := r.board.Group(group)
	min, max = board.MaxLevel, 0
	for _, pos := range positions {
		lvl := r.tiles[pos].Level
		if lvl < min {
			min = lvl
		}
		if lvl > max {
			max = lvl
		}
	}
	return min, max
}

// sellableBuilding picks a tile the player can sell a building from without
// breaking the even rule: any owned street at its group's maximum level.
func (r *Room) sellableBuilding(p *Player) int {
	for _, pos := range r.ownedPositions(p.ID) {
		t := r.board.Tile(pos)
		if t.Kind != board.KindStreet || r.tiles[pos].Level == 0 {
			continue
		}
		if _, max := r.groupLevels(t.Group); r.tiles[pos].Level == max {
			return pos
		}
	}
	return -1
}

// mortgageableTile picks an owned, unmortgaged, building-free tile.
func (r *Room) mortgageableTile(p *Player) int {
	for _, pos := range r.ownedPositions(p.ID) {
		st := &r.tiles[pos]
		if !st.Mortgaged && st.Level == 0 {
			return pos
		}
	}
	return -1
}

// debit is a voluntary payment: it either covers the full amount from cash
// or fails without touching state.
func (r *Room) debit(p *Player, amount int) error {
	if p.Cash < amount {
		return newError(InsufficientFunds, "%s has %d, needs %d", p.ID, p.Cash, amount)
	}
	p.Cash -= amount
	return nil
}

// forcePay settles an obligatory payment (rent, tax, card, jail fine).
// Buildings are sold and tiles mortgaged automatically until the debt is
// covered; if the player's whole estate cannot cover it, everything raised
// goes to the creditor and short comes back true. The caller decides what a
// shortfall means (normally bankruptcy). creditor == nil means the bank.
func (r *Room) forcePay(p *Player, amount int, creditor *Player) (int, bool) {
	for p.Cash < amount {
		if pos := r.sellableBuilding(p); pos >= 0 {
			refund := r.board.Tile(pos).HouseCost / 2
			r.tiles[pos].Level--
			p.Cash += refund
			r.event(EvHouseSold, p.ID, map[string]interface{}{
				"tile": pos, "level": r.tiles[pos].Level, "refund": refund, "forced": true,
			})
			continue
		}
		if pos := r.mortgageableTile(p); pos >= 0 {
			value := r.board.Tile(pos).Mortgage
			r.tiles[pos].Mortgaged = true
			p.Cash += value
			r.event(EvMortgaged, p.ID, map[string]interface{}{
				"tile": pos, "value": value, "forced": true,
			})
			continue
		}
		break
	}

	if p.Cash >= amount {
		p.Cash -= amount
		if creditor != nil {
			creditor.Cash += amount
		}
		return amount, false
	}

	// Estate exhausted: everything left goes to the creditor.
	raised := p.Cash
	p.Cash = 0
	if creditor != nil {
		creditor.Cash += raised
	}
	return raised, true
}

// bankrupt marks the player terminal, hands their tiles to the creditor (or
// back to the bank) unmortgaged and building-free, and voids any trade they
// were part of. Must be called with the lock held.
func (r *Room) bankrupt(p *Player, creditor *Player) {
	p.Bankrupt = true
	p.InJail = false
	p.JailTurns = 0

	newOwner := ""
	if creditor != nil {
		newOwner = creditor.ID
	}
	var transferred []int
	for _, pos := range r.ownedPositions(p.ID) {
		r.tiles[pos].Owner = newOwner
		r.tiles[pos].Mortgaged = false
		r.tiles[pos].Level = 0
		transferred = append(transferred, pos)
	}

	if r.trade != nil && (r.trade.Proposer == p.ID || r.trade.Target == p.ID) {
		r.trade = nil
		r.tradeGen++
	}

	r.event(EvPlayerBankrupt, p.ID, map[string]interface{}{
		"creditor": newOwner, "tiles": transferred,
	})
	r.checkWinner()
}
