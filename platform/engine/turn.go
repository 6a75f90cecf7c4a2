package engine

import "github.com/DedS3t/monopoly-engine/platform/board"

// Roll throws the dice for the current player, moves them and resolves the
// landed tile. Doubles hand the dice back for another roll; a third double
// in one turn sends the player straight to jail.
func (r *Room) Roll(playerID string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireTurn(playerID)
	if err != nil {
		return 0, 0, err
	}
	if r.phase != PhaseAwaitRoll {
		return 0, 0, newError(InvalidState, "you have already rolled the dice")
	}

	d1, d2 := r.dice()
	r.lastDice = [2]int{d1, d2}
	r.event(EvDiceRolled, p.ID, map[string]interface{}{"d1": d1, "d2": d2})

	if p.InJail {
		r.rollInJail(p, d1, d2)
		return d1, d2, nil
	}

	if d1 == d2 {
		r.doubles++
		if r.doubles >= 3 {
			r.rolled = true
			r.sendToJail(p)
			r.phase = PhaseAwaitAction
			return d1, d2, nil
		}
		r.rolled = false
	} else {
		r.rolled = true
	}

	r.moveAndResolve(p, d1+d2)
	return d1, d2, nil
}

// rollInJail handles a roll by a jailed player: doubles get them out for
// free, the last failed attempt forces the fine. A jail roll never grants a
// second throw.
func (r *Room) rollInJail(p *Player, d1, d2 int) {
	r.rolled = true
	if d1 == d2 {
		p.InJail = false
		p.JailTurns = 0
		r.event(EvLeftJail, p.ID, map[string]interface{}{"by": "doubles"})
		r.moveAndResolve(p, d1+d2)
		return
	}

	p.JailTurns--
	if p.JailTurns > 0 {
		r.phase = PhaseAwaitAction
		return
	}

	paid, short := r.forcePay(p, r.cfg.JailFine, nil)
	r.event(EvJailFinePaid, p.ID, map[string]interface{}{"amount": paid, "forced": true})
	if short {
		r.bankrupt(p, nil)
		r.advanceIfCurrentBankrupt()
		return
	}
	p.InJail = false
	r.event(EvLeftJail, p.ID, map[string]interface{}{"by": "fine"})
	r.moveAndResolve(p, d1+d2)
}

func (r *Room) moveAndResolve(p *Player, steps int) {
	from := p.Pos
	p.Pos = (p.Pos + steps) % board.Size
	r.event(EvPlayerMoved, p.ID, map[string]interface{}{
		"from": from, "to": p.Pos, "d1": r.lastDice[0], "d2": r.lastDice[1],
	})
	if p.Pos < from {
		p.Cash += r.cfg.StartBonus
		r.event(EvPassedStart, p.ID, map[string]interface{}{"bonus": r.cfg.StartBonus})
	}
	r.resolveLanding(p)
}

// resolveLanding dispatches on the tile kind the player stopped on.
func (r *Room) resolveLanding(p *Player) {
	tile := r.board.Tile(p.Pos)
	switch tile.Kind {
	case board.KindStreet, board.KindRailroad, board.KindUtility:
		r.resolveOwnable(p, tile)
	case board.KindTax:
		paid, short := r.forcePay(p, tile.Tax, nil)
		r.event(EvTaxPaid, p.ID, map[string]interface{}{"tile": tile.Index, "amount": paid})
		r.settle(p, short, nil)
	case board.KindChance:
		r.drawCard(p, "chance")
	case board.KindChest:
		r.drawCard(p, "chest")
	case board.KindGoToJail:
		r.rolled = true
		r.sendToJail(p)
		r.phase = PhaseAwaitAction
	default: // start, jail (just visiting), free parking
		r.afterAction()
	}
}

func (r *Room) resolveOwnable(p *Player, tile *board.Tile) {
	st := &r.tiles[tile.Index]
	switch {
	case st.Owner == "":
		r.pendingBuy = tile.Index
		r.phase = PhaseAwaitAction
		r.event(EvPurchaseOffer, p.ID, map[string]interface{}{
			"tile": tile.Index, "price": tile.Price,
		})
	case st.Owner == p.ID, st.Mortgaged:
		r.afterAction()
	default:
		owner := r.byID[st.Owner]
		rent := r.rentFor(tile.Index)
		paid, short := r.forcePay(p, rent, owner)
		r.event(EvRentPaid, p.ID, map[string]interface{}{
			"tile": tile.Index, "to": owner.ID, "amount": paid,
		})
		r.settle(p, short, owner)
	}
}

// settle finishes a forced payment: either the turn continues or the payer
// went bankrupt and the turn moves on.
func (r *Room) settle(p *Player, short bool, creditor *Player) {
	if short {
		r.bankrupt(p, creditor)
		r.advanceIfCurrentBankrupt()
		return
	}
	r.afterAction()
}

func (r *Room) drawCard(p *Player, deck string) {
	cards := r.board.Cards(deck)
	if len(cards) == 0 {
		r.afterAction()
		return
	}
	card := cards[r.rng.Intn(len(cards))]
	r.event(EvCardDrawn, p.ID, map[string]interface{}{
		"deck": deck, "info": card.Info, "action": card.Action, "payload": card.Payload,
	})
	switch {
	case card.Action == "jail":
		r.rolled = true
		r.sendToJail(p)
		r.phase = PhaseAwaitAction
	case card.Action == "change" && card.Payload >= 0:
		p.Cash += card.Payload
		r.afterAction()
	case card.Action == "change":
		_, short := r.forcePay(p, -card.Payload, nil)
		r.settle(p, short, nil)
	default:
		r.afterAction()
	}
}

func (r *Room) sendToJail(p *Player) {
	p.Pos = r.board.IndexOf(board.KindJail)
	p.InJail = true
	p.JailTurns = r.cfg.JailTurns
	r.doubles = 0
	r.event(EvWentToJail, p.ID, map[string]interface{}{"turns": p.JailTurns})
}

// rentFor computes the rent owed on a tile. The tile must be owned and
// unmortgaged. Utility rent depends on the dice just thrown.
func (r *Room) rentFor(pos int) int {
	tile := r.board.Tile(pos)
	st := &r.tiles[pos]
	owned := r.ownedPositions(st.Owner)
	switch tile.Kind {
	case board.KindRailroad:
		n := r.board.CountKind(board.KindRailroad, owned)
		return 25 << (n - 1)
	case board.KindUtility:
		mult := 4
		if r.board.CountKind(board.KindUtility, owned) == 2 {
			mult = 10
		}
		return mult * (r.lastDice[0] + r.lastDice[1])
	default:
		if st.Level == 0 && r.ownsGroup(st.Owner, tile.Group) {
			return 2 * tile.Rent[0]
		}
		return tile.Rent[st.Level]
	}
}

// Buy purchases the tile the current player just landed on.
func (r *Room) Buy(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	if r.pendingBuy < 0 {
		if r.board.Tile(p.Pos).Ownable() && r.tiles[p.Pos].Owner != "" {
			return newError(OwnershipViolation, "tile %d is already owned", p.Pos)
		}
		return newError(InvalidState, "no purchase decision is pending")
	}

	tile := r.board.Tile(r.pendingBuy)
	if err := r.debit(p, tile.Price); err != nil {
		return err
	}
	r.tiles[tile.Index].Owner = p.ID
	pos := r.pendingBuy
	r.pendingBuy = -1
	r.event(EvPropertyBought, p.ID, map[string]interface{}{
		"tile": pos, "price": tile.Price, "balance": p.Cash,
	})
	r.afterAction()
	return nil
}

// Build adds one house (or the hotel) to an owned street. The full color
// group must be owned and building has to stay even across the group.
func (r *Room) Build(playerID string, pos int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	tile, st, err := r.streetOwnedBy(p, pos)
	if err != nil {
		return err
	}
	if !r.ownsGroup(p.ID, tile.Group) {
		return newError(OwnershipViolation, "you must own the whole %s group to build", tile.Group)
	}
	if st.Mortgaged {
		return newError(InvalidState, "tile %d is mortgaged", pos)
	}
	if st.Level >= board.MaxLevel {
		return newError(InvalidState, "tile %d is fully built", pos)
	}
	if min, _ := r.groupLevels(tile.Group); st.Level > min {
		return newError(InvalidState, "build evenly across the %s group", tile.Group)
	}
	if err := r.debit(p, tile.HouseCost); err != nil {
		return err
	}
	st.Level++
	r.event(EvHouseBuilt, p.ID, map[string]interface{}{
		"tile": pos, "level": st.Level, "cost": tile.HouseCost,
	})
	return nil
}

// Sell removes one building from an owned street at half the build cost.
func (r *Room) Sell(playerID string, pos int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	tile, st, err := r.streetOwnedBy(p, pos)
	if err != nil {
		return err
	}
	if st.Level == 0 {
		return newError(InvalidState, "tile %d has no buildings", pos)
	}
	if _, max := r.groupLevels(tile.Group); st.Level < max {
		return newError(InvalidState, "sell evenly across the %s group", tile.Group)
	}
	refund := tile.HouseCost / 2
	st.Level--
	p.Cash += refund
	r.event(EvHouseSold, p.ID, map[string]interface{}{
		"tile": pos, "level": st.Level, "refund": refund,
	})
	return nil
}

// Mortgage pawns a building-free tile for its mortgage value.
func (r *Room) Mortgage(playerID string, pos int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	tile, st, err := r.ownableOwnedBy(p, pos)
	if err != nil {
		return err
	}
	if st.Level > 0 {
		return newError(InvalidState, "sell buildings on tile %d first", pos)
	}
	if st.Mortgaged {
		return newError(InvalidState, "tile %d is already mortgaged", pos)
	}
	st.Mortgaged = true
	p.Cash += tile.Mortgage
	r.event(EvMortgaged, p.ID, map[string]interface{}{"tile": pos, "value": tile.Mortgage})
	return nil
}

// Unmortgage buys a tile back for the mortgage value plus interest.
func (r *Room) Unmortgage(playerID string, pos int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	tile, st, err := r.ownableOwnedBy(p, pos)
	if err != nil {
		return err
	}
	if !st.Mortgaged {
		return newError(InvalidState, "tile %d is not mortgaged", pos)
	}
	cost := tile.Mortgage + tile.Mortgage*r.cfg.UnmortgageInterestPct/100
	if err := r.debit(p, cost); err != nil {
		return err
	}
	st.Mortgaged = false
	r.event(EvUnmortgaged, p.ID, map[string]interface{}{"tile": pos, "cost": cost})
	return nil
}

// PayJail lets the current player pay the fine before rolling.
func (r *Room) PayJail(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	if !p.InJail {
		return newError(InvalidState, "you are not in jail")
	}
	if r.phase != PhaseAwaitRoll {
		return newError(InvalidState, "pay before throwing the dice")
	}
	if err := r.debit(p, r.cfg.JailFine); err != nil {
		return err
	}
	p.InJail = false
	p.JailTurns = 0
	r.event(EvJailFinePaid, p.ID, map[string]interface{}{"amount": r.cfg.JailFine})
	r.event(EvLeftJail, p.ID, map[string]interface{}{"by": "payment"})
	return nil
}

// EndTurn hands the dice to the next non-bankrupt player. A pending trade
// does not block it; an unresolved purchase offer or a running auction does.
func (r *Room) EndTurn(playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.requireTurn(playerID)
	if err != nil {
		return err
	}
	if r.pendingBuy >= 0 {
		return newError(InvalidState, "buy the property or put it up for auction first")
	}
	if !r.rolled {
		return newError(InvalidState, "you must roll the dice first")
	}
	r.advanceTurn()
	return nil
}

func (r *Room) advanceTurn() {
	r.turn = r.nextAlive(r.turn)
	r.rolled = false
	r.doubles = 0
	r.phase = PhaseAwaitRoll
	r.event(EvTurnChanged, r.current().ID, nil)
}

// advanceIfCurrentBankrupt moves the turn on after the acting player went
// bankrupt mid-resolution.
func (r *Room) advanceIfCurrentBankrupt() {
	if r.phase == PhaseFinished || !r.current().Bankrupt {
		return
	}
	r.advanceTurn()
}

func (r *Room) streetOwnedBy(p *Player, pos int) (*board.Tile, *TileState, error) {
	tile, st, err := r.ownableOwnedBy(p, pos)
	if err != nil {
		return nil, nil, err
	}
	if tile.Kind != board.KindStreet {
		return nil, nil, newError(InvalidState, "tile %d cannot carry buildings", pos)
	}
	return tile, st, nil
}

func (r *Room) ownableOwnedBy(p *Player, pos int) (*board.Tile, *TileState, error) {
	if pos < 0 || pos >= board.Size {
		return nil, nil, newError(NotFound, "tile %d does not exist", pos)
	}
	tile := r.board.Tile(pos)
	if !tile.Ownable() {
		return nil, nil, newError(InvalidState, "tile %d cannot be owned", pos)
	}
	st := &r.tiles[pos]
	if st.Owner != p.ID {
		return nil, nil, newError(OwnershipViolation, "you do not own tile %d", pos)
	}
	return tile, st, nil
}
