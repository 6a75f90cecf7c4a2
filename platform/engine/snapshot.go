package engine

// Snapshot is a consistent copy of the full room state, taken under the
// room lock. It carries everything a fresh subscriber needs to bootstrap.
type Snapshot struct {
	Room       string           `json:"room"`
	Seq        uint64           `json:"seq"`
	Phase      Phase            `json:"phase"`
	Turn       string           `json:"turn"`
	PendingBuy int              `json:"pending_buy"`
	Dice       [2]int           `json:"dice"`
	Winner     string           `json:"winner,omitempty"`
	Players    []PlayerSnapshot `json:"players"`
	Tiles      []TileSnapshot   `json:"tiles"`
	Auction    *AuctionSnapshot `json:"auction,omitempty"`
	Trade      *TradeSnapshot   `json:"trade,omitempty"`
}

type PlayerSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Cash      int    `json:"cash"`
	Pos       int    `json:"pos"`
	InJail    bool   `json:"in_jail"`
	JailTurns int    `json:"jail_turns,omitempty"`
	Bankrupt  bool   `json:"bankrupt"`
}

type TileSnapshot struct {
	Index     int    `json:"index"`
	Owner     string `json:"owner,omitempty"`
	Mortgaged bool   `json:"mortgaged,omitempty"`
	Level     int    `json:"level,omitempty"`
}

type AuctionSnapshot struct {
	Tile       int      `json:"tile"`
	Remaining  []string `json:"remaining"`
	Bidder     string   `json:"bidder"`
	HighBid    int      `json:"high_bid"`
	HighBidder string   `json:"high_bidder,omitempty"`
}

type TradeSnapshot struct {
	Proposer  string `json:"proposer"`
	Target    string `json:"target"`
	GiveMoney int    `json:"give_money"`
	WantMoney int    `json:"want_money"`
	GiveTile  int    `json:"give_tile"`
	WantTile  int    `json:"want_tile"`
}

func (r *Room) Snapshot() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Snapshot{
		Room:       r.ID,
		Seq:        r.seq,
		Phase:      r.phase,
		Turn:       r.current().ID,
		PendingBuy: r.pendingBuy,
		Dice:       r.lastDice,
		Winner:     r.winner,
	}
	for _, p := range r.players {
		s.Players = append(s.Players, PlayerSnapshot{
			ID: p.ID, Name: p.Name, Color: p.Color, Cash: p.Cash, Pos: p.Pos,
			InJail: p.InJail, JailTurns: p.JailTurns, Bankrupt: p.Bankrupt,
		})
	}
	for i := range r.tiles {
		if !r.board.Tile(i).Ownable() {
			continue
		}
		st := r.tiles[i]
		s.Tiles = append(s.Tiles, TileSnapshot{
			Index: i, Owner: st.Owner, Mortgaged: st.Mortgaged, Level: st.Level,
		})
	}
	if a := r.auction; a != nil {
		s.Auction = &AuctionSnapshot{
			Tile:       a.Tile,
			Remaining:  append([]string(nil), a.Order...),
			Bidder:     a.bidder(),
			HighBid:    a.HighBid,
			HighBidder: a.HighBidder,
		}
	}
	if t := r.trade; t != nil {
		s.Trade = &TradeSnapshot{
			Proposer: t.Proposer, Target: t.Target,
			GiveMoney: t.GiveMoney, WantMoney: t.WantMoney,
			GiveTile: t.GiveTile, WantTile: t.WantTile,
		}
	}
	return s
}
