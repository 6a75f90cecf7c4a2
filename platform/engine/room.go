package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/DedS3t/monopoly-engine/platform/board"
)

// Phase is the observable state of a room's turn machine. Moving and landing
// resolution happen inside a single Roll call, so they never show up here.
type Phase string

const (
	PhaseAwaitRoll   Phase = "await-roll"
	PhaseAwaitAction Phase = "await-action"
	PhaseAuction     Phase = "auction"
	PhaseFinished    Phase = "finished"
)

// Config holds the economic constants of a room. Values are fixed at room
// creation.
type Config struct {
	StartCash             int
	StartBonus            int
	JailFine              int
	JailTurns             int
	UnmortgageInterestPct int
	BidTimeout            time.Duration
	TradeTTL              time.Duration
}

func DefaultConfig() Config {
	return Config{
		StartCash:             1500,
		StartBonus:            200,
		JailFine:              50,
		JailTurns:             3,
		UnmortgageInterestPct: 10,
		BidTimeout:            30 * time.Second,
		TradeTTL:              60 * time.Second,
	}
}

// Player is the per-player ledger: cash, position, jail and bankruptcy
// state. Owned tiles live in the room's tile registry, keyed by owner id.
type Player struct {
	ID        string
	Name      string
	Color     string
	Cash      int
	Pos       int
	InJail    bool
	JailTurns int
	Bankrupt  bool
}

// TileState is the mutable side of an ownable tile.
type TileState struct {
	Owner     string // "" means the bank
	Mortgaged bool
	Level     int // 0-5, 5 = hotel
}

// PlayerInfo seeds one player at room creation.
type PlayerInfo struct {
	ID    string
	Name  string
	Color string
}

// Room owns the authoritative state of one game. All mutation goes through
// its mutex; rooms share nothing with each other.
type Room struct {
	ID string

	mu     sync.Mutex
	board  *board.Board
	cfg    Config
	closed bool

	players []*Player
	byID    map[string]*Player
	tiles   [board.Size]TileState

	turn       int
	phase      Phase
	pendingBuy int // tile awaiting buy/decline, -1 when none
	rolled     bool
	doubles    int
	lastDice   [2]int

	auction *auction
	trade   *tradeOffer
	winner  string

	seq  uint64
	subs []chan Event

	rng  *rand.Rand
	dice func() (int, int)

	// timers re-check these generations under the lock before acting, so a
	// stale auto-pass or expiry can never fire against newer state
	auctionGen int
	tradeGen   int
}

func newRoom(id string, b *board.Board, cfg Config, infos []PlayerInfo) (*Room, error) {
	if len(infos) < 2 {
		return nil, newError(InvalidState, "room %s needs at least 2 players", id)
	}
	r := &Room{
		ID:         id,
		board:      b,
		cfg:        cfg,
		byID:       make(map[string]*Player),
		phase:      PhaseAwaitRoll,
		pendingBuy: -1,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	r.dice = func() (int, int) {
		return r.rng.Intn(6) + 1, r.rng.Intn(6) + 1
	}
	for _, info := range infos {
		if _, dup := r.byID[info.ID]; dup {
			return nil, newError(InvalidState, "duplicate player %s", info.ID)
		}
		p := &Player{ID: info.ID, Name: info.Name, Color: info.Color, Cash: cfg.StartCash}
		r.players = append(r.players, p)
		r.byID[info.ID] = p
	}
	return r, nil
}

func (r *Room) current() *Player {
	return r.players[r.turn]
}

func (r *Room) player(id string) (*Player, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, newError(NotFound, "player %s is not in room %s", id, r.ID)
	}
	return p, nil
}

// requireActor resolves the acting player and rejects closed rooms.
func (r *Room) requireActor(id string) (*Player, error) {
	if r.closed {
		return nil, newError(NotFound, "room %s is closed", r.ID)
	}
	p, err := r.player(id)
	if err != nil {
		return nil, err
	}
	if p.Bankrupt {
		return nil, newError(InvalidState, "player %s is bankrupt", id)
	}
	return p, nil
}

// requireTurn additionally checks the actor holds the current turn and that
// no auction has the room suspended.
func (r *Room) requireTurn(id string) (*Player, error) {
	p, err := r.requireActor(id)
	if err != nil {
		return nil, err
	}
	if r.phase == PhaseFinished {
		return nil, newError(InvalidState, "game in room %s is over", r.ID)
	}
	if r.auction != nil {
		return nil, newError(InvalidState, "an auction is in progress")
	}
	if r.current().ID != id {
		return nil, newError(OutOfTurn, "it is not %s's turn", id)
	}
	return p, nil
}

func (r *Room) ownedPositions(playerID string) []int {
	var out []int
	for i := range r.tiles {
		if r.tiles[i].Owner == playerID {
			out = append(out, i)
		}
	}
	return out
}

// ownsGroup reports whether the player owns every street of a color group.
func (r *Room) ownsGroup(playerID, group string) bool {
	positions := r.board.Group(group)
	if len(positions) == 0 {
		return false
	}
	for _, pos := range positions {
		if r.tiles[pos].Owner != playerID {
			return false
		}
	}
	return true
}

func (r *Room) aliveCount() int {
	n := 0
	for _, p := range r.players {
		if !p.Bankrupt {
			n++
		}
	}
	return n
}

// nextAlive returns the index of the next non-bankrupt player after from.
func (r *Room) nextAlive(from int) int {
	for i := 1; i <= len(r.players); i++ {
		idx := (from + i) % len(r.players)
		if !r.players[idx].Bankrupt {
			return idx
		}
	}
	return from
}

// afterAction is called once a pending decision (purchase, auction) has been
// resolved. A player who rolled doubles gets the dice back, everyone else
// keeps the action phase until they end the turn.
func (r *Room) afterAction() {
	if r.phase == PhaseFinished {
		return
	}
	if r.rolled {
		r.phase = PhaseAwaitAction
	} else {
		r.phase = PhaseAwaitRoll
	}
}

// checkWinner transitions the room to its terminal state when a single
// non-bankrupt player remains. Must be called with the lock held.
func (r *Room) checkWinner() {
	if r.aliveCount() != 1 {
		return
	}
	for _, p := range r.players {
		if !p.Bankrupt {
			r.winner = p.ID
			break
		}
	}
	r.phase = PhaseFinished
	r.auction = nil
	r.trade = nil
	r.auctionGen++
	r.tradeGen++
	r.event(EvGameOver, r.winner, map[string]interface{}{"winner": r.winner})
}

func (r *Room) close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.auctionGen++
	r.tradeGen++
	for _, ch := range r.subs {
		close(ch)
	}
	r.subs = nil
}
