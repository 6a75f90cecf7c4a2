package engine

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/DedS3t/monopoly-engine/platform/board"
	"github.com/sirupsen/logrus"
)

// Manager owns all live rooms. Rooms are independent: the manager lock only
// guards the map, never game state.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	board *board.Board
	cfg   Config
}

func NewManager() (*Manager, error) {
	b, err := board.Load()
	if err != nil {
		return nil, err
	}
	return &Manager{
		rooms: make(map[string]*Room),
		board: b,
		cfg:   configFromEnv(),
	}, nil
}

func configFromEnv() Config {
	cfg := DefaultConfig()
	cfg.StartCash = envInt("START_CASH", cfg.StartCash)
	cfg.StartBonus = envInt("START_BONUS", cfg.StartBonus)
	cfg.JailFine = envInt("JAIL_FINE", cfg.JailFine)
	cfg.BidTimeout = time.Duration(envInt("AUCTION_BID_TIMEOUT", int(cfg.BidTimeout/time.Second))) * time.Second
	cfg.TradeTTL = time.Duration(envInt("TRADE_TTL", int(cfg.TradeTTL/time.Second))) * time.Second
	return cfg
}

func envInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return def
}

// CreateRoom starts a game for the given players. The id must be unused.
func (m *Manager) CreateRoom(id string, players []PlayerInfo) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.rooms[id]; exists {
		return nil, newError(AlreadyActive, "room %s already exists", id)
	}
	r, err := newRoom(id, m.board, m.cfg, players)
	if err != nil {
		return nil, err
	}
	m.rooms[id] = r

	r.mu.Lock()
	r.event(EvGameStarted, r.current().ID, map[string]interface{}{
		"players": len(players), "turn": r.current().ID,
	})
	r.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"room": id, "players": len(players),
	}).Info("room created")
	return r, nil
}

func (m *Manager) Room(id string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	if !ok {
		return nil, newError(NotFound, "room %s does not exist", id)
	}
	return r, nil
}

// CloseRoom tears a room down and detaches every subscriber.
func (m *Manager) CloseRoom(id string) error {
	m.mu.Lock()
	r, ok := m.rooms[id]
	if ok {
		delete(m.rooms, id)
	}
	m.mu.Unlock()
	if !ok {
		return newError(NotFound, "room %s does not exist", id)
	}
	r.close()
	logrus.WithField("room", id).Info("room closed")
	return nil
}

// Operation set consumed by the transport layer. Every call resolves the
// room and delegates; the room serializes all mutation internally.

func (m *Manager) Roll(roomID, playerID string) (int, int, error) {
	r, err := m.Room(roomID)
	if err != nil {
		return 0, 0, err
	}
	return r.Roll(playerID)
}

func (m *Manager) Buy(roomID, playerID string) error {
	return m.do(roomID, func(r *Room) error { return r.Buy(playerID) })
}

func (m *Manager) DeclineAndStartAuction(roomID, playerID string) error {
	return m.do(roomID, func(r *Room) error { return r.DeclineAndStartAuction(playerID) })
}

func (m *Manager) Bid(roomID, playerID string, amount int) error {
	return m.do(roomID, func(r *Room) error { return r.Bid(playerID, amount) })
}

func (m *Manager) PassAuction(roomID, playerID string) error {
	return m.do(roomID, func(r *Room) error { return r.PassAuction(playerID) })
}

func (m *Manager) Build(roomID, playerID string, tile int) error {
	return m.do(roomID, func(r *Room) error { return r.Build(playerID, tile) })
}

func (m *Manager) Sell(roomID, playerID string, tile int) error {
	return m.do(roomID, func(r *Room) error { return r.Sell(playerID, tile) })
}

func (m *Manager) Mortgage(roomID, playerID string, tile int) error {
	return m.do(roomID, func(r *Room) error { return r.Mortgage(playerID, tile) })
}

func (m *Manager) Unmortgage(roomID, playerID string, tile int) error {
	return m.do(roomID, func(r *Room) error { return r.Unmortgage(playerID, tile) })
}

func (m *Manager) ProposeTrade(roomID, playerID, targetID string, giveMoney, wantMoney, giveTile, wantTile int) error {
	return m.do(roomID, func(r *Room) error {
		return r.ProposeTrade(playerID, targetID, giveMoney, wantMoney, giveTile, wantTile)
	})
}

func (m *Manager) AcceptTrade(roomID, playerID string) error {
	return m.do(roomID, func(r *Room) error { return r.AcceptTrade(playerID) })
}

func (m *Manager) RejectTrade(roomID, playerID string) error {
	return m.do(roomID, func(r *Room) error { return r.RejectTrade(playerID) })
}

func (m *Manager) EndTurn(roomID, playerID string) error {
	return m.do(roomID, func(r *Room) error { return r.EndTurn(playerID) })
}

func (m *Manager) PayJail(roomID, playerID string) error {
	return m.do(roomID, func(r *Room) error { return r.PayJail(playerID) })
}

func (m *Manager) Snapshot(roomID string) (*Snapshot, error) {
	r, err := m.Room(roomID)
	if err != nil {
		return nil, err
	}
	return r.Snapshot(), nil
}

func (m *Manager) Subscribe(roomID string) (<-chan Event, func(), error) {
	r, err := m.Room(roomID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := r.Subscribe()
	return ch, cancel, nil
}

func (m *Manager) do(roomID string, op func(*Room) error) error {
	r, err := m.Room(roomID)
	if err != nil {
		return err
	}
	return op(r)
}
