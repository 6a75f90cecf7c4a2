package board

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed properties.json
var propertiesJSON []byte

//go:embed special.json
var specialJSON []byte

const Size = 40

type Kind string

const (
	KindStart       Kind = "start"
	KindStreet      Kind = "street"
	KindRailroad    Kind = "railroad"
	KindUtility     Kind = "utility"
	KindTax         Kind = "tax"
	KindChance      Kind = "chance"
	KindChest       Kind = "chest"
	KindJail        Kind = "jail"
	KindGoToJail    Kind = "go-to-jail"
	KindFreeParking Kind = "free-parking"
)

// MaxLevel is the hotel level. Levels 1-4 are houses.
const MaxLevel = 5

// Tile is one of the 40 board positions. Static after load.
type Tile struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Kind      Kind   `json:"kind"`
	Group     string `json:"group,omitempty"`
	Price     int    `json:"price,omitempty"`
	Rent      []int  `json:"rent,omitempty"` // indexed by building level 0-5
	Mortgage  int    `json:"mortgage,omitempty"`
	HouseCost int    `json:"housecost,omitempty"`
	Tax       int    `json:"tax,omitempty"`
}

func (t *Tile) Ownable() bool {
	return t.Kind == KindStreet || t.Kind == KindRailroad || t.Kind == KindUtility
}

// Special is one chance / community chest card.
type Special struct {
	Info    string `json:"info"`
	Action  string `json:"action"` // "change" - balance update, "jail" - go to jail
	Payload int    `json:"payload"`
}

type Board struct {
	tiles  [Size]Tile
	groups map[string][]int
	cards  map[string][]Special
}

// Load parses the embedded board description. The result is shared and
// read-only; callers must not mutate returned tiles.
func Load() (*Board, error) {
	var tiles []Tile
	if err := json.Unmarshal(propertiesJSON, &tiles); err != nil {
		return nil, fmt.Errorf("board: parsing properties: %w", err)
	}
	if len(tiles) != Size {
		return nil, fmt.Errorf("board: expected %d tiles, got %d", Size, len(tiles))
	}

	b := &Board{
		groups: make(map[string][]int),
		cards:  make(map[string][]Special),
	}
	for _, t := range tiles {
		if t.Index < 0 || t.Index >= Size {
			return nil, fmt.Errorf("board: tile %q has index %d out of range", t.Name, t.Index)
		}
		b.tiles[t.Index] = t
		if t.Kind == KindStreet {
			b.groups[t.Group] = append(b.groups[t.Group], t.Index)
		}
	}
	if err := json.Unmarshal(specialJSON, &b.cards); err != nil {
		return nil, fmt.Errorf("board: parsing special cards: %w", err)
	}
	return b, nil
}

func (b *Board) Tile(pos int) *Tile {
	return &b.tiles[((pos%Size)+Size)%Size]
}

// Group returns the tile indexes of a street color group.
func (b *Board) Group(name string) []int {
	return b.groups[name]
}

// Cards returns the card deck for "chance" or "chest".
func (b *Board) Cards(kind string) []Special {
	return b.cards[kind]
}

// IndexOf returns the position of the first tile of the given kind, or -1.
func (b *Board) IndexOf(kind Kind) int {
	for i := range b.tiles {
		if b.tiles[i].Kind == kind {
			return i
		}
	}
	return -1
}

// CountKind reports how many tiles of the given kind appear in positions.
func (b *Board) CountKind(kind Kind, positions []int) int {
	n := 0
	for _, pos := range positions {
		if b.Tile(pos).Kind == kind {
			n++
		}
	}
	return n
}
