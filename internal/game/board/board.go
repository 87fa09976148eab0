// Package board holds the fixed topology of the kingdom: towns, the county,
// duchy and kingdom seats, their adjacency and their economic constants.
//
// The board is immutable. A single instance is shared by every game.
package board

import (
	"fmt"
	"strings"
	"sync"
)

// HoldingType is the kind of a holding on the board.
type HoldingType string

const (
	Town        HoldingType = "town"
	CountySeat  HoldingType = "county_seat"
	DuchySeat   HoldingType = "duchy_seat"
	KingdomSeat HoldingType = "kingdom_seat"
)

// BaseDefense returns the defence bonus every holding of this type gets in combat.
func (t HoldingType) BaseDefense() int {
	switch t {
	case Town:
		return 1
	case CountySeat:
		return 2
	case DuchySeat:
		return 3
	case KingdomSeat:
		return 4
	default:
		return 0
	}
}

// IsSeat reports whether the holding is the seat of a title.
func (t HoldingType) IsSeat() bool {
	return t == CountySeat || t == DuchySeat || t == KingdomSeat
}

// Holding is a single territory. Every field is static for the whole game.
type Holding struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       HoldingType `json:"type"`
	County     string      `json:"county,omitempty"`
	Duchy      string      `json:"duchy,omitempty"`
	Gold       int         `json:"gold"`
	Soldiers   int         `json:"soldiers"`
	DefenseMod int         `json:"defense_mod"`
	AttackMod  int         `json:"attack_mod"`
	Capital    bool        `json:"capital"`
}

// IsTown is a shorthand for h.Type == Town.
func (h *Holding) IsTown() bool {
	return h.Type == Town
}

// KingdomSeatID is the id of the single kingdom seat.
const KingdomSeatID = "king_castle"

// Board is the read-only lookup over all holdings.
type Board struct {
	holdings  map[string]*Holding
	order     []string
	adjacency map[string]map[string]bool

	counties      []string
	duchies       []string
	countyTowns   map[string][]string
	duchyCounties map[string][]string
	countyDuchy   map[string]string
	countySeat    map[string]string
	duchySeat     map[string]string
	capital       map[string]string
}

var (
	standard     *Board
	standardOnce sync.Once
)

// Standard returns the shared kingdom board.
func Standard() *Board {
	standardOnce.Do(func() {
		standard = build()
	})
	return standard
}

type townSpec struct {
	id, name, county string
	gold, soldiers   int
	defense, attack  int
	capital          bool
}

var towns = []townSpec{
	{"xandoria", "Xandoria", "X", 1, 400, 2, 0, false},
	{"xelphane", "Xelphane", "X", 5, 200, 0, 0, false},
	{"xythera", "Xythera", "X", 3, 300, 1, 0, true},
	{"ulverin", "Ulverin", "U", 5, 200, 0, 0, false},
	{"uldorwyn", "Uldorwyn", "U", 4, 300, 0, 0, false},
	{"umbrith", "Umbrith", "U", 2, 400, 0, 1, true},
	{"valoria", "Valoria", "V", 3, 300, 1, 0, true},
	{"vardhelm", "Vardhelm", "V", 5, 200, 0, 0, false},
	{"velthar", "Velthar", "V", 1, 500, 2, 0, false},
	{"quindara", "Quindara", "Q", 10, 100, -2, 0, true},
	{"qyrelis", "Qyrelis", "Q", 4, 300, 0, 0, false},
	{"quorwyn", "Quorwyn", "Q", 5, 200, 0, 0, false},
}

var duchyLayout = []struct {
	id       string
	counties [2]string
}{
	{"XU", [2]string{"X", "U"}},
	{"QV", [2]string{"Q", "V"}},
}

func build() *Board {
	b := &Board{
		holdings:      make(map[string]*Holding),
		adjacency:     make(map[string]map[string]bool),
		countyTowns:   make(map[string][]string),
		duchyCounties: make(map[string][]string),
		countyDuchy:   make(map[string]string),
		countySeat:    make(map[string]string),
		duchySeat:     make(map[string]string),
		capital:       make(map[string]string),
	}

	for _, d := range duchyLayout {
		b.duchies = append(b.duchies, d.id)
		for _, c := range d.counties {
			b.counties = append(b.counties, c)
			b.countyDuchy[c] = d.id
			b.duchyCounties[d.id] = append(b.duchyCounties[d.id], c)
		}
	}

	for _, t := range towns {
		b.add(&Holding{
			ID:         t.id,
			Name:       t.name,
			Type:       Town,
			County:     t.county,
			Duchy:      b.countyDuchy[t.county],
			Gold:       t.gold,
			Soldiers:   t.soldiers,
			DefenseMod: t.defense,
			AttackMod:  t.attack,
			Capital:    t.capital,
		})
		b.countyTowns[t.county] = append(b.countyTowns[t.county], t.id)
		if t.capital {
			b.capital[t.county] = t.id
		}
	}

	for _, c := range b.counties {
		seat := fmt.Sprintf("%s_castle", strings.ToLower(c))
		b.countySeat[c] = seat
		b.add(&Holding{
			ID:     seat,
			Name:   fmt.Sprintf("Castle of %s", c),
			Type:   CountySeat,
			County: c,
			Duchy:  b.countyDuchy[c],
		})
	}
	for _, d := range b.duchies {
		seat := fmt.Sprintf("%s_castle", strings.ToLower(d))
		b.duchySeat[d] = seat
		b.add(&Holding{
			ID:    seat,
			Name:  fmt.Sprintf("Castle of %s", d),
			Type:  DuchySeat,
			Duchy: d,
		})
	}
	b.add(&Holding{ID: KingdomSeatID, Name: "King's Castle", Type: KingdomSeat})

	for _, c := range b.counties {
		ts := b.countyTowns[c]
		for i, a := range ts {
			for _, o := range ts[i+1:] {
				b.connect(a, o)
			}
			b.connect(a, b.countySeat[c])
		}
		b.connect(b.countySeat[c], b.duchySeat[b.countyDuchy[c]])
	}
	for _, d := range b.duchies {
		b.connect(b.duchySeat[d], KingdomSeatID)
	}

	return b
}

func (b *Board) add(h *Holding) {
	b.holdings[h.ID] = h
	b.order = append(b.order, h.ID)
	b.adjacency[h.ID] = make(map[string]bool)
}

func (b *Board) connect(a, c string) {
	b.adjacency[a][c] = true
	b.adjacency[c][a] = true
}

// Lookup returns the holding with the given id.
func (b *Board) Lookup(id string) (*Holding, bool) {
	h, ok := b.holdings[id]
	return h, ok
}

// Holding returns the holding with the given id and panics on an unknown id.
// Use Lookup for ids that come from outside the engine.
func (b *Board) Holding(id string) *Holding {
	h, ok := b.holdings[id]
	if !ok {
		panic(fmt.Sprintf("board: unknown holding %q", id))
	}
	return h
}

// IDs returns every holding id in board order (towns, county seats, duchy seats, kingdom seat).
func (b *Board) IDs() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Towns returns every town id in board order.
func (b *Board) Towns() []string {
	out := make([]string, 0, len(towns))
	for _, id := range b.order {
		if b.holdings[id].Type == Town {
			out = append(out, id)
		}
	}
	return out
}

// Adjacent reports whether two holdings share a border.
func (b *Board) Adjacent(a, c string) bool {
	return b.adjacency[a][c]
}

// Neighbors returns the holdings adjacent to id in board order.
func (b *Board) Neighbors(id string) []string {
	adj := b.adjacency[id]
	out := make([]string, 0, len(adj))
	for _, o := range b.order {
		if adj[o] {
			out = append(out, o)
		}
	}
	return out
}

// Counties returns the county ids (X, U, Q, V).
func (b *Board) Counties() []string {
	return append([]string(nil), b.counties...)
}

// Duchies returns the duchy ids (XU, QV).
func (b *Board) Duchies() []string {
	return append([]string(nil), b.duchies...)
}

// TownsInCounty returns the three towns of a county.
func (b *Board) TownsInCounty(county string) []string {
	return append([]string(nil), b.countyTowns[county]...)
}

// CountiesInDuchy returns the two counties forming a duchy.
func (b *Board) CountiesInDuchy(duchy string) []string {
	return append([]string(nil), b.duchyCounties[duchy]...)
}

// DuchyOf returns the duchy a county belongs to.
func (b *Board) DuchyOf(county string) string {
	return b.countyDuchy[county]
}

// OtherCounty returns the county paired with county inside its duchy.
func (b *Board) OtherCounty(county string) string {
	for _, c := range b.duchyCounties[b.countyDuchy[county]] {
		if c != county {
			return c
		}
	}
	return ""
}

// OtherDuchy returns the duchy that is not duchy.
func (b *Board) OtherDuchy(duchy string) string {
	for _, d := range b.duchies {
		if d != duchy {
			return d
		}
	}
	return ""
}

// CapitalOf returns the capital town of a county.
func (b *Board) CapitalOf(county string) string {
	return b.capital[county]
}

// CountySeatOf returns the seat holding id of a county.
func (b *Board) CountySeatOf(county string) string {
	return b.countySeat[county]
}

// DuchySeatOf returns the seat holding id of a duchy.
func (b *Board) DuchySeatOf(duchy string) string {
	return b.duchySeat[duchy]
}
