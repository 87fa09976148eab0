package game

import (
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
)

// GameStateView is the serializable read model of a game. It shares no
// memory with the engine.
type GameStateView struct {
	GameID            string             `json:"game_id"`
	Phase             string             `json:"phase"`
	Round             int                `json:"round"`
	MaxRounds         int                `json:"max_rounds"`
	CurrentPlayerID   string             `json:"current_player_id,omitempty"`
	CardDrawn         bool               `json:"card_drawn"`
	WarFought         bool               `json:"war_fought"`
	ForbidMercenaries bool               `json:"forbid_mercenaries"`
	EnforcePeace      bool               `json:"enforce_peace"`
	Locked            bool               `json:"locked"`
	LockReason        string             `json:"lock_reason,omitempty"`
	WinnerID          string             `json:"winner_id,omitempty"`
	DeckSize          int                `json:"deck_size"`
	DiscardSize       int                `json:"discard_size"`
	Territories       []TerritoryView    `json:"territories"`
	Players           []PlayerView       `json:"players"`
	PendingCombat     *PendingCombatView `json:"pending_combat,omitempty"`
	History           []HistoryView      `json:"history"`
}

// TerritoryView is one holding with its static data and current owner.
type TerritoryView struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           string         `json:"type"`
	County         string         `json:"county,omitempty"`
	Duchy          string         `json:"duchy,omitempty"`
	OwnerID        string         `json:"owner_id,omitempty"`
	Gold           int            `json:"gold"`
	Soldiers       int            `json:"soldiers"`
	DefenseMod     int            `json:"defense_mod"`
	AttackMod      int            `json:"attack_mod"`
	Capital        bool           `json:"capital"`
	Fortifications int            `json:"fortifications"`
	FortOwners     map[string]int `json:"fort_owners,omitempty"`
}

// PlayerView is one player's public and private state.
type PlayerView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Seat         int          `json:"seat"`
	Human        bool         `json:"human"`
	Gold         int          `json:"gold"`
	Soldiers     int          `json:"soldiers"`
	ArmyCap      int          `json:"army_cap"`
	Title        string       `json:"title"`
	Counties     []string     `json:"counties"`
	Duchies      []string     `json:"duchies"`
	IsKing       bool         `json:"is_king"`
	Prestige     int          `json:"prestige"`
	KingRounds   int          `json:"king_rounds"`
	Towns        []string     `json:"towns"`
	Hand         []cards.Card `json:"hand"`
	Claims       []string     `json:"claims"`
	Armed        []string     `json:"armed_effects,omitempty"`
	VassalRevolt bool         `json:"vassal_revolt"`
	BigWar       bool         `json:"big_war"`
	Stats        PlayerStats  `json:"stats"`
}

// PendingCombatView is an attack waiting for its defender.
type PendingCombatView struct {
	AttackerID string   `json:"attacker_id"`
	DefenderID string   `json:"defender_id"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Soldiers   int      `json:"soldiers"`
	Cards      []string `json:"cards,omitempty"`
	Effects    []string `json:"effects,omitempty"`
	Round      int      `json:"round"`
}

// HistoryView is one entry of the action log.
type HistoryView struct {
	Round   int            `json:"round"`
	Phase   string         `json:"phase"`
	Action  *core.Action   `json:"action,omitempty"`
	Message string         `json:"message"`
	Combat  *combat.Result `json:"combat,omitempty"`
}

// Snapshot returns a deep copy of the game for serialization.
func (e *Engine) Snapshot() *GameStateView {
	gs := e.gs
	v := &GameStateView{
		GameID:            e.gameID,
		Phase:             e.Phase().String(),
		Round:             gs.Round,
		MaxRounds:         e.maxRounds(),
		CurrentPlayerID:   e.CurrentPlayerID(),
		CardDrawn:         gs.CardDrawn,
		WarFought:         gs.WarFought,
		ForbidMercenaries: gs.ForbidMercenaries,
		EnforcePeace:      gs.EnforcePeace,
		Locked:            e.locked,
		LockReason:        e.lockReason,
		WinnerID:          gs.WinnerID,
		DeckSize:          gs.Deck.Len(),
		DiscardSize:       gs.Deck.DiscardLen(),
		PendingCombat:     e.pendingView(),
	}

	for _, id := range gs.Board.IDs() {
		h := gs.Board.Holding(id)
		t := gs.Territories[id]
		tv := TerritoryView{
			ID:             h.ID,
			Name:           h.Name,
			Type:           string(h.Type),
			County:         h.County,
			Duchy:          h.Duchy,
			OwnerID:        t.OwnerID,
			Gold:           h.Gold,
			Soldiers:       h.Soldiers,
			DefenseMod:     h.DefenseMod,
			AttackMod:      h.AttackMod,
			Capital:        h.Capital,
			Fortifications: t.FortCount(),
		}
		if len(t.Forts) > 0 {
			tv.FortOwners = make(map[string]int, len(t.Forts))
			for owner, n := range t.Forts {
				tv.FortOwners[owner] = n
			}
		}
		v.Territories = append(v.Territories, tv)
	}

	for _, p := range gs.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Seat:         p.Seat,
			Human:        p.Human,
			Gold:         p.Gold,
			Soldiers:     p.Soldiers,
			ArmyCap:      e.rules.ArmyCap(p.Title, p.BigWar),
			Title:        string(p.Title),
			Counties:     append([]string{}, p.Counties...),
			Duchies:      append([]string{}, p.Duchies...),
			IsKing:       p.IsKing,
			Prestige:     p.Prestige,
			KingRounds:   p.KingRounds,
			Towns:        append([]string{}, gs.ownedTowns(p.ID)...),
			Hand:         make([]cards.Card, 0, len(p.Hand)),
			Claims:       p.claimList(),
			Armed:        p.Armed.Names(),
			VassalRevolt: p.VassalRevolt,
			BigWar:       p.BigWar,
			Stats:        p.Stats,
		}
		for _, id := range p.Hand {
			if c, ok := gs.Catalogue.Get(id); ok {
				pv.Hand = append(pv.Hand, *c)
			}
		}
		v.Players = append(v.Players, pv)
	}

	v.History = make([]HistoryView, 0, len(gs.History))
	for _, h := range gs.History {
		hv := HistoryView{Round: h.Round, Phase: h.Phase.String(), Message: h.Message}
		if h.Action != nil {
			a := *h.Action
			a.Cards = append([]string(nil), a.Cards...)
			hv.Action = &a
		}
		hv.Combat = h.Combat.Clone()
		v.History = append(v.History, hv)
	}
	return v
}

func (e *Engine) pendingView() *PendingCombatView {
	pc := e.gs.Pending
	if pc == nil {
		return nil
	}
	return &PendingCombatView{
		AttackerID: pc.AttackerID,
		DefenderID: pc.DefenderID,
		Source:     pc.Source,
		Target:     pc.Target,
		Soldiers:   pc.Soldiers,
		Cards:      append([]string(nil), pc.Cards...),
		Effects:    pc.Effects.Names(),
		Round:      pc.Round,
	}
}
