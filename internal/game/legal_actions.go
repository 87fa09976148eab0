package game

import (
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/states"
)

// GetValidActions lists every action Apply would accept from playerID right
// now. The order is stable: kinds in a fixed order, holdings in board order,
// cards in hand order. It does not modify the state.
func (e *Engine) GetValidActions(playerID string) []core.Action {
	p := e.gs.player(playerID)
	if p == nil || e.locked {
		return nil
	}

	switch e.Phase() {
	case states.PhaseCombat:
		if e.gs.Pending == nil || e.gs.Pending.DefenderID != p.ID {
			return nil
		}
		return e.defendActions(p)
	case states.PhasePlayerTurn:
		if e.gs.current() != p {
			return nil
		}
	default:
		return nil
	}

	var actions []core.Action
	if e.canDraw(p) == nil {
		actions = append(actions, core.DrawCard(p.ID))
	}
	actions = append(actions, e.moveActions(p)...)
	actions = append(actions, e.recruitActions(p)...)
	actions = append(actions, e.fortificationActions(p)...)
	actions = append(actions, e.titleActions(p)...)
	actions = append(actions, e.claimActions(p)...)
	actions = append(actions, e.cardActions(p)...)
	actions = append(actions, e.attackActions(p)...)
	actions = append(actions, core.EndTurn(p.ID))
	return actions
}

func (e *Engine) defendActions(p *Player) []core.Action {
	block := e.rules.RecruitBlock
	var actions []core.Action
	for n := 0; n <= p.Soldiers; n += block {
		actions = append(actions, core.Defend(p.ID, n))
	}
	if p.Soldiers%block != 0 {
		actions = append(actions, core.Defend(p.ID, p.Soldiers))
	}

	var combatCards []string
	for _, id := range p.Hand {
		if card, ok := e.gs.Catalogue.Get(id); ok && card.IsCombat() {
			combatCards = append(combatCards, id)
		}
	}
	if len(combatCards) > 0 {
		actions = append(actions, core.Defend(p.ID, p.Soldiers, combatCards...))
	}
	return actions
}

func (e *Engine) moveActions(p *Player) []core.Action {
	if p.Soldiers <= 0 {
		return nil
	}
	var actions []core.Action
	for _, src := range e.gs.ownedHoldings(p.ID) {
		for _, dst := range e.gs.Board.Neighbors(src) {
			if e.gs.Territories[dst].OwnerID == p.ID {
				actions = append(actions, core.Move(p.ID, src, dst, p.Soldiers))
			}
		}
	}
	return actions
}

func (e *Engine) recruitActions(p *Player) []core.Action {
	if e.gs.ForbidMercenaries {
		return nil
	}
	block := e.rules.RecruitBlock
	limit := e.rules.ArmyCap(p.Title, p.BigWar)
	var actions []core.Action
	for n := block; p.Soldiers+n <= limit && e.rules.RecruitCost(n) <= p.Gold; n += block {
		actions = append(actions, core.Recruit(p.ID, n))
	}
	return actions
}

func (e *Engine) fortificationActions(p *Player) []core.Action {
	gs := e.gs
	r := e.rules
	if p.Gold < r.FortificationCost {
		return nil
	}

	hasRoom := func(town string) bool {
		t := gs.Territories[town]
		return t.FortCount() < r.MaxFortsPerTown && t.Forts[p.ID] < r.MaxFortsPerOwner
	}
	towns := gs.ownedTowns(p.ID)
	placed := gs.fortsPlacedBy(p.ID)

	var actions []core.Action
	if placed < r.MaxFortsPerPlayer {
		for _, town := range towns {
			if hasRoom(town) {
				actions = append(actions, core.BuildFortification(p.ID, town))
			}
		}
		return actions
	}

	for _, src := range gs.Board.Towns() {
		if gs.Territories[src].Forts[p.ID] == 0 {
			continue
		}
		for _, dst := range towns {
			if dst != src && hasRoom(dst) {
				actions = append(actions, core.RelocateFortification(p.ID, src, dst))
			}
		}
	}
	return actions
}

func (e *Engine) titleActions(p *Player) []core.Action {
	var actions []core.Action
	for _, id := range e.gs.Board.IDs() {
		seat := e.gs.Board.Holding(id)
		if !seat.Type.IsSeat() {
			continue
		}
		owner := e.seatOwner(id)
		if owner == p.ID || (owner != "" && seat.Type != board.KingdomSeat) {
			continue
		}
		title, _ := titleForSeat(seat)
		if p.Gold < e.rules.TitleCost(title) {
			continue
		}
		if e.titleEligible(p, seat) == nil {
			actions = append(actions, core.ClaimTitle(p.ID, id))
		}
	}
	return actions
}

func (e *Engine) claimActions(p *Player) []core.Action {
	var fake, press []core.Action
	for _, town := range e.gs.Board.Towns() {
		if e.gs.Territories[town].OwnerID != "" {
			continue
		}
		if p.Claims[town] {
			if p.Gold >= e.rules.ClaimTownCost {
				press = append(press, core.ClaimTown(p.ID, town))
			}
		} else if p.Gold >= e.rules.FakeClaimCost {
			fake = append(fake, core.FakeClaim(p.ID, town))
		}
	}
	return append(fake, press...)
}

func (e *Engine) cardActions(p *Player) []core.Action {
	var actions []core.Action
	for _, id := range p.Hand {
		card, ok := e.gs.Catalogue.Get(id)
		if !ok {
			continue
		}
		if !card.IsClaim() {
			if e.cardPlayable(p, card, "") == nil {
				actions = append(actions, core.PlayCard(p.ID, id, ""))
			}
			continue
		}
		for _, town := range e.gs.Board.Towns() {
			if e.cardPlayable(p, card, town) == nil {
				actions = append(actions, core.PlayCard(p.ID, id, town))
			}
		}
	}
	return actions
}

func (e *Engine) attackActions(p *Player) []core.Action {
	gs := e.gs
	minimum := e.rules.MinAttackSoldiers
	if gs.EnforcePeace || gs.WarFought || p.Soldiers < minimum {
		return nil
	}

	var actions []core.Action
	for _, src := range gs.ownedHoldings(p.ID) {
		for _, dst := range gs.Board.Neighbors(src) {
			h := gs.Board.Holding(dst)
			if !h.IsTown() || gs.Territories[dst].OwnerID == p.ID {
				continue
			}
			if e.vassalProtected(p, h) && !p.VassalRevolt {
				continue
			}
			actions = append(actions, core.Attack(p.ID, src, dst, minimum))
			if p.Soldiers > minimum {
				actions = append(actions, core.Attack(p.ID, src, dst, p.Soldiers))
			}
		}
	}
	return actions
}
