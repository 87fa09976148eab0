package game

import (
	"fmt"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/states"
)

// vassalProtected reports whether target lies inside p's own domain and is
// held by another player: p's county as Count, p's duchy as Duke, anywhere as King.
func (e *Engine) vassalProtected(p *Player, target *board.Holding) bool {
	owner := e.gs.Territories[target.ID].OwnerID
	if owner == "" || owner == p.ID {
		return false
	}
	return p.IsKing || p.holdsCounty(target.County) || p.holdsDuchy(target.Duchy)
}

// combatCards checks cards committed to a battle: each must be a distinct
// combat card in p's hand. It returns the effects they add.
func (e *Engine) combatCards(p *Player, a core.Action, ids []string) (combat.Effects, error) {
	var fx combat.Effects
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fx, core.Reject(a, core.ErrCardNotPlayable, "%s listed twice", id)
		}
		seen[id] = true
		if p.handIndex(id) < 0 {
			return fx, core.Reject(a, core.ErrCardNotInHand, "%s", id)
		}
		card, ok := e.gs.Catalogue.Get(id)
		if !ok || !card.IsCombat() {
			return fx, core.Reject(a, core.ErrCardNotPlayable, "%s is not a combat card", id)
		}
		armEffect(&fx, card.Effect)
	}
	return fx, nil
}

// commitCards takes committed cards out of p's hand and folds in anything
// armed earlier. The armed effects are consumed.
func commitCards(p *Player, ids []string, fx combat.Effects) combat.Effects {
	for _, id := range ids {
		p.removeFromHand(id)
	}
	fx = mergeEffects(fx, p.Armed)
	p.Armed = combat.Effects{}
	return fx
}

func (e *Engine) handleAttack(p *Player, a core.Action) (*outcome, error) {
	gs := e.gs
	if gs.EnforcePeace {
		return nil, core.Reject(a, core.ErrPeaceEnforced, "")
	}
	if gs.WarFought {
		return nil, core.Reject(a, core.ErrWarAlreadyFought, "")
	}
	src, err := e.holding(a, a.Source)
	if err != nil {
		return nil, err
	}
	dst, err := e.holding(a, a.Target)
	if err != nil {
		return nil, err
	}
	if gs.Territories[src.ID].OwnerID != p.ID {
		return nil, core.Reject(a, core.ErrNotOwned, "%s", src.ID)
	}
	if !dst.IsTown() {
		return nil, core.Reject(a, core.ErrNotATown, "%s", dst.ID)
	}
	if gs.Territories[dst.ID].OwnerID == p.ID {
		return nil, core.Reject(a, core.ErrOwnHolding, "%s", dst.ID)
	}
	if !gs.Board.Adjacent(src.ID, dst.ID) {
		return nil, core.Reject(a, core.ErrNotAdjacent, "%s and %s", src.ID, dst.ID)
	}
	if a.Soldiers < e.rules.MinAttackSoldiers {
		return nil, core.Reject(a, core.ErrBelowMinimumAttack, "need at least %d", e.rules.MinAttackSoldiers)
	}
	if a.Soldiers > p.Soldiers {
		return nil, core.Reject(a, core.ErrInsufficientSoldiers, "requested %d, have %d", a.Soldiers, p.Soldiers)
	}
	revolt := false
	if e.vassalProtected(p, dst) {
		if !p.VassalRevolt {
			return nil, core.Reject(a, core.ErrVassalProtected, "%s", dst.ID)
		}
		revolt = true
	}
	fx, err := e.combatCards(p, a, a.Cards)
	if err != nil {
		return nil, err
	}

	gs.WarFought = true
	p.BigWar = false
	if revolt {
		p.VassalRevolt = false
	}
	fx = commitCards(p, a.Cards, fx)

	defender := gs.player(gs.Territories[dst.ID].OwnerID)
	if defender != nil && defender.Human && defender.Soldiers > 0 {
		gs.Pending = &PendingCombat{
			AttackerID: p.ID,
			DefenderID: defender.ID,
			Source:     src.ID,
			Target:     dst.ID,
			Soldiers:   a.Soldiers,
			Cards:      append([]string(nil), a.Cards...),
			Effects:    fx,
			Round:      gs.Round,
		}
		if err := e.stateMachine.TransitionTo(states.PhaseCombat, gs.Round, "awaiting defence of "+dst.ID); err != nil {
			return nil, err
		}
		e.publish(events.NewCombatStartedEvent(e.gameID, p.ID, defender.ID, src.ID, dst.ID, a.Soldiers, gs.Round))
		return &outcome{message: fmt.Sprintf("%s attacks %s with %d soldiers; %s must defend", p.Name, dst.Name, a.Soldiers, defender.Name)}, nil
	}

	e.publish(events.NewCombatStartedEvent(e.gameID, p.ID, ownerID(defender), src.ID, dst.ID, a.Soldiers, gs.Round))

	attacker := combat.Force{PlayerID: p.ID, Soldiers: a.Soldiers, Effects: fx}
	def := combat.Force{PlayerID: ownerID(defender)}
	var defCards []string
	if defender != nil && defender.Soldiers > 0 {
		// Non-human defenders match the attacking force and throw in every combat card.
		for _, id := range defender.Hand {
			if card, ok := gs.Catalogue.Get(id); ok && card.IsCombat() {
				defCards = append(defCards, id)
			}
		}
		var defFx combat.Effects
		for _, id := range defCards {
			card, _ := gs.Catalogue.Get(id)
			armEffect(&defFx, card.Effect)
		}
		def.Soldiers = min(defender.Soldiers, a.Soldiers)
		def.Effects = commitCards(defender, defCards, defFx)
	}

	spent := append(append([]string(nil), a.Cards...), defCards...)
	result := e.fight(p, defender, src, dst, attacker, def, spent)
	return &outcome{message: combatMessage(p, defender, dst, result), combat: result}, nil
}

func (e *Engine) handleDefend(p *Player, a core.Action) (*outcome, error) {
	gs := e.gs
	pending := gs.Pending
	if pending == nil {
		return nil, core.Reject(a, core.ErrNoPendingCombat, "")
	}
	if a.Soldiers < 0 {
		return nil, core.Reject(a, core.ErrInvalidAmount, "soldiers must not be negative")
	}
	if a.Soldiers > p.Soldiers {
		return nil, core.Reject(a, core.ErrInsufficientSoldiers, "requested %d, have %d", a.Soldiers, p.Soldiers)
	}
	fx, err := e.combatCards(p, a, a.Cards)
	if err != nil {
		return nil, err
	}

	attackerP := gs.player(pending.AttackerID)
	if attackerP == nil {
		return nil, fmt.Errorf("pending combat references unknown attacker %q", pending.AttackerID)
	}
	fx = commitCards(p, a.Cards, fx)

	src := gs.Board.Holding(pending.Source)
	dst := gs.Board.Holding(pending.Target)
	attacker := combat.Force{PlayerID: attackerP.ID, Soldiers: pending.Soldiers, Effects: pending.Effects}
	def := combat.Force{PlayerID: p.ID, Soldiers: a.Soldiers, Effects: fx}

	spent := append(append([]string(nil), pending.Cards...), a.Cards...)
	gs.Pending = nil
	result := e.fight(attackerP, p, src, dst, attacker, def, spent)

	if err := e.stateMachine.TransitionTo(states.PhasePlayerTurn, gs.Round, "combat resolved"); err != nil {
		return nil, err
	}
	return &outcome{message: combatMessage(attackerP, p, dst, result), combat: result}, nil
}

// fight fills in terrain, fortification and title bonuses, resolves the battle
// and applies its result: losses, capture and discarding the spent cards.
func (e *Engine) fight(attackerP, defenderP *Player, src, dst *board.Holding, att, def combat.Force, spent []string) *combat.Result {
	gs := e.gs
	t := gs.Territories[dst.ID]

	att.Terrain = src.AttackMod
	if attackerP.holdsDuchy(dst.Duchy) {
		att.TitleBonus++
	}
	def.Terrain = dst.Type.BaseDefense() + dst.DefenseMod
	def.Fortifications = t.FortCount()
	if defenderP != nil {
		if defenderP.holdsCounty(dst.County) {
			def.TitleBonus++
		}
		if defenderP.holdsDuchy(dst.Duchy) {
			def.TitleBonus++
		}
	}

	result := combat.Resolve(combat.Battle{Target: dst.ID, Attacker: att, Defender: def}, e.dice)

	attackerP.Soldiers = max(0, attackerP.Soldiers-result.Attacker.Losses)
	attackerP.Stats.SoldiersLost += result.Attacker.Losses
	if defenderP != nil {
		defenderP.Soldiers = max(0, defenderP.Soldiers-result.Defender.Losses)
		defenderP.Stats.SoldiersLost += result.Defender.Losses
	}

	if result.AttackerWon {
		attackerP.Stats.BattlesWon++
		former := t.OwnerID
		t.OwnerID = attackerP.ID
		delete(t.Forts, former)
		attackerP.Stats.HoldingsCaptured++
		if defenderP != nil {
			defenderP.Stats.BattlesLost++
			defenderP.Stats.HoldingsLost++
		}
		e.publish(events.NewHoldingCapturedEvent(e.gameID, dst.ID, former, attackerP.ID, core.ActionAttack, gs.Round))
	} else {
		attackerP.Stats.BattlesLost++
		if defenderP != nil {
			defenderP.Stats.BattlesWon++
		}
	}

	for _, id := range spent {
		gs.Deck.Discard(id)
	}

	e.publish(events.NewCombatResolvedEvent(e.gameID, result, gs.Round))
	e.logger.Info().
		Str("attacker_id", result.AttackerID).
		Str("defender_id", result.DefenderID).
		Str("target", dst.ID).
		Int("attacker_strength", result.Attacker.Strength).
		Int("defender_strength", result.Defender.Strength).
		Bool("attacker_won", result.AttackerWon).
		Bool("undefended", result.Undefended).
		Int("round", gs.Round).
		Msg("Combat resolved")

	return &result
}

func ownerID(p *Player) string {
	if p == nil {
		return ""
	}
	return p.ID
}

func combatMessage(attacker, defender *Player, target *board.Holding, r *combat.Result) string {
	defName := "the garrison"
	if defender != nil {
		defName = defender.Name
	}
	verb := "was repelled by"
	if r.AttackerWon {
		verb = "defeated"
	}
	return fmt.Sprintf("%s %s %s at %s (%d vs %d)", attacker.Name, verb, defName, target.Name, r.Attacker.Strength, r.Defender.Strength)
}
