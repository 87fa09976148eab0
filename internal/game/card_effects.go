package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

const spyPeek = 3

func armEffect(fx *combat.Effects, effect cards.Effect) {
	switch effect {
	case cards.Excalibur:
		fx.Excalibur = true
	case cards.PoisonedArrows:
		fx.PoisonedArrows = true
	case cards.TalentedCommander:
		fx.TalentedCommander = true
	case cards.Duel:
		fx.Duel = true
	}
}

func hasEffect(fx combat.Effects, effect cards.Effect) bool {
	switch effect {
	case cards.Excalibur:
		return fx.Excalibur
	case cards.PoisonedArrows:
		return fx.PoisonedArrows
	case cards.TalentedCommander:
		return fx.TalentedCommander
	case cards.Duel:
		return fx.Duel
	}
	return false
}

func mergeEffects(a, b combat.Effects) combat.Effects {
	return combat.Effects{
		Excalibur:         a.Excalibur || b.Excalibur,
		PoisonedArrows:    a.PoisonedArrows || b.PoisonedArrows,
		TalentedCommander: a.TalentedCommander || b.TalentedCommander,
		Duel:              a.Duel || b.Duel,
	}
}

// canDraw returns the sentinel explaining why p may not draw, or nil.
func (e *Engine) canDraw(p *Player) error {
	if e.gs.CardDrawn {
		return core.ErrAlreadyDrawn
	}
	if towns := len(e.gs.ownedTowns(p.ID)); towns > e.rules.DrawMaxTowns {
		return core.ErrDrawNotEligible
	}
	if !e.gs.Deck.CanDraw() {
		return core.ErrDeckExhausted
	}
	return nil
}

// drawCard draws the top card for p. Events resolve at once and go to the
// discard pile; other cards join the hand, pushing out the oldest card when
// the hand is over the limit.
func (e *Engine) drawCard(p *Player) (*cards.Card, string, error) {
	gs := e.gs
	id, err := gs.Deck.Draw()
	if errors.Is(err, cards.ErrEmpty) {
		return nil, "", core.ErrDeckExhausted
	}
	if err != nil {
		return nil, "", err
	}
	card, ok := gs.Catalogue.Get(id)
	if !ok {
		return nil, "", fmt.Errorf("deck returned unknown card %q", id)
	}

	gs.CardDrawn = true
	p.Stats.CardsDrawn++

	var msg, discarded string
	if card.IsInstant() {
		msg = e.applyInstant(p, card)
		gs.Deck.Discard(id)
	} else {
		p.Hand = append(p.Hand, id)
		msg = fmt.Sprintf("%s drew %s", p.Name, card.Name)
		if len(p.Hand) > e.rules.HandLimit {
			discarded = p.Hand[0]
			p.Hand = p.Hand[1:]
			gs.Deck.Discard(discarded)
			msg += fmt.Sprintf(" and discarded %s", discarded)
		}
	}

	e.publish(events.NewCardDrawnEvent(e.gameID, p.ID, id, string(card.Effect), card.IsInstant(), discarded, gs.Round))
	return card, msg, nil
}

// applyInstant resolves a personal or global event card.
func (e *Engine) applyInstant(p *Player, card *cards.Card) string {
	switch card.Effect {
	case cards.Gold5, cards.Gold10, cards.Gold15, cards.Gold25:
		p.Gold += card.Value
		return fmt.Sprintf("%s found %d gold", p.Name, card.Value)

	case cards.Soldiers100, cards.Soldiers200, cards.Soldiers300:
		limit := e.rules.ArmyCap(p.Title, p.BigWar)
		before := p.Soldiers
		p.Soldiers = min(p.Soldiers+card.Value, max(limit, p.Soldiers))
		return fmt.Sprintf("%s gained %d soldiers", p.Name, p.Soldiers-before)

	case cards.Raiders:
		lost := min(max(p.Gold, 0), p.LastIncomeGold)
		p.Gold -= lost
		p.LastIncomeGold = 0
		return fmt.Sprintf("Raiders took %d gold from %s", lost, p.Name)

	case cards.Crusade:
		for _, other := range e.gs.Players {
			other.Gold /= 2
			other.Soldiers /= 2
		}
		return "Crusade: every player lost half their gold and soldiers"
	}
	return fmt.Sprintf("%s drew %s", p.Name, card.Name)
}

func (e *Engine) handleDrawCard(p *Player, a core.Action) (*outcome, error) {
	if err := e.canDraw(p); err != nil {
		return nil, core.Reject(a, err, "")
	}
	card, msg, err := e.drawCard(p)
	if err != nil {
		return nil, err
	}
	return &outcome{message: msg, drawn: card}, nil
}

// cardPlayable returns the sentinel explaining why p may not play card on
// target, or nil.
func (e *Engine) cardPlayable(p *Player, card *cards.Card, target string) error {
	gs := e.gs
	switch card.Type {
	case cards.Bonus:
		switch card.Effect {
		case cards.BigWar:
			if p.BigWar {
				return core.ErrCardNotPlayable
			}
		case cards.VassalRevolt:
			if p.VassalRevolt {
				return core.ErrCardNotPlayable
			}
		case cards.Adventurer:
			if p.Gold < e.rules.AdventurerCost {
				return core.ErrInsufficientGold
			}
		case cards.Excalibur, cards.PoisonedArrows, cards.TalentedCommander, cards.Duel:
			if hasEffect(p.Armed, card.Effect) {
				return core.ErrCardNotPlayable
			}
		}
		return nil

	case cards.Claim:
		h, ok := gs.Board.Lookup(target)
		switch {
		case !ok:
			return core.ErrUnknownHolding
		case !h.IsTown():
			return core.ErrNotATown
		case gs.Territories[h.ID].OwnerID != "":
			return core.ErrTargetOwned
		case p.Claims[h.ID]:
			return core.ErrAlreadyClaimed
		}
		switch card.Effect {
		case cards.DuchyClaim:
			if !gs.ownsTownInDuchy(p.ID, h.Duchy) {
				return core.ErrClaimScope
			}
		case cards.UltimateClaim:
		default:
			if h.County != card.County {
				return core.ErrClaimScope
			}
		}
		return nil
	}
	return core.ErrCardNotPlayable
}

func (e *Engine) handlePlayCard(p *Player, a core.Action) (*outcome, error) {
	gs := e.gs
	if p.handIndex(a.CardID) < 0 {
		return nil, core.Reject(a, core.ErrCardNotInHand, "%s", a.CardID)
	}
	card, ok := gs.Catalogue.Get(a.CardID)
	if !ok {
		return nil, fmt.Errorf("hand of %s holds unknown card %q", p.ID, a.CardID)
	}
	if err := e.cardPlayable(p, card, a.Target); err != nil {
		return nil, core.Reject(a, err, "%s", card.Name)
	}

	msg := e.applyCard(p, card, a.Target)
	p.removeFromHand(card.ID)
	gs.Deck.Discard(card.ID)
	p.Stats.CardsPlayed++
	return &outcome{message: msg}, nil
}

// applyCard carries out a card that cardPlayable accepted.
func (e *Engine) applyCard(p *Player, card *cards.Card, target string) string {
	gs := e.gs
	switch card.Effect {
	case cards.BigWar:
		p.BigWar = true
		return fmt.Sprintf("%s declared a Big War: army cap doubled until the next attack", p.Name)
	case cards.Adventurer:
		e.pay(p, e.rules.AdventurerCost)
		p.Soldiers += card.Value
		return fmt.Sprintf("%s hired %d adventurers", p.Name, card.Value)
	case cards.Excalibur, cards.PoisonedArrows, cards.TalentedCommander, cards.Duel:
		armEffect(&p.Armed, card.Effect)
		return fmt.Sprintf("%s readied %s for the next battle", p.Name, card.Name)
	case cards.ForbidMercenaries:
		gs.ForbidMercenaries = true
		return "Mercenaries are forbidden for the rest of the round"
	case cards.EnforcePeace:
		gs.EnforcePeace = true
		return "Peace is enforced for the rest of the round"
	case cards.VassalRevolt:
		p.VassalRevolt = true
		return fmt.Sprintf("%s stirred up a vassal revolt", p.Name)
	case cards.Spy:
		var names []string
		for _, id := range gs.Deck.Peek(spyPeek) {
			if c, ok := gs.Catalogue.Get(id); ok {
				names = append(names, fmt.Sprintf("%s (%s)", c.Name, c.ID))
			}
		}
		if len(names) == 0 {
			return "The spy found nothing"
		}
		return "The spy reveals: " + strings.Join(names, ", ")
	}

	// Claim cards
	p.Claims[target] = true
	return fmt.Sprintf("%s gained a claim on %s", p.Name, gs.Board.Holding(target).Name)
}
