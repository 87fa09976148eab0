package game

import (
	"fmt"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

// actionHandlers is the dispatch table for Apply. Every handler validates
// completely before it mutates anything.
func (e *Engine) actionHandlers() map[core.ActionKind]actionHandler {
	return map[core.ActionKind]actionHandler{
		core.ActionMove:                  e.handleMove,
		core.ActionRecruit:               e.handleRecruit,
		core.ActionBuildFortification:    e.handleBuildFortification,
		core.ActionRelocateFortification: e.handleRelocateFortification,
		core.ActionClaimTitle:            e.handleClaimTitle,
		core.ActionFakeClaim:             e.handleFakeClaim,
		core.ActionClaimTown:             e.handleClaimTown,
		core.ActionAttack:                e.handleAttack,
		core.ActionDefend:                e.handleDefend,
		core.ActionPlayCard:              e.handlePlayCard,
		core.ActionDrawCard:              e.handleDrawCard,
		core.ActionEndTurn:               e.handleEndTurn,
	}
}

// holding looks up id on the board.
func (e *Engine) holding(a core.Action, id string) (*board.Holding, error) {
	h, ok := e.gs.Board.Lookup(id)
	if !ok {
		return nil, core.Reject(a, core.ErrUnknownHolding, "%q", id)
	}
	return h, nil
}

// ownedTown looks up id and checks that it is a town owned by p.
func (e *Engine) ownedTown(p *Player, a core.Action, id string) (*board.Holding, error) {
	h, err := e.holding(a, id)
	if err != nil {
		return nil, err
	}
	if !h.IsTown() {
		return nil, core.Reject(a, core.ErrNotATown, "%s", id)
	}
	if e.gs.Territories[id].OwnerID != p.ID {
		return nil, core.Reject(a, core.ErrNotOwned, "%s", id)
	}
	return h, nil
}

// unownedTown looks up id and checks that it is a town nobody owns.
func (e *Engine) unownedTown(a core.Action, id string) (*board.Holding, error) {
	h, err := e.holding(a, id)
	if err != nil {
		return nil, err
	}
	if !h.IsTown() {
		return nil, core.Reject(a, core.ErrNotATown, "%s", id)
	}
	if owner := e.gs.Territories[id].OwnerID; owner != "" {
		return nil, core.Reject(a, core.ErrTargetOwned, "%s is held by %s", id, owner)
	}
	return h, nil
}

func (e *Engine) spend(p *Player, a core.Action, cost int) error {
	if p.Gold < cost {
		return core.Reject(a, core.ErrInsufficientGold, "need %d, have %d", cost, p.Gold)
	}
	return nil
}

func (e *Engine) pay(p *Player, cost int) {
	p.Gold -= cost
	p.Stats.GoldSpent += cost
}

func (e *Engine) handleMove(p *Player, a core.Action) (*outcome, error) {
	src, err := e.holding(a, a.Source)
	if err != nil {
		return nil, err
	}
	dst, err := e.holding(a, a.Target)
	if err != nil {
		return nil, err
	}
	if e.gs.Territories[src.ID].OwnerID != p.ID {
		return nil, core.Reject(a, core.ErrNotOwned, "%s", src.ID)
	}
	if e.gs.Territories[dst.ID].OwnerID != p.ID {
		return nil, core.Reject(a, core.ErrNotOwned, "%s", dst.ID)
	}
	if src.ID == dst.ID {
		return nil, core.Reject(a, core.ErrSameHolding, "%s", src.ID)
	}
	if !e.gs.Board.Adjacent(src.ID, dst.ID) {
		return nil, core.Reject(a, core.ErrNotAdjacent, "%s and %s", src.ID, dst.ID)
	}
	if a.Soldiers <= 0 {
		return nil, core.Reject(a, core.ErrInvalidAmount, "soldiers must be positive")
	}
	if a.Soldiers > p.Soldiers {
		return nil, core.Reject(a, core.ErrInsufficientSoldiers, "requested %d, have %d", a.Soldiers, p.Soldiers)
	}

	return &outcome{message: fmt.Sprintf("%s moved %d soldiers from %s to %s", p.Name, a.Soldiers, src.Name, dst.Name)}, nil
}

func (e *Engine) handleRecruit(p *Player, a core.Action) (*outcome, error) {
	block := e.rules.RecruitBlock
	if a.Soldiers <= 0 || a.Soldiers%block != 0 {
		return nil, core.Reject(a, core.ErrInvalidAmount, "recruit in blocks of %d", block)
	}
	if e.gs.ForbidMercenaries {
		return nil, core.Reject(a, core.ErrMercenariesForbidden, "")
	}
	cost := e.rules.RecruitCost(a.Soldiers)
	if err := e.spend(p, a, cost); err != nil {
		return nil, err
	}
	if limit := e.rules.ArmyCap(p.Title, p.BigWar); p.Soldiers+a.Soldiers > limit {
		return nil, core.Reject(a, core.ErrArmyCap, "%d + %d exceeds %d", p.Soldiers, a.Soldiers, limit)
	}

	e.pay(p, cost)
	p.Soldiers += a.Soldiers
	return &outcome{message: fmt.Sprintf("%s recruited %d soldiers for %d gold", p.Name, a.Soldiers, cost)}, nil
}

// fortRoom checks that p may add a fortification to town.
func (e *Engine) fortRoom(p *Player, a core.Action, town string) error {
	t := e.gs.Territories[town]
	if t.FortCount() >= e.rules.MaxFortsPerTown {
		return core.Reject(a, core.ErrTownFortCap, "%s has %d", town, t.FortCount())
	}
	if t.Forts[p.ID] >= e.rules.MaxFortsPerOwner {
		return core.Reject(a, core.ErrOwnerFortCap, "%s has %d of yours", town, t.Forts[p.ID])
	}
	return nil
}

func (e *Engine) handleBuildFortification(p *Player, a core.Action) (*outcome, error) {
	h, err := e.ownedTown(p, a, a.Target)
	if err != nil {
		return nil, err
	}
	if err := e.fortRoom(p, a, h.ID); err != nil {
		return nil, err
	}
	if placed := e.gs.fortsPlacedBy(p.ID); placed >= e.rules.MaxFortsPerPlayer {
		return nil, core.Reject(a, core.ErrGlobalFortCap, "%d placed", placed)
	}
	if err := e.spend(p, a, e.rules.FortificationCost); err != nil {
		return nil, err
	}

	e.pay(p, e.rules.FortificationCost)
	e.gs.Territories[h.ID].Forts[p.ID]++
	return &outcome{message: fmt.Sprintf("%s fortified %s", p.Name, h.Name)}, nil
}

func (e *Engine) handleRelocateFortification(p *Player, a core.Action) (*outcome, error) {
	if placed := e.gs.fortsPlacedBy(p.ID); placed < e.rules.MaxFortsPerPlayer {
		return nil, core.Reject(a, core.ErrFortsNotExhausted, "%d of %d placed", placed, e.rules.MaxFortsPerPlayer)
	}
	src, err := e.holding(a, a.Source)
	if err != nil {
		return nil, err
	}
	if e.gs.Territories[src.ID].Forts[p.ID] == 0 {
		return nil, core.Reject(a, core.ErrNoFortification, "%s", src.ID)
	}
	if a.Source == a.Target {
		return nil, core.Reject(a, core.ErrSameHolding, "%s", src.ID)
	}
	dst, err := e.ownedTown(p, a, a.Target)
	if err != nil {
		return nil, err
	}
	if err := e.fortRoom(p, a, dst.ID); err != nil {
		return nil, err
	}
	if err := e.spend(p, a, e.rules.FortificationCost); err != nil {
		return nil, err
	}

	e.pay(p, e.rules.FortificationCost)
	srcForts := e.gs.Territories[src.ID].Forts
	srcForts[p.ID]--
	if srcForts[p.ID] == 0 {
		delete(srcForts, p.ID)
	}
	e.gs.Territories[dst.ID].Forts[p.ID]++
	return &outcome{message: fmt.Sprintf("%s moved a fortification from %s to %s", p.Name, src.Name, dst.Name)}, nil
}

func (e *Engine) handleClaimTitle(p *Player, a core.Action) (*outcome, error) {
	seat, err := e.holding(a, a.Target)
	if err != nil {
		return nil, err
	}
	if !seat.Type.IsSeat() {
		return nil, core.Reject(a, core.ErrNotASeat, "%s", seat.ID)
	}
	switch owner := e.gs.Territories[seat.ID].OwnerID; owner {
	case "":
	case p.ID:
		return nil, core.Reject(a, core.ErrTitleAlreadyHeld, "%s", seat.Name)
	default:
		// The crown can be taken from a sitting king; lesser seats cannot.
		if seat.Type != board.KingdomSeat {
			return nil, core.Reject(a, core.ErrSeatTaken, "%s is held by %s", seat.Name, owner)
		}
	}

	title, scope := titleForSeat(seat)
	if err := e.titleEligible(p, seat); err != nil {
		return nil, core.Reject(a, err, "%s of %s", title, scope)
	}
	cost := e.rules.TitleCost(title)
	if err := e.spend(p, a, cost); err != nil {
		return nil, err
	}

	e.pay(p, cost)
	e.grantSeat(p, seat)
	return &outcome{message: fmt.Sprintf("%s claimed the title %s of %s", p.Name, title, scope)}, nil
}

func (e *Engine) handleFakeClaim(p *Player, a core.Action) (*outcome, error) {
	h, err := e.unownedTown(a, a.Target)
	if err != nil {
		return nil, err
	}
	if p.Claims[h.ID] {
		return nil, core.Reject(a, core.ErrAlreadyClaimed, "%s", h.ID)
	}
	if err := e.spend(p, a, e.rules.FakeClaimCost); err != nil {
		return nil, err
	}

	e.pay(p, e.rules.FakeClaimCost)
	p.Claims[h.ID] = true
	return &outcome{message: fmt.Sprintf("%s fabricated a claim on %s", p.Name, h.Name)}, nil
}

func (e *Engine) handleClaimTown(p *Player, a core.Action) (*outcome, error) {
	h, err := e.unownedTown(a, a.Target)
	if err != nil {
		return nil, err
	}
	if !p.Claims[h.ID] {
		return nil, core.Reject(a, core.ErrNoClaim, "%s", h.ID)
	}
	if err := e.spend(p, a, e.rules.ClaimTownCost); err != nil {
		return nil, err
	}

	e.pay(p, e.rules.ClaimTownCost)
	delete(p.Claims, h.ID)
	e.gs.Territories[h.ID].OwnerID = p.ID
	p.Stats.HoldingsCaptured++
	e.publish(events.NewHoldingCapturedEvent(e.gameID, h.ID, "", p.ID, a.Kind, e.gs.Round))
	return &outcome{message: fmt.Sprintf("%s pressed the claim on %s", p.Name, h.Name)}, nil
}

func (e *Engine) handleEndTurn(p *Player, a core.Action) (*outcome, error) {
	if err := e.scheduler.EndTurn(); err != nil {
		return nil, core.WrapGameStateError(e.gs.Round, e.Phase().String(), err)
	}
	return &outcome{message: fmt.Sprintf("%s ended the turn", p.Name)}, nil
}
