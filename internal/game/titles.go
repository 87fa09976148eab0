package game

import (
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

const kingdomScope = "kingdom"

// titleForSeat maps a seat to the title it confers and the county, duchy or
// kingdom the title rules.
func titleForSeat(seat *board.Holding) (Title, string) {
	switch seat.Type {
	case board.CountySeat:
		return TitleCount, seat.County
	case board.DuchySeat:
		return TitleDuke, seat.Duchy
	case board.KingdomSeat:
		return TitleKing, kingdomScope
	}
	return TitleBaron, ""
}

// titleEligible checks the territorial prerequisites of the title a seat confers.
// Gold and seat availability are checked by the caller.
func (e *Engine) titleEligible(p *Player, seat *board.Holding) error {
	gs := e.gs
	switch seat.Type {
	case board.CountySeat:
		if gs.townsInCountyOwnedBy(p.ID, seat.County) >= 2 {
			return nil
		}
	case board.DuchySeat:
		if e.dukeEligible(p.ID, seat.Duchy) {
			return nil
		}
	case board.KingdomSeat:
		if e.kingEligible(p.ID) {
			return nil
		}
	default:
		return core.ErrNotASeat
	}
	return core.ErrTitlePrerequisites
}

func (e *Engine) seatOwner(id string) string {
	return e.gs.Territories[id].OwnerID
}

// dukeEligible: Count of one county of the duchy and at least one town in the other.
func (e *Engine) dukeEligible(playerID, duchy string) bool {
	b := e.gs.Board
	for _, c := range b.CountiesInDuchy(duchy) {
		if e.seatOwner(b.CountySeatOf(c)) != playerID {
			continue
		}
		if e.gs.townsInCountyOwnedBy(playerID, b.OtherCounty(c)) > 0 {
			return true
		}
	}
	return false
}

// kingEligible: Duke of one duchy and Count of a county in the other.
func (e *Engine) kingEligible(playerID string) bool {
	b := e.gs.Board
	for _, d := range b.Duchies() {
		if e.seatOwner(b.DuchySeatOf(d)) != playerID {
			continue
		}
		for _, c := range b.CountiesInDuchy(b.OtherDuchy(d)) {
			if e.seatOwner(b.CountySeatOf(c)) == playerID {
				return true
			}
		}
	}
	return false
}

// grantSeat gives p the seat, deposing the current king when the seat is the crown.
func (e *Engine) grantSeat(p *Player, seat *board.Holding) {
	t := e.gs.Territories[seat.ID]
	if t.OwnerID != "" && t.OwnerID != p.ID {
		e.releaseSeat(seat)
	}
	t.OwnerID = p.ID

	title, scope := titleForSeat(seat)
	e.publish(events.NewTitleChangedEvent(e.gameID, p.ID, string(title), scope, true, e.gs.Round))
	e.logger.Info().
		Str("player_id", p.ID).
		Str("title", string(title)).
		Str("scope", scope).
		Int("round", e.gs.Round).
		Msg("Title claimed")
}

func (e *Engine) releaseSeat(seat *board.Holding) {
	t := e.gs.Territories[seat.ID]
	holder := t.OwnerID
	t.OwnerID = ""

	title, scope := titleForSeat(seat)
	e.publish(events.NewTitleChangedEvent(e.gameID, holder, string(title), scope, false, e.gs.Round))
	e.logger.Info().
		Str("player_id", holder).
		Str("title", string(title)).
		Str("scope", scope).
		Int("round", e.gs.Round).
		Msg("Title lost")
}

// recomputeDerived strips titles whose prerequisites no longer hold, county
// first so that dependent duchy and crown titles fall in the same pass, then
// rebuilds every player's title sets and prestige from seat ownership.
func (e *Engine) recomputeDerived() {
	gs := e.gs
	b := gs.Board

	for _, c := range b.Counties() {
		seat := b.Holding(b.CountySeatOf(c))
		if o := e.seatOwner(seat.ID); o != "" && gs.townsInCountyOwnedBy(o, c) < 2 {
			e.releaseSeat(seat)
		}
	}
	for _, d := range b.Duchies() {
		seat := b.Holding(b.DuchySeatOf(d))
		if o := e.seatOwner(seat.ID); o != "" && !e.dukeEligible(o, d) {
			e.releaseSeat(seat)
		}
	}
	if o := e.seatOwner(board.KingdomSeatID); o != "" && !e.kingEligible(o) {
		e.releaseSeat(b.Holding(board.KingdomSeatID))
	}

	for _, p := range gs.Players {
		p.Counties = p.Counties[:0]
		p.Duchies = p.Duchies[:0]
		for _, c := range b.Counties() {
			if e.seatOwner(b.CountySeatOf(c)) == p.ID {
				p.Counties = append(p.Counties, c)
			}
		}
		for _, d := range b.Duchies() {
			if e.seatOwner(b.DuchySeatOf(d)) == p.ID {
				p.Duchies = append(p.Duchies, d)
			}
		}
		p.IsKing = e.seatOwner(board.KingdomSeatID) == p.ID

		switch {
		case p.IsKing:
			p.Title = TitleKing
		case len(p.Duchies) > 0:
			p.Title = TitleDuke
		case len(p.Counties) > 0:
			p.Title = TitleCount
		default:
			p.Title = TitleBaron
		}
		p.Prestige = e.prestigeOf(p)
	}
}

// prestigeOf computes prestige from scratch.
func (e *Engine) prestigeOf(p *Player) int {
	prestige := len(e.gs.ownedTowns(p.ID))
	prestige += 2 * len(p.Counties)
	prestige += 4 * len(p.Duchies)
	if p.IsKing {
		prestige += 6
	}
	return prestige + 2*p.KingRounds
}
