package game

import (
	"fmt"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
)

// checkInvariants verifies the state after every applied action. Any error
// here is an engine bug; Apply locks the game when it sees one.
func (e *Engine) checkInvariants() error {
	gs := e.gs
	r := e.rules

	ids := make(map[string]bool, len(gs.Players))
	for _, p := range gs.Players {
		ids[p.ID] = true
	}

	perPlayer := make(map[string]int, len(gs.Players))
	for _, id := range gs.Board.IDs() {
		t, ok := gs.Territories[id]
		if !ok {
			return fmt.Errorf("holding %s has no territory state", id)
		}
		if t.OwnerID != "" && !ids[t.OwnerID] {
			return fmt.Errorf("%s owned by unknown player %q", id, t.OwnerID)
		}

		total := 0
		for owner, n := range t.Forts {
			if n < 0 || n > r.MaxFortsPerOwner {
				return fmt.Errorf("%s holds %d fortifications of %s", id, n, owner)
			}
			if !ids[owner] {
				return fmt.Errorf("%s holds fortifications of unknown player %q", id, owner)
			}
			total += n
			perPlayer[owner] += n
		}
		if total > r.MaxFortsPerTown {
			return fmt.Errorf("%s holds %d fortifications", id, total)
		}
		if total > 0 && !gs.Board.Holding(id).IsTown() {
			return fmt.Errorf("fortification on seat %s", id)
		}
	}
	for owner, n := range perPlayer {
		if n > r.MaxFortsPerPlayer {
			return fmt.Errorf("player %s placed %d fortifications", owner, n)
		}
	}

	kings := 0
	for _, p := range gs.Players {
		if p.Gold < 0 || p.Soldiers < 0 {
			return fmt.Errorf("player %s has negative resources (gold %d, soldiers %d)", p.ID, p.Gold, p.Soldiers)
		}
		if len(p.Hand) > r.HandLimit {
			return fmt.Errorf("player %s holds %d cards", p.ID, len(p.Hand))
		}
		if want := e.prestigeOf(p); p.Prestige != want {
			return fmt.Errorf("player %s prestige %d, recomputed %d", p.ID, p.Prestige, want)
		}
		if p.IsKing {
			kings++
		}
	}
	if kings > 1 {
		return fmt.Errorf("%d kings", kings)
	}

	if err := e.checkSeats(); err != nil {
		return err
	}

	if n, want := gs.cardsInPlay(), gs.Catalogue.Len(); n != want {
		return fmt.Errorf("%d cards tracked, catalogue has %d", n, want)
	}
	return nil
}

// checkSeats verifies that every seat is held by a player who still meets
// the title's prerequisites and that cached title sets agree with the seats.
func (e *Engine) checkSeats() error {
	gs := e.gs
	b := gs.Board
	for _, c := range b.Counties() {
		if o := e.seatOwner(b.CountySeatOf(c)); o != "" && gs.townsInCountyOwnedBy(o, c) < 2 {
			return fmt.Errorf("count of %s lacks a majority", c)
		}
	}
	for _, d := range b.Duchies() {
		if o := e.seatOwner(b.DuchySeatOf(d)); o != "" && !e.dukeEligible(o, d) {
			return fmt.Errorf("duke of %s no longer qualifies", d)
		}
	}
	if o := e.seatOwner(board.KingdomSeatID); o != "" && !e.kingEligible(o) {
		return fmt.Errorf("king %s no longer qualifies", o)
	}

	for _, p := range gs.Players {
		for _, c := range p.Counties {
			if e.seatOwner(b.CountySeatOf(c)) != p.ID {
				return fmt.Errorf("player %s lists county %s without its seat", p.ID, c)
			}
		}
		for _, d := range p.Duchies {
			if e.seatOwner(b.DuchySeatOf(d)) != p.ID {
				return fmt.Errorf("player %s lists duchy %s without its seat", p.ID, d)
			}
		}
		if p.IsKing != (e.seatOwner(board.KingdomSeatID) == p.ID) {
			return fmt.Errorf("player %s king flag disagrees with the crown", p.ID)
		}
	}
	return nil
}
