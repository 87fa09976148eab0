package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
)

// This file contains the plain-text rendering of a game for terminals.

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorWhite  = "\033[37m"
	ColorGray   = "\033[90m"
)

var playerColors = []string{ColorRed, ColorBlue, ColorGreen, ColorYellow, ColorPurple, ColorCyan}

const (
	townSymbol   = "⌂"
	seatSymbol   = "♜"
	crownSymbol  = "♔"
	fortSymbol   = "▲"
	playerLetter = "ABCDEF"
)

// Render returns the kingdom county by county followed by a line per player.
// With color false no escape codes are written.
func (e *Engine) Render(color bool) string {
	gs := e.gs
	b := gs.Board

	var sb strings.Builder
	sb.Grow(2048)
	fmt.Fprintf(&sb, "Round %d/%d  phase %s\n", gs.Round, e.maxRounds(), e.Phase())

	for _, d := range b.Duchies() {
		e.renderHolding(&sb, b.Holding(b.DuchySeatOf(d)), color)
		sb.WriteString("\n")
		for _, c := range b.CountiesInDuchy(d) {
			sb.WriteString("  ")
			e.renderHolding(&sb, b.Holding(b.CountySeatOf(c)), color)
			sb.WriteString("\n")
			for _, id := range b.TownsInCounty(c) {
				sb.WriteString("    ")
				e.renderHolding(&sb, b.Holding(id), color)
				sb.WriteString("\n")
			}
		}
	}
	e.renderHolding(&sb, b.Holding(board.KingdomSeatID), color)
	sb.WriteString("\n\n")

	for _, p := range gs.Players {
		sb.WriteString(e.paint(p.Seat, color))
		fmt.Fprintf(&sb, "%c %-10s", playerLetter[p.Seat%len(playerLetter)], p.Name)
		if color {
			sb.WriteString(ColorReset)
		}
		fmt.Fprintf(&sb, " %-5s prestige %2d  gold %3d  soldiers %4d  cards %d",
			p.Title, p.Prestige, p.Gold, p.Soldiers, len(p.Hand))
		if gs.current() == p && e.Phase().CanReceiveActions() {
			sb.WriteString("  <")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(townSymbol + "=town " + seatSymbol + "=seat " + crownSymbol + "=crown " + fortSymbol + "=fortification A-F=players\n")
	return sb.String()
}

// renderHolding writes one holding: symbol, owner letter, name and fortifications.
func (e *Engine) renderHolding(sb *strings.Builder, h *board.Holding, color bool) {
	symbol := townSymbol
	switch h.Type {
	case board.CountySeat, board.DuchySeat:
		symbol = seatSymbol
	case board.KingdomSeat:
		symbol = crownSymbol
	}

	t := e.gs.Territories[h.ID]
	owner := e.gs.player(t.OwnerID)
	if owner == nil {
		if color {
			sb.WriteString(ColorGray)
		}
		sb.WriteString(symbol)
		sb.WriteString(" ")
	} else {
		sb.WriteString(e.paint(owner.Seat, color))
		sb.WriteString(symbol)
		sb.WriteByte(playerLetter[owner.Seat%len(playerLetter)])
	}
	sb.WriteString(" ")
	sb.WriteString(h.Name)
	if n := t.FortCount(); n > 0 {
		sb.WriteString(" ")
		sb.WriteString(strings.Repeat(fortSymbol, n))
	}
	if color {
		sb.WriteString(ColorReset)
	}
}

func (e *Engine) paint(seat int, color bool) string {
	if !color {
		return ""
	}
	return getPlayerColor(seat)
}

// getPlayerColor returns the color for the given seat
func getPlayerColor(seat int) string {
	if seat < 0 || seat >= len(playerColors) {
		return ColorWhite
	}
	return playerColors[seat]
}
