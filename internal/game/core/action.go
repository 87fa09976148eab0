package core

import (
	"fmt"
	"strings"
)

// ActionKind is the closed set of moves a player can make.
type ActionKind string

const (
	ActionMove                  ActionKind = "move"
	ActionRecruit               ActionKind = "recruit"
	ActionBuildFortification    ActionKind = "build_fortification"
	ActionRelocateFortification ActionKind = "relocate_fortification"
	ActionClaimTitle            ActionKind = "claim_title"
	ActionFakeClaim             ActionKind = "fake_claim"
	ActionClaimTown             ActionKind = "claim_town"
	ActionAttack                ActionKind = "attack"
	ActionDefend                ActionKind = "defend"
	ActionPlayCard              ActionKind = "play_card"
	ActionDrawCard              ActionKind = "draw_card"
	ActionEndTurn               ActionKind = "end_turn"
)

// ActionKinds lists every kind in a stable order.
var ActionKinds = []ActionKind{
	ActionMove,
	ActionRecruit,
	ActionBuildFortification,
	ActionRelocateFortification,
	ActionClaimTitle,
	ActionFakeClaim,
	ActionClaimTown,
	ActionAttack,
	ActionDefend,
	ActionPlayCard,
	ActionDrawCard,
	ActionEndTurn,
}

// Valid reports whether k is one of the known kinds.
func (k ActionKind) Valid() bool {
	for _, known := range ActionKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseActionKind converts a wire name into an ActionKind.
func ParseActionKind(s string) (ActionKind, error) {
	k := ActionKind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return k, nil
}

// Action is one player command. Which fields matter depends on Kind:
//
//	move                    Source, Target, Soldiers
//	recruit                 Soldiers
//	build_fortification     Target
//	relocate_fortification  Source, Target
//	claim_title             Target (a seat)
//	fake_claim, claim_town  Target (a town)
//	attack                  Source, Target, Soldiers, Cards
//	defend                  Soldiers, Cards
//	play_card               CardID, Target for claim cards
//	draw_card, end_turn     nothing
type Action struct {
	Kind     ActionKind `json:"kind"`
	PlayerID string     `json:"player_id"`
	Source   string     `json:"source,omitempty"`
	Target   string     `json:"target,omitempty"`
	Soldiers int        `json:"soldiers,omitempty"`
	CardID   string     `json:"card_id,omitempty"`
	Cards    []string   `json:"cards,omitempty"`
}

// Describe renders the action without the player, e.g. "attack umbrith -> xelphane (300)".
func (a Action) Describe() string {
	switch a.Kind {
	case ActionMove, ActionAttack:
		s := fmt.Sprintf("%s %s -> %s (%d)", a.Kind, a.Source, a.Target, a.Soldiers)
		if len(a.Cards) > 0 {
			s += " with " + strings.Join(a.Cards, ",")
		}
		return s
	case ActionRelocateFortification:
		return fmt.Sprintf("%s %s -> %s", a.Kind, a.Source, a.Target)
	case ActionRecruit:
		return fmt.Sprintf("%s %d", a.Kind, a.Soldiers)
	case ActionDefend:
		s := fmt.Sprintf("%s (%d)", a.Kind, a.Soldiers)
		if len(a.Cards) > 0 {
			s += " with " + strings.Join(a.Cards, ",")
		}
		return s
	case ActionPlayCard:
		if a.Target != "" {
			return fmt.Sprintf("%s %s on %s", a.Kind, a.CardID, a.Target)
		}
		return fmt.Sprintf("%s %s", a.Kind, a.CardID)
	case ActionBuildFortification, ActionClaimTitle, ActionFakeClaim, ActionClaimTown:
		return fmt.Sprintf("%s %s", a.Kind, a.Target)
	default:
		return string(a.Kind)
	}
}

func (a Action) String() string {
	return fmt.Sprintf("player %s: %s", a.PlayerID, a.Describe())
}

func Move(playerID, source, target string, soldiers int) Action {
	return Action{Kind: ActionMove, PlayerID: playerID, Source: source, Target: target, Soldiers: soldiers}
}

func Recruit(playerID string, soldiers int) Action {
	return Action{Kind: ActionRecruit, PlayerID: playerID, Soldiers: soldiers}
}

func BuildFortification(playerID, town string) Action {
	return Action{Kind: ActionBuildFortification, PlayerID: playerID, Target: town}
}

func RelocateFortification(playerID, source, target string) Action {
	return Action{Kind: ActionRelocateFortification, PlayerID: playerID, Source: source, Target: target}
}

func ClaimTitle(playerID, seat string) Action {
	return Action{Kind: ActionClaimTitle, PlayerID: playerID, Target: seat}
}

func FakeClaim(playerID, town string) Action {
	return Action{Kind: ActionFakeClaim, PlayerID: playerID, Target: town}
}

func ClaimTown(playerID, town string) Action {
	return Action{Kind: ActionClaimTown, PlayerID: playerID, Target: town}
}

func Attack(playerID, source, target string, soldiers int, cards ...string) Action {
	return Action{Kind: ActionAttack, PlayerID: playerID, Source: source, Target: target, Soldiers: soldiers, Cards: cards}
}

func Defend(playerID string, soldiers int, cards ...string) Action {
	return Action{Kind: ActionDefend, PlayerID: playerID, Soldiers: soldiers, Cards: cards}
}

func PlayCard(playerID, cardID, target string) Action {
	return Action{Kind: ActionPlayCard, PlayerID: playerID, CardID: cardID, Target: target}
}

func DrawCard(playerID string) Action {
	return Action{Kind: ActionDrawCard, PlayerID: playerID}
}

func EndTurn(playerID string) Action {
	return Action{Kind: ActionEndTurn, PlayerID: playerID}
}
