package states

import "fmt"

// GamePhase represents the current phase of a game
type GamePhase int

const (
	// PhaseSetup - Seats assigned, starting towns handed out
	PhaseSetup GamePhase = iota

	// PhaseIncome - Every player collects gold, soldiers and stipends
	PhaseIncome

	// PhasePlayerTurn - The current player acts until end_turn
	PhasePlayerTurn

	// PhaseCombat - An attack waits for a human defender
	PhaseCombat

	// PhaseUpkeep - Army caps enforced, crown prestige accrued, end checked
	PhaseUpkeep

	// PhaseGameOver - Final state
	PhaseGameOver
)

var phaseNames = map[GamePhase]string{
	PhaseSetup:      "setup",
	PhaseIncome:     "income",
	PhasePlayerTurn: "player_turn",
	PhaseCombat:     "combat",
	PhaseUpkeep:     "upkeep",
	PhaseGameOver:   "game_over",
}

// String returns the wire name of a GamePhase
func (p GamePhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(p))
}

// MarshalText encodes the phase by name so snapshots stay readable
func (p GamePhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name
func (p *GamePhase) UnmarshalText(text []byte) error {
	for phase, name := range phaseNames {
		if name == string(text) {
			*p = phase
			return nil
		}
	}
	return fmt.Errorf("unknown game phase %q", string(text))
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseGameOver
}

// CanReceiveActions returns true if players can submit actions in this phase
func (p GamePhase) CanReceiveActions() bool {
	return p == PhasePlayerTurn || p == PhaseCombat
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseSetup:
		return []GamePhase{PhaseIncome}
	case PhaseIncome:
		return []GamePhase{PhasePlayerTurn}
	case PhasePlayerTurn:
		// player_turn -> player_turn hands the turn to the next seat
		return []GamePhase{PhasePlayerTurn, PhaseCombat, PhaseUpkeep}
	case PhaseCombat:
		return []GamePhase{PhasePlayerTurn}
	case PhaseUpkeep:
		return []GamePhase{PhaseIncome, PhaseGameOver}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	allowed := p.AllowedTransitions()
	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) GamePhase {
	var p GamePhase
	if err := p.UnmarshalText([]byte(s)); err != nil {
		return PhaseSetup // Default to setup for unknown phases
	}
	return p
}
