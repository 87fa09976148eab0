package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

// Transition represents a state transition in the history
type Transition struct {
	From      GamePhase `json:"from"`
	To        GamePhase `json:"to"`
	Round     int       `json:"round"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
}

// StateMachine tracks the phase of one game and its transition history
type StateMachine struct {
	mu             sync.RWMutex
	gameID         string
	currentPhase   GamePhase
	history        []Transition
	maxHistorySize int
	publisher      events.Publisher
	logger         zerolog.Logger
}

// NewStateMachine creates a new state machine in PhaseSetup
func NewStateMachine(gameID string, publisher events.Publisher, logger zerolog.Logger) *StateMachine {
	return &StateMachine{
		gameID:         gameID,
		currentPhase:   PhaseSetup,
		history:        make([]Transition, 0, 64),
		maxHistorySize: 1000,
		publisher:      publisher,
		logger:         logger.With().Str("component", "state_machine").Logger(),
	}
}

// SetMaxHistory bounds the number of transitions kept
func (sm *StateMachine) SetMaxHistory(n int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if n > 0 {
		sm.maxHistorySize = n
		sm.trimHistory()
	}
}

// CurrentPhase returns the current game phase
func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase
}

// TransitionTo attempts to transition to the specified phase
func (sm *StateMachine) TransitionTo(targetPhase GamePhase, round int, reason string) error {
	sm.mu.Lock()

	// Check if transition is allowed
	if !sm.currentPhase.CanTransitionTo(targetPhase) {
		from := sm.currentPhase
		sm.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, targetPhase)
	}

	previousPhase := sm.currentPhase
	sm.currentPhase = targetPhase
	sm.history = append(sm.history, Transition{
		From:      previousPhase,
		To:        targetPhase,
		Round:     round,
		Timestamp: time.Now(),
		Reason:    reason,
	})
	sm.trimHistory()
	sm.mu.Unlock()

	// Publish outside the lock so subscribers can read the machine
	if sm.publisher != nil {
		sm.publisher.Publish(events.NewPhaseChangedEvent(
			sm.gameID,
			previousPhase.String(),
			targetPhase.String(),
			round,
			reason,
		))
	}

	sm.logger.Debug().
		Str("from_phase", previousPhase.String()).
		Str("to_phase", targetPhase.String()).
		Int("round", round).
		Str("reason", reason).
		Msg("State transition completed")

	return nil
}

// trimHistory keeps the most recent entries; caller must hold mu
func (sm *StateMachine) trimHistory() {
	if len(sm.history) > sm.maxHistorySize {
		sm.history = sm.history[len(sm.history)-sm.maxHistorySize:]
	}
}

// GetHistory returns a copy of the transition history
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	history := make([]Transition, len(sm.history))
	copy(history, sm.history)
	return history
}

// CanTransitionTo checks if a transition to the target phase is allowed
func (sm *StateMachine) CanTransitionTo(targetPhase GamePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentPhase.CanTransitionTo(targetPhase)
}
