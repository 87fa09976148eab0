package events

import (
	"time"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted     = "game.started"
	TypeGameEnded       = "game.ended"
	TypeRoundStarted    = "round.started"
	TypeIncomeApplied   = "income.applied"
	TypeUpkeepApplied   = "upkeep.applied"
	TypeTurnStarted     = "turn.started"
	TypeTurnEnded       = "turn.ended"
	TypeActionApplied   = "action.applied"
	TypeActionRejected  = "action.rejected"
	TypeCombatStarted   = "combat.started"
	TypeCombatResolved  = "combat.resolved"
	TypeHoldingCaptured = "holding.captured"
	TypeCardDrawn       = "card.drawn"
	TypeTitleChanged    = "title.changed"
	TypePhaseChanged    = "phase.changed"
	TypeGameLocked      = "game.locked"
)

func base(eventType, gameID string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
	}
}

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	PlayerIDs []string
	MaxRounds int
	Seed      uint64
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, playerIDs []string, maxRounds int, seed uint64) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent: base(TypeGameStarted, gameID),
		Metadata:  EventMetadata{Round: 1},
		PlayerIDs: playerIDs,
		MaxRounds: maxRounds,
		Seed:      seed,
	}
}

// GameEndedEvent is published when a game ends
type GameEndedEvent struct {
	BaseEvent
	Metadata   EventMetadata
	WinnerID   string
	Prestige   map[string]int
	FinalRound int
	Duration   time.Duration
	Reason     string
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID, winnerID string, prestige map[string]int, finalRound int, duration time.Duration, reason string) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent:  base(TypeGameEnded, gameID),
		Metadata:   EventMetadata{PlayerID: winnerID, Round: finalRound},
		WinnerID:   winnerID,
		Prestige:   prestige,
		FinalRound: finalRound,
		Duration:   duration,
		Reason:     reason,
	}
}

// RoundStartedEvent is published before income is paid
type RoundStartedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Round    int
}

// NewRoundStartedEvent creates a new RoundStartedEvent
func NewRoundStartedEvent(gameID string, round int) *RoundStartedEvent {
	return &RoundStartedEvent{
		BaseEvent: base(TypeRoundStarted, gameID),
		Metadata:  EventMetadata{Round: round},
		Round:     round,
	}
}

// Income is what one player received during the income phase.
type Income struct {
	Gold     int `json:"gold"`
	Soldiers int `json:"soldiers"`
}

// IncomeAppliedEvent is published once per round after every player was paid
type IncomeAppliedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Income   map[string]Income
}

// NewIncomeAppliedEvent creates a new IncomeAppliedEvent
func NewIncomeAppliedEvent(gameID string, round int, income map[string]Income) *IncomeAppliedEvent {
	return &IncomeAppliedEvent{
		BaseEvent: base(TypeIncomeApplied, gameID),
		Metadata:  EventMetadata{Round: round},
		Income:    income,
	}
}

// UpkeepAppliedEvent is published at the end of each round
type UpkeepAppliedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	Disbanded map[string]int
	KingID    string
}

// NewUpkeepAppliedEvent creates a new UpkeepAppliedEvent
func NewUpkeepAppliedEvent(gameID string, round int, disbanded map[string]int, kingID string) *UpkeepAppliedEvent {
	return &UpkeepAppliedEvent{
		BaseEvent: base(TypeUpkeepApplied, gameID),
		Metadata:  EventMetadata{Round: round},
		Disbanded: disbanded,
		KingID:    kingID,
	}
}

// TurnStartedEvent is published when a player becomes the active player
type TurnStartedEvent struct {
	BaseEvent
	Metadata EventMetadata
	PlayerID string
	Round    int
}

// NewTurnStartedEvent creates a new TurnStartedEvent
func NewTurnStartedEvent(gameID, playerID string, round int) *TurnStartedEvent {
	return &TurnStartedEvent{
		BaseEvent: base(TypeTurnStarted, gameID),
		Metadata:  EventMetadata{PlayerID: playerID, Round: round},
		PlayerID:  playerID,
		Round:     round,
	}
}

// TurnEndedEvent is published when a player ends their turn
type TurnEndedEvent struct {
	BaseEvent
	Metadata     EventMetadata
	PlayerID     string
	Round        int
	ActionsCount int
}

// NewTurnEndedEvent creates a new TurnEndedEvent
func NewTurnEndedEvent(gameID, playerID string, round, actionsCount int) *TurnEndedEvent {
	return &TurnEndedEvent{
		BaseEvent:    base(TypeTurnEnded, gameID),
		Metadata:     EventMetadata{PlayerID: playerID, Round: round},
		PlayerID:     playerID,
		Round:        round,
		ActionsCount: actionsCount,
	}
}

// ActionAppliedEvent is published after an action changed the game state
type ActionAppliedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Action   core.Action
	Message  string
}

// NewActionAppliedEvent creates a new ActionAppliedEvent
func NewActionAppliedEvent(gameID string, action core.Action, round int, message string) *ActionAppliedEvent {
	return &ActionAppliedEvent{
		BaseEvent: base(TypeActionApplied, gameID),
		Metadata:  EventMetadata{PlayerID: action.PlayerID, Round: round},
		Action:    action,
		Message:   message,
	}
}

// ActionRejectedEvent is published when an action fails validation
type ActionRejectedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Action   core.Action
	Kind     core.ErrorKind
	Reason   string
}

// NewActionRejectedEvent creates a new ActionRejectedEvent
func NewActionRejectedEvent(gameID string, action core.Action, round int, kind core.ErrorKind, reason string) *ActionRejectedEvent {
	return &ActionRejectedEvent{
		BaseEvent: base(TypeActionRejected, gameID),
		Metadata:  EventMetadata{PlayerID: action.PlayerID, Round: round},
		Action:    action,
		Kind:      kind,
		Reason:    reason,
	}
}

// CombatStartedEvent is published when an attack waits for the defender's response
type CombatStartedEvent struct {
	BaseEvent
	Metadata   EventMetadata
	AttackerID string
	DefenderID string
	Source     string
	Target     string
	Soldiers   int
}

// NewCombatStartedEvent creates a new CombatStartedEvent
func NewCombatStartedEvent(gameID, attackerID, defenderID, source, target string, soldiers, round int) *CombatStartedEvent {
	return &CombatStartedEvent{
		BaseEvent:  base(TypeCombatStarted, gameID),
		Metadata:   EventMetadata{PlayerID: attackerID, Round: round},
		AttackerID: attackerID,
		DefenderID: defenderID,
		Source:     source,
		Target:     target,
		Soldiers:   soldiers,
	}
}

// CombatResolvedEvent is published after the dice are rolled
type CombatResolvedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Result   combat.Result
}

// NewCombatResolvedEvent creates a new CombatResolvedEvent
func NewCombatResolvedEvent(gameID string, result combat.Result, round int) *CombatResolvedEvent {
	return &CombatResolvedEvent{
		BaseEvent: base(TypeCombatResolved, gameID),
		Metadata:  EventMetadata{PlayerID: result.AttackerID, Round: round},
		Result:    result,
	}
}

// HoldingCapturedEvent is published when a holding changes owner
type HoldingCapturedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	HoldingID string
	FromID    string
	ToID      string
	Via       core.ActionKind
}

// NewHoldingCapturedEvent creates a new HoldingCapturedEvent
func NewHoldingCapturedEvent(gameID, holdingID, fromID, toID string, via core.ActionKind, round int) *HoldingCapturedEvent {
	return &HoldingCapturedEvent{
		BaseEvent: base(TypeHoldingCaptured, gameID),
		Metadata:  EventMetadata{PlayerID: toID, Round: round},
		HoldingID: holdingID,
		FromID:    fromID,
		ToID:      toID,
		Via:       via,
	}
}

// CardDrawnEvent is published when a player draws a card
type CardDrawnEvent struct {
	BaseEvent
	Metadata    EventMetadata
	PlayerID    string
	CardID      string
	Effect      string
	Instant     bool
	DiscardedID string
}

// NewCardDrawnEvent creates a new CardDrawnEvent
func NewCardDrawnEvent(gameID, playerID, cardID, effect string, instant bool, discardedID string, round int) *CardDrawnEvent {
	return &CardDrawnEvent{
		BaseEvent:   base(TypeCardDrawn, gameID),
		Metadata:    EventMetadata{PlayerID: playerID, Round: round},
		PlayerID:    playerID,
		CardID:      cardID,
		Effect:      effect,
		Instant:     instant,
		DiscardedID: discardedID,
	}
}

// TitleChangedEvent is published when a title is gained or stripped
type TitleChangedEvent struct {
	BaseEvent
	Metadata EventMetadata
	PlayerID string
	// Title is "count", "duke" or "king"
	Title string
	// Scope is the county or duchy name, empty for the crown
	Scope  string
	Gained bool
}

// NewTitleChangedEvent creates a new TitleChangedEvent
func NewTitleChangedEvent(gameID, playerID, title, scope string, gained bool, round int) *TitleChangedEvent {
	return &TitleChangedEvent{
		BaseEvent: base(TypeTitleChanged, gameID),
		Metadata:  EventMetadata{PlayerID: playerID, Round: round},
		PlayerID:  playerID,
		Title:     title,
		Scope:     scope,
		Gained:    gained,
	}
}

// PhaseChangedEvent is published when the game state machine transitions between phases
type PhaseChangedEvent struct {
	BaseEvent
	Metadata  EventMetadata
	FromPhase string
	ToPhase   string
	Reason    string
}

// NewPhaseChangedEvent creates a new PhaseChangedEvent
func NewPhaseChangedEvent(gameID, fromPhase, toPhase string, round int, reason string) *PhaseChangedEvent {
	return &PhaseChangedEvent{
		BaseEvent: base(TypePhaseChanged, gameID),
		Metadata:  EventMetadata{Round: round},
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}

// GameLockedEvent is published when an invariant check fails and the engine stops accepting actions
type GameLockedEvent struct {
	BaseEvent
	Metadata EventMetadata
	Detail   string
}

// NewGameLockedEvent creates a new GameLockedEvent
func NewGameLockedEvent(gameID string, round int, detail string) *GameLockedEvent {
	return &GameLockedEvent{
		BaseEvent: base(TypeGameLocked, gameID),
		Metadata:  EventMetadata{Round: round},
		Detail:    detail,
	}
}
