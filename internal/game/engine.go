package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/states"
)

// PlayerSpec describes one seat when a game is created.
type PlayerSpec struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Human bool   `json:"human"`
}

// Config holds everything needed to create an engine.
type Config struct {
	GameID   string
	Players  []PlayerSpec
	Rules    Rules
	Seed     uint64
	Logger   zerolog.Logger
	Events   events.Publisher

	// Optional overrides, mostly for tests
	Board         *board.Board
	Dice          combat.Dice
	StartingTowns []string
}

// ActionResult is the outcome of Apply.
type ActionResult struct {
	Success       bool               `json:"success"`
	Error         *core.RuleError    `json:"error,omitempty"`
	Message       string             `json:"message,omitempty"`
	CombatResult  *combat.Result     `json:"combat_result,omitempty"`
	DrawnCard     *cards.Card        `json:"drawn_card,omitempty"`
	PendingCombat *PendingCombatView `json:"pending_combat,omitempty"`
}

// outcome is what an action handler reports back to Apply.
type outcome struct {
	message string
	combat  *combat.Result
	drawn   *cards.Card
}

type actionHandler func(p *Player, a core.Action) (*outcome, error)

// Engine owns one game. It is not safe for concurrent use; callers serialize
// Apply and guard reads (see gameserver.GameManager).
type Engine struct {
	gameID string
	rules  Rules
	seed   uint64

	gs       *GameState
	dice     combat.Dice
	logger   zerolog.Logger
	events   events.Publisher

	stateMachine  *states.StateMachine
	incomeManager *IncomeManager
	scheduler     *TurnScheduler
	handlers      map[core.ActionKind]actionHandler

	startingTowns []string
	startTime     time.Time
	locked        bool
	lockReason    string
}

// NewEngine creates a new game in the setup phase. Call Start to deal the
// starting towns and run the first income phase.
func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// Start assigns starting towns and begins round one.
func (e *Engine) Start() error {
	if e.stateMachine.CurrentPhase() != states.PhaseSetup {
		return core.WrapGameStateError(e.gs.Round, e.Phase().String(), core.ErrWrongPhase)
	}

	for i, p := range e.gs.Players {
		e.gs.Territories[e.startingTowns[i]].OwnerID = p.ID
	}
	e.recomputeDerived()
	e.startTime = time.Now()

	ids := make([]string, len(e.gs.Players))
	for i, p := range e.gs.Players {
		ids[i] = p.ID
	}
	e.publish(events.NewGameStartedEvent(e.gameID, ids, e.maxRounds(), e.seed))

	e.logger.Info().
		Strs("starting_towns", e.startingTowns).
		Int("max_rounds", e.maxRounds()).
		Msg("Game started")

	if err := e.scheduler.StartRound(); err != nil {
		return e.fail(nil, err)
	}
	if err := e.checkInvariants(); err != nil {
		return e.fail(nil, err)
	}
	return nil
}

// Apply validates and applies one action. Rejected actions leave the state
// untouched. Apply never panics; a broken invariant locks the engine.
func (e *Engine) Apply(action core.Action) (result *ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			err := e.fail(&action, fmt.Errorf("panic while applying %s: %v", action.Describe(), r))
			result = &ActionResult{Error: asRuleError(action, err), Message: err.Error()}
		}
	}()

	player, err := e.precheck(action)
	if err != nil {
		return e.reject(action, err)
	}

	handler, ok := e.handlers[action.Kind]
	if !ok {
		return e.reject(action, core.ErrUnknownAction)
	}

	phase, round := e.Phase(), e.gs.Round
	out, err := handler(player, action)
	if err != nil {
		var re *core.RuleError
		if !errors.As(err, &re) {
			err = e.fail(&action, err)
			return &ActionResult{Error: asRuleError(action, err), Message: err.Error()}
		}
		return e.reject(action, err)
	}

	if action.Kind != core.ActionEndTurn {
		e.gs.ActionsThisTurn++
	}
	e.recomputeDerived()
	if err := e.checkInvariants(); err != nil {
		err = e.fail(&action, err)
		return &ActionResult{Error: asRuleError(action, err), Message: err.Error()}
	}

	recorded := action
	e.appendHistory(HistoryEntry{Round: round, Phase: phase, Action: &recorded, Message: out.message, Combat: out.combat})

	e.publish(events.NewActionAppliedEvent(e.gameID, action, e.gs.Round, out.message))
	e.logger.Debug().
		Str("player_id", action.PlayerID).
		Str("action", action.Describe()).
		Str("result", out.message).
		Msg("Action applied")

	return &ActionResult{
		Success:       true,
		Message:       out.message,
		CombatResult:  out.combat.Clone(),
		DrawnCard:     out.drawn,
		PendingCombat: e.pendingView(),
	}
}

// precheck rejects actions that are out of turn or out of phase.
func (e *Engine) precheck(action core.Action) (*Player, error) {
	if e.locked {
		return nil, core.ErrGameLocked
	}
	phase := e.Phase()
	switch {
	case phase == states.PhaseGameOver:
		return nil, core.ErrGameOver
	case phase == states.PhaseSetup:
		return nil, core.ErrNotStarted
	case !phase.CanReceiveActions():
		return nil, core.ErrWrongPhase
	}
	if !action.Kind.Valid() {
		return nil, core.ErrUnknownAction
	}

	player := e.gs.player(action.PlayerID)
	if player == nil {
		return nil, core.ErrUnknownPlayer
	}

	if phase == states.PhaseCombat {
		if action.Kind != core.ActionDefend {
			return nil, core.ErrWrongPhase
		}
		if e.gs.Pending == nil || e.gs.Pending.DefenderID != player.ID {
			return nil, core.ErrNotDefender
		}
		return player, nil
	}

	if action.Kind == core.ActionDefend {
		return nil, core.ErrNoPendingCombat
	}
	if e.gs.current() != player {
		return nil, core.ErrNotYourTurn
	}
	return player, nil
}

func (e *Engine) reject(action core.Action, err error) *ActionResult {
	re := asRuleError(action, err)

	e.publish(events.NewActionRejectedEvent(e.gameID, action, e.gs.Round, re.Kind, re.Reason))
	e.logger.Debug().
		Str("player_id", action.PlayerID).
		Str("action", action.Describe()).
		Str("error_kind", string(re.Kind)).
		Str("reason", re.Reason).
		Msg("Action rejected")

	return &ActionResult{Error: re, Message: re.Reason}
}

func asRuleError(action core.Action, err error) *core.RuleError {
	var re *core.RuleError
	if errors.As(err, &re) {
		return re
	}
	return core.Reject(action, err, "")
}

// fail locks the engine after an internal error and returns the StateCorruption error.
func (e *Engine) fail(action *core.Action, err error) error {
	var a core.Action
	if action != nil {
		a = *action
	}
	corruption := core.Corruption(a, err.Error())
	e.locked = true
	e.lockReason = corruption.Reason

	e.publish(events.NewGameLockedEvent(e.gameID, e.gs.Round, corruption.Reason))
	e.logger.Error().
		Err(core.WrapActionError(action, err)).
		Int("round", e.gs.Round).
		Str("phase", e.Phase().String()).
		Msg("Game locked after state corruption")

	return corruption
}

func (e *Engine) publish(ev events.Event) {
	e.events.Publish(ev)
}

func (e *Engine) appendHistory(entry HistoryEntry) {
	e.gs.History = append(e.gs.History, entry)
	if limit := e.rules.HistoryLimit; limit > 0 && len(e.gs.History) > limit {
		e.gs.History = e.gs.History[len(e.gs.History)-limit:]
	}
}

func (e *Engine) maxRounds() int {
	return e.rules.MaxRoundsFor(len(e.gs.Players))
}

// Public accessors
func (e *Engine) GameID() string              { return e.gameID }
func (e *Engine) Rules() Rules                { return e.rules }
func (e *Engine) Phase() states.GamePhase     { return e.stateMachine.CurrentPhase() }
func (e *Engine) Round() int                  { return e.gs.Round }
func (e *Engine) IsGameOver() bool            { return e.Phase() == states.PhaseGameOver }
func (e *Engine) IsLocked() bool              { return e.locked }
func (e *Engine) History() []states.Transition { return e.stateMachine.GetHistory() }

// CurrentPlayerID returns the player expected to act next: the defender while
// a combat is pending, otherwise the player whose turn it is.
func (e *Engine) CurrentPlayerID() string {
	if e.Phase() == states.PhaseCombat && e.gs.Pending != nil {
		return e.gs.Pending.DefenderID
	}
	if p := e.gs.current(); p != nil && !e.IsGameOver() {
		return p.ID
	}
	return ""
}

// PlayerIDs returns the player ids in seat order.
func (e *Engine) PlayerIDs() []string {
	ids := make([]string, len(e.gs.Players))
	for i, p := range e.gs.Players {
		ids[i] = p.ID
	}
	return ids
}

// WinnerID returns the winner once the game is over, or "".
func (e *Engine) WinnerID() string {
	return e.gs.WinnerID
}
