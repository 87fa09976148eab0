package game

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/states"
)

// TurnScheduler drives rounds: income, the seat-by-seat player turns, upkeep
// and the end-of-game check.
type TurnScheduler struct {
	engine *Engine
	logger zerolog.Logger
}

// NewTurnScheduler creates a new turn scheduler
func NewTurnScheduler(engine *Engine) *TurnScheduler {
	return &TurnScheduler{
		engine: engine,
		logger: engine.logger.With().Str("component", "TurnScheduler").Logger(),
	}
}

func (ts *TurnScheduler) transition(to states.GamePhase, reason string) error {
	return ts.engine.stateMachine.TransitionTo(to, ts.engine.gs.Round, reason)
}

// StartRound runs the income phase and hands the turn to the first seat.
func (ts *TurnScheduler) StartRound() error {
	e := ts.engine
	gs := e.gs

	if err := ts.transition(states.PhaseIncome, fmt.Sprintf("round %d", gs.Round)); err != nil {
		return err
	}

	gs.ForbidMercenaries = false
	gs.EnforcePeace = false
	e.publish(events.NewRoundStartedEvent(e.gameID, gs.Round))

	e.incomeManager.Apply(gs)

	if err := ts.transition(states.PhasePlayerTurn, "income applied"); err != nil {
		return err
	}
	ts.BeginTurn(0)
	return nil
}

// BeginTurn resets the per-turn flags for the player in seat and performs the
// automatic draw when it is enabled.
func (ts *TurnScheduler) BeginTurn(seat int) {
	e := ts.engine
	gs := e.gs

	gs.CurrentPlayer = seat
	gs.CardDrawn = false
	gs.WarFought = false
	gs.ActionsThisTurn = 0

	p := gs.current()
	e.publish(events.NewTurnStartedEvent(e.gameID, p.ID, gs.Round))
	ts.logger.Debug().
		Int("round", gs.Round).
		Str("player_id", p.ID).
		Msg("Turn started")

	if e.rules.AutoDraw && e.canDraw(p) == nil {
		if _, _, err := e.drawCard(p); err != nil {
			ts.logger.Warn().Err(err).Str("player_id", p.ID).Msg("Automatic draw failed")
		}
	}
}

// EndTurn passes the turn to the next seat, or runs upkeep after the last one.
func (ts *TurnScheduler) EndTurn() error {
	e := ts.engine
	gs := e.gs
	p := gs.current()

	e.publish(events.NewTurnEndedEvent(e.gameID, p.ID, gs.Round, gs.ActionsThisTurn))

	next := gs.CurrentPlayer + 1
	if next < len(gs.Players) {
		if err := ts.transition(states.PhasePlayerTurn, "next player"); err != nil {
			return err
		}
		ts.BeginTurn(next)
		return nil
	}
	return ts.runUpkeep()
}

// runUpkeep caps armies, credits the king, advances the round and either
// ends the game or starts the next round.
func (ts *TurnScheduler) runUpkeep() error {
	e := ts.engine
	gs := e.gs

	if err := ts.transition(states.PhaseUpkeep, fmt.Sprintf("round %d complete", gs.Round)); err != nil {
		return err
	}

	disbanded := make(map[string]int)
	for _, p := range gs.Players {
		limit := e.rules.ArmyCap(p.Title, p.BigWar)
		if p.Soldiers > limit {
			disbanded[p.ID] = p.Soldiers - limit
			p.Soldiers = limit
		}
	}

	kingID := ""
	if k := gs.king(); k != nil {
		k.KingRounds++
		kingID = k.ID
	}

	e.publish(events.NewUpkeepAppliedEvent(e.gameID, gs.Round, disbanded, kingID))

	gs.Round++
	e.recomputeDerived()

	if over, reason := ts.gameOver(); over {
		return ts.finish(reason)
	}
	return ts.StartRound()
}

// gameOver reports whether the game ends after the round that just finished.
func (ts *TurnScheduler) gameOver() (bool, string) {
	e := ts.engine
	for _, p := range e.gs.Players {
		if p.Prestige >= e.rules.VictoryThreshold {
			return true, fmt.Sprintf("%s reached %d prestige", p.ID, p.Prestige)
		}
	}
	if limit := e.maxRounds(); e.gs.Round > limit {
		return true, fmt.Sprintf("round limit %d reached", limit)
	}
	return false, ""
}

func (ts *TurnScheduler) finish(reason string) error {
	e := ts.engine
	gs := e.gs

	winner := ts.Winner()
	gs.WinnerID = winner.ID
	if err := ts.transition(states.PhaseGameOver, reason); err != nil {
		return err
	}

	prestige := make(map[string]int, len(gs.Players))
	for _, p := range gs.Players {
		prestige[p.ID] = p.Prestige
	}
	var duration time.Duration
	if !e.startTime.IsZero() {
		duration = time.Since(e.startTime)
	}
	e.publish(events.NewGameEndedEvent(e.gameID, winner.ID, prestige, gs.Round-1, duration, reason))

	ts.logger.Info().
		Str("winner_id", winner.ID).
		Int("winner_prestige", winner.Prestige).
		Int("rounds_played", gs.Round-1).
		Str("reason", reason).
		Msg("Game over")
	return nil
}

// Winner ranks players by prestige, then territories held, then seat order.
func (ts *TurnScheduler) Winner() *Player {
	ranked := ts.Standings()
	return ranked[0]
}

// Standings returns the players from first to last place.
func (ts *TurnScheduler) Standings() []*Player {
	gs := ts.engine.gs
	ranked := append([]*Player(nil), gs.Players...)
	held := make(map[string]int, len(ranked))
	for _, p := range ranked {
		held[p.ID] = len(gs.ownedHoldings(p.ID))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Prestige != b.Prestige {
			return a.Prestige > b.Prestige
		}
		if held[a.ID] != held[b.ID] {
			return held[a.ID] > held[b.ID]
		}
		return a.Seat < b.Seat
	})
	return ranked
}
