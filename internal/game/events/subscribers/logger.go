package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	// If no filter is set, interested in all events
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Uint64("seq", event.Sequence()).
		Time("timestamp", event.Timestamp()).
		Logger()

	// Create the base event log
	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	// Add event-specific fields based on type
	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Strs("player_ids", e.PlayerIDs).
			Int("max_rounds", e.MaxRounds).
			Uint64("seed", e.Seed)

	case *events.GameEndedEvent:
		logEvent.
			Str("winner_id", e.WinnerID).
			Int("final_round", e.FinalRound).
			Dur("duration", e.Duration).
			Str("reason", e.Reason)

	case *events.RoundStartedEvent:
		logEvent.Int("round", e.Round)

	case *events.IncomeAppliedEvent:
		logEvent.
			Int("round", e.Metadata.Round).
			Int("players_paid", len(e.Income))

	case *events.UpkeepAppliedEvent:
		disbanded := 0
		for _, n := range e.Disbanded {
			disbanded += n
		}
		logEvent.
			Int("round", e.Metadata.Round).
			Int("soldiers_disbanded", disbanded).
			Str("king_id", e.KingID)

	case *events.TurnStartedEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Int("round", e.Round)

	case *events.TurnEndedEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Int("round", e.Round).
			Int("actions_count", e.ActionsCount)

	case *events.ActionAppliedEvent:
		logEvent.
			Str("player_id", e.Action.PlayerID).
			Str("action_type", string(e.Action.Kind)).
			Str("action", e.Action.Describe()).
			Str("result", e.Message)

	case *events.ActionRejectedEvent:
		logEvent.
			Str("player_id", e.Action.PlayerID).
			Str("action_type", string(e.Action.Kind)).
			Str("error_kind", string(e.Kind)).
			Str("reason", e.Reason)

	case *events.CombatStartedEvent:
		logEvent.
			Str("attacker_id", e.AttackerID).
			Str("defender_id", e.DefenderID).
			Str("source", e.Source).
			Str("target", e.Target).
			Int("soldiers", e.Soldiers)

	case *events.CombatResolvedEvent:
		logEvent.
			Str("attacker_id", e.Result.AttackerID).
			Str("defender_id", e.Result.DefenderID).
			Str("target", e.Result.Target).
			Int("attacker_strength", e.Result.Attacker.Strength).
			Int("defender_strength", e.Result.Defender.Strength).
			Int("attacker_losses", e.Result.Attacker.Losses).
			Int("defender_losses", e.Result.Defender.Losses).
			Bool("attacker_won", e.Result.AttackerWon)

	case *events.HoldingCapturedEvent:
		logEvent.
			Str("holding", e.HoldingID).
			Str("from_id", e.FromID).
			Str("to_id", e.ToID).
			Str("via", string(e.Via))

	case *events.CardDrawnEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Str("card_id", e.CardID).
			Str("effect", e.Effect).
			Bool("instant", e.Instant)
		if e.DiscardedID != "" {
			logEvent.Str("discarded_id", e.DiscardedID)
		}

	case *events.TitleChangedEvent:
		logEvent.
			Str("player_id", e.PlayerID).
			Str("title", e.Title).
			Str("scope", e.Scope).
			Bool("gained", e.Gained)

	case *events.PhaseChangedEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)

	case *events.GameLockedEvent:
		logEvent.Str("detail", e.Detail)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	// Send the log
	logEvent.Msg("Game event")
}
