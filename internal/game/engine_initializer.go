package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/board"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/states"
)

// Seed offsets keep the deck, the dice and the seating draws on separate streams.
const (
	diceSeedOffset  = 0x9e3779b97f4a7c15
	townsSeedOffset = 0x2545f4914f6cdd1d
)

// StandardStartingTowns is the order in which starting towns are handed out.
var StandardStartingTowns = []string{"xelphane", "ulverin", "vardhelm", "quorwyn"}

// EngineInitializer handles the complex initialization of a game engine
type EngineInitializer struct {
	config Config
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg Config) *EngineInitializer {
	logger := cfg.Logger.With().Str("component", "GameEngine").Logger()
	return &EngineInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize creates a game engine in the setup phase
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	// Check context early
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled or timed out during initial phase")
		return nil, ctx.Err()
	default:
	}

	ei.setupDefaults()

	if err := ei.validate(); err != nil {
		return nil, err
	}

	catalogue, err := cards.NewCatalogue(ei.config.Rules.Deck)
	if err != nil {
		return nil, fmt.Errorf("building card catalogue: %w", err)
	}

	gs := ei.initializeGameState(catalogue)
	ei.initializePlayers(gs)

	engine := ei.createEngine(gs)

	ei.logger = ei.logger.With().Str("game_id", engine.gameID).Logger()
	ei.logger.Info().
		Int("players", len(gs.Players)).
		Uint64("seed", ei.config.Seed).
		Int("deck_size", catalogue.Len()).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults sets up default values for missing configuration
func (ei *EngineInitializer) setupDefaults() {
	if ei.config.Seed == 0 {
		ei.config.Seed = uint64(time.Now().UnixNano())
		ei.logger.Debug().Uint64("seed", ei.config.Seed).Msg("No seed provided, using clock seed")
	}

	if ei.config.GameID == "" {
		ei.config.GameID = uuid.NewString()
	}

	if ei.config.Rules.MaxRounds == nil {
		ei.config.Rules = DefaultRules()
	}

	if ei.config.Board == nil {
		ei.config.Board = board.Standard()
	}

	if ei.config.Dice == nil {
		ei.config.Dice = combat.NewRandDice(ei.config.Seed + diceSeedOffset)
	}

	if ei.config.Events == nil {
		ei.config.Events = events.NewEventBus(ei.logger)
	}

	for i := range ei.config.Players {
		if ei.config.Players[i].ID == "" {
			ei.config.Players[i].ID = uuid.NewString()
		}
		if ei.config.Players[i].Name == "" {
			ei.config.Players[i].Name = fmt.Sprintf("Player %d", i+1)
		}
	}
}

func (ei *EngineInitializer) validate() error {
	n := len(ei.config.Players)
	if n < MinPlayers || n > MaxPlayers {
		return fmt.Errorf("a game needs %d to %d players, got %d", MinPlayers, MaxPlayers, n)
	}
	seen := make(map[string]bool, n)
	for _, p := range ei.config.Players {
		if seen[p.ID] {
			return fmt.Errorf("duplicate player id %q", p.ID)
		}
		seen[p.ID] = true
	}
	if err := ei.config.Rules.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	if len(ei.config.StartingTowns) > 0 && len(ei.config.StartingTowns) != n {
		return fmt.Errorf("%d starting towns given for %d players", len(ei.config.StartingTowns), n)
	}
	towns := make(map[string]bool, len(ei.config.StartingTowns))
	for _, id := range ei.config.StartingTowns {
		h, ok := ei.config.Board.Lookup(id)
		if !ok || !h.IsTown() {
			return fmt.Errorf("starting holding %q: %w", id, core.ErrNotATown)
		}
		if towns[id] {
			return fmt.Errorf("starting town %q given twice", id)
		}
		towns[id] = true
	}
	return nil
}

// initializeGameState creates the initial game state
func (ei *EngineInitializer) initializeGameState(catalogue *cards.Catalogue) *GameState {
	b := ei.config.Board
	territories := make(map[string]*Territory, len(b.IDs()))
	for _, id := range b.IDs() {
		territories[id] = &Territory{ID: id, Forts: make(map[string]int)}
	}

	return &GameState{
		Round:       1,
		Board:       b,
		Catalogue:   catalogue,
		Deck:        cards.NewDeck(catalogue.IDs(), ei.config.Seed),
		Territories: territories,
		Players:     make([]*Player, 0, len(ei.config.Players)),
		History:     make([]HistoryEntry, 0, 64),
	}
}

// initializePlayers seats every player in configuration order
func (ei *EngineInitializer) initializePlayers(gs *GameState) {
	for i, spec := range ei.config.Players {
		gs.Players = append(gs.Players, &Player{
			ID:       spec.ID,
			Name:     spec.Name,
			Seat:     i,
			Human:    spec.Human,
			Gold:     ei.config.Rules.StartingGold,
			Soldiers: ei.config.Rules.StartingSoldiers,
			Title:    TitleBaron,
			Claims:   make(map[string]bool),
		})
	}
}

// startingTowns picks one town per seat
func (ei *EngineInitializer) startingTowns(b *board.Board, n int) []string {
	if len(ei.config.StartingTowns) > 0 {
		return append([]string(nil), ei.config.StartingTowns...)
	}

	order := append([]string(nil), StandardStartingTowns...)
	used := make(map[string]bool, len(order))
	for _, id := range order {
		used[id] = true
	}
	for _, id := range b.Towns() {
		if !used[id] {
			order = append(order, id)
		}
	}

	if ei.config.Rules.RandomStartingTowns {
		rng := rand.New(rand.NewSource(ei.config.Seed + townsSeedOffset))
		order = b.Towns()
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}
	return order[:n]
}

// createEngine creates the engine with all its components
func (ei *EngineInitializer) createEngine(gs *GameState) *Engine {
	engine := &Engine{
		gameID:        ei.config.GameID,
		rules:         ei.config.Rules,
		seed:          ei.config.Seed,
		gs:            gs,
		dice:          ei.config.Dice,
		logger:        ei.logger.With().Str("game_id", ei.config.GameID).Logger(),
		events:        ei.config.Events,
		startingTowns: ei.startingTowns(gs.Board, len(gs.Players)),
	}

	engine.stateMachine = states.NewStateMachine(engine.gameID, engine.events, engine.logger)
	engine.incomeManager = NewIncomeManager(engine.events, engine.gameID, engine.rules, engine.logger)
	engine.scheduler = NewTurnScheduler(engine)
	engine.handlers = engine.actionHandlers()

	return engine
}
