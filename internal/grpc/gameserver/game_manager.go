package gameserver

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events/subscribers"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrAtCapacity   = errors.New("server at capacity")
)

// Options configures a GameManager. Zero durations disable the matching cleanup rule.
type Options struct {
	MaxGames        int
	FinishedGameTTL time.Duration
	IdleGameTimeout time.Duration
	CleanupInterval time.Duration
	IdempotencyTTL  time.Duration

	// Journal.Dir empty disables per-game journals
	Journal subscribers.JournalConfig

	Rules  game.Rules
	Logger zerolog.Logger
}

// DefaultOptions mirrors the server defaults of the config package.
func DefaultOptions() Options {
	return Options{
		MaxGames:        100,
		FinishedGameTTL: 10 * time.Minute,
		IdleGameTimeout: time.Hour,
		CleanupInterval: time.Minute,
		IdempotencyTTL:  5 * time.Minute,
		Rules:           game.DefaultRules(),
		Logger:          log.Logger,
	}
}

type gameInstance struct {
	id     string
	engine *game.Engine
	mu     sync.RWMutex // guards engine; Apply takes the write lock

	bus         *events.EventBus
	journal     *subscribers.JournalSubscriber
	idempotency *IdempotencyManager

	createdAt    time.Time
	lastActivity atomic.Int64 // unix nanos
	finishedAt   atomic.Int64 // unix nanos, 0 while the game runs
}

func (g *gameInstance) touch(now time.Time) {
	g.lastActivity.Store(now.UnixNano())
}

func (g *gameInstance) lastActive() time.Time {
	return time.Unix(0, g.lastActivity.Load())
}

func (g *gameInstance) finished() (time.Time, bool) {
	n := g.finishedAt.Load()
	if n == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, n), true
}

// CreateGameRequest describes a new game. A nil Rules uses the manager's current rules.
type CreateGameRequest struct {
	Players []game.PlayerSpec `json:"players"`
	Seed    uint64            `json:"seed,omitempty"`
	Rules   *game.Rules       `json:"rules,omitempty"`
}

// GameSummary is one row of ListGames.
type GameSummary struct {
	GameID       string    `json:"game_id"`
	Phase        string    `json:"phase"`
	Round        int       `json:"round"`
	Players      []string  `json:"players"`
	CurrentTurn  string    `json:"current_player_id,omitempty"`
	WinnerID     string    `json:"winner_id,omitempty"`
	Events       uint64     `json:"events"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// GameManager is the registry of running games. Each game is guarded by its
// own RWMutex so different games never contend with each other.
type GameManager struct {
	mu    sync.RWMutex
	games map[string]*gameInstance
	opts  Options

	logger zerolog.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewGameManager creates a manager and starts its cleanup goroutine when
// opts.CleanupInterval is positive. Call Close to stop it.
func NewGameManager(opts Options) *GameManager {
	if opts.Rules.MaxRounds == nil {
		opts.Rules = game.DefaultRules()
	}
	gm := &GameManager{
		games:  make(map[string]*gameInstance),
		opts:   opts,
		logger: opts.Logger.With().Str("component", "GameManager").Logger(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	if opts.CleanupInterval > 0 {
		go gm.runCleanup()
	} else {
		close(gm.done)
	}
	return gm
}

// SetRules replaces the rules used for games created from now on.
func (gm *GameManager) SetRules(rules game.Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	gm.mu.Lock()
	gm.opts.Rules = rules
	gm.mu.Unlock()
	gm.logger.Info().Msg("Rules updated for new games")
	return nil
}

// Rules returns a copy of the rules used for new games.
func (gm *GameManager) Rules() game.Rules {
	gm.mu.RLock()
	r := gm.opts.Rules
	gm.mu.RUnlock()

	r.MaxRounds = maps.Clone(r.MaxRounds)
	r.Deck = maps.Clone(r.Deck)
	return r
}

// SetMaxGames changes the capacity limit. Running games are never evicted.
func (gm *GameManager) SetMaxGames(n int) {
	gm.mu.Lock()
	gm.opts.MaxGames = n
	gm.mu.Unlock()
}

// CreateGame creates and starts a new game and returns its summary.
func (gm *GameManager) CreateGame(ctx context.Context, req CreateGameRequest) (GameSummary, error) {
	gm.mu.RLock()
	currentGames := len(gm.games)
	maxGames := gm.opts.MaxGames
	gm.mu.RUnlock()

	if maxGames > 0 && currentGames >= maxGames {
		gm.logger.Warn().
			Int("current_games", currentGames).
			Int("max_games", maxGames).
			Msg("Rejecting game creation - server at capacity")
		return GameSummary{}, fmt.Errorf("%w: %d/%d games active", ErrAtCapacity, currentGames, maxGames)
	}
	rules := gm.Rules()
	if req.Rules != nil {
		rules = *req.Rules
	}

	gameID := uuid.NewString()
	g := &gameInstance{
		id:          gameID,
		bus:         events.NewEventBus(gm.logger),
		idempotency: NewIdempotencyManager(gm.opts.IdempotencyTTL),
	}
	g.bus.Subscribe(subscribers.NewLoggerSubscriber("log-"+gameID, gm.logger, zerolog.DebugLevel))
	g.bus.On(events.TypeGameEnded, func(ev events.Event) {
		g.finishedAt.Store(ev.Timestamp().UnixNano())
		ended := ev.(*events.GameEndedEvent)
		gm.logger.Info().
			Str("game_id", gameID).
			Str("winner_id", ended.WinnerID).
			Str("reason", ended.Reason).
			Msg("Game finished")
	})

	var journal *subscribers.JournalSubscriber
	if gm.opts.Journal.Dir != "" {
		var err error
		journal, err = subscribers.OpenJournal(gameID, gm.opts.Journal)
		if err != nil {
			return GameSummary{}, fmt.Errorf("opening journal for game %s: %w", gameID, err)
		}
		g.bus.Subscribe(journal)
		g.journal = journal
	}

	engine, err := game.NewEngine(ctx, game.Config{
		GameID:   gameID,
		Players:  req.Players,
		Rules:    rules,
		Seed:     req.Seed,
		Logger:   gm.logger,
		Events:   g.bus,
	})
	if err == nil {
		err = engine.Start()
	}
	if err != nil {
		if journal != nil {
			_ = journal.Close()
		}
		return GameSummary{}, fmt.Errorf("creating game: %w", err)
	}

	now := time.Now()
	g.engine = engine
	g.createdAt = now
	g.touch(now)

	gm.mu.Lock()
	// Re-check under the write lock; concurrent creates may have filled the registry
	if gm.opts.MaxGames > 0 && len(gm.games) >= gm.opts.MaxGames {
		gm.mu.Unlock()
		if journal != nil {
			_ = journal.Close()
		}
		return GameSummary{}, fmt.Errorf("%w: %d/%d games active", ErrAtCapacity, gm.opts.MaxGames, gm.opts.MaxGames)
	}
	gm.games[gameID] = g
	currentCount := len(gm.games)
	gm.mu.Unlock()

	gm.logger.Info().
		Str("game_id", gameID).
		Int("players", len(req.Players)).
		Int("current_games", currentCount).
		Int("max_games", maxGames).
		Bool("journal", journal != nil).
		Msg("Successfully created new game")

	return g.summary(), nil
}

// GetGame retrieves a game by ID
func (gm *GameManager) GetGame(gameID string) (*gameInstance, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	g, exists := gm.games[gameID]
	return g, exists
}

func (gm *GameManager) lookup(gameID string) (*gameInstance, error) {
	g, ok := gm.GetGame(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// GetActiveGames returns the number of games in the registry
func (gm *GameManager) GetActiveGames() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}

// Apply runs one action under the game's write lock. A repeated idempotency
// key from the same player returns the stored result without touching the game.
func (gm *GameManager) Apply(gameID string, action core.Action, idempotencyKey string) (*game.ActionResult, error) {
	g, err := gm.lookup(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if cached := g.idempotency.Check(action.PlayerID, idempotencyKey); cached != nil {
		gm.logger.Debug().
			Str("game_id", gameID).
			Str("player_id", action.PlayerID).
			Str("idempotency_key", idempotencyKey).
			Msg("Returning cached result for idempotent request")
		return cached, nil
	}

	res := g.engine.Apply(action)
	g.idempotency.Store(action.PlayerID, idempotencyKey, res)
	g.touch(time.Now())

	if g.engine.IsLocked() {
		gm.logger.Error().
			Str("game_id", gameID).
			Str("action", action.String()).
			Msg("Game locked after an internal error")
	}
	return res, nil
}

// ValidActions lists the legal actions of playerID under the read lock.
func (gm *GameManager) ValidActions(gameID, playerID string) ([]core.Action, error) {
	g, err := gm.lookup(gameID)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.engine.GetValidActions(playerID), nil
}

// Snapshot returns a copy of the game's state under the read lock.
func (gm *GameManager) Snapshot(gameID string) (*game.GameStateView, error) {
	g, err := gm.lookup(gameID)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.engine.Snapshot(), nil
}

// Render draws the board as plain text under the read lock.
func (gm *GameManager) Render(gameID string) (string, error) {
	g, err := gm.lookup(gameID)
	if err != nil {
		return "", err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.engine.Render(false), nil
}

// ListGames returns every game, oldest first.
func (gm *GameManager) ListGames() []GameSummary {
	gm.mu.RLock()
	refs := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		refs = append(refs, g)
	}
	gm.mu.RUnlock()

	out := make([]GameSummary, 0, len(refs))
	for _, g := range refs {
		out = append(out, g.summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].GameID < out[j].GameID
	})
	return out
}

// summary reads the engine under the read lock.
func (g *gameInstance) summary() GameSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()
	s := GameSummary{
		GameID:       g.id,
		Phase:        g.engine.Phase().String(),
		Round:        g.engine.Round(),
		Players:      g.engine.PlayerIDs(),
		CurrentTurn:  g.engine.CurrentPlayerID(),
		WinnerID:     g.engine.WinnerID(),
		Events:       g.bus.Published(),
		CreatedAt:    g.createdAt,
		LastActivity: g.lastActive(),
	}
	if at, ok := g.finished(); ok {
		s.FinishedAt = &at
	}
	return s
}

// DeleteGame removes a game and closes its journal.
func (gm *GameManager) DeleteGame(gameID string) error {
	gm.mu.Lock()
	g, ok := gm.games[gameID]
	delete(gm.games, gameID)
	remaining := len(gm.games)
	gm.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	g.close(gm.logger)

	gm.logger.Info().
		Str("game_id", gameID).
		Int("remaining", remaining).
		Msg("Game deleted")
	return nil
}

// close waits for in-flight calls on the game before closing its journal.
func (g *gameInstance) close(logger zerolog.Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.journal != nil {
		if err := g.journal.Close(); err != nil {
			logger.Warn().Err(err).Str("game_id", g.id).Msg("Failed to close game journal")
		}
		g.journal = nil
	}
}

// Close stops the cleanup goroutine and closes every game's journal.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() {
		close(gm.stop)
		<-gm.done

		gm.mu.Lock()
		games := gm.games
		gm.games = make(map[string]*gameInstance)
		gm.mu.Unlock()

		for _, g := range games {
			g.close(gm.logger)
		}
		gm.logger.Info().Int("games", len(games)).Msg("Game manager closed")
	})
}

// runCleanup periodically removes finished and abandoned games
func (gm *GameManager) runCleanup() {
	defer close(gm.done)
	defer func() {
		if r := recover(); r != nil {
			gm.logger.Error().
				Interface("panic", r).
				Msg("Game cleanup goroutine panicked")
		}
	}()

	ticker := time.NewTicker(gm.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			gm.cleanupGames(now)
		case <-gm.stop:
			return
		}
	}
}

// cleanupGames removes finished games after FinishedGameTTL and any other
// game after IdleGameTimeout without an applied action.
func (gm *GameManager) cleanupGames(now time.Time) int {
	// Collect references without holding the manager lock while reading games
	gm.mu.RLock()
	refs := make([]*gameInstance, 0, len(gm.games))
	for _, g := range gm.games {
		refs = append(refs, g)
	}
	gm.mu.RUnlock()

	var expired []*gameInstance
	for _, g := range refs {
		finishedAt, over := g.finished()
		idle := now.Sub(g.lastActive())

		reason := ""
		switch {
		case over && gm.opts.FinishedGameTTL > 0 && now.Sub(finishedAt) > gm.opts.FinishedGameTTL:
			reason = "finished game TTL expired"
		case !over && gm.opts.IdleGameTimeout > 0 && idle > gm.opts.IdleGameTimeout:
			reason = "game abandoned (no activity)"
		}
		if reason == "" {
			continue
		}
		expired = append(expired, g)
		gm.logger.Info().
			Str("game_id", g.id).
			Str("reason", reason).
			Dur("age", now.Sub(g.createdAt)).
			Dur("inactive", idle).
			Msg("Cleaning up game")
	}
	if len(expired) == 0 {
		return 0
	}

	gm.mu.Lock()
	for _, g := range expired {
		delete(gm.games, g.id)
	}
	remaining := len(gm.games)
	gm.mu.Unlock()

	for _, g := range expired {
		g.close(gm.logger)
	}

	gm.logger.Info().
		Int("cleaned", len(expired)).
		Int("remaining", remaining).
		Msg("Game cleanup completed")
	return len(expired)
}

// GetActiveGoroutineCount estimates the goroutines owned by the manager
func (gm *GameManager) GetActiveGoroutineCount() int {
	select {
	case <-gm.done:
		return 0
	default:
		return 1
	}
}
