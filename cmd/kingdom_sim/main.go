package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/KingdomEngine/internal/config"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/KingdomEngine/internal/logging"
)

var seatNames = []string{"Aldric", "Brenna", "Cedric", "Dagny", "Edmund", "Freya"}

type simOptions struct {
	players    int
	humans     int
	seed       uint64
	maxSteps   int
	render     bool
	color      bool
	journalDir string
	journal    subscribers.JournalConfig
	rules      game.Rules
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	players := flag.Int("players", 0, "Players per game, 4 to 6 (0 to use config default)")
	games := flag.Int("games", 0, "Number of games to play (0 to use config default)")
	seed := flag.Uint64("seed", 0, "Seed of the first game; 0 uses config or the clock")
	humans := flag.Int("humans", 0, "Seats flagged as human; random agents still answer their defences")
	render := flag.Bool("render", false, "Print the board after every round")
	color := flag.Bool("color", true, "Use ANSI colors when rendering")
	journalDir := flag.String("journal-dir", "", "Directory for event journals (empty to use config default)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	logFile, err := logging.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer logFile.Close()

	opts := simOptions{
		players:    cfg.Simulation.Players,
		humans:     *humans,
		seed:       cfg.Simulation.Seed,
		maxSteps:   cfg.Simulation.MaxSteps,
		render:     cfg.Simulation.Render || *render,
		color:      *color,
		journalDir: cfg.Logging.JournalDir,
		rules:      cfg.GameRules(),
	}
	if *players != 0 {
		opts.players = *players
	}
	if *seed != 0 {
		opts.seed = *seed
	}
	if opts.seed == 0 {
		opts.seed = uint64(time.Now().UnixNano())
	}
	if *journalDir != "" {
		opts.journalDir = *journalDir
	}
	opts.journal = subscribers.JournalConfig{
		Dir:        opts.journalDir,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	}
	if opts.players < game.MinPlayers || opts.players > game.MaxPlayers {
		log.Fatal().Int("players", opts.players).Msgf("Players must be between %d and %d", game.MinPlayers, game.MaxPlayers)
	}
	n := cfg.Simulation.Games
	if *games > 0 {
		n = *games
	}

	wins := make(map[string]int)
	for i := 0; i < n; i++ {
		winner, err := playGame(context.Background(), opts, opts.seed+uint64(i))
		if err != nil {
			log.Fatal().Err(err).Int("game", i+1).Msg("Simulation failed")
		}
		wins[winner]++
	}

	if n > 1 {
		fmt.Println("Wins:")
		for _, name := range seatNames[:opts.players] {
			fmt.Printf("  %-8s %d\n", name, wins[name])
		}
	}
}

// playGame runs one game between random agents and prints the final standings.
func playGame(ctx context.Context, opts simOptions, seed uint64) (string, error) {
	specs := make([]game.PlayerSpec, opts.players)
	for i := range specs {
		specs[i] = game.PlayerSpec{
			ID:    fmt.Sprintf("p%d", i+1),
			Name:  seatNames[i],
			Human: i < opts.humans,
		}
	}

	bus := events.NewEventBus(log.Logger)
	var journal *subscribers.JournalSubscriber
	gameID := fmt.Sprintf("sim-%d", seed)
	if opts.journalDir != "" {
		var err error
		journal, err = subscribers.OpenJournal(gameID, opts.journal)
		if err != nil {
			return "", err
		}
		defer journal.Close()
		bus.Subscribe(journal)
	}

	engine, err := game.NewEngine(ctx, game.Config{
		GameID:  gameID,
		Players: specs,
		Rules:   opts.rules,
		Seed:    seed,
		Logger:  log.Logger,
		Events:  bus,
	})
	if err != nil {
		return "", err
	}
	if err := engine.Start(); err != nil {
		return "", err
	}

	fmt.Printf("Game %s seed %d\n", gameID, seed)
	rng := rand.New(rand.NewSource(seed))
	round := engine.Round()
	steps := 0
	for ; steps < opts.maxSteps; steps++ {
		action, ok := game.GenerateRandomAction(engine, rng)
		if !ok {
			break
		}
		if res := engine.Apply(action); !res.Success {
			return "", fmt.Errorf("agent action %s rejected: %w", action, res.Error)
		}
		if opts.render && engine.Round() != round {
			round = engine.Round()
			fmt.Println(engine.Render(opts.color))
		}
	}

	if !engine.IsGameOver() {
		log.Warn().Int("steps", steps).Str("game_id", gameID).Msg("Step limit reached before the game ended")
	}
	fmt.Println(engine.Render(opts.color))

	standings := engine.Standings()
	fmt.Println(strings.Repeat("-", 60))
	for _, s := range standings {
		fmt.Printf("%d. %-8s %-6s prestige %2d  holdings %2d  gold %3d  soldiers %4d  battles %d-%d\n",
			s.Rank, s.Name, s.Title, s.Prestige, s.Territories, s.Gold, s.Soldiers,
			s.Stats.BattlesWon, s.Stats.BattlesLost)
	}
	if journal != nil {
		fmt.Printf("Journal: %s (%d events)\n", subscribers.JournalPath(opts.journalDir, gameID), journal.Lines())
	}
	fmt.Println()

	if len(standings) == 0 {
		return "", nil
	}
	return standings[0].Name, nil
}
