package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
)

// Config holds all configuration for the application
type Config struct {
	Rules      RulesConfig      `mapstructure:"rules"`
	Deck       map[string]int   `mapstructure:"deck"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
}

// RulesConfig holds the game constants. Games keep the rules they were
// created with; a reload only affects new games.
type RulesConfig struct {
	VictoryThreshold int             `mapstructure:"victory_threshold"`
	MaxRounds        MaxRoundsConfig `mapstructure:"max_rounds"`
	Costs            CostsConfig     `mapstructure:"costs"`
	Army             ArmyConfig      `mapstructure:"army"`
	Cards            CardRulesConfig `mapstructure:"cards"`
	Fortifications   FortConfig      `mapstructure:"fortifications"`
	Stipends         StipendsConfig  `mapstructure:"stipends"`
	Start            StartConfig     `mapstructure:"start"`
	HistoryLimit     int             `mapstructure:"history_limit"`
}

// MaxRoundsConfig is the round limit per player count
type MaxRoundsConfig struct {
	FourPlayers int `mapstructure:"four_players"`
	FivePlayers int `mapstructure:"five_players"`
	SixPlayers  int `mapstructure:"six_players"`
}

// CostsConfig holds gold prices
type CostsConfig struct {
	Count         int `mapstructure:"count"`
	Duke          int `mapstructure:"duke"`
	King          int `mapstructure:"king"`
	FakeClaim     int `mapstructure:"fake_claim"`
	ClaimTown     int `mapstructure:"claim_town"`
	Fortification int `mapstructure:"fortification"`
	Adventurer    int `mapstructure:"adventurer"`
}

// ArmyConfig holds recruiting, attack and army cap settings
type ArmyConfig struct {
	MinAttack        int `mapstructure:"min_attack"`
	RecruitBlock     int `mapstructure:"recruit_block"`
	RecruitBlockCost int `mapstructure:"recruit_block_cost"`
	BaronCap         int `mapstructure:"baron_cap"`
	CountCap         int `mapstructure:"count_cap"`
	DukeCap          int `mapstructure:"duke_cap"`
	KingCap          int `mapstructure:"king_cap"`
}

// CardRulesConfig holds drawing settings
type CardRulesConfig struct {
	DrawMaxTowns int  `mapstructure:"draw_max_towns"`
	HandLimit    int  `mapstructure:"hand_limit"`
	AutoDraw     bool `mapstructure:"auto_draw"`
}

// FortConfig holds fortification limits and income
type FortConfig struct {
	MaxPerTown   int `mapstructure:"max_per_town"`
	MaxPerOwner  int `mapstructure:"max_per_owner"`
	MaxPerPlayer int `mapstructure:"max_per_player"`
	IncomeFirst  int `mapstructure:"income_first"`
	IncomeSecond int `mapstructure:"income_second"`
}

// StipendsConfig holds per-title income
type StipendsConfig struct {
	Count int `mapstructure:"count"`
	Duke  int `mapstructure:"duke"`
	King  int `mapstructure:"king"`
}

// StartConfig holds the opening position
type StartConfig struct {
	Gold        int  `mapstructure:"gold"`
	Soldiers    int  `mapstructure:"soldiers"`
	RandomTowns bool `mapstructure:"random_towns"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	GRPCServer GRPCServerConfig `mapstructure:"grpc_server"`
}

// GRPCServerConfig holds gRPC server configuration. Durations are in seconds.
type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	MaxGames              int    `mapstructure:"max_games"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	FinishedGameTTL       int    `mapstructure:"finished_game_ttl"`
	IdleGameTimeout       int    `mapstructure:"idle_game_timeout"`
	CleanupInterval       int    `mapstructure:"cleanup_interval"`
	IdempotencyTTL        int    `mapstructure:"idempotency_ttl"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	JournalDir string `mapstructure:"journal_dir"`
}

// SimulationConfig holds settings for headless games
type SimulationConfig struct {
	Players  int    `mapstructure:"players"`
	Games    int    `mapstructure:"games"`
	Seed     uint64 `mapstructure:"seed"`
	MaxSteps int    `mapstructure:"max_steps"`
	Render   bool   `mapstructure:"render"`
}

var (
	// Global config instance
	mu  sync.RWMutex
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	r := game.DefaultRules()

	// Rules defaults
	v.SetDefault("rules.victory_threshold", r.VictoryThreshold)
	v.SetDefault("rules.max_rounds.four_players", r.MaxRounds[4])
	v.SetDefault("rules.max_rounds.five_players", r.MaxRounds[5])
	v.SetDefault("rules.max_rounds.six_players", r.MaxRounds[6])
	v.SetDefault("rules.history_limit", r.HistoryLimit)

	v.SetDefault("rules.costs.count", r.CountCost)
	v.SetDefault("rules.costs.duke", r.DukeCost)
	v.SetDefault("rules.costs.king", r.KingCost)
	v.SetDefault("rules.costs.fake_claim", r.FakeClaimCost)
	v.SetDefault("rules.costs.claim_town", r.ClaimTownCost)
	v.SetDefault("rules.costs.fortification", r.FortificationCost)
	v.SetDefault("rules.costs.adventurer", r.AdventurerCost)

	v.SetDefault("rules.army.min_attack", r.MinAttackSoldiers)
	v.SetDefault("rules.army.recruit_block", r.RecruitBlock)
	v.SetDefault("rules.army.recruit_block_cost", r.RecruitBlockCost)
	v.SetDefault("rules.army.baron_cap", r.BaronArmyCap)
	v.SetDefault("rules.army.count_cap", r.CountArmyCap)
	v.SetDefault("rules.army.duke_cap", r.DukeArmyCap)
	v.SetDefault("rules.army.king_cap", r.KingArmyCap)

	v.SetDefault("rules.cards.draw_max_towns", r.DrawMaxTowns)
	v.SetDefault("rules.cards.hand_limit", r.HandLimit)
	v.SetDefault("rules.cards.auto_draw", r.AutoDraw)

	v.SetDefault("rules.fortifications.max_per_town", r.MaxFortsPerTown)
	v.SetDefault("rules.fortifications.max_per_owner", r.MaxFortsPerOwner)
	v.SetDefault("rules.fortifications.max_per_player", r.MaxFortsPerPlayer)
	v.SetDefault("rules.fortifications.income_first", r.FortIncomeFirst)
	v.SetDefault("rules.fortifications.income_second", r.FortIncomeSecond)

	v.SetDefault("rules.stipends.count", r.CountStipend)
	v.SetDefault("rules.stipends.duke", r.DukeStipend)
	v.SetDefault("rules.stipends.king", r.KingStipend)

	v.SetDefault("rules.start.gold", r.StartingGold)
	v.SetDefault("rules.start.soldiers", r.StartingSoldiers)
	v.SetDefault("rules.start.random_towns", r.RandomStartingTowns)

	// Deck defaults, one key per card effect so each can be overridden alone
	for _, effect := range cards.Effects() {
		v.SetDefault("deck."+string(effect), r.Deck[effect])
	}

	// gRPC server defaults
	v.SetDefault("server.grpc_server.host", "0.0.0.0")
	v.SetDefault("server.grpc_server.port", 50051)
	v.SetDefault("server.grpc_server.max_games", 100)
	v.SetDefault("server.grpc_server.enable_reflection", true)
	v.SetDefault("server.grpc_server.graceful_shutdown_delay", 5)
	v.SetDefault("server.grpc_server.finished_game_ttl", 600)
	v.SetDefault("server.grpc_server.idle_game_timeout", 3600)
	v.SetDefault("server.grpc_server.cleanup_interval", 60)
	v.SetDefault("server.grpc_server.idempotency_ttl", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
	v.SetDefault("logging.compress", false)
	v.SetDefault("logging.journal_dir", "")

	// Simulation defaults
	v.SetDefault("simulation.players", 4)
	v.SetDefault("simulation.games", 1)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.max_steps", 10000)
	v.SetDefault("simulation.render", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	nv := viper.New()

	// Set defaults before loading any config
	setViperDefaults(nv)

	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("/etc/kingdom-engine")
	}

	nv.SetEnvPrefix("KINGDOM")
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file falls back to defaults; a malformed one does not
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c, err := decode(nv)
	if err != nil {
		return err
	}

	mu.Lock()
	v, cfg = nv, c
	mu.Unlock()
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func decode(vp *viper.Viper) (*Config, error) {
	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return c, nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
		mu.RLock()
		c = cfg
		mu.RUnlock()
	}
	return c
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded configuration
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}
	vp := GetViper()

	base := vp.ConfigFileUsed()
	envFile := fmt.Sprintf("config.%s.yaml", env)
	if base != "" {
		envFile = filepath.Join(filepath.Dir(base), envFile)
	}
	vp.SetConfigFile(envFile)
	err := vp.MergeInConfig()
	if base != "" {
		vp.SetConfigFile(base)
	}
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
		return nil
	}
	return reload(vp)
}

// Set allows runtime config updates
func Set(key string, value interface{}) error {
	vp := GetViper()
	vp.Set(key, value)
	return reload(vp)
}

func reload(vp *viper.Viper) error {
	c, err := decode(vp)
	if err != nil {
		return err
	}
	mu.Lock()
	cfg = c
	mu.Unlock()
	return nil
}

// GetString gets a string value from config
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return GetViper().ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. An invalid edit is
// logged and the previous configuration stays in place.
func WatchConfig(onChange func(*Config)) {
	vp := GetViper()
	vp.OnConfigChange(func(e fsnotify.Event) {
		if err := reload(vp); err != nil {
			log.Error().Err(err).Str("file", e.Name).Msg("Ignoring invalid configuration change")
			return
		}
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("Configuration reloaded")
		if onChange != nil {
			onChange(Get())
		}
	})
	vp.WatchConfig()
}

// GameRules converts the rules and deck sections into engine rules.
func (c *Config) GameRules() game.Rules {
	r := c.Rules
	deck := make(cards.Counts, len(c.Deck))
	for effect, n := range c.Deck {
		if n > 0 {
			deck[cards.Effect(effect)] = n
		}
	}
	return game.Rules{
		VictoryThreshold: r.VictoryThreshold,
		MaxRounds: map[int]int{
			4: r.MaxRounds.FourPlayers,
			5: r.MaxRounds.FivePlayers,
			6: r.MaxRounds.SixPlayers,
		},
		CountCost:           r.Costs.Count,
		DukeCost:            r.Costs.Duke,
		KingCost:            r.Costs.King,
		FakeClaimCost:       r.Costs.FakeClaim,
		ClaimTownCost:       r.Costs.ClaimTown,
		FortificationCost:   r.Costs.Fortification,
		AdventurerCost:      r.Costs.Adventurer,
		MinAttackSoldiers:   r.Army.MinAttack,
		RecruitBlock:        r.Army.RecruitBlock,
		RecruitBlockCost:    r.Army.RecruitBlockCost,
		DrawMaxTowns:        r.Cards.DrawMaxTowns,
		HandLimit:           r.Cards.HandLimit,
		AutoDraw:            r.Cards.AutoDraw,
		BaronArmyCap:        r.Army.BaronCap,
		CountArmyCap:        r.Army.CountCap,
		DukeArmyCap:         r.Army.DukeCap,
		KingArmyCap:         r.Army.KingCap,
		MaxFortsPerTown:     r.Fortifications.MaxPerTown,
		MaxFortsPerOwner:    r.Fortifications.MaxPerOwner,
		MaxFortsPerPlayer:   r.Fortifications.MaxPerPlayer,
		FortIncomeFirst:     r.Fortifications.IncomeFirst,
		FortIncomeSecond:    r.Fortifications.IncomeSecond,
		CountStipend:        r.Stipends.Count,
		DukeStipend:         r.Stipends.Duke,
		KingStipend:         r.Stipends.King,
		StartingGold:        r.Start.Gold,
		StartingSoldiers:    r.Start.Soldiers,
		RandomStartingTowns: r.Start.RandomTowns,
		HistoryLimit:        r.HistoryLimit,
		Deck:                deck,
	}
}

// Validate validates the configuration values
func Validate(c *Config) error {
	known := make(map[string]bool)
	for _, effect := range cards.Effects() {
		known[string(effect)] = true
	}
	for effect, n := range c.Deck {
		if !known[effect] {
			return fmt.Errorf("deck.%s is not a card effect", effect)
		}
		if n < 0 {
			return fmt.Errorf("deck.%s must be non-negative", effect)
		}
	}

	if err := c.GameRules().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Rules.Cards.DrawMaxTowns < 0 {
		return fmt.Errorf("rules.cards.draw_max_towns must be non-negative")
	}

	// Validate server configuration
	g := c.Server.GRPCServer
	if g.Port <= 0 || g.Port > 65535 {
		return fmt.Errorf("server.grpc_server.port must be between 1 and 65535")
	}
	if g.MaxGames <= 0 {
		return fmt.Errorf("server.grpc_server.max_games must be positive")
	}
	if g.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc_server.graceful_shutdown_delay must be non-negative")
	}
	if g.FinishedGameTTL < 0 || g.IdleGameTimeout < 0 || g.IdempotencyTTL < 0 {
		return fmt.Errorf("server.grpc_server timeouts must be non-negative")
	}
	if g.CleanupInterval <= 0 {
		return fmt.Errorf("server.grpc_server.cleanup_interval must be positive")
	}

	// Validate logging configuration
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging.max_size_mb must be positive")
	}

	// Validate simulation settings
	if c.Simulation.Players < game.MinPlayers || c.Simulation.Players > game.MaxPlayers {
		return fmt.Errorf("simulation.players must be between %d and %d", game.MinPlayers, game.MaxPlayers)
	}
	if c.Simulation.Games <= 0 {
		return fmt.Errorf("simulation.games must be positive")
	}
	if c.Simulation.MaxSteps <= 0 {
		return fmt.Errorf("simulation.max_steps must be positive")
	}

	return nil
}
