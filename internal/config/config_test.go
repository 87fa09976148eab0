package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/cards"
)

func reset() {
	mu.Lock()
	cfg = nil
	v = nil
	mu.Unlock()
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInit(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", `
rules:
  victory_threshold: 20
  max_rounds:
    four_players: 8
  costs:
    count: 30
  cards:
    auto_draw: true
deck:
  gold_5: 10
  crusade: 0
server:
  grpc_server:
    port: 8080
    max_games: 5
logging:
  format: json
simulation:
  players: 6
`)
	reset()

	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 20, c.Rules.VictoryThreshold)
	assert.Equal(t, 8, c.Rules.MaxRounds.FourPlayers)
	assert.Equal(t, 11, c.Rules.MaxRounds.FivePlayers, "default kept")
	assert.Equal(t, 30, c.Rules.Costs.Count)
	assert.Equal(t, 50, c.Rules.Costs.Duke)
	assert.True(t, c.Rules.Cards.AutoDraw)
	assert.Equal(t, 10, c.Deck["gold_5"])
	assert.Equal(t, 0, c.Deck["crusade"])
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, 5, c.Server.GRPCServer.MaxGames)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, 6, c.Simulation.Players)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	reset()

	// A missing file falls back to defaults
	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	require.NotNil(t, c)
	assert.Equal(t, 50051, c.Server.GRPCServer.Port)
	assert.Equal(t, "console", c.Logging.Format)
	assert.Equal(t, 4, c.Simulation.Players)
	assert.Equal(t, game.DefaultRules(), c.GameRules())
}

func TestInitRejectsMalformedFile(t *testing.T) {
	configFile := writeConfig(t, t.TempDir(), "config.yaml", "rules: [unclosed\n")
	reset()

	assert.Error(t, Init(configFile))
}

func TestInitRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero recruit block", "rules:\n  army:\n    recruit_block: 0\n"},
		{"unknown card", "deck:\n  dragon: 2\n"},
		{"negative card count", "deck:\n  gold_5: -1\n"},
		{"bad port", "server:\n  grpc_server:\n    port: 70000\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"too few players", "simulation:\n  players: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := writeConfig(t, t.TempDir(), "config.yaml", tt.content)
			reset()
			assert.Error(t, Init(configFile))
		})
	}
}

func TestEnvironmentVariables(t *testing.T) {
	reset()

	t.Setenv("KINGDOM_RULES_VICTORY_THRESHOLD", "25")
	t.Setenv("KINGDOM_SERVER_GRPC_SERVER_PORT", "9090")
	t.Setenv("KINGDOM_DECK_GOLD_25", "3")

	require.NoError(t, Init(""))

	// Environment variables should override
	c := Get()
	assert.Equal(t, 25, c.Rules.VictoryThreshold)
	assert.Equal(t, 9090, c.Server.GRPCServer.Port)
	assert.Equal(t, 3, c.Deck["gold_25"])
}

func TestSet(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	require.NoError(t, Set("rules.costs.king", 90))
	require.NoError(t, Set("simulation.players", 5))

	c := Get()
	assert.Equal(t, 90, c.Rules.Costs.King)
	assert.Equal(t, 5, c.Simulation.Players)

	// A rejected update leaves the previous config in place
	assert.Error(t, Set("server.grpc_server.max_games", 0))
	assert.Equal(t, 100, Get().Server.GRPCServer.MaxGames)
}

func TestGetHelpers(t *testing.T) {
	reset()
	require.NoError(t, Init(""))

	require.NoError(t, Set("logging.level", "debug"))

	assert.Equal(t, "debug", GetString("logging.level"))
	assert.Equal(t, 50051, GetInt("server.grpc_server.port"))
	assert.True(t, GetBool("server.grpc_server.enable_reflection"))
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()
	baseConfig := writeConfig(t, tmpDir, "config.yaml", `
rules:
  victory_threshold: 20
server:
  grpc_server:
    port: 50051
`)
	writeConfig(t, tmpDir, "config.prod.yaml", `
rules:
  victory_threshold: 30
server:
  grpc_server:
    port: 8080
logging:
  level: error
`)
	reset()

	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	c := Get()
	assert.Equal(t, 30, c.Rules.VictoryThreshold)
	assert.Equal(t, 8080, c.Server.GRPCServer.Port)
	assert.Equal(t, "error", c.Logging.Level)
	assert.Equal(t, baseConfig, ConfigFilePath())

	// A missing environment file is not an error
	assert.NoError(t, LoadEnvironmentConfig("staging"))
	assert.NoError(t, LoadEnvironmentConfig(""))
}

func TestGameRules(t *testing.T) {
	reset()
	require.NoError(t, Init(""))
	require.NoError(t, Set("deck.raiders", 0))
	require.NoError(t, Set("rules.max_rounds.six_players", 14))
	require.NoError(t, Set("rules.cards.hand_limit", 5))

	rules := Get().GameRules()
	require.NoError(t, rules.Validate())
	assert.Equal(t, 14, rules.MaxRoundsFor(6))
	assert.Equal(t, 10, rules.MaxRoundsFor(4))
	assert.Equal(t, 5, rules.HandLimit)
	assert.NotContains(t, rules.Deck, cards.Raiders)
	assert.Equal(t, cards.DefaultCounts()[cards.Gold5], rules.Deck[cards.Gold5])
}
