package subscribers_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/combat"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/events/subscribers"
)

func TestLoggerSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Timestamp().Logger()

	logSub := subscribers.NewLoggerSubscriber("test-logger", logger, zerolog.InfoLevel)

	assert.Equal(t, "test-logger", logSub.ID())

	// No filter: interested in everything
	assert.True(t, logSub.InterestedIn(events.TypeGameStarted))
	assert.True(t, logSub.InterestedIn(events.TypeTurnStarted))
	assert.True(t, logSub.InterestedIn("any.event.type"))
}

func TestLoggerSubscriberEventLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("event-logger", logger, zerolog.InfoLevel)

	testCases := []struct {
		name  string
		event events.Event
		check func(t *testing.T, logLine map[string]interface{})
	}{
		{
			name:  "GameStartedEvent",
			event: events.NewGameStartedEvent("test-game-1", []string{"a", "b", "c", "d"}, 10, 7),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, float64(10), logLine["max_rounds"])
				assert.Equal(t, float64(7), logLine["seed"])
				assert.Len(t, logLine["player_ids"], 4)
			},
		},
		{
			name:  "TurnStartedEvent",
			event: events.NewTurnStartedEvent("test-game-1", "b", 5),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "b", logLine["player_id"])
				assert.Equal(t, float64(5), logLine["round"])
			},
		},
		{
			name: "CombatResolvedEvent",
			event: events.NewCombatResolvedEvent("test-game-1", combat.Result{
				Target:      "xelphane",
				AttackerID:  "a",
				DefenderID:  "b",
				Attacker:    combat.Breakdown{Strength: 12, Losses: 100},
				Defender:    combat.Breakdown{Strength: 9, Losses: 200},
				AttackerWon: true,
			}, 3),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "a", logLine["attacker_id"])
				assert.Equal(t, "b", logLine["defender_id"])
				assert.Equal(t, "xelphane", logLine["target"])
				assert.Equal(t, float64(100), logLine["attacker_losses"])
				assert.Equal(t, float64(200), logLine["defender_losses"])
				assert.Equal(t, true, logLine["attacker_won"])
			},
		},
		{
			name:  "ActionRejectedEvent",
			event: events.NewActionRejectedEvent("test-game-1", core.Recruit("c", 1000), 2, core.KindResourceExceeded, "army cap"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "c", logLine["player_id"])
				assert.Equal(t, "recruit", logLine["action_type"])
				assert.Equal(t, "resource_exceeded", logLine["error_kind"])
				assert.Equal(t, "army cap", logLine["reason"])
			},
		},
		{
			name:  "TitleChangedEvent",
			event: events.NewTitleChangedEvent("test-game-1", "d", "count", "X", true, 4),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "count", logLine["title"])
				assert.Equal(t, "X", logLine["scope"])
				assert.Equal(t, true, logLine["gained"])
			},
		},
		{
			name:  "GameEndedEvent",
			event: events.NewGameEndedEvent("test-game-1", "a", map[string]int{"a": 19}, 8, 5*time.Minute, "prestige"),
			check: func(t *testing.T, logLine map[string]interface{}) {
				assert.Equal(t, "a", logLine["winner_id"])
				assert.Equal(t, float64(8), logLine["final_round"])
				assert.Equal(t, float64(300000), logLine["duration"]) // 5 minutes in ms
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf.Reset()
			logSub.HandleEvent(tc.event)

			logOutput := buf.String()
			require.NotEmpty(t, logOutput, "Log output should not be empty")

			var logLine map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(logOutput), &logLine))

			assert.Equal(t, "info", logLine["level"])
			assert.Equal(t, "Game event", logLine["message"])
			assert.Equal(t, tc.event.Type(), logLine["event_type"])
			assert.Equal(t, "test-game-1", logLine["game_id"])

			tc.check(t, logLine)
		})
	}
}

func TestLoggerSubscriberWithFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("filtered-logger", logger, zerolog.InfoLevel)
	logSub.SetEventFilter([]string{events.TypeGameStarted, events.TypeGameEnded})

	assert.True(t, logSub.InterestedIn(events.TypeGameStarted))
	assert.True(t, logSub.InterestedIn(events.TypeGameEnded))
	assert.False(t, logSub.InterestedIn(events.TypeTurnStarted))
	assert.False(t, logSub.InterestedIn(events.TypeCombatResolved))

	// Clearing the filter
	logSub.SetEventFilter(nil)
	assert.True(t, logSub.InterestedIn(events.TypeTurnStarted))
}

func TestLoggerSubscriberLogLevels(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel zerolog.Level
		expected string
	}{
		{"Debug", zerolog.DebugLevel, "debug"},
		{"Info", zerolog.InfoLevel, "info"},
		{"Warn", zerolog.WarnLevel, "warn"},
		{"Error", zerolog.ErrorLevel, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(tc.logLevel)

			logSub := subscribers.NewLoggerSubscriber("level-logger", logger, tc.logLevel)
			logSub.HandleEvent(events.NewRoundStartedEvent("game1", 2))

			var logLine map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))
			assert.Equal(t, tc.expected, logLine["level"])
		})
	}
}

func TestLoggerSubscriberDevelopmentMode(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logSub := subscribers.NewLoggerSubscriber("dev-logger", logger, zerolog.InfoLevel)
	logSub.SetDevMode(true)

	action := core.Attack("a", "umbrith", "xelphane", 300, "card-041")
	logSub.HandleEvent(events.NewActionAppliedEvent("dev-game", action, 1, "attack pending"))

	var logLine map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logLine))

	assert.Equal(t, "attack", logLine["action_type"])
	assert.Equal(t, "attack pending", logLine["result"])

	eventData, ok := logLine["event_data"].(map[string]interface{})
	require.True(t, ok, "dev mode should embed the full event")
	assert.Equal(t, "dev-game", eventData["game_id"])
	assert.NotNil(t, eventData["Action"])
}
