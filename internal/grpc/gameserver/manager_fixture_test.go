package gameserver

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
)

// newTestManager builds a manager without the cleanup goroutine; tests call
// cleanupGames directly.
func newTestManager(t *testing.T, opts ...func(*Options)) *GameManager {
	t.Helper()
	o := DefaultOptions()
	o.CleanupInterval = 0
	o.Logger = zerolog.Nop()
	for _, opt := range opts {
		opt(&o)
	}
	gm := NewGameManager(o)
	t.Cleanup(gm.Close)
	return gm
}

func fourPlayers() []game.PlayerSpec {
	return []game.PlayerSpec{
		{ID: "p1", Name: "Aldric"},
		{ID: "p2", Name: "Brenna"},
		{ID: "p3", Name: "Cedric"},
		{ID: "p4", Name: "Dagny"},
	}
}

func createGame(t *testing.T, gm *GameManager) string {
	t.Helper()
	summary, err := gm.CreateGame(context.Background(), CreateGameRequest{Players: fourPlayers(), Seed: 42})
	require.NoError(t, err)
	return summary.GameID
}
