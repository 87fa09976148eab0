package gameserver

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
)

const maxIdempotencyKeyLength = 128

type gameRequest struct {
	GameID string `json:"game_id"`
}

type playerRequest struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
}

type applyActionRequest struct {
	GameID         string      `json:"game_id"`
	Action         core.Action `json:"action"`
	IdempotencyKey string      `json:"idempotency_key,omitempty"`
}

// validateGameID checks the field every per-game request carries
func validateGameID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: game_id is required", errBadRequest)
	}
	return nil
}

// validateCreateRequest checks the shape of a new game before the engine sees it
func validateCreateRequest(req *CreateGameRequest) error {
	n := len(req.Players)
	if n < game.MinPlayers || n > game.MaxPlayers {
		return fmt.Errorf("%w: a game needs %d to %d players, got %d", errBadRequest, game.MinPlayers, game.MaxPlayers, n)
	}
	if req.Rules != nil {
		if err := req.Rules.Validate(); err != nil {
			return fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	return nil
}

// validateApplyRequest normalizes the action kind and checks the request
// fields. Game rules are left to the engine.
func validateApplyRequest(req *applyActionRequest) error {
	if err := validateGameID(req.GameID); err != nil {
		return err
	}
	if req.Action.PlayerID == "" {
		return fmt.Errorf("%w: action.player_id is required", errBadRequest)
	}
	kind, err := core.ParseActionKind(string(req.Action.Kind))
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	req.Action.Kind = kind
	if len(req.IdempotencyKey) > maxIdempotencyKeyLength {
		return fmt.Errorf("%w: idempotency_key longer than %d characters", errBadRequest, maxIdempotencyKeyLength)
	}
	return nil
}
