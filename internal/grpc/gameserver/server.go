package gameserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game"
	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
)

// Server implements KingdomServiceServer on top of a GameManager
type Server struct {
	gameManager *GameManager
}

var _ KingdomServiceServer = (*Server)(nil)

// NewServer creates a new game server
func NewServer(gm *GameManager) *Server {
	return &Server{gameManager: gm}
}

// GameManager returns the registry behind the server
func (s *Server) GameManager() *GameManager {
	return s.gameManager
}

// createGameWire carries rules as raw JSON so a request can override only
// some fields of the server's current rules.
type createGameWire struct {
	Players []game.PlayerSpec `json:"players"`
	Seed    uint64            `json:"seed,omitempty"`
	Rules   json.RawMessage   `json:"rules,omitempty"`
}

// CreateGame creates and starts a new game instance
func (s *Server) CreateGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var wire createGameWire
	if err := decodeRequest(in, &wire); err != nil {
		return nil, toStatus(err)
	}
	req := CreateGameRequest{Players: wire.Players, Seed: wire.Seed}
	if len(wire.Rules) > 0 {
		rules, err := s.mergeRules(wire.Rules)
		if err != nil {
			return nil, toStatus(err)
		}
		req.Rules = &rules
	}
	if err := validateCreateRequest(&req); err != nil {
		return nil, toStatus(err)
	}

	summary, err := s.gameManager.CreateGame(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create game")
		return nil, toStatus(err)
	}

	log.Info().
		Str("game_id", summary.GameID).
		Strs("players", summary.Players).
		Msg("Created new game")

	return encodeResponse(map[string]any{"game": summary})
}

// mergeRules overlays the request's rules on the server's current rules.
// A deck given in the request replaces the whole default deck.
func (s *Server) mergeRules(raw json.RawMessage) (game.Rules, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return game.Rules{}, fmt.Errorf("%w: rules: %v", errBadRequest, err)
	}

	rules := s.gameManager.Rules()
	if _, ok := fields["deck"]; ok {
		rules.Deck = nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rules); err != nil {
		return game.Rules{}, fmt.Errorf("%w: rules: %v", errBadRequest, err)
	}
	return rules, nil
}

// GetValidActions lists what a player may do right now
func (s *Server) GetValidActions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req playerRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if err := validateGameID(req.GameID); err != nil {
		return nil, toStatus(err)
	}

	actions, err := s.gameManager.ValidActions(req.GameID, req.PlayerID)
	if err != nil {
		return nil, toStatus(err)
	}
	if actions == nil {
		actions = []core.Action{}
	}
	return encodeResponse(map[string]any{"actions": actions})
}

// ApplyAction submits one action. Rejections become status errors whose code
// follows the rejection kind; accepted actions return the full result.
func (s *Server) ApplyAction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req applyActionRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if err := validateApplyRequest(&req); err != nil {
		return nil, toStatus(err)
	}

	res, err := s.gameManager.Apply(req.GameID, req.Action, req.IdempotencyKey)
	if err != nil {
		return nil, toStatus(err)
	}
	if !res.Success {
		log.Debug().
			Str("game_id", req.GameID).
			Str("action", req.Action.String()).
			Str("reason", res.Message).
			Msg("Action rejected")
		if res.Error != nil {
			return nil, status.Error(codeForKind(res.Error.Kind), res.Error.Error())
		}
		return nil, status.Error(codes.FailedPrecondition, res.Message)
	}
	return encodeResponse(map[string]any{"result": res})
}

// GetSnapshot returns the full game state
func (s *Server) GetSnapshot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req gameRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if err := validateGameID(req.GameID); err != nil {
		return nil, toStatus(err)
	}

	view, err := s.gameManager.Snapshot(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(view)
}

// ListGames returns a summary of every game in the registry
func (s *Server) ListGames(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req struct{}
	if err := decodeRequest(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(map[string]any{"games": s.gameManager.ListGames()})
}

// DeleteGame removes a game from the registry
func (s *Server) DeleteGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req gameRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if err := validateGameID(req.GameID); err != nil {
		return nil, toStatus(err)
	}

	if err := s.gameManager.DeleteGame(req.GameID); err != nil {
		return nil, toStatus(err)
	}
	return encodeResponse(map[string]any{"game_id": req.GameID, "deleted": true})
}

// RenderGame returns the plain-text board
func (s *Server) RenderGame(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	var req gameRequest
	if err := decodeRequest(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if err := validateGameID(req.GameID); err != nil {
		return nil, toStatus(err)
	}

	board, err := s.gameManager.Render(req.GameID)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(board), nil
}

// GetActiveGames returns the number of active games
func (s *Server) GetActiveGames() int {
	return s.gameManager.GetActiveGames()
}
