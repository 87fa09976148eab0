package gameserver

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
)

const bufSize = 1024 * 1024

// setupTestServer creates an in-memory gRPC server for testing
func setupTestServer(t *testing.T, opts ...func(*Options)) (KingdomServiceClient, *GameManager) {
	t.Helper()
	gm := newTestManager(t, opts...)

	lis := bufconn.Listen(bufSize)
	s := grpc.NewServer()
	RegisterKingdomServiceServer(s, NewServer(gm))

	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("Server exited with error: %v", err)
		}
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		s.Stop()
		lis.Close()
	})
	return NewKingdomServiceClient(conn), gm
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	st, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return st
}

func playersField(n int) []any {
	out := make([]any, 0, n)
	for _, p := range fourPlayers()[:n] {
		out = append(out, map[string]any{"id": p.ID, "name": p.Name})
	}
	return out
}

func createOverGRPC(t *testing.T, client KingdomServiceClient, extra map[string]any) string {
	t.Helper()
	req := map[string]any{"players": playersField(4), "seed": 42}
	for k, v := range extra {
		req[k] = v
	}
	resp, err := client.CreateGame(context.Background(), mustStruct(t, req))
	require.NoError(t, err)
	id := resp.GetFields()["game"].GetStructValue().GetFields()["game_id"].GetStringValue()
	require.NotEmpty(t, id)
	return id
}

func action(kind core.ActionKind, player string, fields map[string]any) map[string]any {
	a := map[string]any{"kind": string(kind), "player_id": player}
	for k, v := range fields {
		a[k] = v
	}
	return a
}

func TestCreateGame_GRPC(t *testing.T) {
	client, gm := setupTestServer(t)
	ctx := context.Background()

	resp, err := client.CreateGame(ctx, mustStruct(t, map[string]any{"players": playersField(4), "seed": 7}))
	require.NoError(t, err)

	game := resp.GetFields()["game"].GetStructValue().GetFields()
	assert.Equal(t, "player_turn", game["phase"].GetStringValue())
	assert.Equal(t, float64(1), game["round"].GetNumberValue())
	assert.Equal(t, "p1", game["current_player_id"].GetStringValue())
	assert.Len(t, game["players"].GetListValue().GetValues(), 4)
	assert.Equal(t, 1, gm.GetActiveGames())
}

func TestCreateGameWithRuleOverrides(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()

	id := createOverGRPC(t, client, map[string]any{
		"rules": map[string]any{"max_rounds": map[string]any{"4": 5}},
	})

	snap, err := client.GetSnapshot(ctx, mustStruct(t, map[string]any{"game_id": id}))
	require.NoError(t, err)
	assert.Equal(t, float64(5), snap.GetFields()["max_rounds"].GetNumberValue())

	_, err = client.CreateGame(ctx, mustStruct(t, map[string]any{
		"players": playersField(4),
		"rules":   map[string]any{"recruit_block": 0},
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCreateGameErrors(t *testing.T) {
	client, _ := setupTestServer(t, func(o *Options) { o.MaxGames = 1 })
	ctx := context.Background()

	_, err := client.CreateGame(ctx, mustStruct(t, map[string]any{"players": playersField(3)}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.CreateGame(ctx, mustStruct(t, map[string]any{"players": playersField(4), "board": "big"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err), "unknown field")

	createOverGRPC(t, client, nil)
	_, err = client.CreateGame(ctx, mustStruct(t, map[string]any{"players": playersField(4)}))
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}

func TestApplyAction_GRPC(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createOverGRPC(t, client, nil)

	valid, err := client.GetValidActions(ctx, mustStruct(t, map[string]any{"game_id": id, "player_id": "p1"}))
	require.NoError(t, err)
	kinds := make(map[string]bool)
	for _, v := range valid.GetFields()["actions"].GetListValue().GetValues() {
		kinds[v.GetStructValue().GetFields()["kind"].GetStringValue()] = true
	}
	assert.True(t, kinds["end_turn"])
	assert.True(t, kinds["draw_card"])

	resp, err := client.ApplyAction(ctx, mustStruct(t, map[string]any{
		"game_id":         id,
		"action":          action(core.ActionEndTurn, "p1", nil),
		"idempotency_key": "turn-1",
	}))
	require.NoError(t, err)
	result := resp.GetFields()["result"].GetStructValue().GetFields()
	assert.True(t, result["success"].GetBoolValue())

	// The retry is answered from the cache
	_, err = client.ApplyAction(ctx, mustStruct(t, map[string]any{
		"game_id":         id,
		"action":          action(core.ActionEndTurn, "p1", nil),
		"idempotency_key": "turn-1",
	}))
	require.NoError(t, err)

	snap, err := client.GetSnapshot(ctx, mustStruct(t, map[string]any{"game_id": id}))
	require.NoError(t, err)
	assert.Equal(t, "p2", snap.GetFields()["current_player_id"].GetStringValue())
}

func TestApplyActionErrorCodes(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createOverGRPC(t, client, nil)

	tests := []struct {
		name string
		req  map[string]any
		code codes.Code
	}{
		{"unknown game", map[string]any{"game_id": "missing", "action": action(core.ActionEndTurn, "p1", nil)}, codes.NotFound},
		{"missing game id", map[string]any{"action": action(core.ActionEndTurn, "p1", nil)}, codes.InvalidArgument},
		{"unknown kind", map[string]any{"game_id": id, "action": action("dance", "p1", nil)}, codes.InvalidArgument},
		{"missing player", map[string]any{"game_id": id, "action": map[string]any{"kind": "end_turn"}}, codes.InvalidArgument},
		{"not your turn", map[string]any{"game_id": id, "action": action(core.ActionEndTurn, "p2", nil)}, codes.FailedPrecondition},
		{"unknown holding", map[string]any{"game_id": id, "action": action(core.ActionBuildFortification, "p1", map[string]any{"target": "atlantis"})}, codes.InvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.ApplyAction(ctx, mustStruct(t, tt.req))
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err), status.Convert(err).Message())
		})
	}
}

func TestListRenderAndDelete_GRPC(t *testing.T) {
	client, _ := setupTestServer(t)
	ctx := context.Background()
	id := createOverGRPC(t, client, nil)

	list, err := client.ListGames(ctx, &structpb.Struct{})
	require.NoError(t, err)
	games := list.GetFields()["games"].GetListValue().GetValues()
	require.Len(t, games, 1)
	assert.Equal(t, id, games[0].GetStructValue().GetFields()["game_id"].GetStringValue())

	board, err := client.RenderGame(ctx, mustStruct(t, map[string]any{"game_id": id}))
	require.NoError(t, err)
	assert.Contains(t, board.GetValue(), "King's Castle")
	assert.Contains(t, board.GetValue(), "Aldric")

	deleted, err := client.DeleteGame(ctx, mustStruct(t, map[string]any{"game_id": id}))
	require.NoError(t, err)
	assert.True(t, deleted.GetFields()["deleted"].GetBoolValue())

	_, err = client.DeleteGame(ctx, mustStruct(t, map[string]any{"game_id": id}))
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = client.RenderGame(ctx, mustStruct(t, map[string]any{"game_id": id}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestServiceDescriptorRegistered(t *testing.T) {
	desc, err := protoregistry.GlobalFiles.FindDescriptorByName(KingdomServiceName)
	require.NoError(t, err)

	svc, ok := desc.(protoreflect.ServiceDescriptor)
	require.True(t, ok)
	require.Equal(t, len(KingdomService_ServiceDesc.Methods), svc.Methods().Len())
	for _, m := range KingdomService_ServiceDesc.Methods {
		md := svc.Methods().ByName(protoreflect.Name(m.MethodName))
		require.NotNil(t, md, m.MethodName)
		assert.Equal(t, protoreflect.FullName("google.protobuf.Struct"), md.Input().FullName())
	}
	assert.Equal(t, protoreflect.FullName("google.protobuf.StringValue"),
		svc.Methods().ByName("RenderGame").Output().FullName())
}

func TestCodeForKind(t *testing.T) {
	assert.Equal(t, codes.FailedPrecondition, codeForKind(core.KindInvalidAction))
	assert.Equal(t, codes.InvalidArgument, codeForKind(core.KindIllegalTarget))
	assert.Equal(t, codes.ResourceExhausted, codeForKind(core.KindResourceExceeded))
	assert.Equal(t, codes.Internal, codeForKind(core.KindStateCorruption))
	assert.Equal(t, codes.Unknown, codeForKind("other"))
}
