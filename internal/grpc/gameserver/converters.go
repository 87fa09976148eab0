package gameserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/KingdomEngine/internal/game/core"
)

var errBadRequest = errors.New("bad request")

// decodeRequest converts a Struct request into out through its JSON form.
// Unknown fields are rejected.
func decodeRequest(in *structpb.Struct, out any) error {
	if in == nil {
		in = &structpb.Struct{}
	}
	b, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// encodeResponse converts any JSON-encodable object into a Struct.
func encodeResponse(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
	}
	return out, nil
}

// codeForKind maps an engine rejection kind to a gRPC status code
func codeForKind(kind core.ErrorKind) codes.Code {
	switch kind {
	case core.KindInvalidAction:
		return codes.FailedPrecondition
	case core.KindIllegalTarget:
		return codes.InvalidArgument
	case core.KindResourceExceeded:
		return codes.ResourceExhausted
	case core.KindStateCorruption:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// toStatus converts registry and engine errors into gRPC status errors
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var re *core.RuleError
	switch {
	case errors.Is(err, ErrGameNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrAtCapacity):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, errBadRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &re):
		return status.Error(codeForKind(re.Kind), err.Error())
	default:
		return status.Error(codes.InvalidArgument, err.Error())
	}
}
