package gameserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The service is described in code rather than generated from a .proto file.
// Every method takes and returns google.protobuf.Struct except RenderGame,
// which returns the board as a google.protobuf.StringValue.

const (
	KingdomServiceName = "kingdom.v1.KingdomService"
	kingdomProtoFile   = "kingdom/v1/kingdom.proto"

	KingdomService_CreateGame_FullMethodName      = "/kingdom.v1.KingdomService/CreateGame"
	KingdomService_GetValidActions_FullMethodName = "/kingdom.v1.KingdomService/GetValidActions"
	KingdomService_ApplyAction_FullMethodName     = "/kingdom.v1.KingdomService/ApplyAction"
	KingdomService_GetSnapshot_FullMethodName     = "/kingdom.v1.KingdomService/GetSnapshot"
	KingdomService_ListGames_FullMethodName       = "/kingdom.v1.KingdomService/ListGames"
	KingdomService_DeleteGame_FullMethodName      = "/kingdom.v1.KingdomService/DeleteGame"
	KingdomService_RenderGame_FullMethodName      = "/kingdom.v1.KingdomService/RenderGame"
)

// KingdomServiceServer is the server API for the kingdom service.
type KingdomServiceServer interface {
	CreateGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetValidActions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ApplyAction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListGames(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteGame(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderGame(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
}

type structCall func(KingdomServiceServer, context.Context, *structpb.Struct) (proto.Message, error)

func unaryHandler(method string, call structCall) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(KingdomServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(KingdomServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// KingdomService_ServiceDesc is the grpc.ServiceDesc for the kingdom service.
var KingdomService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: KingdomServiceName,
	HandlerType: (*KingdomServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateGame",
			Handler: unaryHandler(KingdomService_CreateGame_FullMethodName, func(s KingdomServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.CreateGame(ctx, in)
			}),
		},
		{
			MethodName: "GetValidActions",
			Handler: unaryHandler(KingdomService_GetValidActions_FullMethodName, func(s KingdomServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.GetValidActions(ctx, in)
			}),
		},
		{
			MethodName: "ApplyAction",
			Handler: unaryHandler(KingdomService_ApplyAction_FullMethodName, func(s KingdomServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.ApplyAction(ctx, in)
			}),
		},
		{
			MethodName: "GetSnapshot",
			Handler: unaryHandler(KingdomService_GetSnapshot_FullMethodName, func(s KingdomServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.GetSnapshot(ctx, in)
			}),
		},
		{
			MethodName: "ListGames",
			Handler: unaryHandler(KingdomService_ListGames_FullMethodName, func(s KingdomServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.ListGames(ctx, in)
			}),
		},
		{
			MethodName: "DeleteGame",
			Handler: unaryHandler(KingdomService_DeleteGame_FullMethodName, func(s KingdomServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.DeleteGame(ctx, in)
			}),
		},
		{
			MethodName: "RenderGame",
			Handler: unaryHandler(KingdomService_RenderGame_FullMethodName, func(s KingdomServiceServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
				return s.RenderGame(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: kingdomProtoFile,
}

// RegisterKingdomServiceServer registers srv with s.
func RegisterKingdomServiceServer(s grpc.ServiceRegistrar, srv KingdomServiceServer) {
	s.RegisterService(&KingdomService_ServiceDesc, srv)
}

// KingdomServiceClient is the client API for the kingdom service.
type KingdomServiceClient interface {
	CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetValidActions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ApplyAction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSnapshot(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListGames(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RenderGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type kingdomServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewKingdomServiceClient wraps a connection.
func NewKingdomServiceClient(cc grpc.ClientConnInterface) KingdomServiceClient {
	return &kingdomServiceClient{cc}
}

func (c *kingdomServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *kingdomServiceClient) CreateGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KingdomService_CreateGame_FullMethodName, in, opts)
}

func (c *kingdomServiceClient) GetValidActions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KingdomService_GetValidActions_FullMethodName, in, opts)
}

func (c *kingdomServiceClient) ApplyAction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KingdomService_ApplyAction_FullMethodName, in, opts)
}

func (c *kingdomServiceClient) GetSnapshot(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KingdomService_GetSnapshot_FullMethodName, in, opts)
}

func (c *kingdomServiceClient) ListGames(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KingdomService_ListGames_FullMethodName, in, opts)
}

func (c *kingdomServiceClient) DeleteGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, KingdomService_DeleteGame_FullMethodName, in, opts)
}

func (c *kingdomServiceClient) RenderGame(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, KingdomService_RenderGame_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// init registers a descriptor for the service so server reflection can
// describe it to tools such as grpcurl.
func init() {
	structType := ".google.protobuf.Struct"
	method := func(name, output string) *descriptorpb.MethodDescriptorProto {
		return &descriptorpb.MethodDescriptorProto{
			Name:       proto.String(name),
			InputType:  proto.String(structType),
			OutputType: proto.String(output),
		}
	}

	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String(kingdomProtoFile),
		Package: proto.String("kingdom.v1"),
		Dependency: []string{
			structpb.File_google_protobuf_struct_proto.Path(),
			wrapperspb.File_google_protobuf_wrappers_proto.Path(),
		},
		Syntax: proto.String("proto3"),
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("KingdomService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("CreateGame", structType),
				method("GetValidActions", structType),
				method("ApplyAction", structType),
				method("GetSnapshot", structType),
				method("ListGames", structType),
				method("DeleteGame", structType),
				method("RenderGame", ".google.protobuf.StringValue"),
			},
		}},
	}

	file, err := protodesc.NewFile(fd, protoregistry.GlobalFiles)
	if err != nil {
		panic("building kingdom service descriptor: " + err.Error())
	}
	if err := protoregistry.GlobalFiles.RegisterFile(file); err != nil {
		panic("registering kingdom service descriptor: " + err.Error())
	}
}
