package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceDesc describes DraftService for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DraftServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: emptyHandler("GetState", DraftServiceServer.GetState)},
		{MethodName: "AddPlayer", Handler: addPlayerHandler},
		{MethodName: "StartDraft", Handler: emptyHandler("StartDraft", DraftServiceServer.StartDraft)},
		{MethodName: "Spin", Handler: emptyHandler("Spin", DraftServiceServer.Spin)},
		{MethodName: "AutoFinish", Handler: emptyHandler("AutoFinish", DraftServiceServer.AutoFinish)},
		{MethodName: "GetRoster", Handler: emptyHandler("GetRoster", DraftServiceServer.GetRoster)},
		{MethodName: "Reset", Handler: resetHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "teamdraft/draft.proto",
}

type methodHandler = func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error)

// emptyHandler adapts the Empty -> Struct methods
func emptyHandler(name string, call func(DraftServiceServer, context.Context, *emptypb.Empty) (*structpb.Struct, error)) methodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(emptypb.Empty)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DraftServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DraftServiceServer), ctx, req.(*emptypb.Empty))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func addPlayerHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DraftServiceServer).AddPlayer(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/AddPlayer"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DraftServiceServer).AddPlayer(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func resetHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DraftServiceServer).Reset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Reset"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DraftServiceServer).Reset(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Client is a DraftService client over a grpc.ClientConnInterface
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invokeStruct(ctx context.Context, method string, in any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetState calls DraftService.GetState
func (c *Client) GetState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "GetState", &emptypb.Empty{}, opts...)
}

// AddPlayer calls DraftService.AddPlayer
func (c *Client) AddPlayer(ctx context.Context, player *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "AddPlayer", player, opts...)
}

// StartDraft calls DraftService.StartDraft
func (c *Client) StartDraft(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "StartDraft", &emptypb.Empty{}, opts...)
}

// Spin calls DraftService.Spin
func (c *Client) Spin(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "Spin", &emptypb.Empty{}, opts...)
}

// AutoFinish calls DraftService.AutoFinish
func (c *Client) AutoFinish(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "AutoFinish", &emptypb.Empty{}, opts...)
}

// GetRoster calls DraftService.GetRoster
func (c *Client) GetRoster(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, "GetRoster", &emptypb.Empty{}, opts...)
}

// Reset calls DraftService.Reset
func (c *Client) Reset(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, "/"+ServiceName+"/Reset", &emptypb.Empty{}, new(emptypb.Empty), opts...)
}
