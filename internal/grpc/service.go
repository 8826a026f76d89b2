package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Full method names of roles.v1.RoleService.
const (
	RoleServiceName        = "roles.v1.RoleService"
	RoleServiceSignIn      = "/roles.v1.RoleService/SignIn"
	RoleServiceResolveRole = "/roles.v1.RoleService/ResolveRole"
	RoleServiceWhoAmI      = "/roles.v1.RoleService/WhoAmI"
	RoleServiceListUsers   = "/roles.v1.RoleService/ListUsers"
	RoleServiceListAdmins  = "/roles.v1.RoleService/ListAdmins"
	healthCheckMethod      = "/grpc.health.v1.Health/Check"
	healthWatchMethod      = "/grpc.health.v1.Health/Watch"
)

// RoleServiceServer is the server API for roles.v1.RoleService.
// Messages are protobuf well-known types so no generated code is needed.
type RoleServiceServer interface {
	SignIn(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ResolveRole(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	WhoAmI(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListUsers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListAdmins(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
}

// RegisterRoleServiceServer registers srv on s.
func RegisterRoleServiceServer(s grpc.ServiceRegistrar, srv RoleServiceServer) {
	s.RegisterService(&roleServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(RoleServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RoleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RoleServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var roleServiceDesc = grpc.ServiceDesc{
	ServiceName: RoleServiceName,
	HandlerType: (*RoleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignIn", Handler: unaryHandler(RoleServiceSignIn, RoleServiceServer.SignIn)},
		{MethodName: "ResolveRole", Handler: unaryHandler(RoleServiceResolveRole, RoleServiceServer.ResolveRole)},
		{MethodName: "WhoAmI", Handler: unaryHandler(RoleServiceWhoAmI, RoleServiceServer.WhoAmI)},
		{MethodName: "ListUsers", Handler: unaryHandler(RoleServiceListUsers, RoleServiceServer.ListUsers)},
		{MethodName: "ListAdmins", Handler: unaryHandler(RoleServiceListAdmins, RoleServiceServer.ListAdmins)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "roles/v1/roles.proto",
}

// RoleServiceClient is a thin client for roles.v1.RoleService.
type RoleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRoleServiceClient wraps cc.
func NewRoleServiceClient(cc grpc.ClientConnInterface) *RoleServiceClient {
	return &RoleServiceClient{cc: cc}
}

func (c *RoleServiceClient) SignIn(ctx context.Context, idToken string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RoleServiceSignIn, wrapperspb.String(idToken), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RoleServiceClient) ResolveRole(ctx context.Context, address string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RoleServiceResolveRole, wrapperspb.String(address), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RoleServiceClient) WhoAmI(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RoleServiceWhoAmI, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RoleServiceClient) ListUsers(ctx context.Context, pageSize int, pageToken string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"page_size": pageSize, "page_token": pageToken})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, RoleServiceListUsers, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RoleServiceClient) ListAdmins(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, RoleServiceListAdmins, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
