package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "bankfiles.v1.LayoutService"

// LayoutServiceServer is the server API for the layout service. Requests and
// responses are generic Structs keyed by snake_case field names.
type LayoutServiceServer interface {
	DetectKind(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateConfiguration(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetConfiguration(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractRecords(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RenderSlip(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

// FullMethod returns the full method name used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary[Resp any](method string, call func(LayoutServiceServer, context.Context, *structpb.Struct) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(LayoutServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(LayoutServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// LayoutServiceDesc describes the layout service for grpc.ServiceRegistrar.
var LayoutServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LayoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("DetectKind", LayoutServiceServer.DetectKind),
		unary("GenerateConfiguration", LayoutServiceServer.GenerateConfiguration),
		unary("GetConfiguration", LayoutServiceServer.GetConfiguration),
		unary("ExtractRecords", LayoutServiceServer.ExtractRecords),
		unary("RenderSlip", LayoutServiceServer.RenderSlip),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterLayoutServiceServer(s grpc.ServiceRegistrar, srv LayoutServiceServer) {
	s.RegisterService(&LayoutServiceDesc, srv)
}
