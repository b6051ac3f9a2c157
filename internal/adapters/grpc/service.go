package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/quentinrf/darkwatt/internal/messaging"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "darkwatt.v1.LuminanceService"

// LuminanceServiceServer is the server API for LuminanceService.
type LuminanceServiceServer interface {
	Handle(ctx context.Context, req messaging.Request) (messaging.Response, error)
	Subscribe(req *SubscribeRequest, stream grpc.ServerStream) error
}

// SubscribeRequest opens a change stream. It carries no options yet.
type SubscribeRequest struct{}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// unary builds the method descriptor for one request variant. Req is decoded
// from the wire and handed to the server's single Handle entry point.
func unary[Req messaging.Request](name string) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			s := srv.(LuminanceServiceServer)
			if interceptor == nil {
				return s.Handle(ctx, *req)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return s.Handle(ctx, *req.(*Req))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

func subscribeHandler(srv any, stream grpc.ServerStream) error {
	req := new(SubscribeRequest)
	if err := stream.RecvMsg(req); err != nil {
		return err
	}
	return srv.(LuminanceServiceServer).Subscribe(req, stream)
}

// ServiceDesc describes LuminanceService for grpc.Server.RegisterService.
// There is no .proto file behind it, so it carries no Metadata: reflection
// lists the service name but cannot describe its messages.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LuminanceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary[messaging.GetData]("GetData"),
		unary[messaging.GetLatest]("GetLatest"),
		unary[messaging.GetRangeAverage]("GetRangeAverage"),
		unary[messaging.GetDayAverage]("GetDayAverage"),
		unary[messaging.GetHistory]("GetHistory"),
		unary[messaging.GetTotalTrackedSites]("GetTotalTrackedSites"),
		unary[messaging.FocusChanged]("FocusChanged"),
		unary[messaging.ReportTheme]("ReportTheme"),
		unary[messaging.ClassifyDocument]("ClassifyDocument"),
		unary[messaging.LoadConfig]("LoadConfig"),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "Subscribe",
			Handler:       subscribeHandler,
			ServerStreams: true,
		},
	},
}

// RegisterLuminanceServiceServer registers srv on s.
func RegisterLuminanceServiceServer(s grpc.ServiceRegistrar, srv LuminanceServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
