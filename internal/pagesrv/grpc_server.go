package pagesrv

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/GoSim-25-26J-441/webgraph/internal/metrics"
	"github.com/GoSim-25-26J-441/webgraph/internal/webgraph"
	"github.com/GoSim-25-26J-441/webgraph/pkg/logger"
	"github.com/GoSim-25-26J-441/webgraph/pkg/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	PageServiceName = "webgraph.v1.PageService"
	getPageMethod   = "/" + PageServiceName + "/GetPage"
	getStatsMethod  = "/" + PageServiceName + "/GetStats"
)

// PageServiceServer is the server API for the page service. Messages are protobuf
// well-known types: page ids travel as StringValue and bodies as Struct with the
// same fields as the HTTP API.
type PageServiceServer interface {
	GetPage(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// PageServiceDesc describes the page service for grpc.Server.RegisterService.
var PageServiceDesc = grpc.ServiceDesc{
	ServiceName: PageServiceName,
	HandlerType: (*PageServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetPage", Handler: getPageHandler},
		{MethodName: "GetStats", Handler: getStatsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "webgraph/v1/page_service.proto",
}

// RegisterPageServiceServer registers srv on s.
func RegisterPageServiceServer(s grpc.ServiceRegistrar, srv PageServiceServer) {
	s.RegisterService(&PageServiceDesc, srv)
}

func getPageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PageServiceServer).GetPage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getPageMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PageServiceServer).GetPage(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getStatsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PageServiceServer).GetStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getStatsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PageServiceServer).GetStats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// PageGRPCServer implements PageServiceServer over a Simulator.
type PageGRPCServer struct {
	resolver
}

// NewPageGRPCServer creates a PageGRPCServer.
func NewPageGRPCServer(sim *webgraph.Simulator, collector *metrics.Collector) *PageGRPCServer {
	return &PageGRPCServer{resolver: resolver{sim: sim, collector: collector}}
}

func (s *PageGRPCServer) GetPage(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil || req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "page id is required")
	}
	id := models.PageID(req.GetValue())
	requestedAt := time.Now()
	res, ok := s.resolve(ctx, id)
	if !ok {
		return nil, status.FromContextError(ctx.Err()).Err()
	}
	switch res.Outcome {
	case webgraph.NotFound:
		return nil, status.Errorf(codes.NotFound, "page %s not found", id)
	case webgraph.SimulatedFailure:
		return nil, status.Errorf(codes.Unavailable, "simulated failure for page %s", id)
	}
	return toStruct(pageBody(s.sim.Site(), res, requestedAt))
}

func (s *PageGRPCServer) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(statsBody(s.sim.Site(), s.collector))
}

// toStruct converts a JSON-encodable body to a Struct through its JSON form, so both
// transports share one encoding.
func toStruct(body map[string]any) (*structpb.Struct, error) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("failed to encode response", "error", err)
		return nil, status.Error(codes.Internal, "encode response")
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("decode response: %v", err))
	}
	return out, nil
}

// PageServiceClient calls the page service.
type PageServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPageServiceClient creates a client on cc.
func NewPageServiceClient(cc grpc.ClientConnInterface) *PageServiceClient {
	return &PageServiceClient{cc: cc}
}

// GetPage fetches one page.
func (c *PageServiceClient) GetPage(ctx context.Context, id models.PageID, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getPageMethod, wrapperspb.String(string(id)), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetStats fetches graph and lookup statistics.
func (c *PageServiceClient) GetStats(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getStatsMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
