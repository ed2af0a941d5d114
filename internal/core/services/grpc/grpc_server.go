package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lcalzada-xor/biowatch/internal/core/domain"
	"github.com/lcalzada-xor/biowatch/internal/core/ports"
)

const ServiceName = "biowatch.RatingService"

// Full method names
const (
	VerifyRatingMethod     = "/" + ServiceName + "/VerifyRating"
	VerifyAllRatingsMethod = "/" + ServiceName + "/VerifyAllRatings"
	GetConfigurationMethod = "/" + ServiceName + "/GetConfiguration"
)

// Verification is the verify-then-audit flow shared with the HTTP API.
type Verification interface {
	Verify(ctx context.Context, vulnerabilityID int64, userID string) (domain.RatingVerificationResult, error)
	VerifyAll(ctx context.Context, userID string) (domain.VerificationSummary, error)
}

// RatingServiceServer is the server API for biowatch.RatingService. Messages
// are google.protobuf.Struct values carrying the same camelCase fields as the
// HTTP API.
type RatingServiceServer interface {
	VerifyRating(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyAllRatings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetConfiguration(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// GrpcServer implements RatingServiceServer
type GrpcServer struct {
	verification Verification
	configs      ports.ConfigurationService
}

// NewGrpcServer builds a grpc.Server with the rating service registered.
func NewGrpcServer(verification Verification, configs ports.ConfigurationService, logger *slog.Logger) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(loggingInterceptor(logger)))
	RegisterRatingServiceServer(s, &GrpcServer{verification: verification, configs: configs})
	return s
}

func (s *GrpcServer) VerifyRating(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, ok := numberField(req, "vulnerabilityId")
	if !ok || id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "vulnerabilityId is required")
	}

	result, err := s.verification.Verify(ctx, int64(id), stringField(req, "userId"))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if result.Failed() {
		code := codes.FailedPrecondition
		if result.Error == domain.VerificationErrNotFound {
			code = codes.NotFound
		}
		return nil, status.Error(code, result.Error)
	}
	return toStruct(result)
}

func (s *GrpcServer) VerifyAllRatings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	summary, err := s.verification.VerifyAll(ctx, stringField(req, "userId"))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(summary)
}

func (s *GrpcServer) GetConfiguration(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cfg, err := s.configs.Get(ctx, stringField(req, "userId"))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return toStruct(cfg)
}

// RegisterRatingServiceServer registers srv on s.
func RegisterRatingServiceServer(s grpc.ServiceRegistrar, srv RatingServiceServer) {
	s.RegisterService(&RatingServiceDesc, srv)
}

// RatingServiceDesc is the grpc.ServiceDesc for biowatch.RatingService.
var RatingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RatingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "VerifyRating",
			Handler: unaryHandler(VerifyRatingMethod, func(srv RatingServiceServer) unaryFunc {
				return srv.VerifyRating
			}),
		},
		{
			MethodName: "VerifyAllRatings",
			Handler: unaryHandler(VerifyAllRatingsMethod, func(srv RatingServiceServer) unaryFunc {
				return srv.VerifyAllRatings
			}),
		},
		{
			MethodName: "GetConfiguration",
			Handler: unaryHandler(GetConfigurationMethod, func(srv RatingServiceServer) unaryFunc {
				return srv.GetConfiguration
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "biowatch/rating.proto",
}

type unaryFunc func(context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, pick func(RatingServiceServer) unaryFunc) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		call := pick(srv.(RatingServiceServer))
		if interceptor == nil {
			return call(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("gRPC request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		)
		return resp, err
	}
}

// toStruct converts a JSON-tagged value to a Struct so gRPC and HTTP share field names.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// FromStruct decodes a response Struct into a JSON-tagged value.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return errors.New("nil struct")
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func numberField(s *structpb.Struct, key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, false
	}
	return n.NumberValue, true
}

func stringField(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	return s.GetFields()[key].GetStringValue()
}
