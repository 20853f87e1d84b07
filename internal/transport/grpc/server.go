package grpc

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/example/faultchar/characterization/domain"
	"github.com/example/faultchar/characterization/driver"
)

const (
	// ServiceName is the fully qualified name of the executor service.
	ServiceName = "faultchar.v1.Executor"

	executeMethod = "/" + ServiceName + "/Execute"
)

// executorService is the server API of faultchar.v1.Executor.
type executorService interface {
	Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var executorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*executorService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Execute", Handler: executeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "faultchar/v1/executor.proto",
}

func executeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(executorService).Execute(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: executeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(executorService).Execute(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Server exposes a driver.Executor as faultchar.v1.Executor.
type Server struct {
	executor   driver.Executor
	model      *domain.TestModel
	logger     *zap.Logger
	health     *health.Server
	grpcServer *grpc.Server
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithModel rejects requests that are not full combinations of model.
func WithModel(model *domain.TestModel) ServerOption {
	return func(s *Server) {
		s.model = model
	}
}

// WithServerLogger sets the logger.
func WithServerLogger(logger *zap.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new gRPC server for executor.
func NewServer(executor driver.Executor, opts ...ServerOption) *Server {
	s := &Server{
		executor: executor,
		logger:   zap.NewNop(),
		health:   health.NewServer(),
	}

	// Apply options
	for _, opt := range opts {
		opt(s)
	}

	// Create gRPC server with interceptors
	s.grpcServer = grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(s.logger),
			RecoveryInterceptor(s.logger),
		),
	)

	s.grpcServer.RegisterService(&executorServiceDesc, s)
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return s
}

// Execute implements the Execute RPC.
func (s *Server) Execute(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c, err := decodeCombination(req)
	if err != nil {
		return nil, toStatus(err)
	}
	if s.model != nil {
		if err := s.model.ValidateCombination(c, true); err != nil {
			return nil, toStatus(err)
		}
	}

	result, err := s.executor.Execute(ctx, c)
	if err != nil {
		return nil, toStatus(err)
	}
	resp, err := encodeResult(result)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC executor listening", zap.String("addr", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// GracefulStop marks the service as not serving and gracefully stops the server.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}

// LoggingInterceptor returns a gRPC interceptor that logs requests and their duration.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("duration", time.Since(start)),
		}
		if err != nil {
			logger.Warn("gRPC call failed", append(fields, zap.Error(err))...)
		} else {
			logger.Debug("gRPC call", fields...)
		}
		return resp, err
	}
}

// RecoveryInterceptor returns a gRPC interceptor that recovers from panics.
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC panic recovered",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}
