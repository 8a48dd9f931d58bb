package grpcapp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported next to the overall status.
const ServiceName = "swa-dashboard.Watcher"

type GrpcApp struct {
	log          *zap.Logger
	gRPCServer   *grpc.Server
	healthServer *health.Server
	addr         string
}

func New(log *zap.Logger, host string, port int) *GrpcApp {
	if log == nil {
		log = zap.NewNop()
	}
	addr := fmt.Sprintf("%s:%d", host, port)

	gRPCServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(log),
			loggingInterceptor(log),
		),
	)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gRPCServer, healthServer)

	reflection.Register(gRPCServer)

	return &GrpcApp{
		log:          log,
		gRPCServer:   gRPCServer,
		healthServer: healthServer,
		addr:         addr,
	}
}

func (a *GrpcApp) Run() error {
	const op = "grpcapp.Run"

	l, err := net.Listen("tcp", a.addr)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return a.Serve(l)
}

func (a *GrpcApp) Serve(l net.Listener) error {
	const op = "grpcapp.Serve"

	a.log.Info("gRPC server started", zap.String("addr", l.Addr().String()))

	if err := a.gRPCServer.Serve(l); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *GrpcApp) Stop() {
	a.log.Info("stopping gRPC server", zap.String("addr", a.addr))
	a.healthServer.Shutdown()
	a.gRPCServer.GracefulStop()
}

func (a *GrpcApp) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_SERVING
	if !serving {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	a.healthServer.SetServingStatus("", st)
	a.healthServer.SetServingStatus(ServiceName, st)
}

type servingSetter interface {
	SetServing(serving bool)
}

// HealthTracker flips the serving status after a run of invalid cycles.
type HealthTracker struct {
	mu             sync.Mutex
	log            *zap.Logger
	target         servingSetter
	unhealthyAfter int
	failures       int
	serving        bool
}

func NewHealthTracker(log *zap.Logger, target servingSetter, unhealthyAfter int) *HealthTracker {
	if log == nil {
		log = zap.NewNop()
	}
	if unhealthyAfter <= 0 {
		unhealthyAfter = 1
	}
	return &HealthTracker{
		log:            log,
		target:         target,
		unhealthyAfter: unhealthyAfter,
		serving:        true,
	}
}

func (h *HealthTracker) Observe(result models.CycleResult, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err == nil && result.Valid {
		h.failures = 0
		if !h.serving {
			h.serving = true
			h.target.SetServing(true)
			h.log.Info("watcher healthy again")
		}
		return
	}

	h.failures++
	if h.serving && h.failures >= h.unhealthyAfter {
		h.serving = false
		h.target.SetServing(false)
		h.log.Warn("watcher marked not serving", zap.Int("consecutive_failures", h.failures))
	}
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("duration", time.Since(start)),
		}

		if err != nil {
			log.Error("gRPC request failed", append(fields, zap.Error(err))...)
			return resp, err
		}

		log.Debug("gRPC request", fields...)
		return resp, nil
	}
}

func recoveryInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic recovered", zap.Any("panic", r), zap.String("method", info.FullMethod))
				err = status.Error(codes.Internal, "internal error")
			}
		}()

		return handler(ctx, req)
	}
}
