package grpcserver

import (
	"context"
	"net"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"orderingRoles/internal/auth"
	"orderingRoles/internal/config"
	"orderingRoles/internal/role"
	"orderingRoles/repository"
)

// NewServer builds a gRPC server with logging and auth interceptors, the
// RoleService and the standard health service. SignIn (which verifies its own
// ID token) and health skip session authentication.
func NewServer(cfg *config.Config, users repository.UserRepositoryI, resolver *role.Resolver, logger log.Logger) *grpc.Server {
	if cfg == nil {
		panic("config is required")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		loggingInterceptor(logger),
		auth.NewUnaryAuthInterceptor(cfg.Auth.JWTSecret, healthCheckMethod, healthWatchMethod, RoleServiceSignIn),
	))

	RegisterRoleServiceServer(srv, &Server{
		Users:    users,
		Resolver: resolver,
		Issuer:   auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Verifier: auth.NewIDTokenVerifier(cfg.Auth.IDPSecret, cfg.Auth.IDPIssuer),
		Logger:   logger,
	})

	hs := health.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(RoleServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)

	return srv
}

// StartGRPC starts the gRPC server on the configured address and returns a shutdown function.
func StartGRPC(cfg *config.Config, users repository.UserRepositoryI, resolver *role.Resolver, logger log.Logger) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}
	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	// Plaintext; terminate TLS in front of the service.
	srv := NewServer(cfg, users, resolver, logger)
	go func() {
		if err := srv.Serve(lis); err != nil {
			level.Error(logger).Log("msg", "gRPC server error", "err", err)
		}
	}()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}

func loggingInterceptor(logger log.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		lvl := level.Debug
		if err != nil {
			lvl = level.Warn
		}
		lvl(logger).Log("msg", "rpc", "method", info.FullMethod, "code", code.String(), "took", time.Since(start))
		return resp, err
	}
}
