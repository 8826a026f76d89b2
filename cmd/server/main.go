package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"orderingRoles/internal/allowlist"
	"orderingRoles/internal/config"
	"orderingRoles/internal/db"
	grpcserver "orderingRoles/internal/grpc"
	"orderingRoles/repository"
)

func main() {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)

	cfg, err := config.LoadWithDefaults()
	if err != nil {
		level.Error(logger).Log("msg", "load config", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "configuration loaded", "config", cfg)

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		level.Error(logger).Log("msg", "open db", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := d.Close(); err != nil {
			level.Warn(logger).Log("msg", "close db", "err", err)
		}
	}()

	src, closeSrc, err := allowlist.NewSource(cfg.Admins, repository.NewAdminRepository(d))
	if err != nil {
		level.Error(logger).Log("msg", "allow-list source", "err", err)
		os.Exit(1)
	}
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 5*time.Second)
	resolver, err := allowlist.Build(loadCtx, src)
	cancelLoad()
	_ = closeSrc()
	if err != nil {
		level.Error(logger).Log("msg", "build resolver", "source", cfg.Admins.Source, "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "allow-list loaded", "source", cfg.Admins.Source, "admins", len(resolver.Admins()))

	shutdown, err := grpcserver.StartGRPC(cfg, repository.NewUserRepository(d), resolver, logger)
	if err != nil {
		level.Error(logger).Log("msg", "start grpc", "err", err)
		os.Exit(1)
	}
	level.Info(logger).Log("msg", "gRPC server listening", "addr", cfg.GRPC.Address)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		level.Warn(logger).Log("msg", "shutdown error", "err", err)
	}
	level.Info(logger).Log("msg", "server stopped")
}
