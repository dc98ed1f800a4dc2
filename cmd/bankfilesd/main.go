package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/ingest"
	"github.com/joseph-ayodele/bankfiles/internal/layout"
	"github.com/joseph-ayodele/bankfiles/internal/render"
	"github.com/joseph-ayodele/bankfiles/internal/repository"
	"github.com/joseph-ayodele/bankfiles/internal/server"
	"github.com/joseph-ayodele/bankfiles/internal/services/export"
	ingestsvc "github.com/joseph-ayodele/bankfiles/internal/services/ingest"
	"github.com/joseph-ayodele/bankfiles/internal/services/layouts"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbResult, err := server.InitDatabase(ctx, cfg, false, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbResult.Cleanup()
	db := dbResult.DB

	if err := server.PingDB(ctx, db, logger, cfg.Database.DialTimeout); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database health OK")

	// Wire repositories and services
	configs := repository.NewConfigurationRepository(db, logger)
	templates := repository.NewTemplateRepository(db, logger)
	records := repository.NewRecordRepository(db, logger)
	layoutSvc := layouts.NewService(configs, layout.NewCounter(), logger)

	wd, _ := os.Getwd()
	renderer := render.NewRenderer(templates, records, render.NewHTTPFetcher(cfg.Render.FetchTimeout, wd, logger), logger)

	// gRPC server
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.RequestContextInterceptor(logger)))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(server.ServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(grpcServer)

	server.RegisterLayoutServiceServer(grpcServer, server.NewLayoutServer(layoutSvc, renderer, logger))

	if cfg.Ingest.Enabled() {
		ing := ingestsvc.NewService(
			ingest.NewFSIngestor(repository.NewBankFileRepository(db, logger), logger),
			layoutSvc, export.NewService(logger), cfg.Ingest.ExportDir, logger,
		)
		go func() {
			err := ing.Watch(ctx, cfg.Ingest.BankID, cfg.Ingest.WatchDir, ingest.WatchConfig{
				InitialScan: true,
				Debounce:    cfg.Ingest.Debounce,
			})
			if err != nil {
				logger.Error("drop folder watcher stopped", "error", err)
			}
		}()
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("gRPC serving", "addr", cfg.Server.GRPCAddr)

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	hs.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("stopped")
}
