package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"
	"google.golang.org/grpc"

	"github.com/joseph-ayodele/bill-scanner/internal/app"
	"github.com/joseph-ayodele/bill-scanner/internal/common"
	repo "github.com/joseph-ayodele/bill-scanner/internal/repository"
	"github.com/joseph-ayodele/bill-scanner/internal/server"
)

func main() {
	cfg := common.LoadConfig()
	logger := app.NewLogger(cfg.Debug, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.ResolveAPIKey(ctx); err != nil {
		logger.Error("failed to resolve model credential", "error", err)
		os.Exit(2)
	}
	if err := cfg.ResolveJobsDSN(ctx); err != nil {
		logger.Error("failed to resolve ledger dsn", "error", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	if cfg.Debug.GopsEnabled {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			logger.Warn("gops agent failed to start", "error", err)
		}
	}

	db, err := app.OpenLedger(ctx, cfg.Jobs, logger)
	if err != nil {
		logger.Error("failed to open job ledger", "error", err, "driver", cfg.Jobs.Driver)
		os.Exit(1)
	}
	defer db.Close(logger)
	jobsRepo := repo.NewExtractJobRepository(db, logger)

	store := app.NewStore(cfg, logger)
	// every session starts with an empty spreadsheet
	if err := store.Init(); err != nil {
		logger.Error("failed to reset spreadsheet", "path", store.Path(), "error", err)
		os.Exit(1)
	}

	gen, release, err := app.NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to create model client", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}
	defer release()

	proc := app.NewProcessor(app.NewTextExtractor(cfg.OCR, logger), gen, store, jobsRepo, logger)

	health := server.NewLedgerHealth(db, 3*time.Second, logger)
	if err := health.Check(ctx); err != nil {
		logger.Error("job ledger health check failed", "error", err)
		os.Exit(1)
	}
	go health.Watch(ctx, 30*time.Second)

	srv := server.New(server.Config{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		PromptOverride: cfg.LLM.PromptOverride,
	}, proc, store, jobsRepo, health, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var grpcServer *grpc.Server
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		grpcServer = grpc.NewServer()
		health.Register(grpcServer)
		logger.Info("grpc health listening", "addr", cfg.Server.GRPCAddr)
		go func() {
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC serve error", "error", err)
			}
		}()
	}

	logger.Info("bill-scanner listening",
		"addr", cfg.Server.HTTPAddr,
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model,
		"ocr_engine", cfg.OCR.Engine,
		"sheet", store.Path(),
	)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	health.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}
