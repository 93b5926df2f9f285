package server

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/joseph-ayodele/bill-scanner/internal/repository"
)

// LedgerHealth pings the job ledger and mirrors the result into a gRPC health server.
type LedgerHealth struct {
	db      *repository.DB
	timeout time.Duration
	hs      *health.Server
	logger  *slog.Logger
}

func NewLedgerHealth(db *repository.DB, timeout time.Duration, logger *slog.Logger) *LedgerHealth {
	if logger == nil {
		logger = slog.Default()
	}
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return &LedgerHealth{db: db, timeout: timeout, hs: hs, logger: logger}
}

// Register attaches the health service to g.
func (h *LedgerHealth) Register(g *grpc.Server) {
	healthpb.RegisterHealthServer(g, h.hs)
}

// Check pings the ledger once and updates the serving status.
func (h *LedgerHealth) Check(ctx context.Context) error {
	err := repository.HealthCheck(ctx, h.db, h.timeout, h.logger)
	if err != nil {
		h.hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}
	h.hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Watch re-checks the ledger every interval until ctx is done.
func (h *LedgerHealth) Watch(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_ = h.Check(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING so clients drain before the listener closes.
func (h *LedgerHealth) Shutdown() {
	h.hs.Shutdown()
}
