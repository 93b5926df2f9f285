package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	_ "github.com/viant/afsc/gs"
	_ "github.com/viant/afsc/s3"

	"github.com/joseph-ayodele/bill-scanner/internal/app"
	"github.com/joseph-ayodele/bill-scanner/internal/async"
	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/ingest"
	"github.com/joseph-ayodele/bill-scanner/internal/pipeline"
	"github.com/joseph-ayodele/bill-scanner/internal/record"
	repo "github.com/joseph-ayodele/bill-scanner/internal/repository"
)

const drainGrace = 10 * time.Second

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir           = flag.String("dir", "", "directory of PDF bills to process (required)")
		out           = flag.String("out", "", "output XLSX file path (optional, defaults to <dir>/bill_data.xlsx)")
		appendRows    = flag.Bool("append", false, "append to an existing output file instead of starting fresh")
		includeHidden = flag.Bool("hidden", false, "include hidden files and directories")
		billSource    = flag.String("bill-source", "", "Bill Source for every row (required)")
		billGivenBy   = flag.String("bill-given-by", "", "Bill Given By for every row (required)")
		hodApproval   = flag.String("hod-approval", "", "HOD Approval for every row (required)")
		finalApproval = flag.String("final-approval", "", "Final Approval for every row (required)")
		perFile       = flag.Duration("timeout", 3*time.Minute, "deadline per bill")
		workers       = flag.Int("workers", 1, "bills processed in parallel; above 1, rows follow completion order")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	manual := record.ManualFields{
		BillSource:    *billSource,
		BillGivenBy:   *billGivenBy,
		HODApproval:   *hodApproval,
		FinalApproval: *finalApproval,
	}
	if err := manual.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if *out == "" {
		*out = filepath.Join(*dir, "bill_data.xlsx")
	}
	cfg.Sheet.Path = *out

	logger := app.NewLogger(cfg.Debug, os.Stdout)
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

	db, err := app.OpenLedger(ctx, cfg.Jobs, logger)
	if err != nil {
		logger.Error("failed to open job ledger", "error", err)
		os.Exit(1)
	}
	defer db.Close(logger)
	jobsRepo := repo.NewExtractJobRepository(db, logger)

	store := app.NewStore(cfg, logger)
	if !*appendRows {
		if err := store.Init(); err != nil {
			logger.Error("failed to reset output", "path", store.Path(), "error", err)
			os.Exit(1)
		}
	}

	gen, release, err := app.NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		logger.Error("failed to create model client", "error", err)
		os.Exit(1)
	}
	defer release()
	proc := app.NewProcessor(app.NewTextExtractor(cfg.OCR, logger), gen, store, jobsRepo, logger)

	paths, stats, err := ingest.FindDocuments(*dir, !*includeHidden)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("starting batch", "dir", *dir, "scanned", stats.Scanned, "matched", stats.Matched, "out", store.Path())

	var (
		mu       sync.Mutex
		unparsed uint32
	)
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(*workers),
		async.WithBaseContext(ctx),
		async.WithProcessTimeout(*perFile),
		async.WithResults(func(job async.Job, out *pipeline.Outcome, err error) {
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.Failed++
				logger.Error("bill failed", "path", job.ID, "error", err)
			case !out.Parsed:
				unparsed++
				logger.Warn("bill not parsed, no row written", "path", job.ID, "job_id", out.JobID)
			default:
				stats.Succeeded++
				logger.Info("bill saved", "path", job.ID, "job_id", out.JobID, "rows", out.Rows)
			}
		}),
	)

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			mu.Lock()
			stats.Failed++
			mu.Unlock()
			logger.Error("bill failed", "path", p, "error", err)
			continue
		}
		job := async.Job{ID: p, Submission: pipeline.Submission{
			Filename: filepath.Base(p),
			Document: data,
			Prompt:   cfg.LLM.PromptOverride,
			Manual:   manual,
		}}
		if err := queue.Enqueue(ctx, job); err != nil {
			logger.Error("enqueue failed", "path", p, "error", err)
			break
		}
	}
	// a signal cancels running bills and skips queued ones; stop waiting shortly after it
	drainCtx, cancelDrain := context.WithCancel(context.Background())
	context.AfterFunc(ctx, func() { time.AfterFunc(drainGrace, cancelDrain) })
	queue.Shutdown(drainCtx)
	cancelDrain()

	mu.Lock()
	defer mu.Unlock()
	logger.Info("batch complete",
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"unparsed", unparsed,
		"failed", stats.Failed,
		"out", store.Path(),
	)
	if stats.Failed > 0 {
		os.Exit(1)
	}
}
