// Package app assembles the bill pipeline from configuration for the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/extract"
	"github.com/joseph-ayodele/bill-scanner/internal/llm"
	"github.com/joseph-ayodele/bill-scanner/internal/llm/gemini"
	"github.com/joseph-ayodele/bill-scanner/internal/llm/openai"
	"github.com/joseph-ayodele/bill-scanner/internal/ocr"
	"github.com/joseph-ayodele/bill-scanner/internal/pipeline"
	"github.com/joseph-ayodele/bill-scanner/internal/repository"
	"github.com/joseph-ayodele/bill-scanner/internal/sheet"
)

// NewLogger builds the process logger from LOG_FORMAT and LOG_LEVEL.
func NewLogger(cfg common.DebugConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewTextExtractor wires the PDF text layer, the OCR fallback and the configured recognizer.
func NewTextExtractor(cfg common.OCRConfig, logger *slog.Logger) extract.TextExtractor {
	var opts []ocr.Option
	if cfg.Engine == "azure" {
		opts = append(opts, ocr.WithRecognizer(ocr.NewAzureRecognizer(cfg.AzureEndpoint, cfg.AzureKey)))
		logger.Info("ocr engine selected", "engine", "azure", "endpoint", cfg.AzureEndpoint)
	}
	x := ocr.NewExtractor(ocr.Config{
		Pdftoppm:      cfg.Pdftoppm,
		Tesseract:     cfg.Tesseract,
		TesseractLang: cfg.TesseractLang,
		TessdataDir:   cfg.TessdataDir,
		DPI:           cfg.DPI,
		Enhance:       cfg.Enhance,
	}, logger, opts...)
	return extract.NewOCRAdapter(x, logger)
}

// NewGenerator returns the hosted-model client for the configured provider and a release func.
func NewGenerator(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.Generator, func(), error) {
	switch cfg.Provider {
	case "openai":
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		return c, func() {}, nil
	case "", "gemini":
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, func() {
			if err := c.Close(); err != nil {
				logger.Warn("close gemini client", "error", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// NewStore returns the spreadsheet store, mirrored to MIRROR_URL when one is configured.
func NewStore(cfg *common.Config, logger *slog.Logger) *sheet.Store {
	var opts []sheet.Option
	if u := strings.TrimSpace(cfg.Mirror.URL); u != "" {
		opts = append(opts, sheet.WithMirror(sheet.NewMirror(u, logger)))
		logger.Info("spreadsheet mirror enabled", "url", u)
	}
	return sheet.NewStore(cfg.Sheet.Path, cfg.Sheet.SheetName, logger, opts...)
}

// OpenLedger connects the job ledger.
func OpenLedger(ctx context.Context, cfg common.JobsConfig, logger *slog.Logger) (*repository.DB, error) {
	return repository.Open(ctx, repository.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxConns:        10,
		MaxConnLifetime: 30 * time.Minute,
		DialTimeout:     5 * time.Second,
	}, logger)
}

// NewProcessor assembles the text and parse stages.
func NewProcessor(tx extract.TextExtractor, gen llm.Generator, store *sheet.Store, jobs repository.ExtractJobRepository, logger *slog.Logger) *pipeline.Processor {
	return pipeline.NewProcessor(logger,
		pipeline.NewTextStage(jobs, tx, logger),
		pipeline.NewParseStage(gen, store, jobs, logger),
	)
}
