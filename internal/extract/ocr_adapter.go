package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/bill-scanner/internal/ocr"
)

type OCRAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewOCRAdapter(e *ocr.Extractor, logger *slog.Logger) *OCRAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRAdapter{e: e, logger: logger}
}

func (a *OCRAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.e.Extract(ctx, path)
	if err == nil && len(r.Warnings) > 0 {
		a.logger.Warn("text extraction warnings", "path", path, "warnings", r.Warnings)
	}
	return TextExtractionResult{
		Text:       r.Text,
		Pages:      r.Pages,
		Method:     r.Method,
		Language:   r.Language,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
		Confidence: r.Confidence,
	}, err
}
