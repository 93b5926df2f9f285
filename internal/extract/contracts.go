package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/bill-scanner/constants"
)

// TextExtractor is Stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	Method     string // "pdf-text" | "pdf-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// UsedOCR reports whether the text came from the OCR fallback.
func (r TextExtractionResult) UsedOCR() bool {
	return r.Method == constants.MethodPDFOCR
}
