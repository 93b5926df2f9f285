package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/bill-scanner/constants"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300

	// Enhance runs grayscale/contrast/sharpen over each rendered page before recognition.
	Enhance bool
}

type ExtractionResult struct {
	Text       string
	Pages      int
	Method     string // constants.MethodPDFText | constants.MethodPDFOCR
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// textLayerFunc reads the embedded text of a PDF, one entry per page.
type textLayerFunc func(path string) ([]string, error)

type Extractor struct {
	cfg        Config
	runner     Runner
	recognizer Recognizer
	textLayer  textLayerFunc
	logger     *slog.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithRunner replaces the command runner used for rasterization.
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithRecognizer replaces the page recognizer (tesseract by default).
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) { e.recognizer = r }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, runner: ExecRunner{Logger: logger}, textLayer: pdfPageTexts, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	if e.recognizer == nil {
		e.recognizer = NewTesseractRecognizer(e.runner, cfg.Tesseract, cfg.TesseractLang, cfg.TessdataDir)
	}
	return e
}

// Extract reads the PDF text layer and falls back to OCR only when it is blank.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if constants.MapExtToFormat(ext) != constants.PDF {
		e.logger.Error("unsupported ocr extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}

	pages, err := e.textLayer(path)
	if err != nil {
		e.logger.Error("pdf text layer failed", "path", path, "error", err)
		return ExtractionResult{Duration: time.Since(start)}, fmt.Errorf("read pdf text: %w", err)
	}
	text := joinPages(pages)
	if strings.TrimSpace(text) != "" {
		e.logger.Debug("pdf text layer ok", "path", path, "pages", len(pages), "chars", len(text))
		return ExtractionResult{
			Text:       text,
			Pages:      len(pages),
			Method:     constants.MethodPDFText,
			Duration:   time.Since(start),
			Confidence: 1.0,
		}, nil
	}

	e.logger.Info("pdf has no text layer, running ocr", "path", path, "pages", len(pages))
	res, err := e.pdfToOCR(ctx, path)
	res.Duration = time.Since(start)
	return res, err
}

// joinPages appends each non-empty page followed by a newline.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteString("\n")
	}
	return b.String()
}
