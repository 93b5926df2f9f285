package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/bill-scanner/constants"
	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/extract"
	"github.com/joseph-ayodele/bill-scanner/internal/ingest"
	"github.com/joseph-ayodele/bill-scanner/internal/repository"
)

// TextStage stages the upload, opens a ledger job, and extracts the bill text.
type TextStage struct {
	JobsRepo      repository.ExtractJobRepository
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewTextStage(jobs repository.ExtractJobRepository, tx extract.TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{JobsRepo: jobs, TextExtractor: tx, Logger: logger}
}

// Run returns ErrNoText when neither the text layer nor OCR yields anything.
// The staged temp file is removed before Run returns.
func (s *TextStage) Run(ctx context.Context, filename string, document []byte) (TextOutcome, error) {
	var out TextOutcome

	up, err := ingest.Stage(filename, document)
	if err != nil {
		if errors.Is(err, ingest.ErrUnsupportedExt) {
			return out, common.NewAppError("INVALID_INPUT", "only PDF bills are accepted", errors.Join(common.ErrInvalidInput, err))
		}
		return out, common.NewAppError("INVALID_INPUT", "could not stage upload", errors.Join(common.ErrInvalidInput, err))
	}
	defer func() {
		if err := up.Cleanup(); err != nil {
			s.Logger.Warn("failed to remove staged upload", "path", up.Path, "error", err)
		}
	}()
	out.DocHash = up.HashHex

	job, err := s.JobsRepo.Start(ctx, filename, up.HashHex, constants.MapExtToFormat(up.Ext))
	if err != nil {
		return out, err
	}
	out.JobID = job.ID

	res, err := s.TextExtractor.Extract(ctx, up.Path)
	if err != nil {
		s.finishFailure(ctx, out, err.Error())
		return out, fmt.Errorf("extract text: %w", err)
	}
	out.Text = res
	if res.UsedOCR() {
		out.Notices = append(out.Notices, Notice{Level: NoticeWarning, Message: "No text found in the PDF. Ran OCR."})
	}
	if strings.TrimSpace(res.Text) == "" {
		s.finishFailure(ctx, out, common.ErrNoText.Error())
		return out, common.ErrNoText
	}

	if err := s.JobsRepo.FinishText(ctx, job.ID, res.Method, res.Pages, res.Confidence); err != nil {
		s.Logger.Warn("ledger update failed", "job_id", job.ID, "error", err)
	}
	s.Logger.Info("pipeline.text.ok",
		"job_id", job.ID,
		"filename", filename,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return out, nil
}

func (s *TextStage) finishFailure(ctx context.Context, out TextOutcome, msg string) {
	if err := s.JobsRepo.FinishFailure(ctx, out.JobID, msg); err != nil {
		s.Logger.Warn("ledger update failed", "job_id", out.JobID, "error", err)
	}
}
