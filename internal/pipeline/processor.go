package pipeline

import (
	"context"
	"log/slog"
)

// Processor runs the text stage and then the parse stage for one submission.
type Processor struct {
	Logger *slog.Logger
	Text   *TextStage
	Parse  *ParseStage
}

func NewProcessor(logger *slog.Logger, text *TextStage, parse *ParseStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Parse: parse}
}

// ExtractText runs only ingestion and OCR, for previewing the bill text.
func (p *Processor) ExtractText(ctx context.Context, filename string, document []byte) (TextOutcome, error) {
	out, err := p.Text.Run(ctx, filename, document)
	if err != nil {
		p.Logger.Error("processor.text.failed", "filename", filename, "job_id", out.JobID, "err", err)
	}
	return out, err
}

// Process validates the manual fields and runs all four stages.
// Validation happens first so an incomplete form never costs an OCR or model call.
func (p *Processor) Process(ctx context.Context, sub Submission) (*Outcome, error) {
	if err := sub.Manual.Validate(); err != nil {
		return nil, err
	}

	text, err := p.Text.Run(ctx, sub.Filename, sub.Document)
	out := &Outcome{TextOutcome: text}
	if err != nil {
		p.Logger.Error("processor.text.failed", "filename", sub.Filename, "job_id", text.JobID, "err", err)
		return out, err
	}

	if err := p.Parse.Run(ctx, text.JobID, text.Text.Text, sub.Prompt, sub.Manual, out); err != nil {
		p.Logger.Error("processor.parse.failed", "job_id", text.JobID, "err", err)
		return out, err
	}
	p.Logger.Info("processor.ok", "job_id", text.JobID, "parsed", out.Parsed, "rows", out.Rows)
	return out, nil
}
