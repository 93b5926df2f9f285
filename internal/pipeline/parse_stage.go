package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-scanner/internal/llm"
	"github.com/joseph-ayodele/bill-scanner/internal/record"
	"github.com/joseph-ayodele/bill-scanner/internal/repository"
	"github.com/joseph-ayodele/bill-scanner/internal/sheet"
)

// ParseStage asks the model for the bill fields, merges the manual fields, and appends the row.
type ParseStage struct {
	Generator llm.Generator
	Store     *sheet.Store
	JobsRepo  repository.ExtractJobRepository
	Logger    *slog.Logger
}

func NewParseStage(gen llm.Generator, store *sheet.Store, jobs repository.ExtractJobRepository, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Generator: gen, Store: store, JobsRepo: jobs, Logger: logger}
}

// Run fills the model-related fields of out. An unparsable answer is not an error.
func (p *ParseStage) Run(ctx context.Context, jobID uuid.UUID, text, prompt string, manual record.ManualFields, out *Outcome) error {
	start := time.Now()

	resp, err := p.Generator.Generate(ctx, llm.BuildPrompt(llm.ResolvePrompt(prompt), text))
	if err != nil {
		p.finishFailure(ctx, jobID, err.Error())
		return err
	}
	out.Model = resp.Model

	rec, cleaned, err := llm.ParseRecord(resp.Text)
	out.Raw = cleaned
	if errors.Is(err, llm.ErrUnparsable) {
		p.Logger.Warn("pipeline.parse.unparsed", "job_id", jobID, "model", resp.Model, "error", err)
		if err := p.JobsRepo.FinishUnparsed(ctx, jobID, resp.Model, cleaned); err != nil {
			p.Logger.Warn("ledger update failed", "job_id", jobID, "error", err)
		}
		out.Notices = append(out.Notices, Notice{Level: NoticeWarning, Message: "Could not parse as JSON, showing raw output."})
		return nil
	}
	if err != nil {
		p.finishFailure(ctx, jobID, err.Error())
		return err
	}

	manual.Apply(rec)
	row, err := record.Flatten(rec)
	if err != nil {
		p.finishFailure(ctx, jobID, err.Error())
		return fmt.Errorf("flatten record: %w", err)
	}
	tbl, err := p.Store.Append(ctx, row)
	if err != nil {
		p.finishFailure(ctx, jobID, err.Error())
		return fmt.Errorf("append row: %w", err)
	}

	out.Parsed = true
	out.Record = rec
	out.Row = row
	out.Columns = tbl.Columns
	out.Rows = len(tbl.Rows)
	out.Saved = p.Store.Path()
	out.Notices = append(out.Notices,
		Notice{Level: NoticeSuccess, Message: "Data extracted from the model."},
		Notice{Level: NoticeInfo, Message: fmt.Sprintf("Data saved to '%s'", p.Store.Path())},
	)

	extracted, err := rec.MarshalJSON()
	if err != nil {
		p.Logger.Warn("marshal record for ledger", "job_id", jobID, "error", err)
	}
	if err := p.JobsRepo.FinishParsed(ctx, jobID, resp.Model, extracted, out.Rows); err != nil {
		p.Logger.Warn("ledger update failed", "job_id", jobID, "error", err)
	}
	p.Logger.Info("pipeline.parse.ok",
		"job_id", jobID,
		"model", resp.Model,
		"fields", rec.Len(),
		"sheet_rows", out.Rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (p *ParseStage) finishFailure(ctx context.Context, jobID uuid.UUID, msg string) {
	if err := p.JobsRepo.FinishFailure(ctx, jobID, msg); err != nil {
		p.Logger.Warn("ledger update failed", "job_id", jobID, "error", err)
	}
}
