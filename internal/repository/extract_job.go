package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-scanner/constants"
	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/entity"
)

const extractJobTable = "extract_job"

// fixed-width UTC timestamps so TEXT ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var extractJobColumns = []string{
	"id", "filename", "doc_hash", "format", "status", "method", "pages",
	"extraction_confidence", "model_name", "extracted_json", "raw_response",
	"sheet_row", "error_message", "started_at", "finished_at",
}

type ExtractJobRepository interface {
	Start(ctx context.Context, filename, docHash, format string) (*entity.ExtractJob, error)
	FinishText(ctx context.Context, jobID uuid.UUID, method string, pages int, confidence float32) error
	FinishParsed(ctx context.Context, jobID uuid.UUID, modelName string, extracted json.RawMessage, sheetRow int) error
	FinishUnparsed(ctx context.Context, jobID uuid.UUID, modelName, raw string) error
	FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error
	Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.ExtractJob, error)
}

type extractJobRepo struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

func NewExtractJobRepository(db *DB, log *slog.Logger) ExtractJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractJobRepo{db: db, log: log, now: time.Now}
}

func (r *extractJobRepo) stamp() string {
	return r.now().UTC().Format(timeLayout)
}

func (r *extractJobRepo) exec(ctx context.Context, q entsql.Querier) error {
	query, args := q.Query()
	var res sql.Result
	return r.db.drv.Exec(ctx, query, args, &res)
}

func (r *extractJobRepo) Start(ctx context.Context, filename, docHash, format string) (*entity.ExtractJob, error) {
	job := &entity.ExtractJob{
		ID:       uuid.New(),
		Filename: filename,
		DocHash:  docHash,
		Format:   format,
		Status:   string(constants.JobStatusRunning),
	}
	started := r.stamp()
	job.StartedAt, _ = time.Parse(timeLayout, started)

	ins := entsql.Dialect(r.db.dialect).
		Insert(extractJobTable).
		Columns("id", "filename", "doc_hash", "format", "status", "started_at").
		Values(job.ID.String(), filename, docHash, format, job.Status, started)
	if err := r.exec(ctx, ins); err != nil {
		r.log.Error("extract_job start failed", "filename", filename, "err", err)
		return nil, dbError("start extract job", err)
	}
	r.log.Info("extract_job started", "job_id", job.ID, "filename", filename, "doc_hash", docHash)
	return job, nil
}

func (r *extractJobRepo) update(ctx context.Context, jobID uuid.UUID, set map[string]any, order []string) error {
	upd := entsql.Dialect(r.db.dialect).Update(extractJobTable)
	for _, col := range order {
		upd.Set(col, set[col])
	}
	upd.Where(entsql.EQ("id", jobID.String()))
	if err := r.exec(ctx, upd); err != nil {
		return dbError("update extract job", err)
	}
	return nil
}

func (r *extractJobRepo) FinishText(ctx context.Context, jobID uuid.UUID, method string, pages int, confidence float32) error {
	err := r.update(ctx, jobID, map[string]any{
		"status":                string(constants.JobStatusTextOK),
		"method":                method,
		"pages":                 pages,
		"extraction_confidence": float64(confidence),
	}, []string{"status", "method", "pages", "extraction_confidence"})
	if err != nil {
		r.log.Error("extract_job finish(TEXT_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job text ok", "job_id", jobID, "method", method, "pages", pages)
	return nil
}

func (r *extractJobRepo) FinishParsed(ctx context.Context, jobID uuid.UUID, modelName string, extracted json.RawMessage, sheetRow int) error {
	err := r.update(ctx, jobID, map[string]any{
		"status":         string(constants.JobStatusLLMOK),
		"model_name":     modelName,
		"extracted_json": string(extracted),
		"sheet_row":      sheetRow,
		"finished_at":    r.stamp(),
	}, []string{"status", "model_name", "extracted_json", "sheet_row", "finished_at"})
	if err != nil {
		r.log.Error("extract_job finish(LLM_OK) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Info("extract_job finished (LLM_OK)", "job_id", jobID, "model", modelName, "sheet_row", sheetRow)
	return nil
}

func (r *extractJobRepo) FinishUnparsed(ctx context.Context, jobID uuid.UUID, modelName, raw string) error {
	err := r.update(ctx, jobID, map[string]any{
		"status":       string(constants.JobStatusUnparsed),
		"model_name":   modelName,
		"raw_response": raw,
		"finished_at":  r.stamp(),
	}, []string{"status", "model_name", "raw_response", "finished_at"})
	if err != nil {
		r.log.Error("extract_job finish(UNPARSED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (UNPARSED)", "job_id", jobID, "model", modelName)
	return nil
}

func (r *extractJobRepo) FinishFailure(ctx context.Context, jobID uuid.UUID, message string) error {
	err := r.update(ctx, jobID, map[string]any{
		"status":        string(constants.JobStatusFailed),
		"error_message": message,
		"finished_at":   r.stamp(),
	}, []string{"status", "error_message", "finished_at"})
	if err != nil {
		r.log.Error("extract_job finish(FAILED) failed", "job_id", jobID, "err", err)
		return err
	}
	r.log.Warn("extract_job finished (FAILED)", "job_id", jobID, "error", message)
	return nil
}

func (r *extractJobRepo) Get(ctx context.Context, jobID uuid.UUID) (*entity.ExtractJob, error) {
	sel := entsql.Dialect(r.db.dialect).
		Select(extractJobColumns...).
		From(entsql.Table(extractJobTable)).
		Where(entsql.EQ("id", jobID.String()))
	jobs, err := r.query(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("extract job %s not found", jobID), common.ErrNotFound)
	}
	return jobs[0], nil
}

func (r *extractJobRepo) ListRecent(ctx context.Context, limit int) ([]*entity.ExtractJob, error) {
	if limit <= 0 {
		limit = 50
	}
	sel := entsql.Dialect(r.db.dialect).
		Select(extractJobColumns...).
		From(entsql.Table(extractJobTable)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("id")).
		Limit(limit)
	return r.query(ctx, sel)
}

func (r *extractJobRepo) query(ctx context.Context, sel *entsql.Selector) ([]*entity.ExtractJob, error) {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, query, args, &rows); err != nil {
		r.log.Error("extract_job query failed", "err", err)
		return nil, dbError("query extract jobs", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entity.ExtractJob
	for rows.Next() {
		job, err := scanExtractJob(&rows)
		if err != nil {
			return nil, dbError("scan extract job", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("iterate extract jobs", err)
	}
	return out, nil
}

func scanExtractJob(rows *entsql.Rows) (*entity.ExtractJob, error) {
	var (
		job                                               entity.ExtractJob
		id, startedAt                                     string
		method, model, extracted, raw, errMsg, finishedAt sql.NullString
		pages, sheetRow                                   sql.NullInt64
		confidence                                        sql.NullFloat64
	)
	if err := rows.Scan(&id, &job.Filename, &job.DocHash, &job.Format, &job.Status, &method, &pages,
		&confidence, &model, &extracted, &raw, &sheetRow, &errMsg, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	var err error
	if job.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad job id %q: %w", id, err)
	}
	if job.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", startedAt, err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad finished_at %q: %w", finishedAt.String, err)
		}
		job.FinishedAt = &t
	}
	job.Method = nullString(method)
	job.ModelName = nullString(model)
	job.RawResponse = nullString(raw)
	job.ErrorMessage = nullString(errMsg)
	if extracted.Valid {
		job.ExtractedJSON = json.RawMessage(extracted.String)
	}
	if pages.Valid {
		p := int(pages.Int64)
		job.Pages = &p
	}
	if sheetRow.Valid {
		s := int(sheetRow.Int64)
		job.SheetRow = &s
	}
	if confidence.Valid {
		c := float32(confidence.Float64)
		job.Confidence = &c
	}
	return &job, nil
}

func dbError(op string, err error) error {
	return common.NewAppError("DATABASE_ERROR", op, errors.Join(common.ErrDatabase, err))
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
