package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-scanner/constants"
	"github.com/joseph-ayodele/bill-scanner/internal/common"
)

func openTestDB(t *testing.T) (*DB, *slog.Logger) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dsn := "file:" + filepath.Join(t.TempDir(), "jobs.db")
	db, err := Open(context.Background(), Config{Driver: "sqlite", DSN: dsn}, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close(logger) })
	return db, logger
}

func TestExtractJob_Lifecycle(t *testing.T) {
	db, logger := openTestDB(t)
	repo := NewExtractJobRepository(db, logger)
	ctx := context.Background()

	job, err := repo.Start(ctx, "bill.pdf", "abc123", constants.PDF)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if job.Status != string(constants.JobStatusRunning) {
		t.Fatalf("status = %s", job.Status)
	}
	if err := repo.FinishText(ctx, job.ID, constants.MethodPDFOCR, 3, 0.8); err != nil {
		t.Fatalf("FinishText: %v", err)
	}
	if err := repo.FinishParsed(ctx, job.ID, "models/gemini-2.5-pro", json.RawMessage(`{"Vendor":"Acme"}`), 1); err != nil {
		t.Fatalf("FinishParsed: %v", err)
	}

	got, err := repo.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != string(constants.JobStatusLLMOK) {
		t.Fatalf("status = %s", got.Status)
	}
	if got.Method == nil || *got.Method != constants.MethodPDFOCR {
		t.Fatalf("method = %v", got.Method)
	}
	if got.Pages == nil || *got.Pages != 3 {
		t.Fatalf("pages = %v", got.Pages)
	}
	if got.Confidence == nil || *got.Confidence < 0.79 || *got.Confidence > 0.81 {
		t.Fatalf("confidence = %v", got.Confidence)
	}
	if string(got.ExtractedJSON) != `{"Vendor":"Acme"}` {
		t.Fatalf("extracted = %s", got.ExtractedJSON)
	}
	if got.SheetRow == nil || *got.SheetRow != 1 {
		t.Fatalf("sheet_row = %v", got.SheetRow)
	}
	if got.FinishedAt == nil {
		t.Fatalf("finished_at not set")
	}
	if got.Filename != "bill.pdf" || got.DocHash != "abc123" || got.Format != constants.PDF {
		t.Fatalf("job = %+v", got)
	}
}

func TestExtractJob_FailureAndUnparsed(t *testing.T) {
	db, logger := openTestDB(t)
	repo := NewExtractJobRepository(db, logger)
	ctx := context.Background()

	failed, err := repo.Start(ctx, "a.pdf", "h1", constants.PDF)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := repo.FinishFailure(ctx, failed.ID, "no text"); err != nil {
		t.Fatalf("FinishFailure: %v", err)
	}
	unparsed, err := repo.Start(ctx, "b.pdf", "h2", constants.PDF)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := repo.FinishUnparsed(ctx, unparsed.ID, "gpt-test", "sorry"); err != nil {
		t.Fatalf("FinishUnparsed: %v", err)
	}

	got, err := repo.Get(ctx, failed.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != string(constants.JobStatusFailed) || got.ErrorMessage == nil || *got.ErrorMessage != "no text" {
		t.Fatalf("failed job = %+v", got)
	}
	got, err = repo.Get(ctx, unparsed.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != string(constants.JobStatusUnparsed) || got.RawResponse == nil || *got.RawResponse != "sorry" {
		t.Fatalf("unparsed job = %+v", got)
	}
	if got.ExtractedJSON != nil {
		t.Fatalf("unparsed job must not carry extracted json")
	}
}

func TestExtractJob_ListRecentNewestFirst(t *testing.T) {
	db, logger := openTestDB(t)
	r := NewExtractJobRepository(db, logger).(*extractJobRepo)
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	ctx := context.Background()
	for _, name := range []string{"first.pdf", "second.pdf", "third.pdf"} {
		if _, err := r.Start(ctx, name, "h", constants.PDF); err != nil {
			t.Fatalf("Start: %v", err)
		}
	}

	jobs, err := r.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(jobs) != 2 || jobs[0].Filename != "third.pdf" || jobs[1].Filename != "second.pdf" {
		t.Fatalf("jobs = %v", jobs)
	}
	if !jobs[0].StartedAt.Equal(base.Add(3 * time.Second)) {
		t.Fatalf("started_at = %v", jobs[0].StartedAt)
	}
}

func TestExtractJob_GetMissing(t *testing.T) {
	db, logger := openTestDB(t)
	repo := NewExtractJobRepository(db, logger)
	_, err := repo.Get(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestHealthCheck(t *testing.T) {
	db, logger := openTestDB(t)
	if err := HealthCheck(context.Background(), db, time.Second, logger); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), Config{Driver: "mysql"}, nil); err == nil {
		t.Fatalf("expected error")
	}
}
