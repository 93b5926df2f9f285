package pipeline

import (
	"github.com/google/uuid"

	"github.com/joseph-ayodele/bill-scanner/internal/extract"
	"github.com/joseph-ayodele/bill-scanner/internal/record"
)

// Submission is one uploaded bill plus the operator's inputs.
type Submission struct {
	Filename string
	Document []byte
	Prompt   string // blank means the default extraction prompt
	Manual   record.ManualFields
}

// NoticeLevel mirrors the severity of a user-facing status line.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
)

// Notice is a status line shown to the operator alongside the result.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// TextOutcome is the result of the ingestion and OCR stages.
type TextOutcome struct {
	JobID   uuid.UUID
	DocHash string
	Text    extract.TextExtractionResult
	Notices []Notice
}

// Outcome is the result of a full submission.
// Parsed is false when the model answer held no JSON object; Raw then carries it for display.
type Outcome struct {
	TextOutcome

	Model   string
	Raw     string
	Parsed  bool
	Record  *record.Record // model fields merged with the manual fields
	Row     *record.Record // Record flattened into spreadsheet columns
	Columns []string       // spreadsheet columns after the append
	Rows    int            // spreadsheet data rows after the append
	Saved   string         // spreadsheet path the row was written to
}
