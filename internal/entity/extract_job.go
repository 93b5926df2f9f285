package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractJob is one bill submission as recorded in the extract_job ledger.
type ExtractJob struct {
	ID            uuid.UUID       `json:"id"`
	Filename      string          `json:"filename"`
	DocHash       string          `json:"doc_hash"`
	Format        string          `json:"format"`
	Status        string          `json:"status"`
	Method        *string         `json:"method,omitempty"`
	Pages         *int            `json:"pages,omitempty"`
	Confidence    *float32        `json:"extraction_confidence,omitempty"`
	ModelName     *string         `json:"model_name,omitempty"`
	ExtractedJSON json.RawMessage `json:"extracted_json,omitempty"`
	RawResponse   *string         `json:"raw_response,omitempty"`
	SheetRow      *int            `json:"sheet_row,omitempty"`
	ErrorMessage  *string         `json:"error_message,omitempty"`
	StartedAt     time.Time       `json:"started_at"`
	FinishedAt    *time.Time      `json:"finished_at,omitempty"`
}
