package constants

// JobStatus is the canonical status for rows in extract_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning  JobStatus = "RUNNING"  // in progress
	JobStatusTextOK   JobStatus = "TEXT_OK"  // stage 1 completed (text extracted)
	JobStatusLLMOK    JobStatus = "LLM_OK"   // record parsed and appended
	JobStatusUnparsed JobStatus = "UNPARSED" // model answered but no JSON object could be parsed
	JobStatusFailed   JobStatus = "FAILED"   // terminal failure
)

// Extraction methods reported by the text stage.
const (
	MethodPDFText = "pdf-text"
	MethodPDFOCR  = "pdf-ocr"
)
