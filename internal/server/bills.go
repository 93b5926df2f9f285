package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/pipeline"
	"github.com/joseph-ayodele/bill-scanner/internal/record"
)

type textResponse struct {
	JobID      string            `json:"job_id"`
	Method     string            `json:"method"`
	Pages      int               `json:"pages"`
	Confidence float32           `json:"confidence"`
	Text       string            `json:"text"`
	Warnings   []string          `json:"warnings,omitempty"`
	Notices    []pipeline.Notice `json:"notices"`
}

type billResponse struct {
	textResponse
	Model   string         `json:"model"`
	Parsed  bool           `json:"parsed"`
	Record  *record.Record `json:"record,omitempty"`
	Raw     string         `json:"raw,omitempty"`
	Columns []string       `json:"columns,omitempty"`
	Rows    int            `json:"rows"`
	Saved   string         `json:"saved,omitempty"`
}

func newTextResponse(out pipeline.TextOutcome) textResponse {
	notices := out.Notices
	if notices == nil {
		notices = []pipeline.Notice{}
	}
	return textResponse{
		JobID:      out.JobID.String(),
		Method:     out.Text.Method,
		Pages:      out.Text.Pages,
		Confidence: out.Text.Confidence,
		Text:       out.Text.Text,
		Warnings:   out.Text.Warnings,
		Notices:    notices,
	}
}

// readUpload returns the "file" part of a multipart request.
func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	if s.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, common.NewAppError("INVALID_INPUT", "a PDF must be uploaded in the \"file\" field", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	return fh.Filename, data, nil
}

func (s *Server) handleText(c *gin.Context) {
	name, data, err := s.readUpload(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out, err := s.proc.ExtractText(c.Request.Context(), name, data)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newTextResponse(out))
}

func (s *Server) handleBill(c *gin.Context) {
	name, data, err := s.readUpload(c)
	if err != nil {
		s.writeError(c, err)
		return
	}
	// textarea submissions arrive with CRLF line breaks
	prompt := strings.ReplaceAll(c.PostForm("prompt"), "\r\n", "\n")
	if strings.TrimSpace(prompt) == "" {
		prompt = s.cfg.PromptOverride
	}
	sub := pipeline.Submission{
		Filename: name,
		Document: data,
		Prompt:   prompt,
		// saved exactly as typed; Validate only rejects blanks
		Manual: record.ManualFields{
			BillSource:    c.PostForm("bill_source"),
			BillGivenBy:   c.PostForm("bill_given_by"),
			HODApproval:   c.PostForm("hod_approval"),
			FinalApproval: c.PostForm("final_approval"),
		},
	}

	out, err := s.proc.Process(c.Request.Context(), sub)
	if err != nil {
		s.writeError(c, err)
		return
	}
	resp := billResponse{
		textResponse: newTextResponse(out.TextOutcome),
		Model:        out.Model,
		Parsed:       out.Parsed,
		Record:       out.Record,
		Columns:      out.Columns,
		Rows:         out.Rows,
		Saved:        out.Saved,
	}
	if !out.Parsed {
		resp.Raw = out.Raw
	}
	c.JSON(http.StatusOK, resp)
}
