package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/llm"
)

type chatCompletion struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int32 `json:"prompt_tokens"`
		CompletionTokens int32 `json:"completion_tokens"`
		TotalTokens      int32 `json:"total_tokens"`
	} `json:"usage"`
}

// Generate implements llm.Generator using a single-message chat/completions call.
// The prompt goes out verbatim; no response_format is forced so prose answers reach the parser.
func (c *Client) Generate(ctx context.Context, prompt string) (llm.Response, error) {
	start := time.Now()
	rid := common.RequestIDFromContext(ctx)

	c.logger.Info("llm.generate.start",
		"req_id", rid,
		"provider", "openai",
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "user", "content": prompt},
		},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.generate.error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, fmt.Errorf("%w: openai: %v", common.ErrModel, err)
	}

	out, err := normalize(raw)
	if err != nil {
		c.logger.Error("llm.generate.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Response{}, fmt.Errorf("%w: decode openai response: %v", common.ErrModel, err)
	}
	if out.Model == "" {
		out.Model = c.cfg.Model
	}

	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"finish_reason", out.FinishReason,
		"text_len", len(out.Text),
		"total_tokens", out.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// normalize prefers the first choice's content and falls back to the raw body.
func normalize(raw []byte) (llm.Response, error) {
	var cc chatCompletion
	if err := json.Unmarshal(raw, &cc); err != nil {
		return llm.Response{}, err
	}
	out := llm.Response{Model: cc.Model}
	if cc.Usage != nil {
		out.PromptTokens = cc.Usage.PromptTokens
		out.CompletionTokens = cc.Usage.CompletionTokens
		out.TotalTokens = cc.Usage.TotalTokens
	}
	if len(cc.Choices) > 0 {
		out.Text = cc.Choices[0].Message.Content
		out.FinishReason = cc.Choices[0].FinishReason
	}
	if out.Text == "" {
		out.Text = string(raw)
	}
	return out, nil
}
