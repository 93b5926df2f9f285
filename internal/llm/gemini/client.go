package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/llm"
)

const DefaultModel = "models/gemini-2.5-pro"

// Config for the Gemini client.
type Config struct {
	APIKey      string
	Model       string  // default models/gemini-2.5-pro
	Temperature float32 // applied only when > 0
	Timeout     time.Duration
}

// contentGenerator is the slice of *genai.GenerativeModel we call.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Client struct {
	cfg    Config
	client *genai.Client
	model  contentGenerator
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(cfg.Model)
	if cfg.Temperature > 0 {
		model.SetTemperature(cfg.Temperature)
	}
	return &Client{cfg: cfg, client: client, model: model, logger: logger}, nil
}

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Generate implements llm.Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (llm.Response, error) {
	rid := common.RequestIDFromContext(ctx)
	if rid == "" {
		rid = uuid.New().String()
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()
	c.logger.Info("llm.generate.start", "req_id", rid, "provider", "gemini", "model", c.cfg.Model, "prompt_len", len(prompt))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("llm.generate.error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Response{}, fmt.Errorf("%w: gemini: %v", common.ErrModel, err)
	}

	out := normalize(resp)
	out.Model = c.cfg.Model
	c.logger.Info("llm.generate.ok",
		"req_id", rid,
		"finish_reason", out.FinishReason,
		"text_len", len(out.Text),
		"total_tokens", out.TotalTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// normalize prefers the first candidate's text parts and falls back to the response as JSON.
func normalize(resp *genai.GenerateContentResponse) llm.Response {
	var out llm.Response
	if resp == nil {
		return out
	}
	if resp.UsageMetadata != nil {
		out.PromptTokens = resp.UsageMetadata.PromptTokenCount
		out.CompletionTokens = resp.UsageMetadata.CandidatesTokenCount
		out.TotalTokens = resp.UsageMetadata.TotalTokenCount
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		cand := resp.Candidates[0]
		out.FinishReason = cand.FinishReason.String()
		if cand.Content != nil {
			var b strings.Builder
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					b.WriteString(string(text))
				}
			}
			out.Text = b.String()
		}
	}
	if out.Text == "" {
		if b, err := json.Marshal(resp); err == nil {
			out.Text = string(b)
		}
	}
	return out
}
