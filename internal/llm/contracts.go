package llm

import "context"

// Generator sends one prompt to a hosted model and returns its answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Response, error)
}

// Response is the provider-neutral shape of a model answer.
type Response struct {
	Text         string
	Model        string
	FinishReason string

	PromptTokens     int32
	CompletionTokens int32
	TotalTokens      int32
}
