package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerate_OK(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"gpt-test","choices":[{"message":{"content":"Here: {\"Vendor\":\"Acme\"}"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "gpt-test"}, testLogger())
	out, err := c.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Text != `Here: {"Vendor":"Acme"}` {
		t.Fatalf("text = %q", out.Text)
	}
	if out.FinishReason != "stop" || out.TotalTokens != 7 || out.Model != "gpt-test" {
		t.Fatalf("out = %+v", out)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth = %q", gotAuth)
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", gotBody["messages"])
	}
	if m, _ := msgs[0].(map[string]any); m["content"] != "the prompt" {
		t.Fatalf("content = %v", m["content"])
	}
}

func TestGenerate_Non2xxIsModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"quota"}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, testLogger())
	if _, err := c.Generate(context.Background(), "p"); !errors.Is(err, common.ErrModel) {
		t.Fatalf("err = %v, want ErrModel", err)
	}
}

func TestNormalize_NoChoicesFallsBackToRaw(t *testing.T) {
	raw := []byte(`{"choices":[]}`)
	out, err := normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if out.Text != string(raw) {
		t.Fatalf("text = %q", out.Text)
	}
}
