package common

import (
	"context"
	"errors"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LLM_PROVIDER", "LLM_MODEL", "LLM_API_KEY", "LLM_API_KEY_SECRET", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"OCR_ENGINE", "OCR_DPI", "SHEET_PATH", "HTTP_ADDR", "JOBS_DRIVER", "JOBS_DSN_SECRET"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OCR_DPI", "not-a-number")

	cfg := LoadConfig()
	if cfg.LLM.Provider != "gemini" || cfg.LLM.Model != "models/gemini-2.5-pro" {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
	if cfg.LLM.APIKey != "g-key" {
		t.Fatalf("api key = %q", cfg.LLM.APIKey)
	}
	if cfg.OCR.DPI != 300 {
		t.Fatalf("dpi = %d, want fallback 300", cfg.OCR.DPI)
	}
	if cfg.Sheet.Path != "bill_data.xlsx" || cfg.Server.HTTPAddr != ":8501" {
		t.Fatalf("sheet/server = %+v %+v", cfg.Sheet, cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfig_OpenAIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "OpenAI")
	t.Setenv("OPENAI_API_KEY", "o-key")

	cfg := LoadConfig()
	if cfg.LLM.Provider != "openai" || cfg.LLM.APIKey != "o-key" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("llm = %+v", cfg.LLM)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server: ServerConfig{HTTPAddr: ":8501"},
			OCR:    OCRConfig{Engine: "tesseract"},
			LLM:    LLMConfig{Provider: "gemini", APIKey: "k"},
			Sheet:  SheetConfig{Path: "bill_data.xlsx"},
			Jobs:   JobsConfig{Driver: "sqlite"},
		}
	}
	cases := map[string]func(c *Config){
		"missing key":        func(c *Config) { c.LLM.APIKey = "" },
		"unknown provider":   func(c *Config) { c.LLM.Provider = "other" },
		"azure without auth": func(c *Config) { c.OCR.Engine = "azure" },
		"unknown driver":     func(c *Config) { c.Jobs.Driver = "mysql" },
		"empty sheet path":   func(c *Config) { c.Sheet.Path = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			if err := c.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("base config: %v", err)
	}
}

func TestResolveSecrets_NoReference(t *testing.T) {
	c := &Config{LLM: LLMConfig{APIKey: "plain"}, Jobs: JobsConfig{DSN: "file:x"}}
	if err := c.ResolveAPIKey(context.Background()); err != nil {
		t.Fatalf("ResolveAPIKey: %v", err)
	}
	if err := c.ResolveJobsDSN(context.Background()); err != nil {
		t.Fatalf("ResolveJobsDSN: %v", err)
	}
	if c.LLM.APIKey != "plain" || c.Jobs.DSN != "file:x" {
		t.Fatalf("config changed without a secret reference: %+v", c)
	}
}

func TestCodeOf(t *testing.T) {
	v := NewValidator().Field("name", "", Required)
	if got := HTTPStatus(CodeOf(v.Error())); got != 400 {
		t.Fatalf("validation status = %d", got)
	}
	if got := HTTPStatus(CodeOf(NewAppError("NOT_FOUND", "x", ErrNotFound))); got != 404 {
		t.Fatalf("not found status = %d", got)
	}
	if got := HTTPStatus(CodeOf(ErrNoText)); got != 422 {
		t.Fatalf("no text status = %d", got)
	}
	if got := HTTPStatus(CodeOf(WrapError(ErrModel, "generate"))); got != 502 {
		t.Fatalf("model status = %d", got)
	}
	if got := HTTPStatus(CodeOf(errors.New("boom"))); got != 500 {
		t.Fatalf("default status = %d", got)
	}
}
