package common

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/bill-scanner/constants"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	OCR    OCRConfig
	LLM    LLMConfig
	Sheet  SheetConfig
	Jobs   JobsConfig
	Mirror MirrorConfig
	Debug  DebugConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	GRPCAddr       string // optional; health service only
	MaxUploadBytes int64  // 0 = no limit
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Engine        string // "tesseract" | "azure"
	Tesseract     string
	Pdftoppm      string
	TesseractLang string
	TessdataDir   string
	DPI           int
	Enhance       bool

	AzureEndpoint string
	AzureKey      string
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider       string // "gemini" | "openai"
	Model          string
	APIKey         string
	APIKeySecret   string // scy secret resource; when set, APIKey is expanded from it
	BaseURL        string // openai only
	Temperature    float32
	Timeout        time.Duration
	PromptOverride string
}

// SheetConfig holds spreadsheet store configuration
type SheetConfig struct {
	Path      string
	SheetName string
}

// JobsConfig holds extraction job ledger configuration
type JobsConfig struct {
	Driver    string // "sqlite" | "postgres"
	DSN       string
	DSNSecret string // scy secret resource; when set, DSN is expanded from it
}

// MirrorConfig holds the optional export mirror destination
type MirrorConfig struct {
	URL string
}

// DebugConfig holds diagnostics switches
type DebugConfig struct {
	LogLevel    string
	LogFormat   string
	GopsEnabled bool
}

// LoadConfig loads configuration from environment variables, after merging an optional .env file.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	provider := strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))
	return &Config{
		Server: ServerConfig{
			HTTPAddr:       getEnv("HTTP_ADDR", ":8501"),
			GRPCAddr:       getEnv("GRPC_ADDR", ""),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 0),
		},
		OCR: OCRConfig{
			Engine:        strings.ToLower(getEnv("OCR_ENGINE", "tesseract")),
			Tesseract:     getEnv("TESSERACT_CMD", "tesseract"),
			Pdftoppm:      getEnv("PDFTOPPM_CMD", "pdftoppm"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			Enhance:       getEnvAsBool("OCR_ENHANCE", false),
			AzureEndpoint: getEnv("AZURE_VISION_ENDPOINT", ""),
			AzureKey:      getEnv("AZURE_VISION_KEY", ""),
		},
		LLM: LLMConfig{
			Provider:       provider,
			Model:          getEnv("LLM_MODEL", defaultModel(provider)),
			APIKey:         getEnv("LLM_API_KEY", providerKey(provider)),
			APIKeySecret:   getEnv("LLM_API_KEY_SECRET", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			Temperature:    getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:        getEnvAsDuration("LLM_TIMEOUT", 2*time.Minute),
			PromptOverride: getEnv("EXTRACTION_PROMPT", ""),
		},
		Sheet: SheetConfig{
			Path:      getEnv("SHEET_PATH", constants.DefaultSheetPath),
			SheetName: getEnv("SHEET_NAME", "Sheet1"),
		},
		Jobs: JobsConfig{
			Driver:    strings.ToLower(getEnv("JOBS_DRIVER", "sqlite")),
			DSN:       getEnv("JOBS_DSN", "file:jobs?mode=memory&cache=shared"),
			DSNSecret: getEnv("JOBS_DSN_SECRET", ""),
		},
		Mirror: MirrorConfig{
			URL: getEnv("MIRROR_URL", ""),
		},
		Debug: DebugConfig{
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "text"),
			GopsEnabled: getEnvAsBool("GOPS_ENABLED", false),
		},
	}
}

func defaultModel(provider string) string {
	if provider == "openai" {
		return "gpt-4o-mini"
	}
	return "models/gemini-2.5-pro"
}

func providerKey(provider string) string {
	if provider == "openai" {
		return os.Getenv("OPENAI_API_KEY")
	}
	return os.Getenv("GEMINI_API_KEY")
}

// ResolveAPIKey expands the LLM API key from the configured secret resource, if any.
func (c *Config) ResolveAPIKey(ctx context.Context) error {
	if strings.TrimSpace(c.LLM.APIKeySecret) == "" {
		return nil
	}
	template := c.LLM.APIKey
	if template == "" {
		template = "${Key}"
	}
	key, err := ExpandWithSecret(ctx, template, c.LLM.APIKeySecret)
	if err != nil {
		return NewAppError("CONFIG_ERROR", "resolve LLM_API_KEY_SECRET", err)
	}
	c.LLM.APIKey = key
	return nil
}

// ResolveJobsDSN expands credentials in the ledger DSN from the configured secret resource, if any.
// e.g. JOBS_DSN=postgres://${Username}:${Password}@db:5432/bills
func (c *Config) ResolveJobsDSN(ctx context.Context) error {
	dsn, err := ExpandWithSecret(ctx, c.Jobs.DSN, c.Jobs.DSNSecret)
	if err != nil {
		return NewAppError("CONFIG_ERROR", "resolve JOBS_DSN_SECRET", err)
	}
	c.Jobs.DSN = dsn
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "LLM_API_KEY (or GEMINI_API_KEY / OPENAI_API_KEY) is required", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be gemini or openai", ErrInvalidInput)
	}
	switch c.OCR.Engine {
	case "tesseract":
	case "azure":
		if c.OCR.AzureEndpoint == "" || c.OCR.AzureKey == "" {
			return NewAppError("CONFIG_ERROR", "AZURE_VISION_ENDPOINT and AZURE_VISION_KEY are required for OCR_ENGINE=azure", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "OCR_ENGINE must be tesseract or azure", ErrInvalidInput)
	}
	switch c.Jobs.Driver {
	case "sqlite", "postgres":
	default:
		return NewAppError("CONFIG_ERROR", "JOBS_DRIVER must be sqlite or postgres", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Sheet.Path == "" {
		return NewAppError("CONFIG_ERROR", "SHEET_PATH is required", ErrInvalidInput)
	}
	return nil
}
