// Package config loads service settings from .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"

	"mcqengine/internal/chunker"
	"mcqengine/internal/gemini"
	"mcqengine/internal/llm"
	"mcqengine/internal/r2"
)

// ErrInvalid is wrapped by every validation error
var ErrInvalid = errors.New("invalid configuration")

// Config holds everything the server and CLI need to build a pipeline
type Config struct {
	Port        string
	LogMode     string
	AuditLogDir string

	ChunkMaxChars int
	ChunkMinLen   int
	Workers       int

	Generator llm.Config
	Evaluator llm.Config

	DatabaseURL string    // Optional report store
	Archive     r2.Config // Optional report archive
}

// LoadDotEnv loads the given files (default ".env"). A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// Load loads .env and then reads the environment.
func Load() (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv reads the configuration from environment variables only.
func FromEnv() (*Config, error) {
	genProvider := strings.ToLower(String("GEN_PROVIDER", llm.ProviderGemini))
	evalProvider := strings.ToLower(String("EVAL_PROVIDER", genProvider))

	temperature := Float("LLM_TEMPERATURE", 0)
	maxTokens := Int("LLM_MAX_TOKENS", 1024)
	seed := Int("LLM_SEED", 0)

	cfg := &Config{
		Port:          String("PORT", "8080"),
		LogMode:       String("LOG_MODE", "development"),
		AuditLogDir:   String("AUDIT_LOG_DIR", ""),
		ChunkMaxChars: Int("CHUNK_MAX_CHARS", chunker.DefaultMaxChars),
		ChunkMinLen:   Int("CHUNK_MIN_LEN", chunker.DefaultMinLen),
		Workers:       Int("PIPELINE_WORKERS", 1),
		Generator:     endpoint(genProvider, String("GEN_MODEL", defaultModel(genProvider)), temperature, maxTokens, seed),
		Evaluator:     endpoint(evalProvider, String("EVAL_MODEL", defaultModel(evalProvider)), temperature, maxTokens, seed),
	}
	cfg.Generator.JSON = Bool("GEN_JSON_MODE", true)
	cfg.DatabaseURL = String("DATABASE_URL", "")
	cfg.Archive = r2.Config{
		AccountID:       String("CLOUDFLARE_ACCOUNT_ID", ""),
		Endpoint:        String("R2_ENDPOINT", ""),
		Bucket:          String("R2_BUCKET_NAME", ""),
		AccessKeyID:     String("R2_ACCESS_KEY_ID", ""),
		SecretAccessKey: String("R2_SECRET_ACCESS_KEY", ""),
		PublicURL:       String("R2_PUBLIC_URL", ""),
		Prefix:          String("R2_PREFIX", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// endpoint fills in the credentials that belong to provider.
func endpoint(provider, model string, temperature float64, maxTokens, seed int) llm.Config {
	c := llm.Config{
		Provider:    provider,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Seed:        seed,
	}
	switch provider {
	case llm.ProviderGemini:
		c.APIKey = String("GEMINI_API_KEY", "")
	case llm.ProviderOpenAI:
		c.APIKey = String("OPENAI_API_KEY", "")
		c.BaseURL = String("OPENAI_BASE_URL", "")
	case llm.ProviderHuggingFace:
		c.APIKey = String("HUGGINGFACEHUB_API_TOKEN", "")
	case llm.ProviderOllama:
		c.BaseURL = String("OLLAMA_URL", "")
	}
	return c
}

func defaultModel(provider string) string {
	switch provider {
	case llm.ProviderGemini:
		return gemini.DefaultModel
	case llm.ProviderHuggingFace:
		return "mistralai/Mistral-7B-Instruct-v0.2"
	case llm.ProviderOllama:
		return "llama3"
	}
	return ""
}

// Validate checks value ranges and provider names.
func (c *Config) Validate() error {
	var errs []error
	if c.ChunkMaxChars <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_MAX_CHARS must be positive, got %d", c.ChunkMaxChars))
	}
	if c.ChunkMinLen < 0 {
		errs = append(errs, fmt.Errorf("CHUNK_MIN_LEN must not be negative, got %d", c.ChunkMinLen))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("PIPELINE_WORKERS must be at least 1, got %d", c.Workers))
	}
	for _, ep := range []struct {
		role string
		cfg  llm.Config
	}{{"GEN", c.Generator}, {"EVAL", c.Evaluator}} {
		switch ep.cfg.Provider {
		case llm.ProviderGemini, llm.ProviderOpenAI, llm.ProviderHuggingFace, llm.ProviderOllama:
		default:
			errs = append(errs, fmt.Errorf("%s_PROVIDER %q is not supported", ep.role, ep.cfg.Provider))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
