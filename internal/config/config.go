package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Model backend: huggingface, anthropic, openai or ollama.
	ModelBackend     string
	InferenceTimeout time.Duration

	// Hugging Face Inference API
	HFAPIURL       string
	HFAPIToken     string
	HFSummaryModel string
	HFQAModel      string

	// Anthropic
	AnthropicAPIKey string
	AnthropicModel  string

	// OpenAI-compatible
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Ollama
	OllamaHost  string
	OllamaModel string

	// Upload and extraction limits
	MaxUploadBytes int64
	MaxTextChars   int

	// Pipeline
	ChunkSize           int
	SummaryMaxChunks    int
	QAContextChars      int
	SimilarityThreshold float64

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// Request parameter ranges for the word budgets.
const (
	SummaryWordsMin     = 100
	SummaryWordsMax     = 1000
	SummaryWordsDefault = 500

	AnswerWordsMin     = 50
	AnswerWordsMax     = 300
	AnswerWordsDefault = 150
)

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ModelBackend:     envOr("MODEL_BACKEND", "huggingface"),
		InferenceTimeout: envDuration("INFERENCE_TIMEOUT", 120*time.Second),

		HFAPIURL:       envOr("HF_API_URL", "https://router.huggingface.co/hf-inference/models"),
		HFAPIToken:     os.Getenv("HF_API_TOKEN"),
		HFSummaryModel: envOr("HF_SUMMARY_MODEL", "t5-small"),
		HFQAModel:      envOr("HF_QA_MODEL", "distilbert-base-cased-distilled-squad"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-sonnet-4-5-20250929"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   envOr("OPENAI_MODEL", "gpt-4o-mini"),

		OllamaHost:  envOr("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel: envOr("OLLAMA_MODEL", "llama3.2"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 200<<20), // 200MB
		MaxTextChars:   envInt("MAX_TEXT_CHARS", 10_000_000),

		ChunkSize:           envInt("CHUNK_SIZE", 1000),
		SummaryMaxChunks:    envInt("SUMMARY_MAX_CHUNKS", 5),
		QAContextChars:      envInt("QA_CONTEXT_CHARS", 10_000),
		SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 0.8),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.InferenceTimeout <= 0 {
		cfg.InferenceTimeout = 120 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 200 << 20
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 10_000_000
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.SummaryMaxChunks <= 0 {
		cfg.SummaryMaxChunks = 5
	}
	if cfg.QAContextChars <= 0 {
		cfg.QAContextChars = 10_000
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = 0.8
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.ModelBackend {
	case "huggingface":
		if c.HFSummaryModel == "" || c.HFQAModel == "" {
			return fmt.Errorf("HF_SUMMARY_MODEL and HF_QA_MODEL are required")
		}
	case "anthropic":
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	case "openai":
		// Local OpenAI-compatible servers accept any key.
		if c.OpenAIAPIKey == "" && c.OpenAIBaseURL == "" {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
	case "ollama":
		if c.OllamaModel == "" {
			return fmt.Errorf("OLLAMA_MODEL is required")
		}
	default:
		return fmt.Errorf("unknown MODEL_BACKEND %q", c.ModelBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
