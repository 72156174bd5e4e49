package inference

import (
	"fmt"

	"github.com/dgallion1/pdfgpt/internal/config"
)

// New constructs the backend selected by cfg.ModelBackend.
func New(cfg config.Config) (Backend, error) {
	switch cfg.ModelBackend {
	case "huggingface":
		return NewHuggingFace(cfg.HFAPIURL, cfg.HFAPIToken, cfg.HFSummaryModel, cfg.HFQAModel, cfg.InferenceTimeout), nil
	case "anthropic":
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.InferenceTimeout), nil
	case "openai":
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.InferenceTimeout), nil
	case "ollama":
		o, err := NewOllama(cfg.OllamaHost, cfg.OllamaModel, cfg.InferenceTimeout)
		if err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown model backend %q", cfg.ModelBackend)
	}
}
