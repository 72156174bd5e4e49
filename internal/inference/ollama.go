package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// Ollama drives summarization and extractive answering through a local
// Ollama server.
type Ollama struct {
	model      string
	client     *api.Client
	httpClient *http.Client
}

func NewOllama(host, model string, timeout time.Duration) (*Ollama, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	httpClient := &http.Client{Timeout: timeout}
	return &Ollama{
		model:      model,
		client:     api.NewClient(u, httpClient),
		httpClient: httpClient,
	}, nil
}

func (o *Ollama) Name() string { return "ollama" }

func (o *Ollama) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	return o.chat(ctx, summarySystemPrompt, buildSummaryPrompt(text, opts), maxTokensFor(opts.MaxLength))
}

func (o *Ollama) Answer(ctx context.Context, question, passage string) (string, error) {
	return o.chat(ctx, answerSystemPrompt, buildAnswerPrompt(question, passage), answerMaxTokens)
}

func (o *Ollama) chat(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	stream := false
	req := api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
		Options: map[string]any{
			"temperature": 0,
			"num_predict": maxTokens,
		},
	}

	var result strings.Builder
	err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		result.WriteString(res.Message.Content)
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) && retryableStatus(statusErr.StatusCode) {
			return "", &RetryableError{StatusCode: statusErr.StatusCode, Message: statusErr.ErrorMessage}
		}
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return strings.TrimSpace(result.String()), nil
}

// Close releases resources.
func (o *Ollama) Close() {
	o.httpClient.CloseIdleConnections()
}
