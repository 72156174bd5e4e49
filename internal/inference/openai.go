package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

// OpenAI drives summarization and extractive answering through an
// OpenAI-compatible chat completions API. baseURL may point at a local
// server.
type OpenAI struct {
	model      string
	client     *goopenai.Client
	httpClient *http.Client
}

func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	httpClient := &http.Client{Timeout: timeout}
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = httpClient
	return &OpenAI{
		model:      model,
		client:     goopenai.NewClientWithConfig(cfg),
		httpClient: httpClient,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	return o.complete(ctx, summarySystemPrompt, buildSummaryPrompt(text, opts), maxTokensFor(opts.MaxLength))
}

func (o *OpenAI) Answer(ctx context.Context, question, passage string) (string, error) {
	return o.complete(ctx, answerSystemPrompt, buildAnswerPrompt(question, passage), answerMaxTokens)
}

func (o *OpenAI) complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && retryableStatus(apiErr.HTTPStatusCode) {
			return "", &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		var reqErr *goopenai.RequestError
		if errors.As(err, &reqErr) && retryableStatus(reqErr.HTTPStatusCode) {
			return "", &RetryableError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
		}
		return "", fmt.Errorf("openai api: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices found")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Close releases resources.
func (o *OpenAI) Close() {
	o.httpClient.CloseIdleConnections()
}
