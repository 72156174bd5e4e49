package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultHFBaseURL is the Hugging Face serverless inference endpoint.
const DefaultHFBaseURL = "https://router.huggingface.co/hf-inference/models"

// HuggingFace calls hosted summarization and question-answering pipelines
// over the Hugging Face Inference API.
type HuggingFace struct {
	baseURL      string
	token        string
	summaryModel string
	qaModel      string
	httpClient   *http.Client
}

func NewHuggingFace(baseURL, token, summaryModel, qaModel string, timeout time.Duration) *HuggingFace {
	if baseURL == "" {
		baseURL = DefaultHFBaseURL
	}
	return &HuggingFace{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		summaryModel: summaryModel,
		qaModel:      qaModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type hfSummaryRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters hfSummaryParameters `json:"parameters"`
}

type hfSummaryParameters struct {
	MaxLength int  `json:"max_length"`
	MinLength int  `json:"min_length"`
	DoSample  bool `json:"do_sample"`
}

type hfSummaryResponse struct {
	SummaryText string `json:"summary_text"`
}

type hfQARequest struct {
	Inputs hfQAInputs `json:"inputs"`
}

type hfQAInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type hfQAResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

func (c *HuggingFace) Name() string { return "huggingface" }

// Summarize runs the summarization pipeline with greedy decoding.
func (c *HuggingFace) Summarize(ctx context.Context, text string, opts SummaryOptions) (string, error) {
	body, err := c.post(ctx, c.summaryModel, hfSummaryRequest{
		Inputs: text,
		Parameters: hfSummaryParameters{
			MaxLength: opts.MaxLength,
			MinLength: opts.MinLength,
			DoSample:  false,
		},
	})
	if err != nil {
		return "", err
	}

	var out []hfSummaryResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode summary: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty summary response from %s", c.summaryModel)
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}

// Answer runs the extractive question-answering pipeline.
func (c *HuggingFace) Answer(ctx context.Context, question, passage string) (string, error) {
	body, err := c.post(ctx, c.qaModel, hfQARequest{
		Inputs: hfQAInputs{Question: question, Context: passage},
	})
	if err != nil {
		return "", err
	}

	// The endpoint returns an object for top_k=1 and a list otherwise.
	var one hfQAResponse
	if err := json.Unmarshal(body, &one); err == nil {
		return strings.TrimSpace(one.Answer), nil
	}
	var many []hfQAResponse
	if err := json.Unmarshal(body, &many); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	if len(many) == 0 {
		return "", nil
	}
	return strings.TrimSpace(many[0].Answer), nil
}

func (c *HuggingFace) post(ctx context.Context, model string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+model, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("huggingface %s: %w", model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// 503 is also returned while a cold model is loading.
	if retryableStatus(resp.StatusCode) {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface %s: status %d: %s", model, resp.StatusCode, truncate(string(respBody), 200))
	}
	return respBody, nil
}

// Close releases resources.
func (c *HuggingFace) Close() {
	c.httpClient.CloseIdleConnections()
}
