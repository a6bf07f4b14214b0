package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type OpenAIOptions struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Writer
	OnFallback func(reason string, err error)
}

// OpenAIWriter composes drafts through the chat completions API. The API
// key travels with each request because it is resolved per device by the
// access gate.
type OpenAIWriter struct {
	model      string
	baseURL    string
	client     *http.Client
	fallback   Writer
	onFallback func(reason string, err error)
}

const openAIDefaultTimeout = 30 * time.Second

const defaultOpenAIModel = "gpt-4o"

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIWriter(opts OpenAIOptions) *OpenAIWriter {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIWriter{
		model:      model,
		baseURL:    baseURL,
		client:     client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}
}

func (o *OpenAIWriter) Compose(ctx context.Context, req Request) (*Draft, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return o.useFallback(ctx, req, "missing_api_key", nil)
	}
	payload := openAIChatRequest{
		Model: o.model,
		Messages: []openAIMessage{
			{Role: "system", Content: buildSystemPrompt(req)},
			{Role: "user", Content: userPrompt(req)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return o.useFallback(ctx, req, "encode_request", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return o.useFallback(ctx, req, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(req.APIKey))
	resp, err := o.client.Do(httpReq)
	if err != nil {
		return o.useFallback(ctx, req, "http_request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return o.useFallback(ctx, req, fmt.Sprintf("http_%d", resp.StatusCode), fmt.Errorf("openai status %d", resp.StatusCode))
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return o.useFallback(ctx, req, "decode_response", err)
	}
	if len(out.Choices) == 0 {
		return o.useFallback(ctx, req, "empty_choices", errors.New("no choices"))
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return o.useFallback(ctx, req, "empty_response", errors.New("empty response"))
	}
	return &Draft{Email: text, Provider: openAIProviderName}, nil
}

func (o *OpenAIWriter) useFallback(ctx context.Context, req Request, reason string, cause error) (*Draft, error) {
	if o.onFallback != nil {
		o.onFallback(reason, cause)
	}
	fb := o.fallback
	if fb == nil {
		fb = NewStaticWriter()
	}
	d, err := fb.Compose(ctx, req)
	if d != nil && d.Provider == "" {
		d.Provider = staticProviderName
	}
	return d, err
}

var _ Writer = (*OpenAIWriter)(nil)
