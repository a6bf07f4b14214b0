package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

type WhisperOptions struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// WhisperTranscriber calls the audio transcriptions API.
type WhisperTranscriber struct {
	model   string
	baseURL string
	client  *http.Client
}

const whisperDefaultTimeout = 60 * time.Second

const defaultWhisperModel = "whisper-1"

type whisperResponse struct {
	Text string `json:"text"`
}

func NewWhisperTranscriber(opts WhisperOptions) *WhisperTranscriber {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultWhisperModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: whisperDefaultTimeout}
	}
	return &WhisperTranscriber{model: model, baseURL: baseURL, client: client}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", errors.New("transcription api key is required")
	}
	if req.Audio == nil {
		return "", errors.New("audio stream is required")
	}
	fileName := strings.TrimSpace(req.FileName)
	if fileName == "" {
		fileName = "memo.webm"
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", fileName)
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := form.WriteField("model", w.model); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/audio/transcriptions", w.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(req.APIKey))

	resp, err := w.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("transcription request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("transcription status %d", resp.StatusCode)
	}
	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode transcription: %w", err)
	}
	text := strings.TrimSpace(out.Text)
	if text == "" {
		return "", errors.New("empty transcription")
	}
	return text, nil
}

var _ Transcriber = (*WhisperTranscriber)(nil)
