package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// WhisperProvider implements the Provider interface for OpenAI-compatible
// /audio/transcriptions endpoints (OpenAI, Groq, TalkBot)
type WhisperProvider struct {
	vendor   string
	baseURL  string
	apiKey   string
	model    string
	language string
	client   *http.Client
}

// NewWhisperProvider creates a new provider for an OpenAI-compatible vendor
func NewWhisperProvider(vendor, baseURL, apiKey, model, language string, client *http.Client) *WhisperProvider {
	if model == "" {
		model = "whisper-1"
	}
	if client == nil {
		client = &http.Client{}
	}
	return &WhisperProvider{
		vendor:   vendor,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		model:    model,
		language: language,
		client:   client,
	}
}

// Name returns the provider name
func (p *WhisperProvider) Name() string {
	return fmt.Sprintf("%s (%s)", p.vendor, p.model)
}

type whisperResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the recording and returns the recognised text
func (p *WhisperProvider) Transcribe(ctx context.Context, audio Audio) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := writeFilePart(w, "file", audio); err != nil {
		return "", err
	}
	fields := map[string]string{"model": p.model, "response_format": "json"}
	if p.language != "" {
		fields["language"] = p.language
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call %s API: %w", p.vendor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%s API returned status %d: %s", p.vendor, resp.StatusCode, string(b))
	}

	var out whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode %s response: %w", p.vendor, err)
	}
	return strings.TrimSpace(out.Text), nil
}

// Ping lists the vendor models, which only needs a valid key
func (p *WhisperProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s API: %w", p.vendor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s API returned status %d: %s", p.vendor, resp.StatusCode, string(b))
	}
	return nil
}
