package stt

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
)

// IOTypeProvider implements the Provider interface for the IOType developer API
type IOTypeProvider struct {
	url    string
	apiKey string
	client *http.Client
}

// NewIOTypeProvider creates a new IOType provider
func NewIOTypeProvider(url, apiKey string, client *http.Client) *IOTypeProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &IOTypeProvider{url: url, apiKey: apiKey, client: client}
}

// Name returns the provider name
func (p *IOTypeProvider) Name() string {
	return "IOType"
}

// IOType answers 200 even for rejected requests; status 0 marks a failure
type iotypeResponse struct {
	Status  json.Number `json:"status"`
	Result  string      `json:"result"`
	Message string      `json:"message"`
}

// Transcribe uploads the recording and returns the recognised text
func (p *IOTypeProvider) Transcribe(ctx context.Context, audio Audio) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("type", "file"); err != nil {
		return "", fmt.Errorf("failed to write field type: %w", err)
	}
	if err := writeFilePart(w, "file", audio); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call IOType API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("IOType API returned status %d: %s", resp.StatusCode, string(b))
	}

	var out iotypeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode IOType response: %w", err)
	}
	if out.Status.String() == "0" {
		msg := out.Message
		if msg == "" {
			msg = "IOType API Error"
		}
		return "", errors.New(msg)
	}
	return strings.TrimSpace(out.Result), nil
}

// Ping transcribes a silent recording
func (p *IOTypeProvider) Ping(ctx context.Context) error {
	audio, err := DecodeDataURL(SilentWAV, "test")
	if err != nil {
		return err
	}
	_, err = p.Transcribe(ctx, audio)
	return err
}
