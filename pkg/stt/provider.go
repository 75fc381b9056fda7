package stt

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNoKeys is returned when a provider has no usable API key
	ErrNoKeys = errors.New("no API keys configured")
	// ErrUnknownProvider is returned for provider names the gateway does not support
	ErrUnknownProvider = errors.New("unknown transcription provider")
)

// Provider defines the interface for speech-to-text vendors (OpenAI, Groq, TalkBot, IOType, Gemini)
type Provider interface {
	// Transcribe converts recorded speech to Persian text
	Transcribe(ctx context.Context, audio Audio) (string, error)

	// Ping checks that the vendor accepts the configured key
	Ping(ctx context.Context) error

	// Name returns the provider name (for logging)
	Name() string
}

// Config holds vendor endpoints and models shared by every provider built by a Factory
type Config struct {
	Timeout  time.Duration
	Language string // ISO-639-1, sent to Whisper-style APIs

	// OpenAI-compatible /audio/transcriptions endpoints
	OpenAIBaseURL  string
	OpenAIModel    string
	GroqBaseURL    string
	GroqModel      string
	TalkBotBaseURL string
	TalkBotModel   string

	// IOType-specific
	IOTypeURL string

	// Gemini-specific
	GeminiBaseURL string
	GeminiModel   string
}

// DefaultConfig returns the public vendor endpoints
func DefaultConfig() Config {
	return Config{
		Timeout:        2 * time.Minute,
		Language:       "fa",
		OpenAIBaseURL:  "https://api.openai.com/v1",
		OpenAIModel:    "whisper-1",
		GroqBaseURL:    "https://api.groq.com/openai/v1",
		GroqModel:      "whisper-large-v3",
		TalkBotBaseURL: "https://api.talkbot.ir/v1",
		TalkBotModel:   "whisper-1",
		IOTypeURL:      "https://www.iotype.com/developer/transcription",
		GeminiBaseURL:  "https://generativelanguage.googleapis.com/v1beta",
		GeminiModel:    "gemini-2.5-flash",
	}
}
