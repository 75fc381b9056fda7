package stt

import (
	"fmt"
	"net/http"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// Factory creates STT providers based on configuration
type Factory struct {
	config Config
	client *http.Client
}

// NewFactory creates a new provider factory. Every vendor call shares one client bounded by config.Timeout.
func NewFactory(config Config) *Factory {
	return &Factory{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}
}

// Supported reports whether the vendor name is known to the factory
func Supported(vendor string) bool {
	switch vendor {
	case types.ModeOpenAI, types.ModeGroq, types.ModeTalkBot, types.ModeIOType, types.ModeGemini:
		return true
	}
	return false
}

// CreateProvider creates a provider for one vendor and key
func (f *Factory) CreateProvider(vendor, apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w for %s", ErrNoKeys, vendor)
	}

	switch vendor {
	case types.ModeOpenAI:
		return NewWhisperProvider("OpenAI", f.config.OpenAIBaseURL, apiKey, f.config.OpenAIModel, f.config.Language, f.client), nil

	case types.ModeGroq:
		return NewWhisperProvider("Groq", f.config.GroqBaseURL, apiKey, f.config.GroqModel, f.config.Language, f.client), nil

	case types.ModeTalkBot:
		return NewWhisperProvider("TalkBot", f.config.TalkBotBaseURL, apiKey, f.config.TalkBotModel, f.config.Language, f.client), nil

	case types.ModeIOType:
		return NewIOTypeProvider(f.config.IOTypeURL, apiKey, f.client), nil

	case types.ModeGemini:
		return NewGeminiProvider(f.config.GeminiBaseURL, apiKey, f.config.GeminiModel, f.client), nil

	default:
		return nil, fmt.Errorf("%w: %s (supported: openai, groq, talkbot, iotype, gemini)", ErrUnknownProvider, vendor)
	}
}

// Chain returns a key-fallback chain for the vendor
func (f *Factory) Chain(vendor string, keys []string) *Chain {
	return &Chain{factory: f, vendor: vendor, keys: keys}
}
