package stt

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/pkg/metrics"
)

// Chain tries each API key of one vendor in order until a call succeeds
type Chain struct {
	factory *Factory
	vendor  string
	keys    []string
}

// Transcribe returns the text of the first key that succeeds
func (c *Chain) Transcribe(ctx context.Context, audio Audio) (string, error) {
	var text string
	err := c.try(ctx, "transcribe", func(p Provider) error {
		var err error
		text, err = p.Transcribe(ctx, audio)
		return err
	})
	return text, err
}

// Ping succeeds as soon as one key passes the vendor connectivity check
func (c *Chain) Ping(ctx context.Context) error {
	return c.try(ctx, "ping", func(p Provider) error { return p.Ping(ctx) })
}

// Keys returns the usable keys in the order they will be tried
func (c *Chain) Keys() []string {
	var usable []string
	for _, k := range c.keys {
		if k = strings.TrimSpace(k); k != "" {
			usable = append(usable, k)
		}
	}
	return usable
}

func (c *Chain) try(ctx context.Context, op string, call func(Provider) error) error {
	if !Supported(c.vendor) {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, c.vendor)
	}
	keys := c.Keys()
	if len(keys) == 0 {
		return fmt.Errorf("%w for %s", ErrNoKeys, c.vendor)
	}

	var lastErr error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s %s cancelled: %w", c.vendor, op, err)
		}

		p, err := c.factory.CreateProvider(c.vendor, key)
		if err != nil {
			return err
		}

		if err := call(p); err != nil {
			metrics.STTAttempts.WithLabelValues(c.vendor, "failure").Inc()
			log.Warn().
				Str("provider", p.Name()).
				Str("op", op).
				Str("key", keyPrefix(key)).
				Err(err).
				Msg("key failed, trying next")
			lastErr = err
			continue
		}

		metrics.STTAttempts.WithLabelValues(c.vendor, "success").Inc()
		return nil
	}

	return fmt.Errorf("all %d keys failed: %w", len(keys), lastErr)
}

func keyPrefix(key string) string {
	if len(key) <= 6 {
		return key[:len(key)/2] + "..."
	}
	return key[:6] + "..."
}
