package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/pkg/stt"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

// Transcribe handles multipart uploads: audioFile, provider and optional apiKeys
// (a JSON array or a single key). Without apiKeys the configured keys are used.
func (h *Handler) Transcribe(c *gin.Context) {
	provider := strings.TrimSpace(c.PostForm("provider"))
	rec, err := readUpload(c)
	if err != nil || provider == "" {
		badRequest(c, "Missing audio file, provider, or API keys.")
		return
	}

	keys := parseKeys(c.PostForm("apiKeys"))
	if len(keys) == 0 {
		settings, err := h.settings.Get(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		keys = settings.KeysFor(provider)
	}

	h.transcribe(c, provider, keys, rec)
}

type base64AudioRequest struct {
	Audio string `json:"audio"`
}

// TranscribeBase64 returns a handler transcribing a base64 data URL with the configured keys.
// A blank vendor takes it from the :provider path parameter.
func (h *Handler) TranscribeBase64(vendor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := vendor
		if provider == "" {
			provider = c.Param("provider")
		}

		var req base64AudioRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Audio == "" {
			badRequest(c, "No audio data received")
			return
		}
		audio, err := stt.DecodeDataURL(req.Audio, "recording")
		if err != nil {
			badRequest(c, err.Error())
			return
		}

		settings, err := h.settings.Get(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		h.transcribe(c, provider, settings.KeysFor(provider), audio)
	}
}

func (h *Handler) transcribe(c *gin.Context, provider string, keys []string, audio stt.Audio) {
	text, err := h.stt.Chain(provider, keys).Transcribe(c.Request.Context(), audio)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("STT error")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": strings.TrimSpace(text)})
}

// TestProvider returns a handler checking vendor connectivity with the configured keys
func (h *Handler) TestProvider(vendor string) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := h.settings.Get(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if err := h.stt.Chain(vendor, settings.KeysFor(vendor)).Ping(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Success", "details": "Connection OK"})
	}
}

// TestableProviders lists the vendors exposed under /api/test-<vendor>
var TestableProviders = []string{types.ModeOpenAI, types.ModeGroq, types.ModeTalkBot, types.ModeIOType, types.ModeGemini}

// parseKeys accepts a JSON array of keys, a JSON string, or a bare key
func parseKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		return []string{single}
	}
	return []string{raw}
}
