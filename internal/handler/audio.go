package handler

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/pkg/audio"
	"github.com/valentinpelus/survey-crm/pkg/stt"
)

// UploadAudio stores a recording sent as multipart audioFile or as JSON {audio: dataURL}
func (h *Handler) UploadAudio(c *gin.Context) {
	if h.audio == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audio storage is not configured"})
		return
	}

	var (
		rec stt.Audio
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		rec, err = readUpload(c)
	} else {
		var req base64AudioRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Audio == "" {
			badRequest(c, "No audio data received")
			return
		}
		rec, err = stt.DecodeDataURL(req.Audio, "recording")
	}
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	name := audio.ObjectName(h.now(), rec.Ext())
	url, err := h.audio.Save(c.Request.Context(), name, rec.MimeType, rec.Data)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Info().Str("storage", h.audio.Name()).Str("url", url).Int("bytes", len(rec.Data)).Msg("Stored recording")
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

func readUpload(c *gin.Context) (stt.Audio, error) {
	fh, err := c.FormFile("audioFile")
	if err != nil {
		return stt.Audio{}, fmt.Errorf("missing audioFile: %w", err)
	}
	file, err := fh.Open()
	if err != nil {
		return stt.Audio{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return stt.Audio{}, fmt.Errorf("failed to read upload: %w", err)
	}
	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	return stt.Audio{Data: data, MimeType: mimeType, Filename: path.Base(fh.Filename)}, nil
}
