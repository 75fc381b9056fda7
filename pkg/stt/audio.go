package stt

import (
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"strings"
)

// Audio is one recording to transcribe
type Audio struct {
	Data     []byte
	MimeType string
	Filename string
}

// SilentWAV is a tiny valid recording used for connectivity checks
const SilentWAV = "data:audio/wav;base64,UklGRigAAABXQVZFZm10IBIAAAABAAEAQB8AAEAfAAABAAgAAABkYXRhAAAAAA=="

var dataURLPrefix = regexp.MustCompile(`^data:audio/[a-z0-9;=]+;base64,`)

// DecodeDataURL decodes a base64 audio data URL. The extension is detected from the
// declared media type (wav, mp3, mp4, ogg) and defaults to webm.
func DecodeDataURL(s, basename string) (Audio, error) {
	if strings.TrimSpace(s) == "" {
		return Audio{}, fmt.Errorf("invalid audio data format: empty input")
	}

	payload := dataURLPrefix.ReplaceAllString(s, "")
	payload = strings.Join(strings.Fields(payload), "")

	ext := "webm"
	for _, candidate := range []string{"wav", "mp3", "mp4", "ogg"} {
		if strings.Contains(s, "audio/"+candidate) {
			ext = candidate
			break
		}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Audio{}, fmt.Errorf("invalid audio data format: %w", err)
	}

	return Audio{
		Data:     data,
		MimeType: "audio/" + ext,
		Filename: basename + "." + ext,
	}, nil
}

// Ext returns the file extension of the recording without the dot
func (a Audio) Ext() string {
	if i := strings.LastIndex(a.Filename, "."); i >= 0 && i < len(a.Filename)-1 {
		return a.Filename[i+1:]
	}
	if _, sub, ok := strings.Cut(a.MimeType, "/"); ok && sub != "" {
		sub, _, _ = strings.Cut(sub, ";")
		return sub
	}
	return "webm"
}

func (a Audio) mimeType() string {
	if a.MimeType != "" {
		return a.MimeType
	}
	return "audio/webm"
}

func (a Audio) filename() string {
	if a.Filename != "" {
		return a.Filename
	}
	return "recording." + a.Ext()
}

// writeFilePart adds the recording as a form file that carries its own content type
func writeFilePart(w *multipart.Writer, field string, a Audio) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, a.filename()))
	h.Set("Content-Type", a.mimeType())
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(a.Data); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return nil
}
