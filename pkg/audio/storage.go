package audio

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage persists uploaded recordings and returns the URL clients use to play them back
type Storage interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
	Name() string
}

// ObjectName returns a unique, date-prefixed file name for a recording
func ObjectName(now time.Time, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "webm"
	}
	return fmt.Sprintf("%s/%s.%s", now.UTC().Format("2006-01-02"), uuid.New().String(), ext)
}
