package audio

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage writes recordings below a directory served over HTTP at urlPrefix
type LocalStorage struct {
	dir       string
	urlPrefix string
}

// NewLocalStorage creates the directory when it does not exist
func NewLocalStorage(dir, urlPrefix string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}
	return &LocalStorage{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Name returns the backend name
func (s *LocalStorage) Name() string {
	return "local:" + s.dir
}

// Save writes the recording and returns its URL path
func (s *LocalStorage) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	// rooting the name before cleaning keeps ".." segments inside dir
	clean := path.Clean("/" + name)

	full := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write recording: %w", err)
	}
	return s.urlPrefix + clean, nil
}
