package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Nop logs entries and keeps nothing. It is used when no audit database is configured.
type Nop struct{}

// Record logs the entry
func (Nop) Record(_ context.Context, e Entry) error {
	e = prepare(e)
	log.Debug().Str("action", e.Action).Str("actor", e.Actor).Str("target", e.Target).Msg("audit")
	return nil
}

// Recent always returns an empty list
func (Nop) Recent(context.Context, int) ([]Entry, error) {
	return []Entry{}, nil
}

// Memory keeps the most recent entries in memory
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

// NewMemory creates an in-memory recorder holding at most max entries
func NewMemory(max int) *Memory {
	if max <= 0 {
		max = MaxLimit
	}
	return &Memory{max: max}
}

// Record appends the entry, evicting the oldest when full
func (m *Memory) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, prepare(e))
	if len(m.entries) > m.max {
		m.entries = m.entries[len(m.entries)-m.max:]
	}
	return nil
}

// Recent returns the newest entries first
func (m *Memory) Recent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	limit = clampLimit(limit)
	out := make([]Entry, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func prepare(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return e
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
