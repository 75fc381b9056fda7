package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// Actions recorded by the server
const (
	ActionSettingsSaved   = "settings.saved"
	ActionSettingsReset   = "settings.reset"
	ActionPasswordChanged = "user.password_changed"
	ActionFeedbackDeleted = "feedback.deleted"
	ActionFullRestore     = "backup.full_restore"
	ActionExcelRestore    = "backup.excel_restore"
	ActionClientLog       = "client.log"
)

// Entry is one audit record
type Entry struct {
	ID        string                 `json:"id"`
	Action    string                 `json:"action"`
	Actor     string                 `json:"actor,omitempty"`
	Target    string                 `json:"target,omitempty"`
	Level     string                 `json:"level,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Recorder stores and lists audit entries
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id         UUID PRIMARY KEY,
	action     TEXT NOT NULL,
	actor      TEXT NOT NULL DEFAULT '',
	target     TEXT NOT NULL DEFAULT '',
	level      TEXT NOT NULL DEFAULT '',
	message    TEXT NOT NULL DEFAULT '',
	details    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS audit_entries_created_at_idx ON audit_entries (created_at DESC);
`

// Store keeps audit entries in PostgreSQL
type Store struct {
	db *sql.DB
}

// NewStore connects to PostgreSQL and creates the audit table when missing
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create audit schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record inserts one entry
func (s *Store) Record(ctx context.Context, e Entry) error {
	e = prepare(e)

	var details []byte
	if len(e.Details) > 0 {
		var err error
		if details, err = json.Marshal(e.Details); err != nil {
			return fmt.Errorf("failed to marshal audit details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_entries (id, action, actor, target, level, message, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Action, e.Actor, e.Target, e.Level, e.Message, nullableJSON(details), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store audit entry: %w", err)
	}

	log.Debug().Str("action", e.Action).Str("actor", e.Actor).Msg("Stored audit entry")
	return nil
}

// Recent returns the newest entries first
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, action, actor, target, level, message, details, created_at
		FROM audit_entries
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.Actor, &e.Target, &e.Level, &e.Message, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				log.Warn().Err(err).Str("id", e.ID).Msg("Could not parse audit details")
			}
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}
	return entries, nil
}

func nullableJSON(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}
