package backup

import (
	"errors"
	"fmt"
	"time"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// ErrEmptyBackup is returned when a restore payload carries neither settings nor feedback
var ErrEmptyBackup = errors.New("invalid backup file format")

// Full is the JSON document produced by a full backup
type Full struct {
	Timestamp time.Time        `json:"timestamp"`
	Settings  *types.Settings  `json:"settings"`
	Feedback  []types.Feedback `json:"feedback"`
}

// NewFull builds a backup of the given state
func NewFull(settings types.Settings, feedback []types.Feedback, now time.Time) Full {
	if feedback == nil {
		feedback = []types.Feedback{}
	}
	return Full{
		Timestamp: now.UTC(),
		Settings:  &settings,
		Feedback:  feedback,
	}
}

// FullFileName returns the attachment name for a backup taken at now
func FullFileName(now time.Time) string {
	return fmt.Sprintf("Full_Backup_%s.json", now.UTC().Format("2006-01-02"))
}

// Validate rejects payloads with nothing to restore
func (b Full) Validate() error {
	if b.Settings == nil && b.Feedback == nil {
		return ErrEmptyBackup
	}
	return nil
}
