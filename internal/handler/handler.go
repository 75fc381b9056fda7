package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/internal/processor"
	"github.com/valentinpelus/survey-crm/pkg/access"
	"github.com/valentinpelus/survey-crm/pkg/analytics"
	"github.com/valentinpelus/survey-crm/pkg/audio"
	"github.com/valentinpelus/survey-crm/pkg/audit"
	"github.com/valentinpelus/survey-crm/pkg/backup"
	"github.com/valentinpelus/survey-crm/pkg/store"
	"github.com/valentinpelus/survey-crm/pkg/stt"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

// FeedbackStore is the feedback persistence used by the handlers
type FeedbackStore interface {
	List(ctx context.Context) ([]types.Feedback, error)
	ListFinal(ctx context.Context) ([]types.Feedback, error)
	ByNationalID(ctx context.Context, nationalID string) ([]types.Feedback, error)
	Get(ctx context.Context, id string) (*types.Feedback, error)
	Upsert(ctx context.Context, f types.Feedback) (types.Feedback, bool, error)
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, records []types.Feedback) error
	UpsertMany(ctx context.Context, records []types.Feedback) (int, error)
}

// SettingsStore is the settings persistence used by the handlers
type SettingsStore interface {
	Get(ctx context.Context) (types.Settings, error)
	Save(ctx context.Context, settings types.Settings) (types.Settings, error)
	Reset(ctx context.Context) (types.Settings, error)
	Replace(ctx context.Context, settings *types.Settings) error
}

// Pinger reports database connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies groups everything the handlers need
type Dependencies struct {
	Feedback  FeedbackStore
	Settings  SettingsStore
	DB        Pinger
	STT       *stt.Factory
	Audio     audio.Storage
	Processor *processor.SubmissionProcessor
	Audit     audit.Recorder
	Access    access.Policy
	Issuer    *access.Issuer
	Location  *time.Location
}

// Handler serves the REST API
type Handler struct {
	feedback  FeedbackStore
	settings  SettingsStore
	db        Pinger
	stt       *stt.Factory
	audio     audio.Storage
	processor *processor.SubmissionProcessor
	audit     audit.Recorder
	access    access.Policy
	issuer    *access.Issuer
	loc       *time.Location
	now       func() time.Time
}

// NewHandler creates a new API handler
func NewHandler(d Dependencies) *Handler {
	if d.Audit == nil {
		d.Audit = audit.Nop{}
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Processor == nil {
		d.Processor = processor.NewSubmissionProcessor(analytics.DefaultPolicy(), nil)
	}
	return &Handler{
		feedback:  d.Feedback,
		settings:  d.Settings,
		db:        d.DB,
		stt:       d.STT,
		audio:     d.Audio,
		processor: d.Processor,
		audit:     d.Audit,
		access:    d.Access,
		issuer:    d.Issuer,
		loc:       d.Location,
		now:       time.Now,
	}
}

// Health reports whether the database is reachable
func (h *Handler) Health(c *gin.Context) {
	if h.db == nil || h.db.Ping(c.Request.Context()) != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "db": "disconnected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "connected"})
}

// record writes an audit entry; failures are logged only
func (h *Handler) record(c *gin.Context, e audit.Entry) {
	if err := h.audit.Record(c.Request.Context(), e); err != nil {
		log.Warn().Err(err).Str("action", e.Action).Msg("Failed to record audit entry")
	}
}

// respondError maps an error to its status code and writes {"error": message}
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, access.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, access.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, access.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, stt.ErrNoKeys),
		errors.Is(err, stt.ErrUnknownProvider),
		errors.Is(err, analytics.ErrUnknownSortKey),
		errors.Is(err, backup.ErrEmptyBackup),
		errors.Is(err, backup.ErrNoRows),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
