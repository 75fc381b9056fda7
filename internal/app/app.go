package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/internal/config"
	"github.com/valentinpelus/survey-crm/internal/handler"
	"github.com/valentinpelus/survey-crm/internal/middleware"
	"github.com/valentinpelus/survey-crm/internal/processor"
	"github.com/valentinpelus/survey-crm/pkg/access"
	"github.com/valentinpelus/survey-crm/pkg/analytics"
	"github.com/valentinpelus/survey-crm/pkg/audio"
	"github.com/valentinpelus/survey-crm/pkg/audit"
	"github.com/valentinpelus/survey-crm/pkg/notify"
	"github.com/valentinpelus/survey-crm/pkg/store"
	"github.com/valentinpelus/survey-crm/pkg/stt"
)

const startupTimeout = 20 * time.Second

// App holds all application dependencies
type App struct {
	Config    *config.Config
	DB        *store.DB
	Audio     audio.Storage
	Notifiers notify.Multi
	Audit     audit.Recorder
	Issuer    *access.Issuer
	Processor *processor.SubmissionProcessor
	Handler   *handler.Handler
	Auth      *middleware.AuthMiddleware
	Location  *time.Location

	closers []func() error
}

// New initializes a new application with all dependencies
func New() (*App, error) {
	cfg := config.LoadConfig()
	SetupLogging(cfg.LogLevel, cfg.LogFormat)
	if cfg.EnvFileLoaded {
		log.Info().Msg("Loaded environment from .env")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	a := &App{Config: cfg, Location: loadLocation(cfg.Timezone)}

	db, err := store.Connect(ctx, store.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.Close(ctx)
	})

	if a.Audio, err = newAudioStorage(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.SlackWebhookURL != "" {
		a.Notifiers = append(a.Notifiers, notify.NewSlackNotifier(cfg.SlackWebhookURL))
	}
	if len(cfg.KafkaBrokers) > 0 {
		k := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.Notifiers = append(a.Notifiers, k)
		a.closers = append(a.closers, k.Close)
	}

	a.Audit = audit.Nop{}
	if cfg.AuditDatabaseURL != "" {
		st, err := audit.NewStore(ctx, cfg.AuditDatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize audit store, continuing without audit trail")
		} else {
			a.Audit = st
			a.closers = append(a.closers, st.Close)
		}
	}

	policy := analytics.DefaultPolicy()
	policy.LikertBelow = cfg.UrgentLikertBelow
	policy.NPSBelow = cfg.UrgentNPSBelow

	var notifier notify.Notifier
	if len(a.Notifiers) > 0 {
		notifier = a.Notifiers
	}
	a.Processor = processor.NewSubmissionProcessor(policy, notifier)

	sttCfg := stt.DefaultConfig()
	sttCfg.Timeout = cfg.STTTimeout
	sttCfg.OpenAIBaseURL, sttCfg.OpenAIModel = cfg.OpenAIBaseURL, cfg.OpenAISTTModel
	sttCfg.GroqBaseURL, sttCfg.GroqModel = cfg.GroqBaseURL, cfg.GroqSTTModel
	sttCfg.TalkBotBaseURL, sttCfg.TalkBotModel = cfg.TalkBotBaseURL, cfg.TalkBotSTTModel
	sttCfg.IOTypeURL = cfg.IOTypeURL
	sttCfg.GeminiBaseURL, sttCfg.GeminiModel = cfg.GeminiBaseURL, cfg.GeminiModel

	a.Issuer = access.NewIssuer(cfg.AuthSecret, cfg.TokenTTL)
	a.Auth = middleware.NewAuthMiddleware(a.Issuer)

	a.Handler = handler.NewHandler(handler.Dependencies{
		Feedback:  db.Feedback(),
		Settings:  db.Settings(),
		DB:        db,
		STT:       stt.NewFactory(sttCfg),
		Audio:     a.Audio,
		Processor: a.Processor,
		Audit:     a.Audit,
		Access:    access.Policy{Managers: cfg.ManagerUsernames, Supervisors: cfg.SupervisorUsernames},
		Issuer:    a.Issuer,
		Location:  a.Location,
	})

	return a, nil
}

// LogStartupInfo logs application startup information
func (a *App) LogStartupInfo() {
	log.Info().Str("port", a.Config.Port).Str("database", a.Config.MongoDatabase).Msg("Starting survey CRM")
	log.Info().Str("timezone", a.Location.String()).Msg("Dashboard dates use Jalali calendar")
	log.Info().Str("storage", a.Audio.Name()).Msg("Audio storage")

	if a.Issuer.Enabled() {
		log.Info().Msg("Admin authentication: enabled (Bearer token required)")
	} else {
		log.Warn().Msg("Admin authentication: disabled (AUTH_SECRET not set, anyone can change settings)")
	}

	if len(a.Notifiers) > 0 {
		log.Info().Str("sinks", a.Notifiers.Name()).Msg("Urgent notifications: enabled")
	} else {
		log.Info().Msg("Urgent notifications: disabled")
	}

	if _, ok := a.Audit.(audit.Nop); ok {
		log.Info().Msg("Audit trail: disabled")
	} else {
		log.Info().Msg("Audit trail: enabled (PostgreSQL)")
	}
}

// Close releases every connection, newest first
func (a *App) Close() {
	if a.Processor != nil {
		a.Processor.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("Error during shutdown")
		}
	}
	a.closers = nil
}

// SetupLogging configures the global zerolog logger
func SetupLogging(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func newAudioStorage(ctx context.Context, cfg *config.Config) (audio.Storage, error) {
	switch cfg.AudioStorage {
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("AUDIO_STORAGE=s3 requires S3_BUCKET")
		}
		return audio.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL)
	case "local", "":
		return audio.NewLocalStorage(cfg.UploadsDir, "/uploads")
	default:
		return nil, fmt.Errorf("unknown AUDIO_STORAGE %q (supported: local, s3)", cfg.AudioStorage)
	}
}

// loadLocation falls back to Iran Standard Time when the zone database is unavailable
func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("timezone", name).Msg("Unknown time zone, using fixed +03:30")
		return time.FixedZone("IRST", 3*3600+30*60)
	}
	return loc
}
