package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/internal/handler"
	"github.com/valentinpelus/survey-crm/internal/middleware"
	"github.com/valentinpelus/survey-crm/pkg/metrics"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

// Options configures the HTTP server
type Options struct {
	Port       string
	StaticDir  string
	UploadsDir string // served under /uploads when set
	MaxBodyMB  int
}

// Server wraps the HTTP server
type Server struct {
	opts   Options
	engine *gin.Engine
	http   *http.Server
}

// New creates a new HTTP server with every route registered
func New(opts Options, h *handler.Handler, auth *middleware.AuthMiddleware) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Metrics(), middleware.RequestLogger())

	s := &Server{opts: opts, engine: engine}
	s.setupRoutes(h, auth)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	s.http = &http.Server{
		Addr:              ":" + opts.Port,
		Handler:           c.Handler(limitBody(engine, opts.MaxBodyMB)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) setupRoutes(h *handler.Handler, auth *middleware.AuthMiddleware) {
	admin := auth.RequireAdmin()
	user := auth.RequireUser()

	api := s.engine.Group("/api")
	api.GET("/health", h.Health)

	api.GET("/settings", h.GetSettings)
	api.POST("/settings", admin, h.SaveSettings)
	api.POST("/settings/reset", admin, h.ResetSettings)
	api.POST("/users/password", user, h.UpdatePassword)
	api.POST("/login", h.Login)
	api.POST("/developer/login", h.DeveloperLogin)

	api.GET("/feedback", h.ListFeedback)
	api.GET("/feedback/:id", h.GetFeedback)
	api.POST("/feedback", h.SaveFeedback)
	api.DELETE("/feedback/:id", admin, h.DeleteFeedback)
	api.GET("/patients/:nationalId/history", h.PatientHistory)
	api.GET("/analytics", h.Dashboard)

	api.POST("/stt", h.Transcribe)
	api.POST("/transcribe/:provider", h.TranscribeBase64(""))
	api.POST("/transcribe-iotype", h.TranscribeBase64(types.ModeIOType))
	for _, vendor := range handler.TestableProviders {
		api.POST("/test-"+vendor, h.TestProvider(vendor))
	}
	api.POST("/audio", h.UploadAudio)

	api.GET("/full-backup", admin, h.FullBackup)
	api.POST("/full-restore", admin, h.FullRestore)
	api.GET("/backup/excel", admin, h.ExcelBackup)
	api.POST("/restore/excel", admin, h.ExcelRestore)

	api.POST("/logs", h.ClientLog)
	api.GET("/logs", admin, h.RecentLogs)

	s.engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	if s.opts.UploadsDir != "" {
		s.engine.Static("/uploads", s.opts.UploadsDir)
	}
	if s.opts.StaticDir != "" {
		s.engine.NoRoute(s.spa)
	}
}

// spa serves built client assets and falls back to index.html for client-side routes
func (s *Server) spa(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusNotFound)
		return
	}

	rel := filepath.FromSlash(strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+c.Request.URL.Path)), "/"))
	if rel != "" && rel != "." {
		asset := filepath.Join(s.opts.StaticDir, rel)
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			c.File(asset)
			return
		}
	}
	c.File(filepath.Join(s.opts.StaticDir, "index.html"))
}

// limitBody caps request bodies at maxMB megabytes
func limitBody(next http.Handler, maxMB int) http.Handler {
	if maxMB <= 0 {
		return next
	}
	limit := int64(maxMB) << 20
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > limit {
			http.Error(w, `{"error":"request body too large"}`, http.StatusRequestEntityTooLarge)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		next.ServeHTTP(w, r)
	})
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	log.Info().Str("port", s.opts.Port).Msg("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
