package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/valentinpelus/survey-crm/internal/app"
	"github.com/valentinpelus/survey-crm/internal/server"
)

func main() {
	// Initialize application
	application, err := app.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	// Log startup information
	application.LogStartupInfo()

	cfg := application.Config
	srv := server.New(server.Options{
		Port:       cfg.Port,
		StaticDir:  cfg.StaticDir,
		UploadsDir: localUploads(cfg.AudioStorage, cfg.UploadsDir),
		MaxBodyMB:  cfg.MaxBodyMB,
	}, application.Handler, application.Auth)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}

func localUploads(storage, dir string) string {
	if storage == "s3" {
		return ""
	}
	return dir
}
