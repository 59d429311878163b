package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	_ "syntexapply/docs"
	"syntexapply/internal/app"
	"syntexapply/internal/config"
	"syntexapply/internal/logging"
)

// @title Syntex Apply API
// @version 1.0
// @description Multi-step job application questionnaire and submission endpoint.
// @BasePath /
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to start")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("server starting")
		log.Info("Endpoints:")
		log.Info("  GET  /v1/questionnaire")
		log.Info("  POST /v1/sessions")
		log.Info("  GET  /v1/sessions/{token}")
		log.Info("  PUT  /v1/sessions/{token}/answers/{key}")
		log.Info("  POST /v1/sessions/{token}/advance|retreat|submit|restart")
		log.Info("  POST /v1/apply")
		log.Info("  WS   /v1/ws/sessions/{token}")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("ListenAndServe")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}
	if err := a.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to release connections")
	}

	log.Info("server exited")
}
