// Package main runs the HTTP API for the college cutoff predictor
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"college-predictor/internal/app"
	"college-predictor/internal/config"
	"college-predictor/internal/handlers"
	"college-predictor/internal/utils"
)

var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()
	logger := utils.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing or malformed table is fatal; never serve without a snapshot
	application, err := app.New(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load cutoffs", utils.Error(err))
	}
	defer application.Close()
	application.StartBackground(ctx)

	var pinger handlers.Pinger
	if application.DB != nil {
		pinger = application.DB
	}

	api := handlers.NewAPI(
		application.Predictor,
		application.Catalog,
		pinger,
		handlers.QueryDefaults{Buffer: cfg.DefaultBuffer, LowerTolerance: cfg.LowerTolerance},
		version,
	)

	mux := http.NewServeMux()
	api.Register(mux)
	mux.Handle("/metrics", application.Metrics.Handler())

	// Setup CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", cfg.Port),
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("College predictor API listening",
		utils.String("addr", srv.Addr),
		utils.String("source", cfg.CutoffSource),
		utils.String("status_order", application.Predictor.Order().String()),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Server failed", utils.Error(err))
	}
	logger.Info("Server stopped")
}
