// Health Check Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"college-predictor/internal/app"
	"college-predictor/internal/config"
	"college-predictor/internal/handlers"
	"college-predictor/internal/utils"
)

var version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Invalid configuration: " + err.Error())
	}

	// Initialize logger
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		panic("Failed to load cutoffs: " + err.Error())
	}
	defer application.Close()

	var pinger handlers.Pinger
	if application.DB != nil {
		pinger = application.DB
	}

	handler := handlers.NewHealthHandler(application.Catalog, pinger, cfg.Stage, version)

	// Start Lambda
	lambda.Start(handler.Handle)
}
