// Predict Lambda entry point
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"college-predictor/internal/app"
	"college-predictor/internal/config"
	"college-predictor/internal/handlers"
	"college-predictor/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Invalid configuration: " + err.Error())
	}

	// Initialize logger
	_ = utils.InitLogger(cfg.LogLevel)
	defer utils.Sync()

	ctx := context.Background()

	// Snapshot is loaded once per cold start and refreshed in the background
	// when RELOAD_INTERVAL is set
	application, err := app.New(ctx, cfg)
	if err != nil {
		panic("Failed to load cutoffs: " + err.Error())
	}
	defer application.Close()
	application.StartBackground(ctx)

	handler := handlers.NewPredictHandler(
		application.Predictor,
		handlers.QueryDefaults{Buffer: cfg.DefaultBuffer, LowerTolerance: cfg.LowerTolerance},
	)

	// Start Lambda
	lambda.Start(handler.Handle)
}
