package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string        `json:"status"`
	Timestamp string        `json:"timestamp"`
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Stage     string        `json:"stage,omitempty"`
	Database  string        `json:"database,omitempty"`
	Snapshot  *SnapshotInfo `json:"snapshot,omitempty"`
}

// HealthHandler handles Lambda health check requests.
type HealthHandler struct {
	catalog Catalog
	db      Pinger
	stage   string
	version string
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(c Catalog, db Pinger, stage, version string) *HealthHandler {
	return &HealthHandler{catalog: c, db: db, stage: stage, version: version}
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "college-predictor",
		Version:   h.version,
		Stage:     h.stage,
		Database:  "not configured",
	}

	if snap, err := h.catalog.Current(); err == nil {
		info := snapshotInfo(snap)
		response.Snapshot = &info
	} else {
		response.Status = "degraded"
	}

	// Check database connectivity
	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	}

	statusCode := http.StatusOK
	if response.Status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return proxyJSON(statusCode, response), nil
}

// proxyJSON builds an API Gateway response with CORS headers.
func proxyJSON(statusCode int, v interface{}) events.APIGatewayProxyResponse {
	statusCode, body := encodeResponse(statusCode, v)
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers: map[string]string{
			"Access-Control-Allow-Origin": "*",
			"Content-Type":                "application/json",
		},
		Body: string(body),
	}
}
