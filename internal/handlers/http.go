package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"college-predictor/internal/models"
	"college-predictor/internal/services/catalog"
	"college-predictor/internal/utils"
)

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Predictor answers a single query.
type Predictor interface {
	Predict(ctx context.Context, q models.Query) (*models.Result, error)
}

// Catalog exposes the current snapshot and reload.
type Catalog interface {
	Current() (*catalog.Snapshot, error)
	Reload(ctx context.Context) (*catalog.Snapshot, error)
}

// Pinger checks an optional backing store.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// API serves the predictor over HTTP.
type API struct {
	predictor Predictor
	catalog   Catalog
	db        Pinger
	defaults  QueryDefaults
	version   string
}

// NewAPI creates the HTTP handlers. db may be nil.
func NewAPI(p Predictor, c Catalog, db Pinger, defaults QueryDefaults, version string) *API {
	return &API{predictor: p, catalog: c, db: db, defaults: defaults, version: version}
}

// Register mounts every route on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/health", a.Health)
	mux.HandleFunc("/api/health", a.Health)
	mux.HandleFunc("/api/predict", a.Predict)
	mux.HandleFunc("/api/categories", a.Categories)
	mux.HandleFunc("/api/branches", a.Branches)
	mux.HandleFunc("/api/reload", a.Reload)
}

// Predict handles GET with URL parameters or POST with a JSON body.
func (a *API) Predict(w http.ResponseWriter, r *http.Request) {
	var (
		q   models.Query
		err error
	)

	switch r.Method {
	case http.MethodGet:
		q, err = ParseQuery(r.URL.Query(), a.defaults)
	case http.MethodPost:
		var req PredictRequest
		if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
			writeJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid request body",
			})
			return
		}
		q, err = req.ToQuery(a.defaults)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	result, err := a.predictor.Predict(r.Context(), q)
	if err != nil {
		writeJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	message := "No colleges found in this range"
	if !result.IsEmpty() {
		message = "Matches found"
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: result})
}

// Categories lists the distinct categories in the current snapshot.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	a.listSnapshot(w, r, (*catalog.Snapshot).Categories)
}

// Branches lists the distinct branches in the current snapshot.
func (a *API) Branches(w http.ResponseWriter, r *http.Request) {
	a.listSnapshot(w, r, (*catalog.Snapshot).Branches)
}

func (a *API) listSnapshot(w http.ResponseWriter, r *http.Request, list func(*catalog.Snapshot) []string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := a.catalog.Current()
	if err != nil {
		writeJSON(w, statusForError(err), Response{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: list(snap)})
}

// Reload rebuilds the snapshot from the configured source.
func (a *API) Reload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap, err := a.catalog.Reload(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Reload failed, previous snapshot kept: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Cutoffs reloaded",
		Data:    snapshotInfo(snap),
	})
}

// Health reports liveness and the state of the snapshot.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "college-predictor",
		Version:   a.version,
		Database:  "not configured",
	}

	if snap, err := a.catalog.Current(); err == nil {
		info := snapshotInfo(snap)
		response.Snapshot = &info
	} else {
		response.Status = "degraded"
	}

	if a.db != nil {
		if err := a.db.HealthCheck(r.Context()); err != nil {
			response.Database = "disconnected"
			response.Status = "degraded"
		} else {
			response.Database = "connected"
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// SnapshotInfo summarizes the active snapshot.
type SnapshotInfo struct {
	Source   string `json:"source"`
	Records  int    `json:"records"`
	Version  uint64 `json:"version"`
	LoadedAt string `json:"loaded_at"`
}

func snapshotInfo(s *catalog.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		Source:   s.Source(),
		Records:  s.Len(),
		Version:  s.Version(),
		LoadedAt: s.LoadedAt().Format(time.RFC3339),
	}
}

func statusForError(err error) int {
	switch {
	case IsBadRequest(err):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotLoaded):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// encodeResponse marshals data, or an error Response with a 500 status when
// data cannot be encoded.
func encodeResponse(status int, data interface{}) (int, []byte) {
	body, err := json.Marshal(data)
	if err != nil {
		utils.GetLogger().Error("Failed to encode response", utils.Error(err))
		body, _ = json.Marshal(Response{Success: false, Error: "Failed to encode response"})
		return http.StatusInternalServerError, body
	}
	return status, body
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	status, body := encodeResponse(status, data)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		utils.GetLogger().Warn("Failed to write response", utils.Error(err))
	}
}
