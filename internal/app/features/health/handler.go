package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/profilecompletion/internal/app/system/completion"
	"github.com/dalemusser/profilecompletion/internal/app/system/fieldkeys"
	"github.com/dalemusser/profilecompletion/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client   *mongo.Client
	Settings completion.SettingsSource
	Log      *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
func NewHandler(client *mongo.Client, settings completion.SettingsSource, logger *zap.Logger) *Handler {
	return &Handler{
		Client:   client,
		Settings: settings,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status     string            `json:"status"`
	Database   string            `json:"database"`
	Message    string            `json:"message,omitempty"`
	Error      string            `json:"error,omitempty"`
	Completion *completionStatus `json:"completion,omitempty"`
}

// completionStatus summarizes the profile completion settings.
type completionStatus struct {
	Enabled bool     `json:"enabled"`
	Fields  []string `json:"fields"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "completion":{"enabled":true,"fields":["core:city"]} }
//
// On DB failure: 503 and
//
//	{ "status":"error", "message":"Database unavailable", "error":"…"}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:   "ok",
		Database: "connected",
	}

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		resp.Status = "error"
		resp.Database = "disconnected"
		resp.Message = "Database unavailable"
		resp.Error = err.Error()
		_ = json.NewEncoder(w).Encode(resp)
		return
	}

	// Informational only; a settings read failure does not fail the check.
	if h.Settings != nil {
		if s, err := h.Settings.Get(ctx); err != nil {
			h.Log.Warn("health-check: settings read failed", zap.Error(err))
		} else {
			resp.Completion = &completionStatus{
				Enabled: s.Enabled,
				Fields:  fieldkeys.Strings(completion.ConfiguredKeys(s)),
			}
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
