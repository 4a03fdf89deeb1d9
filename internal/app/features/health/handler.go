// internal/app/features/health/handler.go
package health

import (
	"context"
	"net/http"

	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is the part of *mongo.Client the health check uses.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	Client Pinger
	Log    *zap.Logger
}

// NewHandler constructs a health Handler with the Mongo client and logger.
func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Log: logger}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected" }
//
// On DB failure: 503 and
//
//	{ "status":"error", "database":"disconnected", "message":"Database unavailable" }
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	if err := h.Client.Ping(ctx, readpref.Primary()); err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		respond.JSON(w, http.StatusServiceUnavailable, healthResponse{
			Status:   "error",
			Database: "disconnected",
			Message:  "Database unavailable",
		})
		return
	}
	respond.JSON(w, http.StatusOK, healthResponse{Status: "ok", Database: "connected"})
}
