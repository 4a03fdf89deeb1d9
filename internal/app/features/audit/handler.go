// internal/app/features/audit/handler.go
package audit

import (
	"context"
	"net/http"

	auditstore "github.com/purplesmurf1998/crm-api/internal/app/store/audit"
	"github.com/purplesmurf1998/crm-api/internal/app/system/formutil"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the audit trail to admins.
type Handler struct {
	Events *auditstore.Store
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Events: auditstore.New(db), Log: logger}
}

// ServeList lists audit events, newest first. Accepts the usual list
// query parameters (category=auth, success=false, timestamp[gte]=...).
//
// Route: GET /audit
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := formutil.ListQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run(ctx, h.Events.ListSpec(), q)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}
