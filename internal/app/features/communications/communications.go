// internal/app/features/communications/communications.go
package communications

import (
	"context"
	"net/http"
	"strings"

	auditstore "github.com/purplesmurf1998/crm-api/internal/app/store/audit"
	commstore "github.com/purplesmurf1998/crm-api/internal/app/store/communications"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/authz"
	"github.com/purplesmurf1998/crm-api/internal/app/system/formutil"
	"github.com/purplesmurf1998/crm-api/internal/app/system/htmlsanitize"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// ServeList lists communications with author and portfolio populated.
//
// Route: GET /communications
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := formutil.ListQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run(ctx, h.Comms.ListSpec(), q)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// HandleCreate logs a communication authored by the signed-in user.
//
// Route: POST /communications
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, r, h.Log, apperr.Unauthorized())
		return
	}
	var in createInput
	if err := formutil.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	c := models.Communication{
		Subject:   strings.TrimSpace(in.Subject),
		Content:   htmlsanitize.Sanitize(in.Content),
		CreatedBy: userID,
		Date:      in.Date.Time,
		Method:    in.Method,
		Portfolio: in.Portfolio,
		Contacts:  in.Contacts,
	}
	if err := inputval.Struct(c); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Comms.Create(ctx, c)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("communication created",
		zap.String("communication_id", created.ID.Hex()),
		zap.String("portfolio_id", created.Portfolio.Hex()),
		zap.String("created_by", userID.Hex()))
	respond.Created(w, created)
}

// ServeView returns one communication, populated like the list.
//
// Route: GET /communications/{commId}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "commId", "Communication")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	spec := h.Comms.ListSpec()
	spec.Scope = bson.M{"_id": id}
	doc, err := listquery.One(ctx, spec)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}
	respond.OK(w, doc)
}

// HandleEdit applies a partial update. New content is sanitized.
//
// Route: PUT /communications/{commId}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "commId", "Communication")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var p commstore.Patch
	if err := formutil.DecodeJSON(r, &p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if p.Subject != nil {
		trimmed := strings.TrimSpace(*p.Subject)
		p.Subject = &trimmed
	}
	if err := inputval.Struct(p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Comms.Update(ctx, id, p, htmlsanitize.Sanitize)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}
	respond.OK(w, c)
}

// HandleDelete deletes a communication.
//
// Route: DELETE /communications/{commId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "commId", "Communication")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Comms.Delete(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if n == 0 {
		respond.Error(w, r, h.Log, notFound(id))
		return
	}
	h.Audit.Deleted(ctx, r, auditstore.EventCommunicationDeleted, id)
	respond.OK(w, struct{}{})
}
