// internal/app/features/portfolios/portfolios.go
package portfolios

import (
	"context"
	"net/http"

	portfoliomgr "github.com/purplesmurf1998/crm-api/internal/app/manager/portfolios"
	auditstore "github.com/purplesmurf1998/crm-api/internal/app/store/audit"
	"github.com/purplesmurf1998/crm-api/internal/app/system/formutil"
	"github.com/purplesmurf1998/crm-api/internal/app/system/htmlsanitize"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeList lists portfolios with their sub-profiles and users populated.
//
// Route: GET /portfolios
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q, err := formutil.ListQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Portfolios.List(ctx, q)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// HandleCreate creates a portfolio together with its sub-profile.
//
// Route: POST /portfolios
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in portfoliomgr.CreateInput
	if err := formutil.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.PortDescription = htmlsanitize.StripTags(in.PortDescription)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.Portfolios.Create(ctx, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("portfolio created",
		zap.String("portfolio_id", view.ID.Hex()),
		zap.String("port_type", string(view.PortType)))
	respond.Created(w, view)
}

// ServeView returns one portfolio, populated like the list.
//
// Route: GET /portfolios/{portId}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "portId", "Portfolio")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	doc, err := h.Portfolios.Get(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, doc)
}

// HandleEdit updates a portfolio and, optionally, its sub-profile.
//
// Route: PUT /portfolios/{portId}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "portId", "Portfolio")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in portfoliomgr.UpdateInput
	if err := formutil.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.PortDescription != nil {
		clean := htmlsanitize.StripTags(*in.PortDescription)
		in.PortDescription = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.Portfolios.Update(ctx, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, view)
}

// HandleDelete deletes a portfolio and its sub-profile.
//
// Route: DELETE /portfolios/{portId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "portId", "Portfolio")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Portfolios.Delete(ctx, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("portfolio deleted", zap.String("portfolio_id", id.Hex()))
	h.Audit.Deleted(ctx, r, auditstore.EventPortfolioDeleted, id)
	respond.OK(w, struct{}{})
}
