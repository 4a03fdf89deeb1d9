// internal/app/features/portfolios/contacts.go
package portfolios

import (
	"context"
	"net/http"

	relationmgr "github.com/purplesmurf1998/crm-api/internal/app/manager/relations"
	cipstore "github.com/purplesmurf1998/crm-api/internal/app/store/contactsinportfolios"
	"github.com/purplesmurf1998/crm-api/internal/app/system/formutil"
	"github.com/purplesmurf1998/crm-api/internal/app/system/htmlsanitize"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) pair(r *http.Request) (portfolio, contact primitive.ObjectID, err error) {
	if portfolio, err = formutil.ObjectIDParam(r, "portId", "Portfolio"); err != nil {
		return
	}
	contact, err = formutil.ObjectIDParam(r, "contactId", "Contact")
	return
}

// ServeContacts lists the join rows of one portfolio.
//
// Route: GET /portfolios/{portId}/contacts
func (h *Handler) ServeContacts(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "portId", "Portfolio")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	q, err := formutil.ListQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Relations.ListMemberships(ctx, id, q)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// HandleAttachContact adds a contact to a portfolio with a role.
//
// Route: POST /portfolios/{portId}/contacts/{contactId}
func (h *Handler) HandleAttachContact(w http.ResponseWriter, r *http.Request) {
	portfolio, contact, err := h.pair(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in relationmgr.AttachInput
	if err := formutil.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	in.Description = htmlsanitize.StripTags(in.Description)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cp, err := h.Relations.AttachContact(ctx, portfolio, contact, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, cp)
}

// HandleEditContact updates a contact's membership in a portfolio.
//
// Route: PUT /portfolios/{portId}/contacts/{contactId}
func (h *Handler) HandleEditContact(w http.ResponseWriter, r *http.Request) {
	portfolio, contact, err := h.pair(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var p cipstore.Patch
	if err := formutil.DecodeJSON(r, &p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if p.Description != nil {
		clean := htmlsanitize.StripTags(*p.Description)
		p.Description = &clean
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	cp, err := h.Relations.UpdateMembership(ctx, portfolio, contact, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, cp)
}
