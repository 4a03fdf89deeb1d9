// internal/app/features/contacts/handler.go
package contacts

import (
	"context"
	"errors"
	"net/http"
	"strings"

	relationmgr "github.com/purplesmurf1998/crm-api/internal/app/manager/relations"
	auditstore "github.com/purplesmurf1998/crm-api/internal/app/store/audit"
	contactstore "github.com/purplesmurf1998/crm-api/internal/app/store/contacts"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auditlog"
	"github.com/purplesmurf1998/crm-api/internal/app/system/formutil"
	"github.com/purplesmurf1998/crm-api/internal/app/system/htmlsanitize"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Contacts.
type Handler struct {
	Contacts  *contactstore.Store
	Relations *relationmgr.Manager
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

// NewHandler constructs a Contacts handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Contacts:  contactstore.New(db),
		Relations: relationmgr.New(db),
		Log:       logger,
	}
}

// storeErr maps contact store errors onto the response taxonomy.
func storeErr(err error, id primitive.ObjectID) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.NotFound("Contact not found with id of %s", id.Hex())
	case errors.Is(err, contactstore.ErrDuplicateContact):
		return apperr.Wrap(apperr.KindValidation, err, "Duplicate field value entered")
	}
	return err
}

// ServeList lists contacts.
//
// Route: GET /contacts
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	h.serveList(w, r, h.Contacts.ListSpec())
}

// ServeMemberships lists every contact-in-portfolio row.
//
// Route: GET /contacts/portfolios
func (h *Handler) ServeMemberships(w http.ResponseWriter, r *http.Request) {
	q, err := formutil.ListQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Relations.ListMemberships(ctx, primitive.NilObjectID, q)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

func (h *Handler) serveList(w http.ResponseWriter, r *http.Request, spec listquery.Spec) {
	q, err := formutil.ListQuery(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := listquery.Run(ctx, spec, q)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// HandleCreate creates a contact. The full name is derived from the first
// and last names and must be unique.
//
// Route: POST /contacts
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var c models.Contact
	if err := formutil.DecodeJSON(r, &c); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	c.ID = primitive.NilObjectID
	c.Firstname = strings.TrimSpace(c.Firstname)
	c.Lastname = strings.TrimSpace(c.Lastname)
	c.Description = htmlsanitize.StripTags(c.Description)
	if err := inputval.Struct(c); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Contacts.Create(ctx, c)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, c.ID))
		return
	}
	respond.Created(w, created)
}

// ServeView returns one contact.
//
// Route: GET /contacts/{contactId}
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "contactId", "Contact")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Contacts.GetByID(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}
	respond.OK(w, c)
}

// HandleEdit applies a partial update and re-derives the full name.
//
// Route: PUT /contacts/{contactId}
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "contactId", "Contact")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var p contactstore.Patch
	if err := formutil.DecodeJSON(r, &p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if p.Lastname != nil {
		trimmed := strings.TrimSpace(*p.Lastname)
		p.Lastname = &trimmed
	}
	if p.Description != nil {
		clean := htmlsanitize.StripTags(*p.Description)
		p.Description = &clean
	}
	if err := inputval.Struct(p); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Contacts.Update(ctx, id, p)
	if err != nil {
		respond.Error(w, r, h.Log, storeErr(err, id))
		return
	}
	respond.OK(w, c)
}

// HandleDelete deletes a contact. Its join rows are left in place.
//
// Route: DELETE /contacts/{contactId}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := formutil.ObjectIDParam(r, "contactId", "Contact")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Contacts.Delete(ctx, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if n == 0 {
		respond.Error(w, r, h.Log, storeErr(mongo.ErrNoDocuments, id))
		return
	}
	h.Audit.Deleted(ctx, r, auditstore.EventContactDeleted, id)
	respond.OK(w, struct{}{})
}
