// internal/app/features/communications/contacts.go
package communications

import (
	"context"
	"net/http"

	"github.com/purplesmurf1998/crm-api/internal/app/system/formutil"
	"github.com/purplesmurf1998/crm-api/internal/app/system/respond"
	"github.com/purplesmurf1998/crm-api/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (h *Handler) ids(r *http.Request) (comm, cp primitive.ObjectID, err error) {
	if comm, err = formutil.ObjectIDParam(r, "commId", "Communication"); err != nil {
		return
	}
	cp, err = formutil.ObjectIDParam(r, "cpId", "Contact in portfolio")
	return
}

// HandleAttach appends a contact-in-portfolio to the communication.
//
// Route: POST /communications/{commId}/contacts/cpId/{cpId}
func (h *Handler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	commID, cpID, err := h.ids(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Relations.AttachToCommunication(ctx, commID, cpID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, c)
}

// HandleDetach cuts the contact list at cpId. The entry and every entry
// after it are removed.
//
// Route: DELETE /communications/{commId}/contacts/cpId/{cpId}
func (h *Handler) HandleDetach(w http.ResponseWriter, r *http.Request) {
	commID, cpID, err := h.ids(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, removed, err := h.Relations.DetachFromCommunication(ctx, commID, cpID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if len(removed) > 1 {
		h.Log.Debug("detach removed trailing contacts",
			zap.String("communication_id", commID.Hex()),
			zap.Int("removed", len(removed)))
	}
	respond.JSON(w, http.StatusOK, detachResponse{Success: true, Data: c, Removed: removed})
}
