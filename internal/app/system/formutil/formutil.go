// Package formutil reads request input for the JSON handlers: path ids and
// request bodies.
//
// Example usage:
//
//	id, err := formutil.ObjectIDParam(r, "portId", "Portfolio")
//	if err != nil {
//		respond.Error(w, r, h.Log, err)
//		return
//	}
//	var in portfoliomgr.UpdateInput
//	if err := formutil.DecodeJSON(r, &in); err != nil {
//		respond.Error(w, r, h.Log, err)
//		return
//	}
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxBodyBytes caps the size of a JSON request body.
const MaxBodyBytes = 1 << 20

// ObjectIDParam reads the chi URL parameter name as an ObjectID. A malformed
// id is reported the same way as a missing document: label not found.
func ObjectIDParam(r *http.Request, name, label string) (primitive.ObjectID, error) {
	raw := chi.URLParam(r, name)
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("%s not found with id of %s", label, raw)
	}
	return oid, nil
}

// DecodeJSON decodes the request body into v. An empty body leaves v
// untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Wrap(apperr.KindBadRequest, err, "Invalid request body")
	}
	return nil
}

// ListQuery parses the list-query parameters of r.
func ListQuery(r *http.Request) (listquery.Query, error) {
	return listquery.Parse(r.URL.Query())
}
