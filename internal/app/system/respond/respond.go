// internal/app/system/respond/respond.go
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"go.uber.org/zap"
)

// envelope is the body of every non-list success response.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes {success:true, data}.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes {success:true, data} with 201.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Error translates err to its status and writes {success:false, error}.
// Server errors are logged at Error level, client errors at Debug.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	status := apperr.Status(err)
	if log != nil {
		fields := []zap.Field{
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}
	}
	JSON(w, status, errorBody{Success: false, Error: apperr.Message(err)})
}
