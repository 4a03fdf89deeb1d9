package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUser returns an in-memory admin for request contexts.
func AdminUser() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  models.RoleAdmin,
	}
}

// ManagerUser returns an in-memory account manager for request contexts.
func ManagerUser() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Test Manager",
		Email: "manager@test.com",
		Role:  models.RoleAccountManager,
	}
}

// WithUser adds a user to the request context, bypassing token checks.
func WithUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &u)
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is body encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates a JSON request with u in context.
func NewAuthenticatedRequest(t *testing.T, method, target string, body any, u models.User) *http.Request {
	t.Helper()
	return WithUser(NewJSONRequest(t, method, target, body), u)
}

// Envelope is the generic response body.
type Envelope struct {
	Success    bool            `json:"success"`
	Error      string          `json:"error"`
	Count      int             `json:"count"`
	Pagination json.RawMessage `json:"pagination"`
	Data       json.RawMessage `json:"data"`
	Removed    json.RawMessage `json:"removed"`
}

// DecodeEnvelope decodes rec's body, failing the test on malformed JSON.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

// DecodeData decodes the envelope's data into v.
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, v any) Envelope {
	t.Helper()
	env := DecodeEnvelope(t, rec)
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return env
}
