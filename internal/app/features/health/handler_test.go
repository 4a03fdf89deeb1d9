package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/purplesmurf1998/crm-api/internal/app/features/health"
	"github.com/purplesmurf1998/crm-api/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context, *readpref.ReadPref) error {
	return errors.New("server selection timeout")
}

type healthBody struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Message  string `json:"message"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) healthBody {
	t.Helper()
	var b healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return b
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := health.NewHandler(db.Client(), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	b := decode(t, rec)
	if b.Status != "ok" || b.Database != "connected" {
		t.Errorf("unexpected body: %+v", b)
	}
}

func TestServe_DatabaseDown(t *testing.T) {
	handler := &health.Handler{Client: failingPinger{}, Log: zap.NewNop()}

	rec := httptest.NewRecorder()
	handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
	b := decode(t, rec)
	if b.Status != "error" || b.Database != "disconnected" || b.Message != "Database unavailable" {
		t.Errorf("unexpected body: %+v", b)
	}
}
