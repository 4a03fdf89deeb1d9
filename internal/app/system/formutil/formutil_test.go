package formutil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectIDParam(t *testing.T) {
	id := primitive.NewObjectID()

	tests := []struct {
		name    string
		value   string
		want    primitive.ObjectID
		wantErr string
	}{
		{"valid", id.Hex(), id, ""},
		{"malformed", "abc", primitive.NilObjectID, "Portfolio not found with id of abc"},
		{"empty", "", primitive.NilObjectID, "Portfolio not found with id of "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "portId", tt.value)
			got, err := ObjectIDParam(r, "portId", "Portfolio")
			if tt.wantErr == "" {
				if err != nil || got != tt.want {
					t.Errorf("got %s, %v; want %s", got.Hex(), err, tt.want.Hex())
				}
				return
			}
			if !apperr.Is(err, apperr.KindNotFound) {
				t.Fatalf("expected NotFound, got %v", err)
			}
			if msg := apperr.Message(err); msg != tt.wantErr {
				t.Errorf("message = %q, want %q", msg, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		payload string
		want    string
		wantErr bool
	}{
		{"object", `{"name":"Ann"}`, "Ann", false},
		{"empty body", ``, "", false},
		{"malformed", `{"name":`, "", true},
		{"wrong type", `{"name":3}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/", strings.NewReader(tt.payload))
			var b body
			err := DecodeJSON(r, &b)
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindBadRequest) {
					t.Errorf("expected BadRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Name != tt.want {
				t.Errorf("Name = %q, want %q", b.Name, tt.want)
			}
		})
	}
}

func TestListQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=2&limit=10&sort=-date", nil)
	q, err := ListQuery(r)
	if err != nil {
		t.Fatalf("ListQuery: %v", err)
	}
	if q.Page != 2 || q.Limit != 10 || len(q.Sort) != 1 || q.Sort[0] != "-date" {
		t.Errorf("unexpected query: %+v", q)
	}
}
