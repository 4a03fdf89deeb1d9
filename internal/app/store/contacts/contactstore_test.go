package contactstore_test

import (
	"errors"
	"testing"

	contactstore "github.com/purplesmurf1998/crm-api/internal/app/store/contacts"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"github.com/purplesmurf1998/crm-api/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func ptr(s string) *string { return &s }

func TestPatch_Apply_RederivesFullname(t *testing.T) {
	base := models.Contact{Firstname: "Ann", Lastname: "Lee", Fullname: "Ann Lee"}

	tests := []struct {
		name  string
		patch contactstore.Patch
		want  string
	}{
		{"lastname only", contactstore.Patch{Lastname: ptr("Park")}, "Ann Park"},
		{"clear firstname", contactstore.Patch{Firstname: ptr("")}, "Lee"},
		{"trimmed", contactstore.Patch{Firstname: ptr("  Bo "), Lastname: ptr(" Kim ")}, "Bo Kim"},
		{"unrelated field", contactstore.Patch{HomePhone: ptr("555")}, "Ann Lee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.patch.Apply(base)
			if got.Fullname != tt.want {
				t.Errorf("Fullname = %q, want %q", got.Fullname, tt.want)
			}
		})
	}
}

func TestStore_Create_DerivesFullname(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Create(ctx, models.Contact{Firstname: " Marie ", Lastname: "Tremblay", Fullname: "ignored"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Fullname != "Marie Tremblay" {
		t.Errorf("Fullname = %q, want %q", c.Fullname, "Marie Tremblay")
	}

	solo, err := store.Create(ctx, models.Contact{Lastname: "Notary Office"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if solo.Fullname != "Notary Office" {
		t.Errorf("Fullname = %q, want lastname only", solo.Fullname)
	}
}

func TestStore_Create_DuplicateFullname(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.Contact{Firstname: "Ann", Lastname: "Lee"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Contact{Firstname: "Ann ", Lastname: " Lee"})
	if !errors.Is(err, contactstore.ErrDuplicateContact) {
		t.Errorf("expected ErrDuplicateContact, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fx.CreateContact(ctx, "Ann", "Lee")
	fx.CreateContact(ctx, "Bo", "Kim")

	updated, err := store.Update(ctx, c.ID, contactstore.Patch{Lastname: ptr("Park"), Email1: ptr("ann@example.com")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Fullname != "Ann Park" || updated.Email1 != "ann@example.com" {
		t.Errorf("unexpected update result: %+v", updated)
	}

	stored, _ := store.GetByID(ctx, c.ID)
	if stored.Fullname != "Ann Park" {
		t.Errorf("stored Fullname = %q, want Ann Park", stored.Fullname)
	}

	_, err = store.Update(ctx, c.ID, contactstore.Patch{Firstname: ptr("Bo"), Lastname: ptr("Kim")})
	if !errors.Is(err, contactstore.ErrDuplicateContact) {
		t.Errorf("expected ErrDuplicateContact when renaming onto another contact, got %v", err)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), contactstore.Patch{}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := fx.CreateContact(ctx, "Ann", "Lee")
	n, err := store.Delete(ctx, c.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v; want 1, nil", n, err)
	}
	ok, err := store.Exists(ctx, c.ID)
	if err != nil || ok {
		t.Errorf("Exists after delete = %v, %v", ok, err)
	}
}
