package institutionalstore_test

import (
	"testing"

	institutionalstore "github.com/purplesmurf1998/crm-api/internal/app/store/institutionals"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"github.com/purplesmurf1998/crm-api/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := institutionalstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in, err := store.Create(ctx, models.Institutional{Market: "Morgue", Status: "Prospect"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	status := "Established w/ Opportunity"
	got, err := store.Update(ctx, in.ID, institutionalstore.Patch{Status: &status})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Status != status || got.Market != "Morgue" {
		t.Errorf("unexpected update result: %+v", got)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), institutionalstore.Patch{Status: &status}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}

	n, err := store.Delete(ctx, in.ID)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
	n, err = store.Delete(ctx, in.ID)
	if err != nil || n != 0 {
		t.Errorf("second Delete = %d, %v; want 0, nil", n, err)
	}
}
