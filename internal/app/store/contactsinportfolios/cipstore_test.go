package cipstore_test

import (
	"testing"
	"time"

	cipstore "github.com/purplesmurf1998/crm-api/internal/app/store/contactsinportfolios"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"github.com/purplesmurf1998/crm-api/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_CreateAndUpdateByPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := cipstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	port, contact := primitive.NewObjectID(), primitive.NewObjectID()
	cp, err := store.Create(ctx, models.ContactInPortfolio{Portfolio: port, Contact: contact, Role: " Heir "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if cp.Role != "Heir" || cp.CreatedAt.IsZero() {
		t.Errorf("unexpected created row: %+v", cp)
	}

	role := "Executor"
	since := inputval.Date{Time: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)}
	got, err := store.UpdateByPair(ctx, port, contact, cipstore.Patch{Role: &role, InactiveSince: &since})
	if err != nil {
		t.Fatalf("UpdateByPair failed: %v", err)
	}
	if got.ID != cp.ID || got.Role != "Executor" {
		t.Errorf("unexpected update result: %+v", got)
	}
	if got.InactiveSince == nil || !got.InactiveSince.Equal(since.Time) {
		t.Errorf("InactiveSince = %v", got.InactiveSince)
	}

	same, err := store.UpdateByPair(ctx, port, contact, cipstore.Patch{})
	if err != nil || same.Role != "Executor" {
		t.Errorf("empty patch = %+v, %v", same, err)
	}

	if _, err := store.UpdateByPair(ctx, port, primitive.NewObjectID(), cipstore.Patch{Role: &role}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments for unknown pair, got %v", err)
	}
}

func TestStore_ListSpec_ScopesAndCountsContacts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := cipstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mgr := primitive.NewObjectID()
	p1, _ := fx.CreateSuccessionPortfolio(ctx, "One", mgr)
	p2, _ := fx.CreateSuccessionPortfolio(ctx, "Two", mgr)
	a := fx.CreateContact(ctx, "Ann", "Lee")
	b := fx.CreateContact(ctx, "Bo", "Kim")
	fx.CreateContact(ctx, "Cy", "Ng")
	fx.AddContactToPortfolio(ctx, p1.ID, a.ID, "Heir")
	fx.AddContactToPortfolio(ctx, p1.ID, b.ID, "Notary")
	fx.AddContactToPortfolio(ctx, p2.ID, a.ID, "Heir")

	q, _ := listquery.Parse(nil)
	res, err := listquery.Run(ctx, store.ListSpec(p1.ID), q)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("Count = %d, want 2 rows for portfolio one", res.Count)
	}
	for _, row := range res.Data {
		pf, ok := row["portfolio"].(bson.M)
		if !ok || pf["_id"] != p1.ID {
			t.Errorf("row portfolio = %v, want populated %s", row["portfolio"], p1.ID.Hex())
		}
		if _, ok := row["contact"].(bson.M); !ok {
			t.Errorf("contact not populated: %T", row["contact"])
		}
	}

	all, err := listquery.Run(ctx, store.ListSpec(primitive.NilObjectID), q)
	if err != nil {
		t.Fatalf("Run(all): %v", err)
	}
	if all.Count != 3 {
		t.Errorf("unscoped Count = %d, want 3", all.Count)
	}

	// Pagination is computed against the three contacts, not the join rows.
	small, _ := listquery.Parse(map[string][]string{"limit": {"2"}})
	paged, err := listquery.Run(ctx, store.ListSpec(primitive.NilObjectID), small)
	if err != nil {
		t.Fatalf("Run(paged): %v", err)
	}
	if paged.Pagination.Next == nil || paged.Pagination.Next.Page != 2 {
		t.Errorf("Next = %+v, want page 2", paged.Pagination.Next)
	}
}
