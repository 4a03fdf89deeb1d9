package portfoliostore_test

import (
	"errors"
	"testing"
	"time"

	portfoliostore "github.com/purplesmurf1998/crm-api/internal/app/store/portfolios"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"github.com/purplesmurf1998/crm-api/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func strPtr(s string) *string { return &s }

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := portfoliostore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sid := primitive.NewObjectID()
	p, err := store.Create(ctx, models.Portfolio{
		PortName:   "  Gagnon Estate ",
		PortType:   models.PortTypeSuccession,
		Succession: &sid,
		Manager:    primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if p.PortName != "Gagnon Estate" {
		t.Errorf("PortName = %q, want trimmed", p.PortName)
	}
	if p.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped")
	}
	if p.Associates == nil {
		t.Error("Associates should default to an empty list")
	}

	_, err = store.Create(ctx, models.Portfolio{
		PortName: "Gagnon Estate",
		PortType: models.PortTypeSuccession,
		Manager:  primitive.NewObjectID(),
	})
	if !errors.Is(err, portfoliostore.ErrDuplicatePortfolio) {
		t.Errorf("expected ErrDuplicatePortfolio, got %v", err)
	}
}

func TestStore_Create_PortNumberUniqueWhenPresent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := portfoliostore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mgr := primitive.NewObjectID()
	for _, name := range []string{"A", "B"} {
		if _, err := store.Create(ctx, models.Portfolio{PortName: name, PortType: models.PortTypeTrust, Manager: mgr}); err != nil {
			t.Fatalf("Create(%s) without number failed: %v", name, err)
		}
	}

	if _, err := store.Create(ctx, models.Portfolio{PortName: "C", PortNumber: "P-1", PortType: models.PortTypeTrust, Manager: mgr}); err != nil {
		t.Fatalf("Create(C) failed: %v", err)
	}
	_, err := store.Create(ctx, models.Portfolio{PortName: "D", PortNumber: "P-1", PortType: models.PortTypeTrust, Manager: mgr})
	if !errors.Is(err, portfoliostore.ErrDuplicatePortfolio) {
		t.Errorf("expected ErrDuplicatePortfolio for repeated number, got %v", err)
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := portfoliostore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mgr := primitive.NewObjectID()
	p, sp := fx.CreateSuccessionPortfolio(ctx, "Roy Estate", mgr)
	fx.CreateInstitutionalPortfolio(ctx, "Parish Fund", mgr)

	closed := inputval.Date{Time: time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC)}
	updated, err := store.Update(ctx, p.ID, portfoliostore.Patch{
		PortNumber:      strPtr("R-100"),
		PortDescription: strPtr("Estate file"),
		ClosedAt:        &closed,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.PortNumber != "R-100" || updated.PortDescription != "Estate file" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.ClosedAt == nil || !updated.ClosedAt.Equal(closed.Time) {
		t.Errorf("ClosedAt = %v, want %v", updated.ClosedAt, closed.Time)
	}
	if updated.Succession == nil || *updated.Succession != sp.ID {
		t.Error("sub-profile reference must be untouched by Update")
	}

	cleared, err := store.Update(ctx, p.ID, portfoliostore.Patch{PortNumber: strPtr("")})
	if err != nil {
		t.Fatalf("Update(clear number) failed: %v", err)
	}
	if cleared.PortNumber != "" {
		t.Errorf("PortNumber = %q, want cleared", cleared.PortNumber)
	}
	n, _ := db.Collection(portfoliostore.Collection).CountDocuments(ctx, bson.M{"_id": p.ID, "portNumber": bson.M{"$exists": true}})
	if n != 0 {
		t.Error("cleared portNumber should be unset, not stored empty")
	}

	_, err = store.Update(ctx, p.ID, portfoliostore.Patch{PortName: strPtr("Parish Fund")})
	if !errors.Is(err, portfoliostore.ErrDuplicatePortfolio) {
		t.Errorf("expected ErrDuplicatePortfolio on rename collision, got %v", err)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), portfoliostore.Patch{PortDescription: strPtr("x")}); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Delete_CascadesSubProfileOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := portfoliostore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mgr := primitive.NewObjectID()
	sp, succ := fx.CreateSuccessionPortfolio(ctx, "Roy Estate", mgr)
	ip, inst := fx.CreateInstitutionalPortfolio(ctx, "Parish Fund", mgr)
	c := fx.CreateContact(ctx, "Ann", "Lee")
	fx.AddContactToPortfolio(ctx, sp.ID, c.ID, "Heir")
	fx.CreateCommunication(ctx, "Call", sp.ID, mgr)

	if _, err := store.Delete(ctx, sp.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	count := func(coll string, filter bson.M) int64 {
		t.Helper()
		n, err := db.Collection(coll).CountDocuments(ctx, filter)
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		return n
	}

	if count("portfolios", bson.M{"_id": sp.ID}) != 0 {
		t.Error("portfolio should be deleted")
	}
	if count("successions", bson.M{"_id": succ.ID}) != 0 {
		t.Error("succession sub-profile should be deleted")
	}
	if count("contacts", bson.M{"_id": c.ID}) != 1 {
		t.Error("contact must survive portfolio delete")
	}
	if count("contactinportfolios", bson.M{"portfolio": sp.ID}) != 1 {
		t.Error("join rows must survive portfolio delete")
	}
	if count("communications", bson.M{"portfolio": sp.ID}) != 1 {
		t.Error("communications must survive portfolio delete")
	}
	if count("institutionals", bson.M{"_id": inst.ID}) != 1 || count("portfolios", bson.M{"_id": ip.ID}) != 1 {
		t.Error("unrelated portfolio was touched")
	}

	if _, err := store.Delete(ctx, sp.ID); err != mongo.ErrNoDocuments {
		t.Errorf("second Delete: expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_ListSpec_PopulatesWithoutPasswords(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := portfoliostore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mgr := fx.CreateUser(ctx, "Manager", "mgr@example.com", models.RoleAccountManager)
	fx.CreateSuccessionPortfolio(ctx, "Beta", mgr.ID)
	fx.CreateInstitutionalPortfolio(ctx, "Alpha", mgr.ID)

	q, err := listquery.Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res, err := listquery.Run(ctx, store.ListSpec(), q)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("Count = %d, want 2", res.Count)
	}
	if res.Data[0]["portName"] != "Alpha" {
		t.Errorf("default sort should be portName, first = %v", res.Data[0]["portName"])
	}
	if _, ok := res.Data[0]["institutional"].(bson.M); !ok {
		t.Errorf("institutional not populated: %T", res.Data[0]["institutional"])
	}
	if _, ok := res.Data[1]["succession"].(bson.M); !ok {
		t.Errorf("succession not populated: %T", res.Data[1]["succession"])
	}
	manager, ok := res.Data[0]["manager"].(bson.M)
	if !ok {
		t.Fatalf("manager not populated: %T", res.Data[0]["manager"])
	}
	if _, leaked := manager["password"]; leaked {
		t.Error("populated manager must not carry a password")
	}
	if manager["email"] != "mgr@example.com" {
		t.Errorf("manager email = %v", manager["email"])
	}
}
