package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures inserts test documents directly, bypassing stores.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to insert test %s: %v", coll, err)
	}
}

// CreateUser inserts a user with the given role. The password hash is a
// placeholder; use the auth service when a real login is needed.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		Role:         role,
		Privileges:   []string{models.PrivilegeUser},
		PasswordHash: "x",
		CreatedAt:    time.Now().UTC(),
	}
	f.insert(ctx, "users", u)
	u.PasswordHash = ""
	return u
}

// CreateSuccessionPortfolio inserts a succession sub-profile and its portfolio.
func (f *Fixtures) CreateSuccessionPortfolio(ctx context.Context, name string, manager primitive.ObjectID) (models.Portfolio, models.Succession) {
	f.t.Helper()
	s := models.Succession{
		ID:          primitive.NewObjectID(),
		ClientName:  "Estate of " + name,
		DateOfDeath: time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC),
		TrustRole:   models.TrustRoleUniqueLiquidator,
	}
	f.insert(ctx, "successions", s)

	p := models.Portfolio{
		ID:         primitive.NewObjectID(),
		PortName:   name,
		PortType:   models.PortTypeSuccession,
		Succession: &s.ID,
		Manager:    manager,
		Associates: []primitive.ObjectID{},
		CreatedAt:  time.Now().UTC(),
	}
	f.insert(ctx, "portfolios", p)
	return p, s
}

// CreateInstitutionalPortfolio inserts an institutional sub-profile and its portfolio.
func (f *Fixtures) CreateInstitutionalPortfolio(ctx context.Context, name string, manager primitive.ObjectID) (models.Portfolio, models.Institutional) {
	f.t.Helper()
	in := models.Institutional{
		ID:     primitive.NewObjectID(),
		Market: "Holdings",
		Status: "Prospect",
	}
	f.insert(ctx, "institutionals", in)

	p := models.Portfolio{
		ID:            primitive.NewObjectID(),
		PortName:      name,
		PortType:      models.PortTypeInstitutional,
		Institutional: &in.ID,
		Manager:       manager,
		Associates:    []primitive.ObjectID{},
		CreatedAt:     time.Now().UTC(),
	}
	f.insert(ctx, "portfolios", p)
	return p, in
}

// CreateContact inserts a contact with its fullname derived.
func (f *Fixtures) CreateContact(ctx context.Context, firstname, lastname string) models.Contact {
	f.t.Helper()
	c := models.Contact{
		ID:        primitive.NewObjectID(),
		Firstname: firstname,
		Lastname:  lastname,
		Fullname:  models.DeriveFullname(firstname, lastname),
	}
	f.insert(ctx, "contacts", c)
	return c
}

// AddContactToPortfolio inserts a join row.
func (f *Fixtures) AddContactToPortfolio(ctx context.Context, portfolio, contact primitive.ObjectID, role string) models.ContactInPortfolio {
	f.t.Helper()
	cp := models.ContactInPortfolio{
		ID:        primitive.NewObjectID(),
		Portfolio: portfolio,
		Contact:   contact,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	f.insert(ctx, "contactinportfolios", cp)
	return cp
}

// CreateCommunication inserts a communication on portfolio with the given
// contact-in-portfolio ids, in order.
func (f *Fixtures) CreateCommunication(ctx context.Context, subject string, portfolio, createdBy primitive.ObjectID, contacts ...primitive.ObjectID) models.Communication {
	f.t.Helper()
	if contacts == nil {
		contacts = []primitive.ObjectID{}
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := models.Communication{
		ID:        primitive.NewObjectID(),
		Subject:   subject,
		Content:   "Discussed next steps.",
		CreatedBy: createdBy,
		CreatedAt: now,
		Date:      now,
		Method:    models.MethodPhone,
		Portfolio: portfolio,
		Contacts:  contacts,
	}
	f.insert(ctx, "communications", c)
	return c
}
