// internal/app/store/portfolios/portfoliostore.go
package portfoliostore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	institutionalstore "github.com/purplesmurf1998/crm-api/internal/app/store/institutionals"
	successionstore "github.com/purplesmurf1998/crm-api/internal/app/store/successions"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the portfolios collection.
const Collection = "portfolios"

var ErrDuplicatePortfolio = errors.New("a portfolio with this name or number already exists")

type Store struct {
	c              *mongo.Collection
	successions    *mongo.Collection
	institutionals *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:              db.Collection(Collection),
		successions:    db.Collection(successionstore.Collection),
		institutionals: db.Collection(institutionalstore.Collection),
	}
}

// Patch is a partial update of the top-level portfolio fields. It has no
// sub-profile reference fields, so an update can never repoint them.
type Patch struct {
	PortName        *string               `json:"portName" validate:"omitnil,required"`
	PortNumber      *string               `json:"portNumber"`
	PortDescription *string               `json:"portDescription" validate:"omitnil,max=500"`
	Manager         *primitive.ObjectID   `json:"manager" validate:"omitnil,required"`
	Associates      *[]primitive.ObjectID `json:"associates"`
	ClosedAt        *inputval.Date        `json:"closedAt"`
	LastContacted   *inputval.Date        `json:"lastContacted"`
}

func (p Patch) update() bson.M {
	set := bson.M{}
	unset := bson.M{}
	if p.PortName != nil {
		set["portName"] = strings.TrimSpace(*p.PortName)
	}
	if p.PortNumber != nil {
		// An empty number is removed so the sparse unique index ignores it.
		if n := strings.TrimSpace(*p.PortNumber); n != "" {
			set["portNumber"] = n
		} else {
			unset["portNumber"] = ""
		}
	}
	if p.PortDescription != nil {
		set["portDescription"] = *p.PortDescription
	}
	if p.Manager != nil {
		set["manager"] = *p.Manager
	}
	if p.Associates != nil {
		a := *p.Associates
		if a == nil {
			a = []primitive.ObjectID{}
		}
		set["associates"] = a
	}
	if p.ClosedAt != nil {
		set["closedAt"] = p.ClosedAt.Time
	}
	if p.LastContacted != nil {
		set["lastContacted"] = p.LastContacted.Time
	}

	upd := bson.M{}
	if len(set) > 0 {
		upd["$set"] = set
	}
	if len(unset) > 0 {
		upd["$unset"] = unset
	}
	return upd
}

func (s *Store) Create(ctx context.Context, p models.Portfolio) (models.Portfolio, error) {
	p.ID = primitive.NewObjectID()
	p.PortName = strings.TrimSpace(p.PortName)
	p.PortNumber = strings.TrimSpace(p.PortNumber)
	p.CreatedAt = time.Now().UTC()
	if p.Associates == nil {
		p.Associates = []primitive.ObjectID{}
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Portfolio{}, ErrDuplicatePortfolio
		}
		return models.Portfolio{}, err
	}
	return p, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Portfolio, error) {
	var p models.Portfolio
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Portfolio{}, err
	}
	return p, nil
}

// Exists reports whether a portfolio with id exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update applies p and returns the updated portfolio. Returns
// mongo.ErrNoDocuments if id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (models.Portfolio, error) {
	upd := p.update()
	if len(upd) == 0 {
		return s.GetByID(ctx, id)
	}
	var out models.Portfolio
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, upd, opts).Decode(&out); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Portfolio{}, ErrDuplicatePortfolio
		}
		return models.Portfolio{}, err
	}
	return out, nil
}

// Delete removes a portfolio and whichever sub-profile it references, the
// sub-profile first. The steps are not atomic. Contacts, join rows and
// communications that reference the portfolio are left in place. Returns
// mongo.ErrNoDocuments if id does not exist.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (models.Portfolio, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Portfolio{}, err
	}
	if p.Succession != nil {
		if _, err := s.successions.DeleteOne(ctx, bson.M{"_id": *p.Succession}); err != nil {
			return models.Portfolio{}, err
		}
	}
	if p.Institutional != nil {
		if _, err := s.institutionals.DeleteOne(ctx, bson.M{"_id": *p.Institutional}); err != nil {
			return models.Portfolio{}, err
		}
	}
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return models.Portfolio{}, err
	}
	return p, nil
}

// filterFields are the typed filterable paths of a portfolio listing.
var filterFields = listquery.Fields{
	"_id":           listquery.ObjectID,
	"succession":    listquery.ObjectID,
	"institutional": listquery.ObjectID,
	"manager":       listquery.ObjectID,
	"associates":    listquery.ObjectID,
	"createdAt":     listquery.Date,
	"closedAt":      listquery.Date,
	"lastContacted": listquery.Date,
}

// ListSpec describes the portfolio listing, with sub-profiles and users
// populated.
func (s *Store) ListSpec() listquery.Spec {
	return listquery.Spec{
		Coll:        s.c,
		Fields:      filterFields,
		DefaultSort: "portName",
		Populate: []listquery.Populate{
			{Field: "succession", From: successionstore.Collection},
			{Field: "institutional", From: institutionalstore.Collection},
			{Field: "manager", From: "users", Hide: []string{"password"}},
			{Field: "associates", From: "users", Many: true, Hide: []string{"password"}},
		},
	}
}
