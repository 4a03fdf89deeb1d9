// internal/app/store/contactsinportfolios/cipstore.go
package cipstore

import (
	"context"
	"strings"
	"time"

	contactstore "github.com/purplesmurf1998/crm-api/internal/app/store/contacts"
	portfoliostore "github.com/purplesmurf1998/crm-api/internal/app/store/portfolios"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the contact-in-portfolio collection.
const Collection = "contactinportfolios"

type Store struct {
	c        *mongo.Collection
	contacts *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection(Collection),
		contacts: db.Collection(contactstore.Collection),
	}
}

// Patch is a partial update of a join row. The portfolio and contact it
// links are fixed.
type Patch struct {
	Role          *string        `json:"role" validate:"omitnil,required"`
	Description   *string        `json:"description"`
	InactiveSince *inputval.Date `json:"inactiveSince"`
}

func (p Patch) set() bson.M {
	set := bson.M{}
	if p.Role != nil {
		set["role"] = strings.TrimSpace(*p.Role)
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.InactiveSince != nil {
		set["inactiveSince"] = p.InactiveSince.Time
	}
	return set
}

func (s *Store) Create(ctx context.Context, cp models.ContactInPortfolio) (models.ContactInPortfolio, error) {
	cp.ID = primitive.NewObjectID()
	cp.Role = strings.TrimSpace(cp.Role)
	cp.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, cp); err != nil {
		return models.ContactInPortfolio{}, err
	}
	return cp, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ContactInPortfolio, error) {
	var cp models.ContactInPortfolio
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cp); err != nil {
		return models.ContactInPortfolio{}, err
	}
	return cp, nil
}

// UpdateByPair applies p to the first join row linking portfolio and
// contact. Returns mongo.ErrNoDocuments if there is none.
func (s *Store) UpdateByPair(ctx context.Context, portfolio, contact primitive.ObjectID, p Patch) (models.ContactInPortfolio, error) {
	filter := bson.M{"portfolio": portfolio, "contact": contact}
	set := p.set()
	var cp models.ContactInPortfolio
	if len(set) == 0 {
		if err := s.c.FindOne(ctx, filter).Decode(&cp); err != nil {
			return models.ContactInPortfolio{}, err
		}
		return cp, nil
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if err := s.c.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&cp); err != nil {
		return models.ContactInPortfolio{}, err
	}
	return cp, nil
}

var filterFields = listquery.Fields{
	"_id":           listquery.ObjectID,
	"portfolio":     listquery.ObjectID,
	"contact":       listquery.ObjectID,
	"createdAt":     listquery.Date,
	"inactiveSince": listquery.Date,
}

// ListSpec describes a join-row listing with portfolio and contact
// populated. A non-zero portfolio restricts it to that portfolio. Pagination
// counts the contacts collection, not the join rows.
func (s *Store) ListSpec(portfolio primitive.ObjectID) listquery.Spec {
	spec := listquery.Spec{
		Coll:        s.c,
		Total:       s.contacts,
		Fields:      filterFields,
		DefaultSort: "createdAt",
		Populate: []listquery.Populate{
			{Field: "portfolio", From: portfoliostore.Collection},
			{Field: "contact", From: contactstore.Collection},
		},
	}
	if !portfolio.IsZero() {
		spec.Scope = bson.M{"portfolio": portfolio}
	}
	return spec
}
