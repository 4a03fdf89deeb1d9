// internal/app/store/communications/commstore.go
package commstore

import (
	"context"
	"strings"
	"time"

	portfoliostore "github.com/purplesmurf1998/crm-api/internal/app/store/portfolios"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the communications collection.
const Collection = "communications"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Patch is a partial update. CreatedBy and the contact list are not
// patchable here.
type Patch struct {
	Subject   *string             `json:"subject" validate:"omitnil,required,max=150"`
	Content   *string             `json:"content" validate:"omitnil,required"`
	Date      *inputval.Date      `json:"date" validate:"omitnil,required"`
	Method    *string             `json:"method" validate:"omitnil,oneof=Phone Conference Video Email Other"`
	Portfolio *primitive.ObjectID `json:"portfolio" validate:"omitnil,required"`
}

// set builds the $set document. clean is applied to Content.
func (p Patch) set(clean func(string) string) bson.M {
	set := bson.M{}
	if p.Subject != nil {
		set["subject"] = strings.TrimSpace(*p.Subject)
	}
	if p.Content != nil {
		set["content"] = clean(*p.Content)
	}
	if p.Date != nil {
		set["date"] = p.Date.Time
	}
	if p.Method != nil {
		set["method"] = *p.Method
	}
	if p.Portfolio != nil {
		set["portfolio"] = *p.Portfolio
	}
	return set
}

func (s *Store) Create(ctx context.Context, c models.Communication) (models.Communication, error) {
	c.ID = primitive.NewObjectID()
	c.Subject = strings.TrimSpace(c.Subject)
	c.CreatedAt = time.Now().UTC()
	if c.Contacts == nil {
		c.Contacts = []primitive.ObjectID{}
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Communication{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Communication, error) {
	var c models.Communication
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Communication{}, err
	}
	return c, nil
}

// Update applies p, passing new content through clean. Returns
// mongo.ErrNoDocuments if id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch, clean func(string) string) (models.Communication, error) {
	set := p.set(clean)
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, options.After)
}

// Delete removes a communication by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PushContact appends cpID to the contact list, duplicates included.
func (s *Store) PushContact(ctx context.Context, id, cpID primitive.ObjectID) (models.Communication, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"contacts": cpID}}, options.After)
}

// TruncateContactsAt cuts the contact list at the first occurrence of cpID,
// dropping that entry and every entry after it, in one atomic update. It
// returns the updated communication and the dropped ids. Returns
// mongo.ErrNoDocuments if the communication does not exist or does not
// list cpID.
func (s *Store) TruncateContactsAt(ctx context.Context, id, cpID primitive.ObjectID) (models.Communication, []primitive.ObjectID, error) {
	idx := bson.M{"$indexOfArray": bson.A{"$contacts", cpID}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"contacts": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{idx, 0}},
				bson.A{},
				bson.M{"$slice": bson.A{"$contacts", idx}},
			}},
		}}},
	}
	before, err := s.findOneAndUpdate(ctx, bson.M{"_id": id, "contacts": cpID}, pipeline, options.Before)
	if err != nil {
		return models.Communication{}, nil, err
	}

	kept, removed := splitAt(before.Contacts, cpID)
	after := before
	after.Contacts = kept
	return after, removed, nil
}

// splitAt splits ids before the first occurrence of target.
func splitAt(ids []primitive.ObjectID, target primitive.ObjectID) (kept, removed []primitive.ObjectID) {
	for i, id := range ids {
		if id == target {
			return append([]primitive.ObjectID{}, ids[:i]...), append([]primitive.ObjectID{}, ids[i:]...)
		}
	}
	return ids, []primitive.ObjectID{}
}

func (s *Store) findOneAndUpdate(ctx context.Context, filter, update any, rd options.ReturnDocument) (models.Communication, error) {
	var c models.Communication
	opts := options.FindOneAndUpdate().SetReturnDocument(rd)
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c); err != nil {
		return models.Communication{}, err
	}
	return c, nil
}

var filterFields = listquery.Fields{
	"_id":       listquery.ObjectID,
	"createdBy": listquery.ObjectID,
	"portfolio": listquery.ObjectID,
	"contacts":  listquery.ObjectID,
	"date":      listquery.Date,
	"createdAt": listquery.Date,
}

// ListSpec describes the communication listing with author and portfolio
// populated.
func (s *Store) ListSpec() listquery.Spec {
	return listquery.Spec{
		Coll:        s.c,
		Fields:      filterFields,
		DefaultSort: "date",
		Populate: []listquery.Populate{
			{Field: "createdBy", From: "users", Hide: []string{"password"}},
			{Field: "portfolio", From: portfoliostore.Collection},
		},
	}
}
