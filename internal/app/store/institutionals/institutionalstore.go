// internal/app/store/institutionals/institutionalstore.go
package institutionalstore

import (
	"context"

	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the institutionals collection.
const Collection = "institutionals"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Market *string `json:"market" validate:"omitnil,oneof='Religious Institution' 'Trust Corporation' 'Retirement Firm' Morgue Holdings Other"`
	Status *string `json:"status" validate:"omitnil,oneof=Prospect Established 'Established w/ Opportunity' Danger Closing"`
}

func (p Patch) set() bson.M {
	set := bson.M{}
	if p.Market != nil {
		set["market"] = *p.Market
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	return set
}

func (s *Store) Create(ctx context.Context, in models.Institutional) (models.Institutional, error) {
	in.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, in); err != nil {
		return models.Institutional{}, err
	}
	return in, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Institutional, error) {
	var in models.Institutional
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&in); err != nil {
		return models.Institutional{}, err
	}
	return in, nil
}

// Update applies p and returns the updated document. Returns
// mongo.ErrNoDocuments if id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (models.Institutional, error) {
	set := p.set()
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}
	var in models.Institutional
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&in); err != nil {
		return models.Institutional{}, err
	}
	return in, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
