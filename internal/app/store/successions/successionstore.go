// internal/app/store/successions/successionstore.go
package successionstore

import (
	"context"
	"strings"

	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the successions collection.
const Collection = "successions"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	ClientName  *string        `json:"clientName" validate:"omitnil,required,max=50"`
	DateOfDeath *inputval.Date `json:"dateOfDeath" validate:"omitnil,required"`
	TrustRole   *string        `json:"trustRole" validate:"omitnil,oneof='Unique Liquidator' 'Co-Liquidator' 'Service Contract'"`
}

func (p Patch) set() bson.M {
	set := bson.M{}
	if p.ClientName != nil {
		set["clientName"] = strings.TrimSpace(*p.ClientName)
	}
	if p.DateOfDeath != nil {
		set["dateOfDeath"] = p.DateOfDeath.Time
	}
	if p.TrustRole != nil {
		set["trustRole"] = *p.TrustRole
	}
	return set
}

func (s *Store) Create(ctx context.Context, sp models.Succession) (models.Succession, error) {
	sp.ID = primitive.NewObjectID()
	sp.ClientName = strings.TrimSpace(sp.ClientName)
	sp.DateOfDeath = sp.DateOfDeath.UTC()
	if _, err := s.c.InsertOne(ctx, sp); err != nil {
		return models.Succession{}, err
	}
	return sp, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Succession, error) {
	var sp models.Succession
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sp); err != nil {
		return models.Succession{}, err
	}
	return sp, nil
}

// Update applies p and returns the updated document. Returns
// mongo.ErrNoDocuments if id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (models.Succession, error) {
	set := p.set()
	if len(set) == 0 {
		return s.GetByID(ctx, id)
	}
	var sp models.Succession
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&sp); err != nil {
		return models.Succession{}, err
	}
	return sp, nil
}

// Delete removes a succession by ID. Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
