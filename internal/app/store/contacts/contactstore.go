// internal/app/store/contacts/contactstore.go
package contactstore

import (
	"context"
	"errors"
	"strings"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the contacts collection.
const Collection = "contacts"

var ErrDuplicateContact = errors.New("a contact with this full name already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Patch is a partial update. Nil fields are left unchanged; an empty string
// clears an optional field.
type Patch struct {
	Firstname   *string `json:"firstname" validate:"omitnil,max=50"`
	Lastname    *string `json:"lastname" validate:"omitnil,required,max=100"`
	Email1      *string `json:"email1" validate:"omitnil,omitempty,email_address"`
	Email2      *string `json:"email2" validate:"omitnil,omitempty,email_address"`
	Description *string `json:"description"`
	HomePhone   *string `json:"homePhone"`
	MobilePhone *string `json:"mobilePhone"`
	WorkPhone   *string `json:"workPhone"`
	FaxPhone    *string `json:"faxPhone"`
}

// Apply copies the non-nil fields of p onto c and re-derives the full name.
func (p Patch) Apply(c models.Contact) models.Contact {
	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	assign(&c.Firstname, p.Firstname)
	assign(&c.Lastname, p.Lastname)
	assign(&c.Email1, p.Email1)
	assign(&c.Email2, p.Email2)
	assign(&c.Description, p.Description)
	assign(&c.HomePhone, p.HomePhone)
	assign(&c.MobilePhone, p.MobilePhone)
	assign(&c.WorkPhone, p.WorkPhone)
	assign(&c.FaxPhone, p.FaxPhone)
	c.Fullname = models.DeriveFullname(c.Firstname, c.Lastname)
	return c
}

func normalize(c models.Contact) models.Contact {
	c.Firstname = strings.TrimSpace(c.Firstname)
	c.Lastname = strings.TrimSpace(c.Lastname)
	c.Fullname = models.DeriveFullname(c.Firstname, c.Lastname)
	return c
}

func (s *Store) Create(ctx context.Context, c models.Contact) (models.Contact, error) {
	c = normalize(c)
	c.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Contact{}, ErrDuplicateContact
		}
		return models.Contact{}, err
	}
	return c, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error) {
	var c models.Contact
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update applies p and recomputes the full name from the merged first and
// last names. Returns mongo.ErrNoDocuments if id does not exist.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, p Patch) (models.Contact, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Contact{}, err
	}
	next := p.Apply(cur)
	next.ID = id

	// Replace keeps empty optional fields out of the document via omitempty.
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": id}, next)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Contact{}, ErrDuplicateContact
		}
		return models.Contact{}, err
	}
	if res.MatchedCount == 0 {
		return models.Contact{}, mongo.ErrNoDocuments
	}
	return next, nil
}

// Delete removes a contact by ID. Join rows naming it are left in place.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListSpec describes the contact listing.
func (s *Store) ListSpec() listquery.Spec {
	return listquery.Spec{
		Coll:        s.c,
		Fields:      listquery.Fields{"_id": listquery.ObjectID},
		DefaultSort: "date",
	}
}
