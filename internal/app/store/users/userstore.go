// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auth"
	"github.com/purplesmurf1998/crm-api/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned by Create when the email is already taken.
var ErrDuplicateEmail = auth.ErrDuplicateEmail

// withoutPassword keeps the hash out of every read except GetByEmail.
var withoutPassword = bson.M{"password": 0}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// Create inserts u. The caller supplies an already hashed password.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	if u.Role == "" {
		u.Role = models.RoleGuest
	}
	if len(u.Privileges) == 0 {
		u.Privileges = []string{models.PrivilegeUser}
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	u.PasswordHash = ""
	return u, nil
}

// GetByID loads a user without its password hash.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	opts := options.FindOne().SetProjection(withoutPassword)
	if err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail loads a user including the password hash, for credential
// checks. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// List returns every user ordered by name, without password hashes.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Exists reports whether a user with id exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetRole updates the role of the user with id.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
