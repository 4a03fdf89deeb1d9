// internal/app/store/audit/auditstore.go
package auditstore

import (
	"context"
	"time"

	"github.com/purplesmurf1998/crm-api/internal/app/system/listquery"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Event categories
const (
	CategoryAuth = "auth"
	CategoryData = "data"
)

// Auth event types
const (
	EventRegistered     = "registered"
	EventLoginSuccess   = "login_success"
	EventLoginFailed    = "login_failed"
	EventLoginThrottled = "login_throttled"
	EventLogout         = "logout"
)

// Data event types
const (
	EventPortfolioDeleted     = "portfolio_deleted"
	EventContactDeleted       = "contact_deleted"
	EventCommunicationDeleted = "communication_deleted"
)

// Event is one audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"eventType" json:"eventType"`

	UserID   *primitive.ObjectID `bson:"userId,omitempty" json:"userId,omitempty"`     // account the event is about
	ActorID  *primitive.ObjectID `bson:"actorId,omitempty" json:"actorId,omitempty"`   // who acted, for data events
	TargetID *primitive.ObjectID `bson:"targetId,omitempty" json:"targetId,omitempty"` // affected document

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"userAgent,omitempty" json:"userAgent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failureReason,omitempty" json:"failureReason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("auditevents")}
}

// Log inserts e, stamping the id and the time when unset.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// ListSpec describes the audit listing, newest first.
func (s *Store) ListSpec() listquery.Spec {
	return listquery.Spec{
		Coll: s.c,
		Fields: listquery.Fields{
			"_id":       listquery.ObjectID,
			"timestamp": listquery.Date,
			"success":   listquery.Bool,
			"userId":    listquery.ObjectID,
			"actorId":   listquery.ObjectID,
			"targetId":  listquery.ObjectID,
		},
		DefaultSort: "-timestamp",
	}
}

// PurgeBefore deletes events recorded before cutoff.
func (s *Store) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
