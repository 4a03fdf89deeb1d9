// internal/app/features/communications/handler.go
package communications

import (
	"errors"

	relationmgr "github.com/purplesmurf1998/crm-api/internal/app/manager/relations"
	commstore "github.com/purplesmurf1998/crm-api/internal/app/store/communications"
	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auditlog"
	"github.com/purplesmurf1998/crm-api/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Communications.
type Handler struct {
	Comms     *commstore.Store
	Relations *relationmgr.Manager
	Audit     *auditlog.Logger
	Log       *zap.Logger
}

// NewHandler constructs a Communications handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Comms:     commstore.New(db),
		Relations: relationmgr.New(db),
		Log:       logger,
	}
}

// createInput is the body of a create request. The author is taken from the
// signed-in user, never from the body.
type createInput struct {
	Subject   string               `json:"subject"`
	Content   string               `json:"content"`
	Date      inputval.Date        `json:"date"`
	Method    string               `json:"method"`
	Portfolio primitive.ObjectID   `json:"portfolio"`
	Contacts  []primitive.ObjectID `json:"contacts"`
}

// detachResponse carries the ids cut from the contact list next to the
// updated communication.
type detachResponse struct {
	Success bool                 `json:"success"`
	Data    any                  `json:"data"`
	Removed []primitive.ObjectID `json:"removed"`
}

func notFound(id primitive.ObjectID) error {
	return apperr.NotFound("Communication not found with id of %s", id.Hex())
}

func storeErr(err error, id primitive.ObjectID) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound(id)
	}
	return err
}
