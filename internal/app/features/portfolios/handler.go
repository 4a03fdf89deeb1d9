// internal/app/features/portfolios/handler.go
package portfolios

import (
	portfoliomgr "github.com/purplesmurf1998/crm-api/internal/app/manager/portfolios"
	relationmgr "github.com/purplesmurf1998/crm-api/internal/app/manager/relations"
	"github.com/purplesmurf1998/crm-api/internal/app/system/auditlog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the feature-level entry point for Portfolios and the contacts
// attached to them.
type Handler struct {
	Portfolios *portfoliomgr.Manager
	Relations  *relationmgr.Manager
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler constructs a Portfolios handler bound to a DB and logger.
func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{
		Portfolios: portfoliomgr.New(db, logger),
		Relations:  relationmgr.New(db),
		Log:        logger,
	}
}
