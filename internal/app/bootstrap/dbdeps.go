// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/purplesmurf1998/crm-api/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// AuditRetention is nil when retention is disabled. Startup starts it
	// and Shutdown stops it.
	AuditRetention *workers.AuditRetention
}
