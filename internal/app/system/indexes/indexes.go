// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensurePortfolios(ctx, db); err != nil {
		problems = append(problems, "portfolios: "+err.Error())
	}
	if err := ensureContacts(ctx, db); err != nil {
		problems = append(problems, "contacts: "+err.Error())
	}
	if err := ensureContactsInPortfolios(ctx, db); err != nil {
		problems = append(problems, "contactinportfolios: "+err.Error())
	}
	if err := ensureCommunications(ctx, db); err != nil {
		problems = append(problems, "communications: "+err.Error())
	}
	if err := ensureAuditEvents(ctx, db); err != nil {
		problems = append(problems, "auditevents: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
	Sparse *bool  `bson:"sparse,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolOf(b *bool) bool { return b != nil && *b }

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates each model unless an index with the same keys and
// options exists. Same keys with different options are dropped and rebuilt.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		start := time.Now()
		var name string
		var unique, sparse bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = boolOf(m.Options.Unique)
			sparse = boolOf(m.Options.Sparse)
		}
		sig := keySig(m.Keys.(bson.D))
		log := zap.L().With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique))

		if ex, ok := existing[sig]; ok {
			if boolOf(ex.Unique) == unique && boolOf(ex.Sparse) == sparse {
				log.Debug("reusing existing index", zap.String("existing_name", ex.Name))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop existing index failed", zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && unique {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
				continue
			}
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_users_email").SetUnique(true),
		},
	})
}

func ensurePortfolios(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("portfolios"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "portName", Value: 1}},
			Options: options.Index().SetName("uniq_portfolios_portName").SetUnique(true),
		},
		{
			// portNumber is optional; sparse keeps portfolios without one out of the index.
			Keys:    bson.D{{Key: "portNumber", Value: 1}},
			Options: options.Index().SetName("uniq_portfolios_portNumber").SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "manager", Value: 1}},
			Options: options.Index().SetName("idx_portfolios_manager"),
		},
	})
}

func ensureContacts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("contacts"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fullname", Value: 1}},
			Options: options.Index().SetName("uniq_contacts_fullname").SetUnique(true),
		},
	})
}

func ensureContactsInPortfolios(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("contactinportfolios"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "portfolio", Value: 1}, {Key: "contact", Value: 1}},
			Options: options.Index().SetName("idx_cip_portfolio_contact"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_cip_createdAt"),
		},
	})
}

func ensureCommunications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("communications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "portfolio", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index().SetName("idx_communications_portfolio_date"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("idx_communications_date"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("auditevents"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "eventType", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_type_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_timestamp"),
		},
	})
}
