// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	ensure("portfolios", portfoliosSchema())
	ensure("successions", successionsSchema())
	ensure("institutionals", institutionalsSchema())
	ensure("contacts", contactsSchema())
	ensure("contactinportfolios", contactsInPortfoliosSchema())
	ensure("communications", communicationsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandErrorMatches(err error, code int32, fragments ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandErrorMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandErrorMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandErrorMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "role", "password"},
			"properties": bson.M{
				"name":       nonBlank,
				"email":      nonBlank,
				"role":       bson.M{"enum": bson.A{"account_manager", "team_manager", "admin", "maintenance", "guest"}},
				"privileges": bson.M{"bsonType": "array", "items": bson.M{"enum": bson.A{"institutional", "succession", "all", "user"}}},
				"password":   bson.M{"bsonType": "string", "minLength": 1},
				"createdAt":  bson.M{"bsonType": "date"},
			},
		},
	}
}

func portfoliosSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"portName", "portType", "manager"},
			"properties": bson.M{
				"portName":        nonBlank,
				"portNumber":      bson.M{"bsonType": "string"},
				"portType":        bson.M{"enum": bson.A{"Institutional", "Succession", "Trust"}},
				"succession":      bson.M{"bsonType": "objectId"},
				"institutional":   bson.M{"bsonType": "objectId"},
				"portDescription": bson.M{"bsonType": "string", "maxLength": 500},
				"manager":         bson.M{"bsonType": "objectId"},
				"associates":      bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"createdAt":       bson.M{"bsonType": "date"},
				"closedAt":        bson.M{"bsonType": "date"},
				"lastContacted":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func successionsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"clientName", "dateOfDeath", "trustRole"},
			"properties": bson.M{
				"clientName":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
				"dateOfDeath": bson.M{"bsonType": "date"},
				"trustRole":   bson.M{"enum": bson.A{"Unique Liquidator", "Co-Liquidator", "Service Contract"}},
			},
		},
	}
}

func institutionalsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"market", "status"},
			"properties": bson.M{
				"market": bson.M{"enum": bson.A{"Religious Institution", "Trust Corporation", "Retirement Firm", "Morgue", "Holdings", "Other"}},
				"status": bson.M{"enum": bson.A{"Prospect", "Established", "Established w/ Opportunity", "Danger", "Closing"}},
			},
		},
	}
}

func contactsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"lastname", "fullname"},
			"properties": bson.M{
				"firstname": bson.M{"bsonType": "string", "maxLength": 50},
				"lastname":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 100},
				"fullname":  nonBlank,
				"email1":    bson.M{"bsonType": "string"},
				"email2":    bson.M{"bsonType": "string"},
			},
		},
	}
}

func contactsInPortfoliosSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"portfolio", "contact", "role"},
			"properties": bson.M{
				"portfolio":     bson.M{"bsonType": "objectId"},
				"contact":       bson.M{"bsonType": "objectId"},
				"role":          nonBlank,
				"createdAt":     bson.M{"bsonType": "date"},
				"inactiveSince": bson.M{"bsonType": "date"},
			},
		},
	}
}

func communicationsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"subject", "content", "createdBy", "date", "method", "portfolio"},
			"properties": bson.M{
				"subject":   bson.M{"bsonType": "string", "minLength": 1, "maxLength": 150},
				"content":   bson.M{"bsonType": "string", "minLength": 1},
				"createdBy": bson.M{"bsonType": "objectId"},
				"createdAt": bson.M{"bsonType": "date"},
				"date":      bson.M{"bsonType": "date"},
				"method":    bson.M{"enum": bson.A{"Phone", "Conference", "Video", "Email", "Other"}},
				"portfolio": bson.M{"bsonType": "objectId"},
				"contacts":  bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}
