package testutil

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/purplesmurf1998/crm-api/internal/app/system/indexes"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// EnvMongoURI points tests at an existing MongoDB.
	EnvMongoURI = "CRMAPI_TEST_MONGO_URI"
	// EnvDocker, when "true", starts a throwaway MongoDB container instead.
	EnvDocker = "CRMAPI_TEST_DOCKER"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
	skipReason string
)

// TestContext returns a context suitable for a single test's database calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB returns an empty database with indexes in place, dropped when
// the test ends. Tests are skipped when no MongoDB is configured.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	c := sharedClient(t)
	db := c.Database(dbName(t))

	ctx, cancel := TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

func sharedClient(t *testing.T) *mongo.Client {
	t.Helper()

	clientOnce.Do(func() {
		uri := os.Getenv(EnvMongoURI)
		if uri == "" && os.Getenv(EnvDocker) == "true" {
			uri, clientErr = startMongoContainer()
			if clientErr != nil {
				return
			}
		}
		if uri == "" {
			skipReason = fmt.Sprintf("MongoDB not configured; set %s or %s=true", EnvMongoURI, EnvDocker)
			return
		}

		ctx, cancel := TestContext()
		defer cancel()
		client, clientErr = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if clientErr != nil {
			return
		}
		clientErr = client.Ping(ctx, nil)
	})

	if skipReason != "" {
		t.Skip(skipReason)
	}
	if clientErr != nil {
		t.Fatalf("test MongoDB unavailable: %v", clientErr)
	}
	return client
}

// startMongoContainer runs mongo:7 for the lifetime of the test process.
// Ryuk reaps the container when the process exits.
func startMongoContainer() (string, error) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("27017/tcp"),
			wait.ForLog("Waiting for connections"),
		).WithDeadline(90 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start mongo container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return "", fmt.Errorf("get mongo host: %w", err)
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", fmt.Errorf("get mongo port: %w", err)
	}
	return fmt.Sprintf("mongodb://%s:%s", host, port.Port()), nil
}

var unsafeDBChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// dbName is unique per test and within MongoDB's 63-byte limit.
func dbName(t *testing.T) string {
	name := unsafeDBChars.ReplaceAllString(t.Name(), "_")
	if len(name) > 30 {
		name = name[:30]
	}
	return strings.ToLower("t_" + name + "_" + primitive.NewObjectID().Hex())
}
