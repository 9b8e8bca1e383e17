package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	mongoOnce sync.Once
	mongoURI  string
	mongoErr  error
)

func startMongo() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		mongoErr = fmt.Errorf("start mongo container: %w", err)
		return
	}
	mongoURI, mongoErr = c.Endpoint(ctx, "mongodb")
}

// SetupMongoDB returns a uniquely named database on a shared MongoDB
// container, dropped when the test ends. Skipped under -short or without Docker.
func SetupMongoDB(t *testing.T) *mongo.Database {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MongoDB-backed test in -short mode")
	}
	mongoOnce.Do(startMongo)
	if mongoErr != nil {
		t.Skipf("mongo unavailable: %v", mongoErr)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}

	db := client.Database(fmt.Sprintf("t_%d_%d", time.Now().UnixNano()%1_000_000, dbSeq.Add(1)))
	t.Cleanup(func() {
		c, cancel := TestContext()
		defer cancel()
		_ = db.Drop(c)
		_ = client.Disconnect(c)
	})
	return db
}
