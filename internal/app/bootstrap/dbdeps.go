// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/clubhub/internal/app/system/metrics"
	"github.com/dalemusser/clubhub/internal/app/system/workers"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end handles shared by the lifecycle hooks.
type DBDeps struct {
	DB *bun.DB

	// Set only when rate_limit_store is "mongo".
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Created with the connections so EnsureSchema can count migration
	// outcomes on the registry BuildHandler serves.
	Metrics *metrics.Metrics

	// Nil when audit retention is disabled or no category writes to MySQL.
	AuditRetention *workers.AuditRetention
}
