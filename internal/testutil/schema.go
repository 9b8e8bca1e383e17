package testutil

import (
	"testing"

	"github.com/dalemusser/clubhub/internal/app/system/schema"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SetupSchemaDB returns a fresh database already reconciled to the current schema.
func SetupSchemaDB(t *testing.T) *bun.DB {
	t.Helper()
	db := SetupTestDB(t)

	ctx, cancel := TestContext()
	defer cancel()
	rep, err := schema.New(db, zap.NewNop()).Run(ctx)
	if err != nil {
		t.Fatalf("reconcile schema: %v", err)
	}
	if !rep.OK() {
		t.Fatalf("reconcile schema incomplete: deferred=%v failed=%v", rep.Deferred, rep.Failed)
	}
	return db
}
