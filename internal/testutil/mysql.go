package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
)

const mysqlImage = "mysql:8.0.36"

var (
	containerOnce sync.Once
	containerErr  error
	rootDSN       string // points at the container's default database
	dbSeq         atomic.Int64
)

func startContainer() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tcmysql.Run(ctx, mysqlImage,
		tcmysql.WithDatabase("clubhub_test"),
		tcmysql.WithUsername("root"),
		tcmysql.WithPassword("test"),
	)
	if err != nil {
		if c != nil {
			_ = testcontainers.TerminateContainer(c)
		}
		containerErr = fmt.Errorf("start mysql container: %w", err)
		return
	}

	rootDSN, containerErr = c.ConnectionString(ctx, "parseTime=true", "multiStatements=true")
}

// SetupTestDB returns a handle to an empty, freshly created database.
//
// One MySQL container is shared by the whole test binary; each call gets its
// own schema so tests never see each other's rows. The test is skipped under
// -short or when Docker is unavailable.
func SetupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping MySQL-backed test in -short mode")
	}
	containerOnce.Do(startContainer)
	if containerErr != nil {
		t.Skipf("mysql unavailable: %v", containerErr)
	}

	ctx, cancel := TestContext()
	defer cancel()

	admin, err := sql.Open("mysql", rootDSN)
	if err != nil {
		t.Fatalf("open admin connection: %v", err)
	}
	defer admin.Close()

	name := fmt.Sprintf("t_%d_%d", time.Now().UnixNano()%1_000_000, dbSeq.Add(1))
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE `"+name+"` CHARACTER SET utf8mb4"); err != nil {
		t.Fatalf("create database %s: %v", name, err)
	}

	cfg, err := mysql.ParseDSN(rootDSN)
	if err != nil {
		t.Fatalf("parse dsn: %v", err)
	}
	cfg.DBName = name

	sqldb, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	sqldb.SetMaxOpenConns(10)
	db := bun.NewDB(sqldb, mysqldialect.New())

	t.Cleanup(func() {
		_ = db.Close()
		dropCtx, dropCancel := TestContext()
		defer dropCancel()
		if a, err := sql.Open("mysql", rootDSN); err == nil {
			_, _ = a.ExecContext(dropCtx, "DROP DATABASE IF EXISTS `"+name+"`")
			_ = a.Close()
		}
	})

	return db
}

// ExecAll runs semicolon-free statements in order, failing the test on error.
// Handy for building legacy table shapes.
func ExecAll(t *testing.T, db bun.IDB, stmts ...string) {
	t.Helper()
	ctx, cancel := TestContext()
	defer cancel()
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			t.Fatalf("exec %q: %v", strings.TrimSpace(s), err)
		}
	}
}

// TestContext returns a context with a timeout suitable for a single test step.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
