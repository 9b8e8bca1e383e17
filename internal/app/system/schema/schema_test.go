package schema_test

import (
	"testing"

	"github.com/dalemusser/clubhub/internal/app/system/schema"
	"github.com/dalemusser/clubhub/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func versions() []string {
	out := make([]string, len(schema.Migrations))
	for i, m := range schema.Migrations {
		out[i] = m.Version
	}
	return out
}

func TestReconcile_FreshDatabaseTwice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var seen []string
	r := schema.New(db, zap.NewNop()).WithObserver(func(version, name, result string) {
		seen = append(seen, version+":"+result)
	})

	first, err := r.Run(ctx)
	require.NoError(t, err)
	require.True(t, first.OK(), "first run: %+v", first)
	require.Equal(t, versions(), first.Applied)
	require.Len(t, seen, len(schema.Migrations))

	second, err := r.Run(ctx)
	require.NoError(t, err)
	require.True(t, second.OK())
	require.Empty(t, second.Applied)
	require.Equal(t, versions(), second.Skipped)

	for _, table := range []string{"clubs", "meeting_days", "subfields", "club_subfields",
		"club_meeting_days", "club_categories", "club_fields", "audit_events"} {
		ok, err := schema.TableExists(ctx, db, table)
		require.NoError(t, err)
		require.True(t, ok, "table %s", table)
	}

	var days int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meeting_days").Scan(&days))
	require.Equal(t, 5, days)

	ok, err := schema.IndexExists(ctx, db, "clubs", "uq_club_name")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReconcile_StepsRerunWithoutBookkeeping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := schema.New(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err)

	// Forget every recorded step; each must still be safe to run again.
	testutil.ExecAll(t, db, "DELETE FROM schema_migrations")

	rep, err := schema.New(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err)
	require.True(t, rep.OK(), "%+v", rep)
	require.Equal(t, versions(), rep.Applied)
}

func TestReconcile_LegacyInstall(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.ExecAll(t, db,
		`CREATE TABLE clubs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			president_code VARCHAR(64) NOT NULL,
			meeting_frequency VARCHAR(16) NOT NULL DEFAULT 'weekly',
			meeting_time_type VARCHAR(16) NOT NULL DEFAULT 'lunch',
			meeting_time_range VARCHAR(100) NOT NULL DEFAULT '',
			open_to_all TINYINT(1) NOT NULL DEFAULT 0,
			prereq_required TINYINT(1) NOT NULL DEFAULT 0,
			prerequisites TEXT,
			description TEXT,
			UNIQUE KEY uq_club_name_code (name, president_code)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`CREATE TABLE club_fields (
			club_id INT NOT NULL,
			field VARCHAR(100) NOT NULL,
			PRIMARY KEY (club_id, field)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`INSERT INTO clubs (name, president_code, description) VALUES ('Chess Club', 'abc', 'Weekly games')`,
		`INSERT INTO club_fields (club_id, field) VALUES (1, 'Math')`,
	)

	rep, err := schema.New(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err)
	require.True(t, rep.OK(), "%+v", rep)

	for _, col := range []string{"subject", "meeting_room", "website_url", "president_contact",
		"volunteer_hours", "status", "created_at", "updated_at"} {
		ok, err := schema.ColumnExists(ctx, db, "clubs", col)
		require.NoError(t, err)
		require.True(t, ok, "clubs.%s", col)
	}

	ok, err := schema.ColumnExists(ctx, db, "club_fields", "field")
	require.NoError(t, err)
	require.False(t, ok, "legacy column should be renamed")

	pk, err := schema.PrimaryKey(ctx, db, "club_fields")
	require.NoError(t, err)
	require.Equal(t, []string{"club_id", "field_label"}, pk)

	ok, err = schema.IndexExists(ctx, db, "clubs", "uq_club_name_code")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = schema.IndexExists(ctx, db, "clubs", "uq_club_name")
	require.NoError(t, err)
	require.True(t, ok)

	// Existing rows survive and new inserts no longer need president_code.
	var label, status string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT field_label FROM club_fields WHERE club_id = 1").Scan(&label))
	require.Equal(t, "Math", label)
	require.NoError(t, db.QueryRowContext(ctx, "SELECT status FROM clubs WHERE id = 1").Scan(&status))
	require.Equal(t, "approved", status)
	testutil.ExecAll(t, db, "INSERT INTO clubs (name) VALUES ('Robotics')")
}

func TestReconcile_LabelColumnWithoutPrimaryKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.ExecAll(t, db,
		`CREATE TABLE club_fields (
			club_id INT NOT NULL,
			label VARCHAR(100) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	)

	rep, err := schema.New(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err)
	require.True(t, rep.OK(), "%+v", rep)

	pk, err := schema.PrimaryKey(ctx, db, "club_fields")
	require.NoError(t, err)
	require.Equal(t, []string{"club_id", "field_label"}, pk)
}

func TestReconcile_DuplicateNamesDeferIdentityIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.ExecAll(t, db,
		`CREATE TABLE clubs (
			id INT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			president_code VARCHAR(64) NOT NULL,
			UNIQUE KEY uq_club_name_code (name, president_code)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		`INSERT INTO clubs (name, president_code) VALUES ('Chess Club', 'a'), ('Chess Club', 'b')`,
	)

	rep, err := schema.New(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err, "duplicates must not stop startup")
	require.False(t, rep.OK())
	require.Equal(t, []string{"0006"}, rep.Deferred)
	require.Contains(t, rep.Applied, "0007")

	ok, err := schema.IndexExists(ctx, db, "clubs", "uq_club_name")
	require.NoError(t, err)
	require.False(t, ok)

	// Once an operator resolves the duplicates the next start finishes the job.
	testutil.ExecAll(t, db, "DELETE FROM clubs WHERE id = 2")

	rep, err = schema.New(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err)
	require.True(t, rep.OK())
	require.Equal(t, []string{"0006"}, rep.Applied)

	ok, err = schema.IndexExists(ctx, db, "clubs", "uq_club_name")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReconciler_Status(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := schema.New(db, zap.NewNop())

	before, err := r.Status(ctx)
	require.NoError(t, err)
	require.Len(t, before, len(schema.Migrations))
	for _, s := range before {
		require.Nil(t, s.AppliedAt, s.Version)
	}

	_, err = r.Run(ctx)
	require.NoError(t, err)

	after, err := r.Status(ctx)
	require.NoError(t, err)
	for _, s := range after {
		require.NotNil(t, s.AppliedAt, s.Version)
	}
}
