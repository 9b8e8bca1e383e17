// internal/app/system/schema/migrations.go
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Migration is one versioned, idempotent schema step.
//
// Structural migrations create objects that later migrations build on; when
// one fails the run stops. Any other failure is logged and the run moves on.
// Either way the migration is not recorded and is retried on the next start.
type Migration struct {
	Version    string
	Name       string
	Structural bool
	Up         func(ctx context.Context, db bun.IDB, log *zap.Logger) error
}

// Migrations is the ordered schema history:
// base tables, lookup tables, link tables, column backfills, index evolution.
var Migrations = []Migration{
	{Version: "0001", Name: "base_tables", Structural: true, Up: upBaseTables},
	{Version: "0002", Name: "lookup_tables", Structural: true, Up: upLookupTables},
	{Version: "0003", Name: "link_tables", Structural: true, Up: upLinkTables},
	{Version: "0004", Name: "club_column_backfills", Up: upClubColumns},
	{Version: "0005", Name: "club_fields_label", Up: upClubFieldsLabel},
	{Version: "0006", Name: "club_identity_index", Up: upClubIdentityIndex},
	{Version: "0007", Name: "audit_events", Up: upAuditEvents},
}

const createClubs = "CREATE TABLE IF NOT EXISTS clubs (" +
	"id INT AUTO_INCREMENT PRIMARY KEY," +
	"name VARCHAR(200) NOT NULL," +
	"subject VARCHAR(100) DEFAULT NULL," +
	"meeting_frequency VARCHAR(16) NOT NULL DEFAULT 'weekly'," +
	"meeting_time_type VARCHAR(16) NOT NULL DEFAULT 'lunch'," +
	"meeting_time_range VARCHAR(100) NOT NULL DEFAULT ''," +
	"meeting_room VARCHAR(50) DEFAULT NULL," +
	"open_to_all TINYINT(1) NOT NULL DEFAULT 0," +
	"prereq_required TINYINT(1) NOT NULL DEFAULT 0," +
	"prerequisites TEXT," +
	"description TEXT," +
	"volunteer_hours TINYINT(1) NOT NULL DEFAULT 0," +
	"status VARCHAR(16) NOT NULL DEFAULT 'approved'," +
	"website_url VARCHAR(512) DEFAULT NULL," +
	"president_contact VARCHAR(255) DEFAULT NULL," +
	"created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP," +
	"updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP," +
	"UNIQUE KEY uq_club_name (name)" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

func upBaseTables(ctx context.Context, db bun.IDB, log *zap.Logger) error {
	if _, err := db.ExecContext(ctx, createClubs); err != nil {
		return fmt.Errorf("create clubs: %w", err)
	}
	return nil
}

func upLookupTables(ctx context.Context, db bun.IDB, log *zap.Logger) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meeting_days (
		id INT PRIMARY KEY,
		name VARCHAR(20) NOT NULL UNIQUE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`); err != nil {
		return fmt.Errorf("create meeting_days: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS subfields (
		id INT AUTO_INCREMENT PRIMARY KEY,
		label VARCHAR(100) NOT NULL UNIQUE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`); err != nil {
		return fmt.Errorf("create subfields: %w", err)
	}

	days := models.WeekdaySeed
	if _, err := db.NewInsert().
		Model(&days).
		On("DUPLICATE KEY UPDATE").
		Set("name = VALUES(name)").
		Exec(ctx); err != nil {
		return fmt.Errorf("seed meeting_days: %w", err)
	}
	return nil
}

func upLinkTables(ctx context.Context, db bun.IDB, log *zap.Logger) error {
	stmts := []struct{ table, ddl string }{
		{"club_subfields", `CREATE TABLE IF NOT EXISTS club_subfields (
			club_id INT NOT NULL,
			subfield_id INT NOT NULL,
			PRIMARY KEY (club_id, subfield_id),
			CONSTRAINT fk_cs_club FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE,
			CONSTRAINT fk_cs_sub FOREIGN KEY (subfield_id) REFERENCES subfields(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{"club_meeting_days", `CREATE TABLE IF NOT EXISTS club_meeting_days (
			club_id INT NOT NULL,
			day_id INT NOT NULL,
			PRIMARY KEY (club_id, day_id),
			CONSTRAINT fk_cmd_club FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE,
			CONSTRAINT fk_cmd_day FOREIGN KEY (day_id) REFERENCES meeting_days(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{"club_categories", `CREATE TABLE IF NOT EXISTS club_categories (
			club_id INT NOT NULL,
			category VARCHAR(50) NOT NULL,
			PRIMARY KEY (club_id, category),
			CONSTRAINT fk_cc_club FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
		{"club_fields", `CREATE TABLE IF NOT EXISTS club_fields (
			club_id INT NOT NULL,
			field_label VARCHAR(100) NOT NULL,
			PRIMARY KEY (club_id, field_label),
			CONSTRAINT fk_cf_club FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`},
	}

	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s.ddl); err != nil {
			return fmt.Errorf("create %s: %w", s.table, err)
		}
	}
	return nil
}

// clubColumns are the clubs columns an older install may lack.
var clubColumns = []struct{ name, def string }{
	{"subject", "VARCHAR(100) DEFAULT NULL"},
	{"meeting_room", "VARCHAR(50) DEFAULT NULL"},
	{"website_url", "VARCHAR(512) DEFAULT NULL"},
	{"president_contact", "VARCHAR(255) DEFAULT NULL"},
	{"volunteer_hours", "TINYINT(1) NOT NULL DEFAULT 0"},
	{"status", "VARCHAR(16) NOT NULL DEFAULT 'approved'"},
	{"created_at", "DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP"},
	{"updated_at", "DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"},
}

func upClubColumns(ctx context.Context, db bun.IDB, log *zap.Logger) error {
	var errs []error
	for _, c := range clubColumns {
		if err := EnsureColumn(ctx, db, log, "clubs", c.name, c.def); err != nil {
			log.Warn("schema: column backfill failed", zap.String("column", c.name), zap.Error(err))
			errs = append(errs, err)
		}
	}
	// Older generations keyed clubs on president_code and required it.
	if err := RelaxColumn(ctx, db, log, "clubs", "president_code"); err != nil {
		log.Warn("schema: relaxing president_code failed", zap.Error(err))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func upClubFieldsLabel(ctx context.Context, db bun.IDB, log *zap.Logger) error {
	if err := RenameLegacyColumn(ctx, db, log, "club_fields", "field_label", "VARCHAR(100) NOT NULL", "field", "label"); err != nil {
		return err
	}
	return EnsurePrimaryKey(ctx, db, log, "club_fields", "club_id", "field_label")
}

// legacyIdentityIndexes are unique keys from earlier identity rules.
var legacyIdentityIndexes = []string{"uq_club_name_code", "uq_club_name_contact"}

func upClubIdentityIndex(ctx context.Context, db bun.IDB, log *zap.Logger) error {
	var problems []string
	for _, idx := range legacyIdentityIndexes {
		if err := DropIndexIfExists(ctx, db, log, "clubs", idx); err != nil {
			log.Warn("schema: dropping legacy index failed", zap.String("index", idx), zap.Error(err))
			problems = append(problems, err.Error())
		}
	}

	if err := EnsureUniqueIndex(ctx, db, log, "clubs", "uq_club_name", "name"); err != nil {
		if errors.Is(err, ErrDuplicateRows) {
			return err
		}
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func upAuditEvents(ctx context.Context, db bun.IDB, log *zap.Logger) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS audit_events (
		id CHAR(36) PRIMARY KEY,
		occurred_at DATETIME NOT NULL,
		category VARCHAR(16) NOT NULL,
		event_type VARCHAR(48) NOT NULL,
		club_id INT DEFAULT NULL,
		ip VARCHAR(64) NOT NULL DEFAULT '',
		success TINYINT(1) NOT NULL DEFAULT 0,
		details TEXT,
		KEY idx_audit_occurred (occurred_at),
		KEY idx_audit_club (club_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	if err != nil {
		return fmt.Errorf("create audit_events: %w", err)
	}
	return nil
}
