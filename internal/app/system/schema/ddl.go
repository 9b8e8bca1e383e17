// internal/app/system/schema/ddl.go
package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/clubhub/internal/app/system/dberr"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ErrDuplicateRows means existing rows violate a unique index that was about
// to be added. The index is left absent and the step is retried next start.
var ErrDuplicateRows = errors.New("existing rows violate unique index")

/* -------------------------------------------------------------------------- */
/* information_schema probes (current database only)                          */
/* -------------------------------------------------------------------------- */

func count(ctx context.Context, db bun.IDB, query string, args ...any) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TableExists reports whether table exists in the connected database.
func TableExists(ctx context.Context, db bun.IDB, table string) (bool, error) {
	n, err := count(ctx, db, `SELECT COUNT(*) FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`, table)
	return n > 0, err
}

// ColumnExists reports whether table has column.
func ColumnExists(ctx context.Context, db bun.IDB, table, column string) (bool, error) {
	n, err := count(ctx, db, `SELECT COUNT(*) FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`, table, column)
	return n > 0, err
}

// IndexExists reports whether table has an index named index.
func IndexExists(ctx context.Context, db bun.IDB, table, index string) (bool, error) {
	n, err := count(ctx, db, `SELECT COUNT(*) FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND INDEX_NAME = ?`, table, index)
	return n > 0, err
}

// PrimaryKey returns the primary key columns of table in key order.
func PrimaryKey(ctx context.Context, db bun.IDB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND CONSTRAINT_NAME = 'PRIMARY'
		ORDER BY ORDINAL_POSITION`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// columnType returns COLUMN_TYPE (e.g. "varchar(64)") and nullability.
func columnType(ctx context.Context, db bun.IDB, table, column string) (string, bool, error) {
	var typ, nullable string
	err := db.QueryRowContext(ctx, `SELECT COLUMN_TYPE, IS_NULLABLE FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`, table, column).
		Scan(&typ, &nullable)
	return typ, nullable == "YES", err
}

/* -------------------------------------------------------------------------- */
/* idempotent DDL                                                             */
/* -------------------------------------------------------------------------- */

// EnsureColumn adds column with definition when it is missing.
func EnsureColumn(ctx context.Context, db bun.IDB, log *zap.Logger, table, column, definition string) error {
	ok, err := ColumnExists(ctx, db, table, column)
	if err != nil {
		return fmt.Errorf("probe %s.%s: %w", table, column, err)
	}
	if ok {
		return nil
	}
	ddl := fmt.Sprintf("ALTER TABLE `%s` ADD COLUMN `%s` %s", table, column, definition)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("add %s.%s: %w", table, column, err)
	}
	log.Info("schema: added column", zap.String("table", table), zap.String("column", column))
	return nil
}

// RenameLegacyColumn converges table to having column target. The first
// legacy name present is renamed in place; a fresh column is added only when
// neither target nor any legacy name exists.
func RenameLegacyColumn(ctx context.Context, db bun.IDB, log *zap.Logger, table, target, definition string, legacy ...string) error {
	ok, err := ColumnExists(ctx, db, table, target)
	if err != nil {
		return fmt.Errorf("probe %s.%s: %w", table, target, err)
	}
	if ok {
		return nil
	}

	for _, old := range legacy {
		has, err := ColumnExists(ctx, db, table, old)
		if err != nil {
			return fmt.Errorf("probe %s.%s: %w", table, old, err)
		}
		if !has {
			continue
		}
		ddl := fmt.Sprintf("ALTER TABLE `%s` CHANGE COLUMN `%s` `%s` %s", table, old, target, definition)
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("rename %s.%s: %w", table, old, err)
		}
		log.Info("schema: renamed legacy column",
			zap.String("table", table), zap.String("from", old), zap.String("to", target))
		return nil
	}

	return EnsureColumn(ctx, db, log, table, target, definition)
}

// RelaxColumn makes a leftover column nullable so inserts that no longer
// mention it keep working. Missing or already-nullable columns are left alone.
func RelaxColumn(ctx context.Context, db bun.IDB, log *zap.Logger, table, column string) error {
	ok, err := ColumnExists(ctx, db, table, column)
	if err != nil || !ok {
		return err
	}
	typ, nullable, err := columnType(ctx, db, table, column)
	if err != nil {
		return fmt.Errorf("probe %s.%s type: %w", table, column, err)
	}
	if nullable {
		return nil
	}
	ddl := fmt.Sprintf("ALTER TABLE `%s` MODIFY COLUMN `%s` %s NULL DEFAULT NULL", table, column, typ)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("relax %s.%s: %w", table, column, err)
	}
	log.Info("schema: made legacy column nullable", zap.String("table", table), zap.String("column", column))
	return nil
}

// EnsurePrimaryKey rebuilds the primary key of table when it differs from cols.
func EnsurePrimaryKey(ctx context.Context, db bun.IDB, log *zap.Logger, table string, cols ...string) error {
	have, err := PrimaryKey(ctx, db, table)
	if err != nil {
		return fmt.Errorf("probe %s primary key: %w", table, err)
	}
	if strings.Join(have, ",") == strings.Join(cols, ",") {
		return nil
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "`" + c + "`"
	}
	var ddl string
	if len(have) == 0 {
		ddl = fmt.Sprintf("ALTER TABLE `%s` ADD PRIMARY KEY (%s)", table, strings.Join(quoted, ", "))
	} else {
		ddl = fmt.Sprintf("ALTER TABLE `%s` DROP PRIMARY KEY, ADD PRIMARY KEY (%s)", table, strings.Join(quoted, ", "))
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		if dberr.IsDuplicate(err) {
			return fmt.Errorf("%s primary key (%s): %w", table, strings.Join(cols, ", "), ErrDuplicateRows)
		}
		return fmt.Errorf("rebuild %s primary key: %w", table, err)
	}
	log.Info("schema: rebuilt primary key",
		zap.String("table", table), zap.Strings("from", have), zap.Strings("to", cols))
	return nil
}

// DropIndexIfExists drops index by name. A concurrent drop is not an error.
func DropIndexIfExists(ctx context.Context, db bun.IDB, log *zap.Logger, table, index string) error {
	ok, err := IndexExists(ctx, db, table, index)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", index, err)
	}
	if !ok {
		return nil
	}
	ddl := fmt.Sprintf("ALTER TABLE `%s` DROP INDEX `%s`", table, index)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		if dberr.IsMissingKey(err) {
			return nil
		}
		return fmt.Errorf("drop index %s: %w", index, err)
	}
	log.Info("schema: dropped index", zap.String("table", table), zap.String("index", index))
	return nil
}

// EnsureUniqueIndex adds a unique index unless one with that name exists.
// Returns ErrDuplicateRows (wrapped) when current data violates it.
func EnsureUniqueIndex(ctx context.Context, db bun.IDB, log *zap.Logger, table, index string, cols ...string) error {
	ok, err := IndexExists(ctx, db, table, index)
	if err != nil {
		return fmt.Errorf("probe index %s: %w", index, err)
	}
	if ok {
		return nil
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "`" + c + "`"
	}
	ddl := fmt.Sprintf("ALTER TABLE `%s` ADD UNIQUE KEY `%s` (%s)", table, index, strings.Join(quoted, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		if dberr.IsDuplicate(err) {
			return fmt.Errorf("index %s: %w", index, ErrDuplicateRows)
		}
		if dberr.Code(err) == dberr.ErDupKeyName {
			return nil
		}
		return fmt.Errorf("add index %s: %w", index, err)
	}
	log.Info("schema: added unique index",
		zap.String("table", table), zap.String("index", index), zap.Strings("columns", cols))
	return nil
}
