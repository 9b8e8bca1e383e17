// internal/app/system/schema/schema.go
package schema

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

const createBookkeeping = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(32) PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	applied_at DATETIME NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// Applied is a schema_migrations row.
type Applied struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Version   string    `bun:"version,pk"`
	Name      string    `bun:"name,notnull"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

// Report summarises one reconcile run.
type Report struct {
	Applied  []string // ran and recorded
	Skipped  []string // already recorded
	Deferred []string // left pending because data blocks them (e.g. duplicate names)
	Failed   []string // errored; retried next run
}

// OK reports whether every migration is now recorded.
func (r Report) OK() bool {
	return len(r.Deferred) == 0 && len(r.Failed) == 0
}

// Status describes one migration for operators.
type Status struct {
	Version   string
	Name      string
	AppliedAt *time.Time
}

// StepObserver is notified of each migration outcome.
// result is one of "applied", "skipped", "deferred", "failed".
type StepObserver func(version, name, result string)

// Reconciler converges the connected database to the current schema.
type Reconciler struct {
	db         *bun.DB
	log        *zap.Logger
	migrations []Migration
	observe    StepObserver
}

// New returns a Reconciler over the package migration list.
func New(db *bun.DB, logger *zap.Logger) *Reconciler {
	return &Reconciler{db: db, log: logger, migrations: Migrations}
}

// WithObserver sets a callback invoked after every migration.
func (r *Reconciler) WithObserver(fn StepObserver) *Reconciler {
	r.observe = fn
	return r
}

func (r *Reconciler) note(m Migration, result string) {
	if r.observe != nil {
		r.observe(m.Version, m.Name, result)
	}
}

func (r *Reconciler) applied(ctx context.Context) (map[string]Applied, error) {
	var rows []Applied
	if err := r.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]Applied, len(rows))
	for _, a := range rows {
		out[a.Version] = a
	}
	return out, nil
}

// Run applies every pending migration in order.
//
// A failing structural migration stops the run and is returned as an error.
// Other failures are logged, reported, and retried on the next Run. The
// returned error is nil whenever the database stayed usable.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var rep Report

	if _, err := r.db.ExecContext(ctx, createBookkeeping); err != nil {
		return rep, fmt.Errorf("create schema_migrations: %w", err)
	}
	done, err := r.applied(ctx)
	if err != nil {
		return rep, fmt.Errorf("read schema_migrations: %w", err)
	}

	for _, m := range r.migrations {
		if _, ok := done[m.Version]; ok {
			rep.Skipped = append(rep.Skipped, m.Version)
			r.note(m, "skipped")
			continue
		}

		start := time.Now()
		log := r.log.With(zap.String("migration", m.Version+"_"+m.Name))

		if err := m.Up(ctx, r.db, log); err != nil {
			if errors.Is(err, ErrDuplicateRows) {
				log.Warn("schema: migration deferred; existing data violates the new constraint",
					zap.Error(err))
				rep.Deferred = append(rep.Deferred, m.Version)
				r.note(m, "deferred")
				continue
			}

			log.Error("schema: migration failed", zap.Error(err))
			rep.Failed = append(rep.Failed, m.Version)
			r.note(m, "failed")
			if m.Structural {
				return rep, fmt.Errorf("migration %s_%s: %w", m.Version, m.Name, err)
			}
			continue
		}

		rec := Applied{Version: m.Version, Name: m.Name, AppliedAt: time.Now().UTC()}
		if _, err := r.db.NewInsert().Model(&rec).Ignore().Exec(ctx); err != nil {
			log.Error("schema: recording migration failed", zap.Error(err))
			rep.Failed = append(rep.Failed, m.Version)
			r.note(m, "failed")
			continue
		}

		log.Info("schema: migration applied", zap.Duration("took", time.Since(start)))
		rep.Applied = append(rep.Applied, m.Version)
		r.note(m, "applied")
	}

	return rep, nil
}

// Status lists every known migration and when it was applied.
func (r *Reconciler) Status(ctx context.Context) ([]Status, error) {
	exists, err := TableExists(ctx, r.db, "schema_migrations")
	if err != nil {
		return nil, err
	}
	done := map[string]Applied{}
	if exists {
		if done, err = r.applied(ctx); err != nil {
			return nil, err
		}
	}

	out := make([]Status, 0, len(r.migrations))
	for _, m := range r.migrations {
		s := Status{Version: m.Version, Name: m.Name}
		if a, ok := done[m.Version]; ok {
			at := a.AppliedAt
			s.AppliedAt = &at
		}
		out = append(out, s)
	}
	return out, nil
}
