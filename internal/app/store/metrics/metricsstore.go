package metricsstore

import (
	"context"

	"github.com/dalemusser/clubhub/internal/domain/models"
	"github.com/uptrace/bun"
)

// Counts is the set of directory totals exported as gauges.
type Counts struct {
	Approved  int64
	Pending   int64
	Rejected  int64
	Subfields int64
}

// ByStatus returns the club totals keyed by status label.
func (c Counts) ByStatus() map[string]int64 {
	return map[string]int64{
		models.ClubApproved: c.Approved,
		models.ClubPending:  c.Pending,
		models.ClubRejected: c.Rejected,
	}
}

// FetchCounts returns the directory totals.
// Intentionally tolerant: on error it returns 0 for that counter.
func FetchCounts(ctx context.Context, db bun.IDB) Counts {
	var out Counts

	var rows []struct {
		Status string `bun:"status"`
		N      int64  `bun:"n"`
	}
	err := db.NewSelect().
		TableExpr("clubs").
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS n").
		Group("status").
		Scan(ctx, &rows)
	if err == nil {
		for _, r := range rows {
			switch r.Status {
			case models.ClubApproved:
				out.Approved = r.N
			case models.ClubPending:
				out.Pending = r.N
			case models.ClubRejected:
				out.Rejected = r.N
			}
		}
	}

	if n, err := db.NewSelect().TableExpr("subfields").Count(ctx); err == nil {
		out.Subfields = int64(n)
	}

	return out
}
