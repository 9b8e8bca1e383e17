// internal/app/features/clubs/handler.go
package clubs

import (
	"context"
	"net/http"
	"strconv"

	clubstore "github.com/dalemusser/clubhub/internal/app/store/clubs"
	"github.com/dalemusser/clubhub/internal/app/system/auditlog"
	"github.com/dalemusser/clubhub/internal/app/system/jsonx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Store is the part of clubstore.Store the handlers use.
type Store interface {
	List(ctx context.Context, includePending bool) ([]clubstore.Detail, error)
	ListAdmin(ctx context.Context) ([]clubstore.Detail, error)
	Get(ctx context.Context, id int64) (clubstore.Detail, error)
	Patch(ctx context.Context, id int64, p clubstore.Patch) error
	SetStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	Store Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

func NewHandler(store Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Audit: audit, Log: logger}
}

// clubID parses the {id} route parameter, answering 400 bad_id when it is
// not a positive integer.
func clubID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		jsonx.Error(w, http.StatusBadRequest, "bad_id")
		return 0, false
	}
	return id, true
}
