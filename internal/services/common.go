package services

import (
	"context"

	"github.com/google/uuid"

	dataagg "github.com/yungbote/devcamper-backend/internal/data/aggregates"
	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/domain"
	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/ctxutil"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

// ListResult is one page of an advanced-results query.
type ListResult[T any] struct {
	Items      []T
	Total      int64
	Pagination query.Pagination
}

func requireCaller(ctx context.Context) (*ctxutil.RequestData, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", "Not authorized to access this route")
	}
	return rd, nil
}

func canModify(rd *ctxutil.RequestData, ownerID uuid.UUID) bool {
	return rd.Role == domain.RoleAdmin || rd.UserID == ownerID
}

// persistErr converts a repository failure into the API error the handlers render.
// Unique violations become 400 "Duplicate field value entered".
func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apierr.As(err); ok {
		return err
	}
	mapped := dataagg.MapError(op, err)
	switch domainagg.CodeOf(mapped) {
	case domainagg.CodeConflict:
		return apierr.BadRequest("duplicate", "Duplicate field value entered")
	case domainagg.CodeNotFound:
		return apierr.NotFound("not_found", "Resource not found")
	default:
		return apierr.Internal("internal", mapped)
	}
}

// rollupTrigger recomputes a parent rollup after a child write has committed. Failures
// are logged and never surface to the caller: the child write already succeeded and
// the next successful write to a sibling heals the parent.
//
// Two requests touching children of the same parent may interleave their
// recomputations; whichever writes last wins.
type rollupTrigger struct {
	log        *logger.Logger
	maintainer domainagg.RollupMaintainer
}

func newRollupTrigger(log *logger.Logger, m domainagg.RollupMaintainer) rollupTrigger {
	return rollupTrigger{log: log, maintainer: m}
}

func (t rollupTrigger) fire(ctx context.Context, parentIDs ...uuid.UUID) {
	if t.maintainer == nil {
		return
	}
	// Detach from request cancellation so a disconnecting client cannot leave a stale rollup.
	ctx = context.WithoutCancel(ctx)
	seen := make(map[uuid.UUID]bool, len(parentIDs))
	for _, id := range parentIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := t.maintainer.Recompute(ctx, id); err != nil {
			t.log.Error("rollup recompute failed",
				"rollup", t.maintainer.Name(),
				"parent_id", id,
				"code", domainagg.CodeOf(err),
				"error", err,
			)
		}
	}
}
