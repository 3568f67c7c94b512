package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
	"github.com/yungbote/devcamper-backend/internal/platform/dbctx"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

// BaseDeps are shared by every rollup maintainer. Only DB is required; Runner
// defaults to a GORM transaction over DB.
type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// inTx runs fn in one transaction and classifies whatever it returns under op.
func inTx(ctx context.Context, runner TxRunner, op string, fn func(dbc dbctx.Context) error) error {
	return MapError(op, runner.InTx(ctx, fn))
}

// outcomeOf names a failed recomputation for Hooks.
func outcomeOf(err error) string {
	if code := domainagg.CodeOf(err); code != "" {
		return string(code)
	}
	return string(domainagg.CodeInternal)
}
