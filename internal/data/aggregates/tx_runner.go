package aggregates

import (
	"context"
	"errors"

	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
	"github.com/yungbote/devcamper-backend/internal/platform/dbctx"
	"gorm.io/gorm"
)

// TxRunner owns the transaction a recomputation's read and write share.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.Wrap(domainagg.CodeInternal, "rollup.tx", errors.New("transaction runner has no db"))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
