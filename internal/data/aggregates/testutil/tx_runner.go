package testutil

import (
	"context"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/aggregates"
	"github.com/yungbote/devcamper-backend/internal/platform/dbctx"
)

// TxRunner hands DB to the body without opening a transaction. Err fails the call
// before the body runs; CommitErr fails it after a successful body.
type TxRunner struct {
	DB        *gorm.DB
	Err       error
	CommitErr error

	mu        sync.Mutex
	Calls     int
	Commits   int
	Rollbacks int
}

var _ aggregates.TxRunner = (*TxRunner)(nil)

func (r *TxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()

	if r.Err != nil {
		return r.Err
	}
	err := r.CommitErr
	if fn != nil {
		if bodyErr := fn(dbctx.Context{Ctx: ctx, Tx: r.DB}); bodyErr != nil {
			err = bodyErr
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.Rollbacks++
		return err
	}
	r.Commits++
	return nil
}
