package aggregates

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
	"github.com/yungbote/devcamper-backend/internal/platform/dbctx"
)

func TestInTxClassifiesFailures(t *testing.T) {
	if err := inTx(context.Background(), spyTxRunner{}, "op", func(dbctx.Context) error { return nil }); err != nil {
		t.Fatalf("success: %v", err)
	}
	err := inTx(context.Background(), spyTxRunner{}, "op", func(dbctx.Context) error {
		return &pgconn.PgError{Code: "40001"}
	})
	if !domainagg.IsCode(err, domainagg.CodeRetryable) {
		t.Fatalf("want retryable, got %v", err)
	}
	read := ReadFailure("op", errors.New("boom"))
	if got := inTx(context.Background(), spyTxRunner{}, "op", func(dbctx.Context) error { return read }); got != read {
		t.Fatalf("coded error must pass through, got %v", got)
	}
}

func TestOutcomeOf(t *testing.T) {
	if got := outcomeOf(WriteFailure("op", errors.New("x"))); got != string(domainagg.CodeWriteFailure) {
		t.Fatalf("write failure: got=%s", got)
	}
	if got := outcomeOf(errors.New("plain")); got != string(domainagg.CodeInternal) {
		t.Fatalf("plain error: got=%s", got)
	}
}

func TestBaseDepsDefaults(t *testing.T) {
	d := BaseDeps{}.withDefaults()
	if d.Runner == nil || d.Hooks == nil || d.Log == nil {
		t.Fatalf("defaults not applied: %+v", d)
	}
	err := d.Runner.InTx(context.Background(), func(dbctx.Context) error { return nil })
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("runner without db: want internal, got %v", err)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}
