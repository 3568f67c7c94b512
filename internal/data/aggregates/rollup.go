package aggregates

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
	"github.com/yungbote/devcamper-backend/internal/platform/dbctx"
)

// RollupDefinition binds a rollup function to a child table and a parent column.
type RollupDefinition struct {
	Name        string
	ChildTable  string
	ChildFK     string
	ChildValue  string
	ParentTable string
	ParentKey   string
	ParentField string
	Func        domainagg.RollupFunc
}

func (d RollupDefinition) validate() error {
	missing := []string{}
	for field, v := range map[string]string{
		"Name":        d.Name,
		"ChildTable":  d.ChildTable,
		"ChildFK":     d.ChildFK,
		"ChildValue":  d.ChildValue,
		"ParentTable": d.ParentTable,
		"ParentField": d.ParentField,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("rollup definition missing %s", strings.Join(missing, ", "))
	}
	if d.Func == nil {
		return fmt.Errorf("rollup definition %q has no Func", d.Name)
	}
	return nil
}

func (d RollupDefinition) parentKey() string {
	if k := strings.TrimSpace(d.ParentKey); k != "" {
		return k
	}
	return "id"
}

// RollupStore is the persistence collaborator of a rollup maintainer.
type RollupStore interface {
	// ChildValues loads the value column of every child referencing parentID.
	ChildValues(dbc dbctx.Context, def RollupDefinition, parentID uuid.UUID) ([]float64, error)
	// SetRollup writes only the rollup column. found is false when the update matched no
	// parent row, in which case nothing was written.
	SetRollup(dbc dbctx.Context, def RollupDefinition, parentID uuid.UUID, value *float64) (found bool, err error)
}

type gormRollupStore struct {
	db *gorm.DB
}

func NewGormRollupStore(db *gorm.DB) RollupStore {
	return &gormRollupStore{db: db}
}

func (s *gormRollupStore) ChildValues(dbc dbctx.Context, def RollupDefinition, parentID uuid.UUID) ([]float64, error) {
	var values []float64
	err := dbc.DB(s.db).
		Table(def.ChildTable).
		Where(clause.Eq{Column: clause.Column{Name: def.ChildFK}, Value: parentID}).
		Pluck(def.ChildValue, &values).Error
	if err != nil {
		return nil, err
	}
	return values, nil
}

func (s *gormRollupStore) SetRollup(dbc dbctx.Context, def RollupDefinition, parentID uuid.UUID, value *float64) (bool, error) {
	var v interface{} = gorm.Expr("NULL")
	if value != nil {
		v = *value
	}
	res := dbc.DB(s.db).
		Table(def.ParentTable).
		Where(clause.Eq{Column: clause.Column{Name: def.parentKey()}, Value: parentID}).
		UpdateColumn(def.ParentField, v)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

type RollupDeps struct {
	BaseDeps
	Store RollupStore
}

type rollupMaintainer struct {
	deps  BaseDeps
	store RollupStore
	def   RollupDefinition
}

// NewRollupMaintainer builds a maintainer for def. When deps.Store is nil a GORM store
// over deps.DB is used.
func NewRollupMaintainer(deps RollupDeps, def RollupDefinition) (domainagg.RollupMaintainer, error) {
	if err := def.validate(); err != nil {
		return nil, err
	}
	base := deps.BaseDeps.withDefaults()
	store := deps.Store
	if store == nil {
		if base.DB == nil {
			return nil, fmt.Errorf("rollup %s: DB or Store required", def.Name)
		}
		store = NewGormRollupStore(base.DB)
	}
	base.Log = base.Log.With("aggregate", "RollupMaintainer", "rollup", def.Name)
	return &rollupMaintainer{deps: base, store: store, def: def}, nil
}

func (m *rollupMaintainer) Name() string { return m.def.Name }

// Recompute sets the parent's rollup column to Func(children). The read and the write
// share one transaction; nothing serializes it against other recomputations of the
// same parent.
func (m *rollupMaintainer) Recompute(ctx context.Context, parentID uuid.UUID) (domainagg.RollupResult, error) {
	start := time.Now()
	res, err := m.recompute(ctx, parentID)
	outcome := string(res.Status)
	if err != nil {
		outcome = outcomeOf(err)
	}
	m.deps.Hooks.ObserveRecompute(m.def.Name, outcome, time.Since(start))
	return res, err
}

func (m *rollupMaintainer) recompute(ctx context.Context, parentID uuid.UUID) (domainagg.RollupResult, error) {
	res := domainagg.RollupResult{Name: m.def.Name, ParentID: parentID}
	op := "rollup." + m.def.Name

	if parentID == uuid.Nil {
		res.Status = domainagg.RollupParentNotFound
		m.deps.Log.Warn("rollup skipped: empty parent key")
		return res, nil
	}

	err := inTx(ctx, m.deps.Runner, op, func(dbc dbctx.Context) error {
		values, err := m.store.ChildValues(dbc, m.def, parentID)
		if err != nil {
			return ReadFailure(op, err)
		}
		res.Children = len(values)
		res.Value = m.def.Func(values)

		found, err := m.store.SetRollup(dbc, m.def, parentID, res.Value)
		if err != nil {
			return WriteFailure(op, err)
		}
		switch {
		case !found:
			res.Status = domainagg.RollupParentNotFound
		case res.Value == nil:
			res.Status = domainagg.RollupCleared
		default:
			res.Status = domainagg.RollupUpdated
		}
		return nil
	})
	if err != nil {
		res.Status = ""
		return res, err
	}

	if res.Status == domainagg.RollupParentNotFound {
		m.deps.Log.Warn("rollup parent not found", "parent_id", parentID, "children", res.Children)
		return res, nil
	}
	m.deps.Log.Debug("rollup recomputed", "parent_id", parentID, "children", res.Children, "status", res.Status)
	return res, nil
}

// RecomputeMany runs Recompute for each key in order. It keeps going past failures and
// returns the first error together with every result.
func (m *rollupMaintainer) RecomputeMany(ctx context.Context, parentIDs []uuid.UUID) ([]domainagg.RollupResult, error) {
	out := make([]domainagg.RollupResult, 0, len(parentIDs))
	var firstErr error
	for _, id := range parentIDs {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := m.Recompute(ctx, id)
		out = append(out, res)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return out, firstErr
}
