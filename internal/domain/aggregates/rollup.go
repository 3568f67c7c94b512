package aggregates

import (
	"context"
	"math"

	"github.com/google/uuid"
)

// RollupFunc derives a parent's rollup from its children's values.
// A nil result is the empty rollup and is stored as NULL.
type RollupFunc func(values []float64) *float64

// RollupStatus reports what a recomputation did to the parent row.
type RollupStatus string

const (
	RollupUpdated        RollupStatus = "updated"
	RollupCleared        RollupStatus = "cleared"
	RollupParentNotFound RollupStatus = "parent_not_found"
)

// RollupResult describes a single recomputation.
type RollupResult struct {
	Name     string
	ParentID uuid.UUID
	Children int
	Value    *float64
	Status   RollupStatus
}

// RollupMaintainer keeps one denormalized parent column consistent with the child
// rows that reference the parent.
//
// Recompute is idempotent. It performs one read of the children and one partial
// update of the parent's rollup column. A missing parent is detected from that update
// matching no row, so no data is written for it; it is reported through
// RollupResult.Status and is never returned as an error. Read and write failures are
// returned and must not undo the child write that triggered the call.
//
// Concurrent recomputations for the same parent are not serialized: the last write
// wins, and the next successful child mutation heals any stale value.
type RollupMaintainer interface {
	Name() string
	Recompute(ctx context.Context, parentID uuid.UUID) (RollupResult, error)
	RecomputeMany(ctx context.Context, parentIDs []uuid.UUID) ([]RollupResult, error)
}

// Mean returns the arithmetic mean of values, or false when values is empty.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// MeanCeilToTen is the average-cost rollup: ceil(mean/10)*10.
func MeanCeilToTen(values []float64) *float64 {
	mean, ok := Mean(values)
	if !ok {
		return nil
	}
	v := math.Ceil(snap(mean/10)) * 10
	return &v
}

// MeanRounded returns a rollup that rounds the mean to the given number of decimals.
func MeanRounded(places int) RollupFunc {
	scale := math.Pow(10, float64(places))
	return func(values []float64) *float64 {
		mean, ok := Mean(values)
		if !ok {
			return nil
		}
		v := math.Round(mean*scale) / scale
		return &v
	}
}

// snap removes floating point noise within 1e-9 of an integer so that an exact
// multiple of ten is not pushed up to the next one.
func snap(x float64) float64 {
	if r := math.Round(x); math.Abs(x-r) < 1e-9 {
		return r
	}
	return x
}
