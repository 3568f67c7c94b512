// Package aggregates persists the rollups declared in domain/aggregates.
//
// Each maintainer reads child values through a RollupStore and writes the parent
// column inside one TxRunner transaction. The course and review services call them
// after a child mutation has committed.
package aggregates
