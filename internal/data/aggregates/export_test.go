package aggregates

// SpyTxRunner exposes spyTxRunner to the external aggregates_test package.
type SpyTxRunner = spyTxRunner
