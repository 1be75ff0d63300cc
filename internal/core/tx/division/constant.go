package division

import "errors"

// Validation errors
var (
	ErrMissingLedger  = errors.New("temMALFORMED: Ledger is required")
	ErrMissingAssetID = errors.New("temMALFORMED: AssetID is required")
	ErrBadCount       = errors.New("temBAD_COUNT: division count must be positive")
	ErrBadStepWeight  = errors.New("temBAD_STEP_SIZE: step weight must be positive")
	ErrEmptyBatch     = errors.New("temARRAY_EMPTY: Counts and StepWeights must not be empty")
	ErrBatchMismatch  = errors.New("temMALFORMED: Counts and StepWeights differ in length")
)
