package asset

import (
	"errors"
	"strings"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
)

// AssetCreate flags
const (
	// TfStartPaused creates the asset in the paused state
	TfStartPaused uint32 = 0x00010000
	// TfDivisible allows the asset's weight to be divided
	TfDivisible uint32 = 0x00020000

	tfAssetCreateMask = TfStartPaused | TfDivisible
)

// AssetSetOperator flags
const (
	// TfRevoke clears an operator approval instead of granting it
	TfRevoke uint32 = 0x00010000
)

const (
	// MaxDecimals bounds the precision of a ledger
	MaxDecimals = 18

	// MaxNameLength bounds asset leaf names
	MaxNameLength = 64

	// MaxURILength bounds asset URIs
	MaxURILength = 512

	// DefaultMinStepSize is the step size of a new asset
	DefaultMinStepSize = 1
)

// Validation errors
var (
	ErrBadName        = errors.New("temBAD_NAME: name must be 1-64 characters without '/'")
	ErrURITooLong     = errors.New("temMALFORMED: URI exceeds maximum length of 512 characters")
	ErrBadAmount      = errors.New("temBAD_AMOUNT: amount must be a positive integer of base units")
	ErrBadRate        = errors.New("temBAD_RATE: royalty rate exceeds 10000 basis points")
	ErrBadDecimals    = errors.New("temBAD_DECIMALS: decimals exceed maximum of 18")
	ErrMissingLedger  = errors.New("temMALFORMED: Ledger is required")
	ErrMissingAssetID = errors.New("temMALFORMED: AssetID is required")
	ErrMissingDest    = errors.New("temBAD_ADDRESS: Destination is required")
	ErrDestIsSrc      = errors.New("temDST_IS_SRC: destination is the source")
	ErrBadStepSize    = errors.New("temBAD_STEP_SIZE: step size must be positive")
	ErrMissingReg     = errors.New("temMALFORMED: Registry is required")
	ErrSelfOperator   = errors.New("temREDUNDANT: account cannot be its own operator")
)

func validName(name string) bool {
	return name != "" && len(name) <= MaxNameLength && !strings.Contains(name, entries.FullNameSeparator)
}

var errNegativeReservation = errors.New("reservation would become negative")
