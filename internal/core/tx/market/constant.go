package market

import "errors"

// MarketCreate flags
const (
	// TfEscrow creates a market filled through requestBuy/approveBuy
	TfEscrow uint32 = 0x00010000
)

// Validation errors
var (
	ErrMissingMarket  = errors.New("temMALFORMED: Market is required")
	ErrMissingOffer   = errors.New("temMALFORMED: OfferID is required")
	ErrMissingRequest = errors.New("temMALFORMED: RequestID is required")
	ErrMissingLedger  = errors.New("temMALFORMED: Ledger is required")
	ErrMissingAssetID = errors.New("temMALFORMED: AssetID is required")
	ErrMissingMoney   = errors.New("temMALFORMED: Money is required")
	ErrBadAmount      = errors.New("temBAD_AMOUNT: amount must be a positive integer of base units")
	ErrBadMinBuy      = errors.New("temBELOW_MIN_BUY: MinBuyAmount must be positive and at most Amount")
	ErrBadPrice       = errors.New("temBAD_PRICE: price must be a non-negative integer of base units")
	ErrBadFee         = errors.New("temBAD_RATE: fee rate exceeds 10000 basis points")
)
