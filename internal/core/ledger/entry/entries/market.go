package entries

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

// MarketKind selects how offers on a market are filled.
type MarketKind uint8

const (
	// MarketInstant fills with a single atomic buy
	MarketInstant MarketKind = iota
	// MarketEscrow fills through requestBuy followed by the seller's approveBuy
	MarketEscrow
)

func (k MarketKind) String() string {
	switch k {
	case MarketInstant:
		return "instant"
	case MarketEscrow:
		return "escrow"
	default:
		return "unknown"
	}
}

// Market is a marketplace instance. Address is the market's custody
// account: sellers approve it as operator and escrowed funds are held there.
type Market struct {
	ID       uint32        `json:"id"`
	Operator types.Address `json:"operator"`
	Address  types.Address `json:"address"`
	FeeRate  uint32        `json:"fee_rate"`
	Kind     MarketKind    `json:"kind"`

	NextOfferID   uint64 `json:"next_offer_id"`
	NextRequestID uint64 `json:"next_request_id"`
}

func (m *Market) Type() entry.Type {
	return entry.TypeMarket
}

func (m *Market) Validate() error {
	if m.ID == 0 {
		return errors.New("market id is required")
	}
	if m.Kind > MarketEscrow {
		return errors.New("unknown market kind")
	}
	return nil
}

// OfferStatus is the derived state of an offer.
type OfferStatus string

const (
	OfferOpen     OfferStatus = "open"
	OfferPaused   OfferStatus = "paused"
	OfferFilled   OfferStatus = "filled"
	OfferCanceled OfferStatus = "canceled"
)

// Offer is a sell offer on a market.
type Offer struct {
	Market       uint32          `json:"market"`
	ID           uint64          `json:"id"`
	Seller       types.Address   `json:"seller"`
	Ledger       uint32          `json:"ledger"`
	AssetID      uint64          `json:"asset_id"`
	Amount       decimal.Decimal `json:"amount"`
	MinBuyAmount decimal.Decimal `json:"min_buy_amount"`
	Price        decimal.Decimal `json:"price"`
	Money        uint32          `json:"money"`
	Paused       bool            `json:"paused"`
	Canceled     bool            `json:"canceled"`

	// Pending is requested through escrow but not yet approved
	Pending decimal.Decimal `json:"pending"`

	// Sold is the cumulative filled amount
	Sold decimal.Decimal `json:"sold"`
}

func (o *Offer) Type() entry.Type {
	return entry.TypeOffer
}

func (o *Offer) Validate() error {
	if o.ID == 0 {
		return errors.New("offer id is required")
	}
	if o.Amount.IsNegative() || o.Pending.IsNegative() {
		return errors.New("offer amounts cannot be negative")
	}
	if o.Price.IsNegative() {
		return errors.New("offer price cannot be negative")
	}
	return nil
}

// Exhausted reports whether nothing remains to sell or settle.
func (o *Offer) Exhausted() bool {
	return o.Amount.IsZero() && o.Pending.IsZero()
}

// Status derives the offer state machine position.
func (o *Offer) Status() OfferStatus {
	switch {
	case o.Canceled:
		return OfferCanceled
	case o.Exhausted():
		return OfferFilled
	case o.Paused:
		return OfferPaused
	default:
		return OfferOpen
	}
}

// RequestStatus is the state of an escrowed buy request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestCanceled RequestStatus = "canceled"
)

// BuyRequest is an escrowed request against an offer. Total is the amount
// of Money held in market custody for the buyer.
type BuyRequest struct {
	Market  uint32          `json:"market"`
	ID      uint64          `json:"id"`
	OfferID uint64          `json:"offer_id"`
	Buyer   types.Address   `json:"buyer"`
	Amount  decimal.Decimal `json:"amount"`
	Total   decimal.Decimal `json:"total"`
	Money   uint32          `json:"money"`
	Status  RequestStatus   `json:"status"`
}

func (r *BuyRequest) Type() entry.Type {
	return entry.TypeBuyRequest
}

func (r *BuyRequest) Validate() error {
	if r.ID == 0 || r.OfferID == 0 {
		return errors.New("request and offer ids are required")
	}
	if !r.Amount.IsPositive() {
		return errors.New("request amount must be positive")
	}
	return nil
}
