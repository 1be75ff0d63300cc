package market

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/money"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeOfferRequestBuy, func() tx.Transaction {
		return &OfferRequestBuy{BaseTx: *tx.NewBaseTx(tx.TypeOfferRequestBuy, types.ZeroAddress)}
	})
	tx.Register(tx.TypeOfferApproveBuy, func() tx.Transaction {
		return &OfferApproveBuy{requestRef: requestRef{BaseTx: *tx.NewBaseTx(tx.TypeOfferApproveBuy, types.ZeroAddress)}}
	})
	tx.Register(tx.TypeOfferCancelRequest, func() tx.Transaction {
		return &OfferCancelRequest{requestRef: requestRef{BaseTx: *tx.NewBaseTx(tx.TypeOfferCancelRequest, types.ZeroAddress)}}
	})
}

// RequestEvent describes an escrowed buy request.
type RequestEvent struct {
	Market  uint32                `json:"market"`
	ID      uint64                `json:"id"`
	OfferID uint64                `json:"offer_id"`
	Buyer   types.Address         `json:"buyer"`
	Amount  decimal.Decimal       `json:"amount"`
	Total   decimal.Decimal       `json:"total"`
	Status  entries.RequestStatus `json:"status"`
}

func newRequestEvent(r *entries.BuyRequest) RequestEvent {
	return RequestEvent{
		Market:  r.Market,
		ID:      r.ID,
		OfferID: r.OfferID,
		Buyer:   r.Buyer,
		Amount:  r.Amount,
		Total:   r.Total,
		Status:  r.Status,
	}
}

// OfferRequestBuy escrows the buyer's payment and holds part of an offer
// until the seller approves.
type OfferRequestBuy struct {
	tx.BaseTx

	Market  uint32          `json:"Market"`
	OfferID uint64          `json:"OfferID"`
	Amount  decimal.Decimal `json:"Amount"`
}

// NewOfferRequestBuy creates a new OfferRequestBuy transaction
func NewOfferRequestBuy(account types.Address, market uint32, offerID uint64, amount decimal.Decimal) *OfferRequestBuy {
	return &OfferRequestBuy{
		BaseTx:  *tx.NewBaseTx(tx.TypeOfferRequestBuy, account),
		Market:  market,
		OfferID: offerID,
		Amount:  amount,
	}
}

// TxType returns the transaction type
func (r *OfferRequestBuy) TxType() tx.Type {
	return tx.TypeOfferRequestBuy
}

// Validate validates the OfferRequestBuy transaction
func (r *OfferRequestBuy) Validate() error {
	if err := r.ValidateFlags(0); err != nil {
		return err
	}
	return validateFillRef(r.Market, r.OfferID, r.Amount)
}

// Apply records the request and moves the payment into custody.
func (r *OfferRequestBuy) Apply(ctx *tx.ApplyContext) tx.Result {
	m, result := loadMarket(ctx, r.Market)
	if result != tx.TesSUCCESS {
		return result
	}
	if m.Kind != entries.MarketEscrow {
		return tx.TecMARKET_KIND
	}
	o, result := loadOffer(ctx, r.Market, r.OfferID)
	if result != tx.TesSUCCESS {
		return result
	}
	if result := checkFillable(o, r.Amount); result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.RequireApproved(o.Ledger, ctx.Account); result != tx.TesSUCCESS {
		return result
	}
	total, result := saleTotal(ctx, o, r.Amount)
	if result != tx.TesSUCCESS {
		return result
	}

	o.Amount = o.Amount.Sub(r.Amount)
	o.Pending = o.Pending.Add(r.Amount)
	if result := saveOffer(ctx, o); result != tx.TesSUCCESS {
		return result
	}

	req := &entries.BuyRequest{
		Market:  m.ID,
		ID:      m.NextRequestID,
		OfferID: o.ID,
		Buyer:   ctx.Account,
		Amount:  r.Amount,
		Total:   total,
		Money:   o.Money,
		Status:  entries.RequestPending,
	}
	if req.ID == 0 {
		req.ID = 1
	}
	m.NextRequestID = req.ID + 1
	if result := saveMarket(ctx, m); result != tx.TesSUCCESS {
		return result
	}
	if err := tx.InsertEntry(ctx.View, keylet.BuyRequest(m.ID, req.ID), req); err != nil {
		return ctx.Internal(err)
	}

	if result := money.MoveFrom(ctx, o.Money, m.Address, ctx.Account, m.Address, total); result != tx.TesSUCCESS {
		return result
	}

	ctx.Created(req.ID)
	ctx.Emit(tx.EventBuyRequested, newRequestEvent(req))
	return tx.TesSUCCESS
}

type requestRef struct {
	tx.BaseTx

	Market    uint32 `json:"Market"`
	RequestID uint64 `json:"RequestID"`
}

func (r *requestRef) Validate() error {
	if err := r.ValidateFlags(0); err != nil {
		return err
	}
	if r.Market == 0 {
		return ErrMissingMarket
	}
	if r.RequestID == 0 {
		return ErrMissingRequest
	}
	return nil
}

// load returns the escrow market, the pending request and its offer.
func (r *requestRef) load(ctx *tx.ApplyContext) (*entries.Market, *entries.BuyRequest, *entries.Offer, tx.Result) {
	m, result := loadMarket(ctx, r.Market)
	if result != tx.TesSUCCESS {
		return nil, nil, nil, result
	}
	if m.Kind != entries.MarketEscrow {
		return nil, nil, nil, tx.TecMARKET_KIND
	}
	req, result := loadRequest(ctx, r.Market, r.RequestID)
	if result != tx.TesSUCCESS {
		return nil, nil, nil, result
	}
	if req.Status != entries.RequestPending {
		return nil, nil, nil, tx.TecNO_PENDING_REQUEST
	}
	o, result := loadOffer(ctx, r.Market, req.OfferID)
	if result != tx.TesSUCCESS {
		return nil, nil, nil, result
	}
	return m, req, o, tx.TesSUCCESS
}

// OfferApproveBuy settles a pending request out of custody. Seller only.
type OfferApproveBuy struct {
	requestRef
}

// NewOfferApproveBuy creates a new OfferApproveBuy transaction
func NewOfferApproveBuy(account types.Address, market uint32, requestID uint64) *OfferApproveBuy {
	return &OfferApproveBuy{requestRef: requestRef{
		BaseTx:    *tx.NewBaseTx(tx.TypeOfferApproveBuy, account),
		Market:    market,
		RequestID: requestID,
	}}
}

func (a *OfferApproveBuy) TxType() tx.Type {
	return tx.TypeOfferApproveBuy
}

func (a *OfferApproveBuy) Apply(ctx *tx.ApplyContext) tx.Result {
	m, req, o, result := a.load(ctx)
	if result != tx.TesSUCCESS {
		return result
	}
	if o.Seller != ctx.Account {
		return tx.TecNOT_OWNER
	}

	o.Pending = o.Pending.Sub(req.Amount)
	o.Sold = o.Sold.Add(req.Amount)
	if result := saveOffer(ctx, o); result != tx.TesSUCCESS {
		return result
	}
	req.Status = entries.RequestApproved
	if result := saveRequest(ctx, req); result != tx.TesSUCCESS {
		return result
	}

	split, result := settle(ctx, m, o, req.Buyer, req.Amount, req.Total)
	if result != tx.TesSUCCESS {
		return result
	}
	if result := pay(ctx, req.Money, m.Address, m.Operator, o.Seller, split); result != tx.TesSUCCESS {
		return result
	}

	ctx.Emit(tx.EventOfferFilled, FillEvent{
		Market:    m.ID,
		OfferID:   o.ID,
		RequestID: req.ID,
		Seller:    o.Seller,
		Buyer:     req.Buyer,
		Amount:    req.Amount,
		Remaining: o.Amount,
		Split:     split,
	})
	return tx.TesSUCCESS
}

// OfferCancelRequest refunds a pending request and returns its amount to
// the offer. Either the buyer or the seller may cancel.
type OfferCancelRequest struct {
	requestRef
}

// NewOfferCancelRequest creates a new OfferCancelRequest transaction
func NewOfferCancelRequest(account types.Address, market uint32, requestID uint64) *OfferCancelRequest {
	return &OfferCancelRequest{requestRef: requestRef{
		BaseTx:    *tx.NewBaseTx(tx.TypeOfferCancelRequest, account),
		Market:    market,
		RequestID: requestID,
	}}
}

func (c *OfferCancelRequest) TxType() tx.Type {
	return tx.TypeOfferCancelRequest
}

func (c *OfferCancelRequest) Apply(ctx *tx.ApplyContext) tx.Result {
	m, req, o, result := c.load(ctx)
	if result != tx.TesSUCCESS {
		return result
	}
	if ctx.Account != req.Buyer && ctx.Account != o.Seller {
		return tx.TecNO_PERMISSION
	}

	o.Pending = o.Pending.Sub(req.Amount)
	o.Amount = o.Amount.Add(req.Amount)
	if result := saveOffer(ctx, o); result != tx.TesSUCCESS {
		return result
	}
	req.Status = entries.RequestCanceled
	if result := saveRequest(ctx, req); result != tx.TesSUCCESS {
		return result
	}
	if result := money.Move(ctx, req.Money, m.Address, req.Buyer, req.Total); result != tx.TesSUCCESS {
		return result
	}

	ctx.Emit(tx.EventBuyRequestCanceled, newRequestEvent(req))
	return tx.TesSUCCESS
}
