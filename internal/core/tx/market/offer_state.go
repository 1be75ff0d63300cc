package market

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeOfferCancel, func() tx.Transaction {
		return &OfferCancel{offerRef: offerRef{BaseTx: *tx.NewBaseTx(tx.TypeOfferCancel, types.ZeroAddress)}}
	})
	tx.Register(tx.TypeOfferPause, func() tx.Transaction {
		return &OfferPause{offerRef: offerRef{BaseTx: *tx.NewBaseTx(tx.TypeOfferPause, types.ZeroAddress)}}
	})
	tx.Register(tx.TypeOfferUnpause, func() tx.Transaction {
		return &OfferUnpause{offerRef: offerRef{BaseTx: *tx.NewBaseTx(tx.TypeOfferUnpause, types.ZeroAddress)}}
	})
}

type offerRef struct {
	tx.BaseTx

	Market  uint32 `json:"Market"`
	OfferID uint64 `json:"OfferID"`
}

func (r *offerRef) Validate() error {
	if err := r.ValidateFlags(0); err != nil {
		return err
	}
	if r.Market == 0 {
		return ErrMissingMarket
	}
	if r.OfferID == 0 {
		return ErrMissingOffer
	}
	return nil
}

// loadOwn loads a live offer of the caller.
func (r *offerRef) loadOwn(ctx *tx.ApplyContext) (*entries.Offer, tx.Result) {
	o, result := loadOffer(ctx, r.Market, r.OfferID)
	if result != tx.TesSUCCESS {
		return nil, result
	}
	if o.Seller != ctx.Account {
		return nil, tx.TecNOT_OWNER
	}
	if o.Canceled || o.Exhausted() {
		return nil, tx.TecOFFER_EXHAUSTED_OR_CANCELED
	}
	return o, tx.TesSUCCESS
}

func newOfferRef(t tx.Type, account types.Address, market uint32, offerID uint64) offerRef {
	return offerRef{BaseTx: *tx.NewBaseTx(t, account), Market: market, OfferID: offerID}
}

// OfferCancel withdraws an offer and releases its reservation. Terminal.
type OfferCancel struct {
	offerRef
}

// NewOfferCancel creates a new OfferCancel transaction
func NewOfferCancel(account types.Address, market uint32, offerID uint64) *OfferCancel {
	return &OfferCancel{offerRef: newOfferRef(tx.TypeOfferCancel, account, market, offerID)}
}

func (c *OfferCancel) TxType() tx.Type {
	return tx.TypeOfferCancel
}

func (c *OfferCancel) Apply(ctx *tx.ApplyContext) tx.Result {
	o, result := c.loadOwn(ctx)
	if result != tx.TesSUCCESS {
		return result
	}
	if o.Pending.IsPositive() {
		return tx.TecHAS_OBLIGATIONS
	}
	if result := asset.Reserve(ctx, o.Ledger, o.AssetID, o.Seller, o.Amount.Neg()); result != tx.TesSUCCESS {
		return result
	}
	o.Canceled = true
	if result := saveOffer(ctx, o); result != tx.TesSUCCESS {
		return result
	}
	ctx.Emit(tx.EventOfferCanceled, newOfferEvent(o))
	return tx.TesSUCCESS
}

// OfferPause stops an offer from being filled.
type OfferPause struct {
	offerRef
}

// NewOfferPause creates a new OfferPause transaction
func NewOfferPause(account types.Address, market uint32, offerID uint64) *OfferPause {
	return &OfferPause{offerRef: newOfferRef(tx.TypeOfferPause, account, market, offerID)}
}

func (p *OfferPause) TxType() tx.Type {
	return tx.TypeOfferPause
}

func (p *OfferPause) Apply(ctx *tx.ApplyContext) tx.Result {
	return p.setPaused(ctx, true)
}

// OfferUnpause makes a paused offer fillable again.
type OfferUnpause struct {
	offerRef
}

// NewOfferUnpause creates a new OfferUnpause transaction
func NewOfferUnpause(account types.Address, market uint32, offerID uint64) *OfferUnpause {
	return &OfferUnpause{offerRef: newOfferRef(tx.TypeOfferUnpause, account, market, offerID)}
}

func (u *OfferUnpause) TxType() tx.Type {
	return tx.TypeOfferUnpause
}

func (u *OfferUnpause) Apply(ctx *tx.ApplyContext) tx.Result {
	return u.setPaused(ctx, false)
}

func (r *offerRef) setPaused(ctx *tx.ApplyContext, paused bool) tx.Result {
	o, result := r.loadOwn(ctx)
	if result != tx.TesSUCCESS {
		return result
	}
	o.Paused = paused
	if result := saveOffer(ctx, o); result != tx.TesSUCCESS {
		return result
	}
	event := tx.EventOfferUnpaused
	if paused {
		event = tx.EventOfferPaused
	}
	ctx.Emit(event, newOfferEvent(o))
	return tx.TesSUCCESS
}
