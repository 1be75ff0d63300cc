package asset

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeAssetSetOperator, func() tx.Transaction {
		return &AssetSetOperator{BaseTx: *tx.NewBaseTx(tx.TypeAssetSetOperator, types.ZeroAddress)}
	})
}

// AssetSetOperator grants (or with TfRevoke, revokes) Operator the right
// to move any of the caller's assets on a ledger. Markets require it.
type AssetSetOperator struct {
	tx.BaseTx

	Ledger   uint32        `json:"Ledger"`
	Operator types.Address `json:"Operator"`
}

// OperatorEvent is emitted when an operator approval changes.
type OperatorEvent struct {
	Ledger   uint32        `json:"ledger"`
	Owner    types.Address `json:"owner"`
	Operator types.Address `json:"operator"`
	Approved bool          `json:"approved"`
}

// NewAssetSetOperator creates a new AssetSetOperator transaction
func NewAssetSetOperator(account types.Address, ledger uint32, operator types.Address) *AssetSetOperator {
	return &AssetSetOperator{
		BaseTx:   *tx.NewBaseTx(tx.TypeAssetSetOperator, account),
		Ledger:   ledger,
		Operator: operator,
	}
}

// TxType returns the transaction type
func (s *AssetSetOperator) TxType() tx.Type {
	return tx.TypeAssetSetOperator
}

// Validate validates the AssetSetOperator transaction
func (s *AssetSetOperator) Validate() error {
	if err := s.ValidateFlags(TfRevoke); err != nil {
		return err
	}
	if s.Ledger == 0 {
		return ErrMissingLedger
	}
	if s.Operator.IsZero() {
		return ErrMissingDest
	}
	if s.Operator == s.Account {
		return ErrSelfOperator
	}
	return nil
}

// Apply records the approval.
func (s *AssetSetOperator) Apply(ctx *tx.ApplyContext) tx.Result {
	if _, result := ctx.Ledger(s.Ledger); result != tx.TesSUCCESS {
		return result
	}
	approved := s.GetFlags()&TfRevoke == 0
	k := keylet.OperatorApproval(s.Ledger, ctx.Account, s.Operator)
	if !approved {
		exists, err := ctx.View.Exists(k)
		if err != nil {
			return ctx.Internal(err)
		}
		if exists {
			if err := ctx.View.Erase(k); err != nil {
				return ctx.Internal(err)
			}
		}
	} else {
		o := &entries.OperatorApproval{Ledger: s.Ledger, Owner: ctx.Account, Operator: s.Operator, Approved: true}
		if err := tx.WriteEntry(ctx.View, k, o); err != nil {
			return ctx.Internal(err)
		}
	}
	ctx.Emit(tx.EventAssetOperatorSet, OperatorEvent{
		Ledger:   s.Ledger,
		Owner:    ctx.Account,
		Operator: s.Operator,
		Approved: approved,
	})
	return tx.TesSUCCESS
}
