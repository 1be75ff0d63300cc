package money

import (
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeMoneyTransfer, func() tx.Transaction {
		return &MoneyTransfer{BaseTx: *tx.NewBaseTx(tx.TypeMoneyTransfer, types.ZeroAddress)}
	})
	tx.Register(tx.TypeMoneyApprove, func() tx.Transaction {
		return &MoneyApprove{BaseTx: *tx.NewBaseTx(tx.TypeMoneyApprove, types.ZeroAddress)}
	})
	tx.Register(tx.TypeMoneyTransferFrom, func() tx.Transaction {
		return &MoneyTransferFrom{BaseTx: *tx.NewBaseTx(tx.TypeMoneyTransferFrom, types.ZeroAddress)}
	})
}

// MoneyTransfer moves the caller's money to Destination.
type MoneyTransfer struct {
	tx.BaseTx

	Token       uint32          `json:"Token"`
	Destination types.Address   `json:"Destination"`
	Amount      decimal.Decimal `json:"Amount"`
}

// NewMoneyTransfer creates a new MoneyTransfer transaction
func NewMoneyTransfer(account types.Address, token uint32, to types.Address, amount decimal.Decimal) *MoneyTransfer {
	return &MoneyTransfer{
		BaseTx:      *tx.NewBaseTx(tx.TypeMoneyTransfer, account),
		Token:       token,
		Destination: to,
		Amount:      amount,
	}
}

func (m *MoneyTransfer) TxType() tx.Type {
	return tx.TypeMoneyTransfer
}

func (m *MoneyTransfer) Validate() error {
	if err := m.ValidateFlags(0); err != nil {
		return err
	}
	return validateMove(m.Token, m.Account, m.Destination, m.Amount)
}

func (m *MoneyTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	if _, result := Load(ctx, m.Token); result != tx.TesSUCCESS {
		return result
	}
	return Move(ctx, m.Token, ctx.Account, m.Destination, m.Amount)
}

// MoneyApprove sets the amount Spender may move out of the caller's balance.
// It replaces any previous allowance.
type MoneyApprove struct {
	tx.BaseTx

	Token   uint32          `json:"Token"`
	Spender types.Address   `json:"Spender"`
	Amount  decimal.Decimal `json:"Amount"`
}

// ApprovalEvent is emitted when an allowance is set.
type ApprovalEvent struct {
	Token   uint32          `json:"token"`
	Owner   types.Address   `json:"owner"`
	Spender types.Address   `json:"spender"`
	Amount  decimal.Decimal `json:"amount"`
}

// NewMoneyApprove creates a new MoneyApprove transaction
func NewMoneyApprove(account types.Address, token uint32, spender types.Address, amount decimal.Decimal) *MoneyApprove {
	return &MoneyApprove{
		BaseTx:  *tx.NewBaseTx(tx.TypeMoneyApprove, account),
		Token:   token,
		Spender: spender,
		Amount:  amount,
	}
}

func (m *MoneyApprove) TxType() tx.Type {
	return tx.TypeMoneyApprove
}

func (m *MoneyApprove) Validate() error {
	if err := m.ValidateFlags(0); err != nil {
		return err
	}
	if m.Token == 0 {
		return ErrMissingToken
	}
	if m.Spender.IsZero() {
		return ErrMissingDest
	}
	if m.Spender == m.Account {
		return ErrDestIsSrc
	}
	if !tx.IsBaseUnits(m.Amount) {
		return ErrBadAllowance
	}
	return nil
}

func (m *MoneyApprove) Apply(ctx *tx.ApplyContext) tx.Result {
	if _, result := Load(ctx, m.Token); result != tx.TesSUCCESS {
		return result
	}
	if err := setAllowance(ctx.View, m.Token, ctx.Account, m.Spender, m.Amount); err != nil {
		return ctx.Internal(err)
	}
	ctx.Emit(tx.EventMoneyApproved, ApprovalEvent{Token: m.Token, Owner: ctx.Account, Spender: m.Spender, Amount: m.Amount})
	return tx.TesSUCCESS
}

// MoneyTransferFrom moves From's money using the caller's allowance.
type MoneyTransferFrom struct {
	tx.BaseTx

	Token       uint32          `json:"Token"`
	From        types.Address   `json:"From"`
	Destination types.Address   `json:"Destination"`
	Amount      decimal.Decimal `json:"Amount"`
}

// NewMoneyTransferFrom creates a new MoneyTransferFrom transaction
func NewMoneyTransferFrom(account types.Address, token uint32, from, to types.Address, amount decimal.Decimal) *MoneyTransferFrom {
	return &MoneyTransferFrom{
		BaseTx:      *tx.NewBaseTx(tx.TypeMoneyTransferFrom, account),
		Token:       token,
		From:        from,
		Destination: to,
		Amount:      amount,
	}
}

func (m *MoneyTransferFrom) TxType() tx.Type {
	return tx.TypeMoneyTransferFrom
}

func (m *MoneyTransferFrom) Validate() error {
	if err := m.ValidateFlags(0); err != nil {
		return err
	}
	if m.From.IsZero() {
		return tx.ErrMissingAccount
	}
	return validateMove(m.Token, m.From, m.Destination, m.Amount)
}

func (m *MoneyTransferFrom) Apply(ctx *tx.ApplyContext) tx.Result {
	if _, result := Load(ctx, m.Token); result != tx.TesSUCCESS {
		return result
	}
	return MoveFrom(ctx, m.Token, ctx.Account, m.From, m.Destination, m.Amount)
}

func validateMove(token uint32, from, to types.Address, amount decimal.Decimal) error {
	if token == 0 {
		return ErrMissingToken
	}
	if to.IsZero() {
		return ErrMissingDest
	}
	if from == to {
		return ErrDestIsSrc
	}
	if !tx.IsPositiveBaseUnits(amount) {
		return ErrBadAmount
	}
	return nil
}
