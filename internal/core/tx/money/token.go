package money

import (
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

func init() {
	tx.Register(tx.TypeMoneyTokenCreate, func() tx.Transaction {
		return &MoneyTokenCreate{BaseTx: *tx.NewBaseTx(tx.TypeMoneyTokenCreate, types.ZeroAddress)}
	})
	tx.Register(tx.TypeMoneyMint, func() tx.Transaction {
		return &MoneyMint{BaseTx: *tx.NewBaseTx(tx.TypeMoneyMint, types.ZeroAddress)}
	})
}

// MoneyTokenCreate issues a fungible payment token. The caller is the issuer
// and receives InitialSupply.
type MoneyTokenCreate struct {
	tx.BaseTx

	Name          string          `json:"Name"`
	Symbol        string          `json:"Symbol"`
	Decimals      uint8           `json:"Decimals"`
	InitialSupply decimal.Decimal `json:"InitialSupply,omitempty"`
}

// TokenEvent is emitted when a money token is created.
type TokenEvent struct {
	ID       uint32        `json:"id"`
	Issuer   types.Address `json:"issuer"`
	Symbol   string        `json:"symbol"`
	Decimals uint8         `json:"decimals"`
}

// NewMoneyTokenCreate creates a new MoneyTokenCreate transaction
func NewMoneyTokenCreate(account types.Address, symbol string, decimals uint8, initialSupply decimal.Decimal) *MoneyTokenCreate {
	return &MoneyTokenCreate{
		BaseTx:        *tx.NewBaseTx(tx.TypeMoneyTokenCreate, account),
		Name:          symbol,
		Symbol:        symbol,
		Decimals:      decimals,
		InitialSupply: initialSupply,
	}
}

// TxType returns the transaction type
func (m *MoneyTokenCreate) TxType() tx.Type {
	return tx.TypeMoneyTokenCreate
}

// Validate validates the MoneyTokenCreate transaction
func (m *MoneyTokenCreate) Validate() error {
	if err := m.ValidateFlags(0); err != nil {
		return err
	}
	if m.Symbol == "" || len(m.Symbol) > MaxSymbolLength {
		return ErrBadSymbol
	}
	if m.Decimals > entries.MaxMoneyDecimals {
		return ErrBadDecimals
	}
	if !tx.IsBaseUnits(m.InitialSupply) {
		return ErrBadAmount
	}
	return nil
}

// Apply creates the token.
func (m *MoneyTokenCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	id, err := tx.NextID(ctx.View, func(s *entries.Sequences) *uint32 { return &s.Token })
	if err != nil {
		return ctx.Internal(err)
	}
	token := &entries.MoneyToken{
		ID:          id,
		Issuer:      ctx.Account,
		Name:        m.Name,
		Symbol:      m.Symbol,
		Decimals:    m.Decimals,
		TotalSupply: m.InitialSupply,
	}
	if err := tx.InsertEntry(ctx.View, keylet.MoneyToken(id), token); err != nil {
		return ctx.Internal(err)
	}
	if m.InitialSupply.IsPositive() {
		if err := setBalance(ctx.View, id, ctx.Account, m.InitialSupply); err != nil {
			return ctx.Internal(err)
		}
	}
	ctx.Created(uint64(id))
	ctx.Emit(tx.EventMoneyTokenCreated, TokenEvent{ID: id, Issuer: ctx.Account, Symbol: m.Symbol, Decimals: m.Decimals})
	return tx.TesSUCCESS
}

// MoneyMint issues new units of a token. Issuer only.
type MoneyMint struct {
	tx.BaseTx

	Token       uint32          `json:"Token"`
	Destination types.Address   `json:"Destination"`
	Amount      decimal.Decimal `json:"Amount"`
}

// NewMoneyMint creates a new MoneyMint transaction
func NewMoneyMint(account types.Address, token uint32, to types.Address, amount decimal.Decimal) *MoneyMint {
	return &MoneyMint{
		BaseTx:      *tx.NewBaseTx(tx.TypeMoneyMint, account),
		Token:       token,
		Destination: to,
		Amount:      amount,
	}
}

// TxType returns the transaction type
func (m *MoneyMint) TxType() tx.Type {
	return tx.TypeMoneyMint
}

// Validate validates the MoneyMint transaction
func (m *MoneyMint) Validate() error {
	if err := m.ValidateFlags(0); err != nil {
		return err
	}
	if m.Token == 0 {
		return ErrMissingToken
	}
	if m.Destination.IsZero() {
		return ErrMissingDest
	}
	if !tx.IsPositiveBaseUnits(m.Amount) {
		return ErrBadAmount
	}
	return nil
}

// Apply mints to Destination.
func (m *MoneyMint) Apply(ctx *tx.ApplyContext) tx.Result {
	token, result := Load(ctx, m.Token)
	if result != tx.TesSUCCESS {
		return result
	}
	if token.Issuer != ctx.Account {
		return tx.TecNO_PERMISSION
	}
	bal, err := BalanceOf(ctx.View, m.Token, m.Destination)
	if err != nil {
		return ctx.Internal(err)
	}
	if err := setBalance(ctx.View, m.Token, m.Destination, bal.Add(m.Amount)); err != nil {
		return ctx.Internal(err)
	}
	token.TotalSupply = token.TotalSupply.Add(m.Amount)
	if err := tx.WriteEntry(ctx.View, keylet.MoneyToken(m.Token), token); err != nil {
		return ctx.Internal(err)
	}
	ctx.Emit(tx.EventMoneyTransferred, TransferEvent{Token: m.Token, To: m.Destination, Amount: m.Amount})
	return tx.TesSUCCESS
}
