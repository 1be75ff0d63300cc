package entries

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

// MaxMoneyDecimals bounds the precision of a money token.
const MaxMoneyDecimals = 18

// MoneyToken is a fungible payment token with its own decimal scale.
type MoneyToken struct {
	ID          uint32          `json:"id"`
	Issuer      types.Address   `json:"issuer"`
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Decimals    uint8           `json:"decimals"`
	TotalSupply decimal.Decimal `json:"total_supply"`
}

func (m *MoneyToken) Type() entry.Type {
	return entry.TypeMoneyToken
}

func (m *MoneyToken) Validate() error {
	if m.ID == 0 {
		return errors.New("token id is required")
	}
	if m.Decimals > MaxMoneyDecimals {
		return errors.New("token decimals exceed maximum")
	}
	return nil
}

// MoneyBalance is one owner's holding of a money token.
type MoneyBalance struct {
	Token  uint32          `json:"token"`
	Owner  types.Address   `json:"owner"`
	Amount decimal.Decimal `json:"amount"`
}

func (m *MoneyBalance) Type() entry.Type {
	return entry.TypeMoneyBalance
}

func (m *MoneyBalance) Validate() error {
	if m.Amount.IsNegative() {
		return errors.New("balance cannot be negative")
	}
	return nil
}

// Allowance is the amount Spender may move out of Owner's balance.
type Allowance struct {
	Token   uint32          `json:"token"`
	Owner   types.Address   `json:"owner"`
	Spender types.Address   `json:"spender"`
	Amount  decimal.Decimal `json:"amount"`
}

func (a *Allowance) Type() entry.Type {
	return entry.TypeAllowance
}

func (a *Allowance) Validate() error {
	if a.Amount.IsNegative() {
		return errors.New("allowance cannot be negative")
	}
	return nil
}
