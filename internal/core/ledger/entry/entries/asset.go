package entries

import (
	"errors"
	"strings"

	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

// FullNameSeparator joins asset names along the creation path.
const FullNameSeparator = "/"

// Asset holds the metadata, weight and division state of one asset id.
// ParentID tracks creation provenance; DivisionOf tracks weight splits.
type Asset struct {
	Ledger   uint32        `json:"ledger"`
	ID       uint64        `json:"id"`
	ParentID uint64        `json:"parent_id"`
	Name     string        `json:"name"`
	FullName string        `json:"full_name"`
	URI      string        `json:"uri,omitempty"`
	Creator  types.Address `json:"creator"`

	// RoyaltyRate is fixed at creation (bps of the sale total)
	RoyaltyRate uint32 `json:"royalty_rate"`

	Paused      bool            `json:"paused"`
	TotalSupply decimal.Decimal `json:"total_supply"`

	Divisible       bool   `json:"divisible"`
	Weight          uint64 `json:"weight"`
	MinStepSize     uint64 `json:"min_step_size"`
	DivisionOf      uint64 `json:"division_of"`
	DivisionStarted bool   `json:"division_started"`
	Disabled        bool   `json:"disabled"`

	// Children are ids created from this asset via createChild
	Children []uint64 `json:"children,omitempty"`

	// Divisions are ids minted from this asset's weight, in mint order
	Divisions []uint64 `json:"divisions,omitempty"`
}

func (a *Asset) Type() entry.Type {
	return entry.TypeAsset
}

func (a *Asset) Validate() error {
	if a.ID == 0 {
		return errors.New("asset id is required")
	}
	if a.Creator.IsZero() {
		return errors.New("asset creator is required")
	}
	if a.TotalSupply.IsNegative() {
		return errors.New("total supply cannot be negative")
	}
	if a.Disabled && a.Weight != 0 {
		return errors.New("disabled asset must have zero weight")
	}
	if a.DivisionOf == a.ID {
		return errors.New("asset cannot be a division of itself")
	}
	return nil
}

// IsDivision reports whether the asset was minted by a division.
func (a *Asset) IsDivision() bool {
	return a.DivisionOf != 0
}

// Ancestor returns the next generation used by the royalty cascade:
// the division source when set, otherwise the creation parent.
func (a *Asset) Ancestor() uint64 {
	if a.DivisionOf != 0 {
		return a.DivisionOf
	}
	return a.ParentID
}

// JoinName builds a full name from a parent's full name and a leaf name.
func JoinName(parentFullName, name string) string {
	if parentFullName == "" {
		return name
	}
	return strings.Join([]string{parentFullName, name}, FullNameSeparator)
}

// Balance is one owner's holding of an asset id.
type Balance struct {
	Ledger  uint32          `json:"ledger"`
	AssetID uint64          `json:"asset_id"`
	Owner   types.Address   `json:"owner"`
	Amount  decimal.Decimal `json:"amount"`
}

func (b *Balance) Type() entry.Type {
	return entry.TypeBalance
}

func (b *Balance) Validate() error {
	if b.Amount.IsNegative() {
		return errors.New("balance cannot be negative")
	}
	return nil
}

// Reservation is the amount of an owner's balance committed to open
// offers and pending escrow requests across all markets.
type Reservation struct {
	Ledger  uint32          `json:"ledger"`
	AssetID uint64          `json:"asset_id"`
	Owner   types.Address   `json:"owner"`
	Amount  decimal.Decimal `json:"amount"`
}

func (r *Reservation) Type() entry.Type {
	return entry.TypeReservation
}

func (r *Reservation) Validate() error {
	if r.Amount.IsNegative() {
		return errors.New("reservation cannot be negative")
	}
	return nil
}

// OperatorApproval lets Operator move any of Owner's assets on a ledger.
type OperatorApproval struct {
	Ledger   uint32        `json:"ledger"`
	Owner    types.Address `json:"owner"`
	Operator types.Address `json:"operator"`
	Approved bool          `json:"approved"`
}

func (o *OperatorApproval) Type() entry.Type {
	return entry.TypeOperatorApproval
}

func (o *OperatorApproval) Validate() error {
	if o.Owner == o.Operator {
		return errors.New("owner cannot be its own operator")
	}
	return nil
}
