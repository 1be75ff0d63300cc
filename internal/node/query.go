package node

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goPayloadd/internal/compliance"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/entry/entries"
	"github.com/LeJamon/goPayloadd/internal/core/ledger/keylet"
	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/tx/asset"
	"github.com/LeJamon/goPayloadd/internal/core/tx/money"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/shopspring/decimal"
)

// read decodes the entry at k under the read lock.
func (s *Service) read(k keylet.Keylet, e entry.Entry, what string) error {
	found, err := tx.ReadEntry(s.store, k, e)
	if err != nil {
		return fmt.Errorf("read %s: %w", what, err)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return nil
}

// Ledger returns a ledger root.
func (s *Service) Ledger(id uint32) (*entries.LedgerRoot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := &entries.LedgerRoot{}
	if err := s.read(keylet.Ledger(id), root, fmt.Sprintf("ledger %d", id)); err != nil {
		return nil, err
	}
	return root, nil
}

// Asset returns an asset.
func (s *Service) Asset(ledger uint32, id uint64) (*entries.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.asset(ledger, id)
}

func (s *Service) asset(ledger uint32, id uint64) (*entries.Asset, error) {
	a := &entries.Asset{}
	if err := s.read(keylet.Asset(ledger, id), a, fmt.Sprintf("asset %d/%d", ledger, id)); err != nil {
		return nil, err
	}
	return a, nil
}

// BalanceInfo is an owner's position in one asset.
type BalanceInfo struct {
	Ledger    uint32          `json:"ledger"`
	AssetID   uint64          `json:"asset_id"`
	Owner     types.Address   `json:"owner"`
	Balance   decimal.Decimal `json:"balance"`
	Reserved  decimal.Decimal `json:"reserved"`
	Available decimal.Decimal `json:"available"`
}

// Balance returns an owner's balance, the amount committed to offers and
// the remainder.
func (s *Service) Balance(ledger uint32, id uint64, owner types.Address) (BalanceInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.asset(ledger, id); err != nil {
		return BalanceInfo{}, err
	}
	bal, err := asset.BalanceOf(s.store, ledger, id, owner)
	if err != nil {
		return BalanceInfo{}, err
	}
	reserved, err := asset.ReservedOf(s.store, ledger, id, owner)
	if err != nil {
		return BalanceInfo{}, err
	}
	return BalanceInfo{
		Ledger:    ledger,
		AssetID:   id,
		Owner:     owner,
		Balance:   bal,
		Reserved:  reserved,
		Available: bal.Sub(reserved),
	}, nil
}

// WeightNode is one asset in a division tree.
type WeightNode struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Weight   uint64 `json:"weight"`
	Disabled bool   `json:"disabled,omitempty"`

	// Subtree is Weight plus the subtree weight of every division product.
	// It equals the weight the root was created with.
	Subtree uint64 `json:"subtree"`

	Divisions []*WeightNode `json:"divisions,omitempty"`
}

// WeightTree walks the division products of an asset.
func (s *Service) WeightTree(ledger uint32, id uint64) (*WeightNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weightTree(ledger, id)
}

func (s *Service) weightTree(ledger uint32, id uint64) (*WeightNode, error) {
	a, err := s.asset(ledger, id)
	if err != nil {
		return nil, err
	}
	node := &WeightNode{
		ID:       a.ID,
		Name:     a.FullName,
		Weight:   a.Weight,
		Disabled: a.Disabled,
		Subtree:  a.Weight,
	}
	for _, child := range a.Divisions {
		sub, err := s.weightTree(ledger, child)
		if err != nil {
			return nil, err
		}
		node.Subtree += sub.Subtree
		node.Divisions = append(node.Divisions, sub)
	}
	return node, nil
}

// OfferInfo is an offer with its derived status.
type OfferInfo struct {
	*entries.Offer
	Status entries.OfferStatus `json:"status"`
}

// Offer returns an offer.
func (s *Service) Offer(market uint32, id uint64) (OfferInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o := &entries.Offer{}
	if err := s.read(keylet.Offer(market, id), o, fmt.Sprintf("offer %d/%d", market, id)); err != nil {
		return OfferInfo{}, err
	}
	return OfferInfo{Offer: o, Status: o.Status()}, nil
}

// BuyRequest returns an escrowed buy request.
func (s *Service) BuyRequest(market uint32, id uint64) (*entries.BuyRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := &entries.BuyRequest{}
	if err := s.read(keylet.BuyRequest(market, id), r, fmt.Sprintf("request %d/%d", market, id)); err != nil {
		return nil, err
	}
	return r, nil
}

// Market returns a market.
func (s *Service) Market(id uint32) (*entries.Market, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := &entries.Market{}
	if err := s.read(keylet.Market(id), m, fmt.Sprintf("market %d", id)); err != nil {
		return nil, err
	}
	return m, nil
}

// MoneyInfo is a holder's money token position.
type MoneyInfo struct {
	Token     uint32          `json:"token"`
	Symbol    string          `json:"symbol"`
	Owner     types.Address   `json:"owner"`
	Balance   decimal.Decimal `json:"balance"`
	Allowance decimal.Decimal `json:"allowance,omitempty"`
}

// MoneyBalance returns a money balance and, when spender is set, the
// allowance granted to it.
func (s *Service) MoneyBalance(token uint32, owner, spender types.Address) (MoneyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m := &entries.MoneyToken{}
	if err := s.read(keylet.MoneyToken(token), m, fmt.Sprintf("money token %d", token)); err != nil {
		return MoneyInfo{}, err
	}
	bal, err := money.BalanceOf(s.store, token, owner)
	if err != nil {
		return MoneyInfo{}, err
	}
	info := MoneyInfo{Token: token, Symbol: m.Symbol, Owner: owner, Balance: bal}
	if !spender.IsZero() {
		if info.Allowance, err = money.AllowanceOf(s.store, token, owner, spender); err != nil {
			return MoneyInfo{}, err
		}
	}
	return info, nil
}

// ComplianceStatus answers isApproved for addr on a registry.
func (s *Service) ComplianceStatus(registry uint32, addr types.Address) (compliance.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, err := compliance.StatusOf(s.store, registry, addr)
	if errors.Is(err, compliance.ErrRegistryNotFound) {
		return compliance.Status{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return st, err
}
