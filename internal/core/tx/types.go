package tx

import "fmt"

// Type represents a transaction type code
type Type uint16

// All transaction type codes
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	// Compliance registry
	TypeRegistryCreate      Type = 1
	TypeRegistrySetOperator Type = 2
	TypeRegistrySetApproved Type = 3

	// Ledger factory
	TypeFactoryCreate    Type = 5
	TypeFactorySetClient Type = 6
	TypeFactoryDeploy    Type = 7

	// Asset ledger
	TypeLedgerCreate        Type = 10
	TypeAssetCreate         Type = 11
	TypeAssetCreateChild    Type = 12
	TypeAssetTransfer       Type = 13
	TypeAssetTransferFrom   Type = 14
	TypeAssetPause          Type = 15
	TypeAssetUnpause        Type = 16
	TypeAssetSetWeight      Type = 17
	TypeAssetSetMinStepSize Type = 18
	TypeAssetSetOperator    Type = 19

	// Division engine
	TypeDivideInto      Type = 20
	TypeStepDivideInto  Type = 21
	TypeBatchDivideInto Type = 22
	TypeJoinBack        Type = 23

	// Money token
	TypeMoneyTokenCreate  Type = 30
	TypeMoneyMint         Type = 31
	TypeMoneyTransfer     Type = 32
	TypeMoneyApprove      Type = 33
	TypeMoneyTransferFrom Type = 34

	// Marketplace
	TypeMarketCreate       Type = 40
	TypeMarketSetFee       Type = 41
	TypeOfferCreate        Type = 42
	TypeOfferEdit          Type = 43
	TypeOfferBuy           Type = 44
	TypeOfferCancel        Type = 45
	TypeOfferPause         Type = 46
	TypeOfferUnpause       Type = 47
	TypeOfferRequestBuy    Type = 48
	TypeOfferApproveBuy    Type = 49
	TypeOfferCancelRequest Type = 50
)

var typeNameMap = map[string]Type{
	"RegistryCreate":      TypeRegistryCreate,
	"RegistrySetOperator": TypeRegistrySetOperator,
	"RegistrySetApproved": TypeRegistrySetApproved,
	"FactoryCreate":       TypeFactoryCreate,
	"FactorySetClient":    TypeFactorySetClient,
	"FactoryDeploy":       TypeFactoryDeploy,
	"LedgerCreate":        TypeLedgerCreate,
	"AssetCreate":         TypeAssetCreate,
	"AssetCreateChild":    TypeAssetCreateChild,
	"AssetTransfer":       TypeAssetTransfer,
	"AssetTransferFrom":   TypeAssetTransferFrom,
	"AssetPause":          TypeAssetPause,
	"AssetUnpause":        TypeAssetUnpause,
	"AssetSetWeight":      TypeAssetSetWeight,
	"AssetSetMinStepSize": TypeAssetSetMinStepSize,
	"AssetSetOperator":    TypeAssetSetOperator,
	"DivideInto":          TypeDivideInto,
	"StepDivideInto":      TypeStepDivideInto,
	"BatchDivideInto":     TypeBatchDivideInto,
	"JoinBack":            TypeJoinBack,
	"MoneyTokenCreate":    TypeMoneyTokenCreate,
	"MoneyMint":           TypeMoneyMint,
	"MoneyTransfer":       TypeMoneyTransfer,
	"MoneyApprove":        TypeMoneyApprove,
	"MoneyTransferFrom":   TypeMoneyTransferFrom,
	"MarketCreate":        TypeMarketCreate,
	"MarketSetFee":        TypeMarketSetFee,
	"OfferCreate":         TypeOfferCreate,
	"OfferEdit":           TypeOfferEdit,
	"OfferBuy":            TypeOfferBuy,
	"OfferCancel":         TypeOfferCancel,
	"OfferPause":          TypeOfferPause,
	"OfferUnpause":        TypeOfferUnpause,
	"OfferRequestBuy":     TypeOfferRequestBuy,
	"OfferApproveBuy":     TypeOfferApproveBuy,
	"OfferCancelRequest":  TypeOfferCancelRequest,
}

var typeNames = func() map[Type]string {
	m := make(map[Type]string, len(typeNameMap))
	for name, t := range typeNameMap {
		m[t] = name
	}
	return m
}()

// String returns the string name of the transaction type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the transaction type for a given name
func TypeFromName(name string) (Type, bool) {
	t, ok := typeNameMap[name]
	return t, ok
}

// AllTypes returns every known transaction type name.
func AllTypes() []string {
	names := make([]string, 0, len(typeNameMap))
	for name := range typeNameMap {
		names = append(names, name)
	}
	return names
}
