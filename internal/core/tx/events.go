package tx

// Event is a fact emitted by an applied transaction. The set of events in
// sequence order is enough to rebuild balances and offer state.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Event types
const (
	EventRegistryCreated    = "registry_created"
	EventOperatorSet        = "registry_operator_set"
	EventApprovalSet        = "approval_set"
	EventFactoryCreated     = "factory_created"
	EventFactoryClientSet   = "factory_client_set"
	EventLedgerCreated      = "ledger_created"
	EventAssetCreated       = "asset_created"
	EventAssetTransferred   = "asset_transferred"
	EventAssetPaused        = "asset_paused"
	EventAssetUnpaused      = "asset_unpaused"
	EventAssetWeightSet     = "asset_weight_set"
	EventAssetMinStepSet    = "asset_min_step_set"
	EventAssetOperatorSet   = "asset_operator_set"
	EventDivisionPerformed  = "division_performed"
	EventJoinBackPerformed  = "join_back_performed"
	EventMoneyTokenCreated  = "money_token_created"
	EventMoneyTransferred   = "money_transferred"
	EventMoneyApproved      = "money_approved"
	EventMarketCreated      = "market_created"
	EventMarketFeeSet       = "market_fee_set"
	EventOfferCreated       = "offer_created"
	EventOfferEdited        = "offer_edited"
	EventOfferFilled        = "offer_filled"
	EventOfferCanceled      = "offer_canceled"
	EventOfferPaused        = "offer_paused"
	EventOfferUnpaused      = "offer_unpaused"
	EventBuyRequested       = "buy_requested"
	EventBuyRequestCanceled = "buy_request_canceled"
)
