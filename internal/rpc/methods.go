package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/core/types"
	"github.com/LeJamon/goPayloadd/internal/node"
)

// registerAllMethods registers every method served by the node
func (s *Server) registerAllMethods() {
	svc := s.service

	// Server
	s.registry.Register("server_info", serverInfoMethod(svc))
	s.registry.Register("ping", MethodFunc(func(*RpcContext, json.RawMessage) (interface{}, *RpcError) {
		return map[string]interface{}{}, nil
	}))

	// Transactions
	s.registry.Register("submit", submitMethod(svc))

	// Asset ledger
	s.registry.Register("ledger_info", ledgerInfoMethod(svc))
	s.registry.Register("asset_info", assetInfoMethod(svc))
	s.registry.Register("balance", balanceMethod(svc))
	s.registry.Register("weight_tree", weightTreeMethod(svc))

	// Marketplace
	s.registry.Register("market_info", marketInfoMethod(svc))
	s.registry.Register("offer_info", offerInfoMethod(svc))
	s.registry.Register("buy_request_info", buyRequestInfoMethod(svc))

	// Money and compliance
	s.registry.Register("money_balance", moneyBalanceMethod(svc))
	s.registry.Register("compliance_status", complianceStatusMethod(svc))
}

// decodeParams unmarshals params into v. Missing params leave v untouched.
func decodeParams(params json.RawMessage, v interface{}) *RpcError {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func serverInfoMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		info, err := svc.Info(ctx.Context)
		if err != nil {
			return nil, fromError(err)
		}
		return map[string]interface{}{"info": info}, nil
	}
}

// SubmitResult is returned by the submit method
type SubmitResult struct {
	EngineResult        string          `json:"engine_result"`
	EngineResultCode    int             `json:"engine_result_code"`
	EngineResultMessage string          `json:"engine_result_message"`
	Applied             bool            `json:"applied"`
	Sequence            uint64          `json:"sequence,omitempty"`
	Hash                string          `json:"hash,omitempty"`
	IDs                 []uint64        `json:"ids,omitempty"`
	Events              []tx.Event      `json:"events,omitempty"`
	TxJSON              json.RawMessage `json:"tx_json"`
}

func submitMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var request struct {
			TxJSON json.RawMessage `json:"tx_json"`
		}
		if rpcErr := decodeParams(params, &request); rpcErr != nil {
			return nil, rpcErr
		}
		if len(request.TxJSON) == 0 {
			return nil, RpcErrorInvalidParams("tx_json is required")
		}

		res, err := svc.Submit(ctx.Context, request.TxJSON)
		if err != nil {
			return nil, fromError(err)
		}
		return SubmitResult{
			EngineResult:        res.Result.String(),
			EngineResultCode:    int(res.Result),
			EngineResultMessage: res.Message,
			Applied:             res.Applied,
			Sequence:            res.Sequence,
			Hash:                res.Hash,
			IDs:                 res.IDs,
			Events:              res.Events,
			TxJSON:              request.TxJSON,
		}, nil
	}
}

type assetParams struct {
	Ledger  uint32 `json:"ledger"`
	AssetID uint64 `json:"asset_id"`
}

func (p assetParams) check() *RpcError {
	if p.Ledger == 0 || p.AssetID == 0 {
		return RpcErrorInvalidParams("ledger and asset_id are required")
	}
	return nil
}

func ledgerInfoMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p struct {
			Ledger uint32 `json:"ledger"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		root, err := svc.Ledger(p.Ledger)
		if err != nil {
			return nil, fromError(err)
		}
		return map[string]interface{}{"ledger": root}, nil
	}
}

func assetInfoMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p assetParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if rpcErr := p.check(); rpcErr != nil {
			return nil, rpcErr
		}
		a, err := svc.Asset(p.Ledger, p.AssetID)
		if err != nil {
			return nil, fromError(err)
		}
		return map[string]interface{}{"asset": a}, nil
	}
}

func balanceMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p struct {
			assetParams
			Owner types.Address `json:"owner"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if rpcErr := p.check(); rpcErr != nil {
			return nil, rpcErr
		}
		if p.Owner.IsZero() {
			return nil, RpcErrorInvalidParams("owner is required")
		}
		bal, err := svc.Balance(p.Ledger, p.AssetID, p.Owner)
		if err != nil {
			return nil, fromError(err)
		}
		return bal, nil
	}
}

func weightTreeMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p assetParams
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if rpcErr := p.check(); rpcErr != nil {
			return nil, rpcErr
		}
		tree, err := svc.WeightTree(p.Ledger, p.AssetID)
		if err != nil {
			return nil, fromError(err)
		}
		return map[string]interface{}{"tree": tree}, nil
	}
}

func marketInfoMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p struct {
			Market uint32 `json:"market"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		m, err := svc.Market(p.Market)
		if err != nil {
			return nil, fromError(err)
		}
		return map[string]interface{}{"market": m}, nil
	}
}

func offerInfoMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p struct {
			Market  uint32 `json:"market"`
			OfferID uint64 `json:"offer_id"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		offer, err := svc.Offer(p.Market, p.OfferID)
		if err != nil {
			return nil, fromError(err)
		}
		return map[string]interface{}{"offer": offer}, nil
	}
}

func buyRequestInfoMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p struct {
			Market    uint32 `json:"market"`
			RequestID uint64 `json:"request_id"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		req, err := svc.BuyRequest(p.Market, p.RequestID)
		if err != nil {
			return nil, fromError(err)
		}
		return map[string]interface{}{"request": req}, nil
	}
}

func moneyBalanceMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p struct {
			Token   uint32        `json:"token"`
			Owner   types.Address `json:"owner"`
			Spender types.Address `json:"spender"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if p.Owner.IsZero() {
			return nil, RpcErrorInvalidParams("owner is required")
		}
		info, err := svc.MoneyBalance(p.Token, p.Owner, p.Spender)
		if err != nil {
			return nil, fromError(err)
		}
		return info, nil
	}
}

func complianceStatusMethod(svc *node.Service) MethodFunc {
	return func(ctx *RpcContext, params json.RawMessage) (interface{}, *RpcError) {
		var p struct {
			Registry uint32        `json:"registry"`
			Address  types.Address `json:"address"`
		}
		if rpcErr := decodeParams(params, &p); rpcErr != nil {
			return nil, rpcErr
		}
		if p.Address.IsZero() {
			return nil, RpcErrorInvalidParams("address is required")
		}
		status, err := svc.ComplianceStatus(p.Registry, p.Address)
		if err != nil {
			return nil, fromError(err)
		}
		return status, nil
	}
}

// toResultMap flattens a handler result into a JSON object so the
// response status can be added alongside its fields.
func toResultMap(result interface{}) (map[string]interface{}, error) {
	if m, ok := result.(map[string]interface{}); ok {
		return m, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	m := make(map[string]interface{})
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("result is not an object: %w", err)
	}
	return m, nil
}
