package testing

import "github.com/LeJamon/goPayloadd/internal/core/tx"

// TxResult represents the result of submitting a transaction.
type TxResult struct {
	// Code is the transaction engine result code (e.g., "tesSUCCESS").
	Code string

	// Success indicates whether the transaction was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	// Hash identifies the transaction in the journal.
	Hash string

	// Sequence is the engine sequence of an applied transaction.
	Sequence uint64

	// IDs lists the ids created by the transaction, in creation order.
	IDs []uint64

	// Events are the facts emitted by an applied transaction.
	Events []tx.Event
}

func newTxResult(res tx.ApplyResult) TxResult {
	return TxResult{
		Code:     res.Result.String(),
		Success:  res.Applied,
		Message:  res.Message,
		Hash:     res.Hash,
		Sequence: res.Sequence,
		IDs:      res.IDs,
		Events:   res.Events,
	}
}

// ResultSuccess returns a successful transaction result.
func ResultSuccess() TxResult {
	return TxResult{
		Code:    tx.TesSUCCESS.String(),
		Success: true,
		Message: tx.TesSUCCESS.Message(),
	}
}

// ResultWithCode creates a TxResult with the specified code.
func ResultWithCode(code string, success bool, message string) TxResult {
	return TxResult{
		Code:    code,
		Success: success,
		Message: message,
	}
}

// ID returns the first id created by the transaction, or 0.
func (r TxResult) ID() uint64 {
	if len(r.IDs) == 0 {
		return 0
	}
	return r.IDs[0]
}

// EventsOf returns the emitted events of one type, in emission order.
func (r TxResult) EventsOf(eventType string) []tx.Event {
	var out []tx.Event
	for _, e := range r.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// IsSuccess returns true if the result code indicates success.
func (r TxResult) IsSuccess() bool {
	return r.Code == tx.TesSUCCESS.String()
}

// IsRejected returns true for tec codes: well-formed, but refused against
// the current state. Nothing was applied.
func (r TxResult) IsRejected() bool {
	return ResultCodeCategory(r.Code) == "rejected"
}

// IsMalformed returns true if the result code indicates the transaction is malformed.
func (r TxResult) IsMalformed() bool {
	return ResultCodeCategory(r.Code) == "malformed"
}

// IsFailed returns true if the result code indicates a local failure.
func (r TxResult) IsFailed() bool {
	return ResultCodeCategory(r.Code) == "failure"
}
