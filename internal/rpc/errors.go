package rpc

import (
	"errors"

	"github.com/LeJamon/goPayloadd/internal/compliance"
	"github.com/LeJamon/goPayloadd/internal/node"
)

// RpcError is returned inside the result object of a failed call
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`
}

func (e RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes, numbered after rippled where an equivalent exists
const (
	RpcUNKNOWN          = -1
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcMISSING_COMMAND  = 2
	RpcSTREAM_MALFORMED = 26
	RpcINVALID_TX       = 42
	RpcENTRY_NOT_FOUND  = 92
)

func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{Code: code, ErrorString: errorString, Message: message}
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

func RpcErrorMissingCommand() *RpcError {
	return NewRpcError(RpcMISSING_COMMAND, "missingCommand", "Missing command field")
}

// fromError maps a node error to an RpcError.
func fromError(err error) *RpcError {
	switch {
	case errors.Is(err, node.ErrNotFound), errors.Is(err, compliance.ErrRegistryNotFound):
		return NewRpcError(RpcENTRY_NOT_FOUND, "entryNotFound", err.Error())
	case errors.Is(err, node.ErrBadTransaction):
		return NewRpcError(RpcINVALID_TX, "invalidTransaction", err.Error())
	default:
		return RpcErrorInternal(err.Error())
	}
}
