// Package rpc serves the node over rippled-style JSON-RPC and a
// websocket event stream.
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/LeJamon/goPayloadd/internal/node"
)

// maxBodySize bounds a JSON-RPC request body
const maxBodySize = 1 << 20

// Server handles HTTP JSON-RPC requests
type Server struct {
	registry *MethodRegistry
	service  *node.Service
	timeout  time.Duration
}

// NewServer creates an RPC server answering from svc. A zero timeout
// leaves request contexts unbounded.
func NewServer(svc *node.Service, timeout time.Duration) *Server {
	server := &Server{
		registry: NewMethodRegistry(),
		service:  svc,
		timeout:  timeout,
	}
	server.registerAllMethods()
	return server
}

// Methods returns the registered method names
func (s *Server) Methods() []string {
	return s.registry.List()
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGetRequest(w, r)
	case http.MethodPost:
		s.handlePostRequest(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetRequest serves ?command=method without params, defaulting to server_info
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	ctx, cancel := s.newContext(r)
	defer cancel()

	result, rpcErr := s.executeMethod(method, nil, ctx)
	s.writeResponse(w, ctx, map[string]interface{}{"command": method}, result, rpcErr)
}

func (s *Server) handlePostRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.newContext(r)
	defer cancel()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeResponse(w, ctx, nil, nil, RpcErrorInternal("Failed to read request body"))
		return
	}
	defer r.Body.Close()

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, ctx, nil, nil, NewRpcError(RpcPARSE_ERROR, "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, ctx, nil, nil, RpcErrorMissingCommand())
		return
	}

	// Params are an array holding one object
	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.executeMethod(request.Method, params, ctx)

	var requestObj interface{}
	if rpcErr != nil {
		reqMap := map[string]interface{}{}
		if params != nil {
			_ = json.Unmarshal(params, &reqMap)
		}
		reqMap["command"] = request.Method
		requestObj = reqMap
	}
	s.writeResponse(w, ctx, requestObj, result, rpcErr)
}

func (s *Server) newContext(r *http.Request) (*RpcContext, context.CancelFunc) {
	base, cancel := r.Context(), context.CancelFunc(func() {})
	if s.timeout > 0 {
		base, cancel = context.WithTimeout(base, s.timeout)
	}
	return &RpcContext{
		Context:   base,
		RequestID: uuid.NewString(),
		ClientIP:  getClientIP(r),
	}, cancel
}

// executeMethod executes an RPC method with the given parameters
func (s *Server) executeMethod(method string, params json.RawMessage, ctx *RpcContext) (interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}

	start := time.Now()
	result, rpcErr := handler.Handle(ctx, params)

	entry := log.WithFields(log.Fields{
		"method":     method,
		"request_id": ctx.RequestID,
		"client":     ctx.ClientIP,
		"elapsed":    time.Since(start),
	})
	if rpcErr != nil {
		entry.WithField("error", rpcErr.ErrorString).Debug("rpc call failed")
	} else {
		entry.Debug("rpc call")
	}
	return result, rpcErr
}

// writeResponse writes {"result": {...,"status": "success"|"error"}}.
// Errors carry error, error_code and error_message inside result.
func (s *Server) writeResponse(w http.ResponseWriter, ctx *RpcContext, request interface{}, result interface{}, rpcErr *RpcError) {
	var resultObj map[string]interface{}
	if rpcErr != nil {
		resultObj = map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
	} else {
		m, err := toResultMap(result)
		if err != nil {
			log.WithError(err).WithField("request_id", ctx.RequestID).Error("failed to encode result")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		m["status"] = "success"
		resultObj = m
	}

	data, err := json.Marshal(map[string]interface{}{"result": resultObj})
	if err != nil {
		log.WithError(err).WithField("request_id", ctx.RequestID).Error("failed to marshal response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
