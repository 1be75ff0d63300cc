package rpc

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	// WSPath is where the websocket endpoint is mounted. Defaults to /ws.
	WSPath string

	// Metrics, when set, is served on /metrics
	Metrics http.Handler
}

// NewRouter mounts the JSON-RPC server on / and /rpc, the websocket
// endpoint, /health and optionally /metrics.
func NewRouter(rpc *Server, ws *WebSocketServer, opts RouterOptions) *mux.Router {
	if opts.WSPath == "" {
		opts.WSPath = "/ws"
	}

	router := mux.NewRouter()
	router.Handle(opts.WSPath, ws).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"payloadd"}`))
	}).Methods(http.MethodGet)
	if opts.Metrics != nil {
		router.Handle("/metrics", opts.Metrics).Methods(http.MethodGet)
	}
	router.Handle("/rpc", rpc)
	router.Handle("/", rpc)
	return router
}
