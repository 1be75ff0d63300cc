package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/node"
)

const (
	wsMaxMessageSize = 512 * 1024
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = 54 * time.Second
	wsWriteWait      = 10 * time.Second
	wsSendBuffer     = 256
)

// WebSocketServer accepts websocket connections, answers RPC commands on
// them and fans out node notifications to subscribed streams.
type WebSocketServer struct {
	upgrader websocket.Upgrader
	registry *MethodRegistry

	mu          sync.RWMutex
	connections map[string]*WebSocketConnection
}

// WebSocketConnection is one client connection and its subscriptions
type WebSocketConnection struct {
	ID   string
	conn *websocket.Conn
	send chan []byte

	mu      sync.RWMutex
	streams map[string]struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewWebSocketServer creates a websocket endpoint sharing rpc's methods.
func NewWebSocketServer(rpc *Server) *WebSocketServer {
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		registry:    rpc.registry,
		connections: make(map[string]*WebSocketConnection),
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	// The request context ends when ServeHTTP returns.
	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &WebSocketConnection{
		ID:      uuid.NewString(),
		conn:    conn,
		send:    make(chan []byte, wsSendBuffer),
		streams: make(map[string]struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	ws.mu.Lock()
	ws.connections[wsConn.ID] = wsConn
	ws.mu.Unlock()
	log.WithFields(log.Fields{"conn": wsConn.ID, "client": getClientIP(r)}).Debug("websocket connected")

	go ws.handleConnection(wsConn)
	go ws.handleSend(wsConn)
}

// ConnectionCount returns the number of open connections
func (ws *WebSocketServer) ConnectionCount() int {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return len(ws.connections)
}

// Close closes every connection
func (ws *WebSocketServer) Close() {
	ws.mu.RLock()
	conns := make([]*WebSocketConnection, 0, len(ws.connections))
	for _, c := range ws.connections {
		conns = append(conns, c)
	}
	ws.mu.RUnlock()

	for _, c := range conns {
		ws.closeConnection(c)
	}
}

// handleConnection reads commands until the client goes away
func (ws *WebSocketServer) handleConnection(wsConn *WebSocketConnection) {
	defer ws.closeConnection(wsConn)

	wsConn.conn.SetReadLimit(wsMaxMessageSize)
	_ = wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	wsConn.conn.SetPongHandler(func(string) error {
		return wsConn.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := wsConn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).WithField("conn", wsConn.ID).Debug("websocket read failed")
			}
			return
		}
		ws.handleMessage(wsConn, message)
	}
}

// handleSend writes queued messages and keeps the connection alive
func (ws *WebSocketServer) handleSend(wsConn *WebSocketConnection) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-wsConn.ctx.Done():
			return
		case message := <-wsConn.send:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.WithError(err).WithField("conn", wsConn.ID).Debug("websocket send failed")
				ws.closeConnection(wsConn)
				return
			}
		case <-ticker.C:
			_ = wsConn.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := wsConn.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ws.closeConnection(wsConn)
				return
			}
		}
	}
}

// handleMessage processes one command. Commands carry their params at
// the top level: {"command": "balance", "id": 1, "ledger": 1, ...}.
func (ws *WebSocketServer) handleMessage(wsConn *WebSocketConnection, message []byte) {
	var cmdMap map[string]json.RawMessage
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		ws.sendError(wsConn, NewRpcError(RpcPARSE_ERROR, "jsonInvalid", "Invalid JSON: "+err.Error()), nil)
		return
	}

	var id interface{}
	if raw, ok := cmdMap["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	var command string
	if raw, ok := cmdMap["command"]; ok {
		_ = json.Unmarshal(raw, &command)
	}
	if command == "" {
		ws.sendError(wsConn, RpcErrorMissingCommand(), id)
		return
	}
	delete(cmdMap, "command")
	delete(cmdMap, "id")

	params, _ := json.Marshal(cmdMap)
	switch command {
	case "subscribe":
		ws.handleSubscribe(wsConn, id, params, true)
		return
	case "unsubscribe":
		ws.handleSubscribe(wsConn, id, params, false)
		return
	}

	handler, exists := ws.registry.Get(command)
	if !exists {
		ws.sendError(wsConn, RpcErrorMethodNotFound(command), id)
		return
	}
	rpcCtx := &RpcContext{
		Context:   wsConn.ctx,
		RequestID: uuid.NewString(),
		ClientIP:  wsConn.conn.RemoteAddr().String(),
	}
	result, rpcErr := handler.Handle(rpcCtx, params)
	if rpcErr != nil {
		ws.sendError(wsConn, rpcErr, id)
		return
	}
	ws.sendResponse(wsConn, WebSocketResponse{Type: "response", ID: id, Status: "success", Result: result})
}

// handleSubscribe adds or removes streams: {"streams": ["events", "ledger:3"]}
func (ws *WebSocketServer) handleSubscribe(wsConn *WebSocketConnection, id interface{}, params json.RawMessage, subscribe bool) {
	var request struct {
		Streams []string `json:"streams"`
	}
	if err := json.Unmarshal(params, &request); err != nil {
		ws.sendError(wsConn, RpcErrorInvalidParams("Invalid subscription parameters"), id)
		return
	}
	if len(request.Streams) == 0 {
		ws.sendError(wsConn, RpcErrorInvalidParams("streams is required"), id)
		return
	}
	for _, stream := range request.Streams {
		if !validStream(stream) {
			ws.sendError(wsConn, NewRpcError(RpcSTREAM_MALFORMED, "malformedStream", "Unknown stream: "+stream), id)
			return
		}
	}

	wsConn.mu.Lock()
	for _, stream := range request.Streams {
		if subscribe {
			wsConn.streams[stream] = struct{}{}
		} else {
			delete(wsConn.streams, stream)
		}
	}
	wsConn.mu.Unlock()

	key := "unsubscribed"
	if subscribe {
		key = "subscribed"
	}
	ws.sendResponse(wsConn, WebSocketResponse{
		Type:   "response",
		ID:     id,
		Status: "success",
		Result: map[string]interface{}{key: request.Streams},
	})
}

func validStream(stream string) bool {
	switch stream {
	case StreamEvents, StreamOffers:
		return true
	}
	if rest, ok := strings.CutPrefix(stream, StreamLedgerPrefix); ok {
		_, err := strconv.ParseUint(rest, 10, 32)
		return err == nil
	}
	return false
}

// TransactionMessage is pushed to subscribers for every processed transaction
type TransactionMessage struct {
	Type string `json:"type"`
	node.Notification
}

// Publish implements node.Publisher. Slow connections miss messages
// rather than block the engine.
func (ws *WebSocketServer) Publish(n node.Notification) {
	streams := streamsFor(n)
	data, err := json.Marshal(TransactionMessage{Type: "transaction", Notification: n})
	if err != nil {
		log.WithError(err).Error("failed to marshal notification")
		return
	}

	ws.mu.RLock()
	defer ws.mu.RUnlock()
	for _, conn := range ws.connections {
		if !conn.wants(streams) {
			continue
		}
		select {
		case conn.send <- data:
		default:
			log.WithField("conn", conn.ID).Warn("skipping slow websocket connection")
		}
	}
}

func (c *WebSocketConnection) wants(streams []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range streams {
		if _, ok := c.streams[s]; ok {
			return true
		}
	}
	return false
}

// streamsFor lists the streams a notification belongs to.
func streamsFor(n node.Notification) []string {
	streams := []string{StreamEvents}
	offers := false
	seen := make(map[uint32]bool)
	for _, ev := range n.Events {
		if strings.HasPrefix(ev.Type, "offer_") || strings.HasPrefix(ev.Type, "buy_") {
			offers = true
		}
		if id, ok := ledgerOf(ev); ok && !seen[id] {
			seen[id] = true
			streams = append(streams, StreamLedgerPrefix+strconv.FormatUint(uint64(id), 10))
		}
	}
	if offers {
		streams = append(streams, StreamOffers)
	}
	return streams
}

// ledgerOf returns the asset ledger an event refers to, if any.
func ledgerOf(ev tx.Event) (uint32, bool) {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return 0, false
	}
	if ev.Type == tx.EventLedgerCreated {
		var created struct {
			ID uint32 `json:"id"`
		}
		if json.Unmarshal(data, &created) != nil || created.ID == 0 {
			return 0, false
		}
		return created.ID, true
	}
	var ref struct {
		Ledger uint32 `json:"ledger"`
	}
	if json.Unmarshal(data, &ref) != nil || ref.Ledger == 0 {
		return 0, false
	}
	return ref.Ledger, true
}

func (ws *WebSocketServer) sendResponse(wsConn *WebSocketConnection, response WebSocketResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		log.WithError(err).Error("failed to marshal websocket response")
		return
	}
	ws.enqueue(wsConn, data)
}

// sendError sends an error with flat error fields
func (ws *WebSocketServer) sendError(wsConn *WebSocketConnection, rpcErr *RpcError, id interface{}) {
	response := map[string]interface{}{
		"type":          "response",
		"status":        "error",
		"error":         rpcErr.ErrorString,
		"error_code":    rpcErr.Code,
		"error_message": rpcErr.Message,
	}
	if id != nil {
		response["id"] = id
	}
	data, err := json.Marshal(response)
	if err != nil {
		log.WithError(err).Error("failed to marshal websocket error")
		return
	}
	ws.enqueue(wsConn, data)
}

func (ws *WebSocketServer) enqueue(wsConn *WebSocketConnection, data []byte) {
	select {
	case wsConn.send <- data:
	case <-wsConn.ctx.Done():
	default:
		log.WithField("conn", wsConn.ID).Warn("websocket send buffer full, closing connection")
		ws.closeConnection(wsConn)
	}
}

func (ws *WebSocketServer) closeConnection(wsConn *WebSocketConnection) {
	wsConn.closeOnce.Do(func() {
		wsConn.cancel()

		ws.mu.Lock()
		delete(ws.connections, wsConn.ID)
		ws.mu.Unlock()

		_ = wsConn.conn.Close()
		log.WithField("conn", wsConn.ID).Debug("websocket connection closed")
	})
}
