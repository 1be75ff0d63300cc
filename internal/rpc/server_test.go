package rpc_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compliancetx "github.com/LeJamon/goPayloadd/internal/core/tx/compliance"
	"github.com/LeJamon/goPayloadd/internal/rpc"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
)

type harness struct {
	env *jtx.TestEnv
	ws  *rpc.WebSocketServer
	srv *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	env := jtx.NewTestEnv(t)
	server := rpc.NewServer(env.Service(), 5*time.Second)
	ws := rpc.NewWebSocketServer(server)
	env.Service().AddPublisher(ws)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payloadd_up 1\n"))
	})
	srv := httptest.NewServer(rpc.NewRouter(server, ws, rpc.RouterOptions{Metrics: metrics}))
	t.Cleanup(func() {
		ws.Close()
		srv.Close()
	})
	return &harness{env: env, ws: ws, srv: srv}
}

// call posts a JSON-RPC request and returns the result object.
func (h *harness) call(t *testing.T, method string, params interface{}) map[string]interface{} {
	t.Helper()
	req := map[string]interface{}{"method": method}
	if params != nil {
		req["params"] = []interface{}{params}
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)
	return h.post(t, "/", body)
}

func (h *harness) post(t *testing.T, path string, body []byte) map[string]interface{} {
	t.Helper()
	resp, err := h.srv.Client().Post(h.srv.URL+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Result map[string]interface{} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Result
}

func TestServer_SubmitAndQuery(t *testing.T) {
	h := newHarness(t)
	alice := h.env.Account("alice")
	h.env.Approve(alice)

	txJSON := json.RawMessage(fmt.Sprintf(`{"TransactionType":"LedgerCreate","Account":%q,"Registry":%d,"Decimals":2}`,
		alice.Address, h.env.Registry()))
	res := h.call(t, "submit", map[string]interface{}{"tx_json": txJSON})
	require.Equal(t, "success", res["status"], res)
	assert.Equal(t, "tesSUCCESS", res["engine_result"])
	assert.Equal(t, true, res["applied"])
	ids := res["ids"].([]interface{})
	require.Len(t, ids, 1)
	ledger := uint32(ids[0].(float64))

	info := h.call(t, "ledger_info", map[string]interface{}{"ledger": ledger})
	require.Equal(t, "success", info["status"])
	root := info["ledger"].(map[string]interface{})
	assert.Equal(t, float64(2), root["decimals"])
	assert.Equal(t, alice.Address.String(), root["owner"])

	id := h.env.CreateAsset(alice, ledger, "hold", jtx.Whole(5, 2))
	bal := h.call(t, "balance", map[string]interface{}{"ledger": ledger, "asset_id": id, "owner": alice.Address})
	require.Equal(t, "success", bal["status"])
	assert.Equal(t, "500", bal["balance"])
	assert.Equal(t, "500", bal["available"])

	tree := h.call(t, "weight_tree", map[string]interface{}{"ledger": ledger, "asset_id": id})
	require.Equal(t, "success", tree["status"])

	status := h.call(t, "compliance_status", map[string]interface{}{"registry": h.env.Registry(), "address": alice.Address})
	assert.Equal(t, true, status["approved"])
}

func TestServer_RejectedTransaction(t *testing.T) {
	h := newHarness(t)
	alice := h.env.Account("alice")

	txJSON := json.RawMessage(fmt.Sprintf(`{"TransactionType":"LedgerCreate","Account":%q,"Registry":99}`, alice.Address))
	res := h.call(t, "submit", map[string]interface{}{"tx_json": txJSON})

	// A rejection is a successful call reporting the engine result.
	require.Equal(t, "success", res["status"])
	assert.Equal(t, "tecNO_ENTRY", res["engine_result"])
	assert.Equal(t, false, res["applied"])
	assert.Nil(t, res["events"])
}

func TestServer_Errors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{"unknown method", `{"method":"account_info"}`, "unknownCmd"},
		{"missing method", `{"params":[{}]}`, "missingCommand"},
		{"bad json", `{"method":`, "jsonInvalid"},
		{"missing entry", `{"method":"ledger_info","params":[{"ledger":42}]}`, "entryNotFound"},
		{"missing registry", `{"method":"compliance_status","params":[{"registry":42,"address":"` + jtx.NewAccount("x").Address.String() + `"}]}`, "entryNotFound"},
		{"bad params", `{"method":"balance","params":[{"ledger":"one"}]}`, "invalidParams"},
		{"missing owner", `{"method":"balance","params":[{"ledger":1,"asset_id":1}]}`, "invalidParams"},
		{"no tx_json", `{"method":"submit","params":[{}]}`, "invalidParams"},
		{"unknown tx", `{"method":"submit","params":[{"tx_json":{"TransactionType":"Payment"}}]}`, "invalidTransaction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.post(t, "/rpc", []byte(tt.body))
			assert.Equal(t, "error", res["status"])
			assert.Equal(t, tt.code, res["error"])
			assert.NotEmpty(t, res["error_message"])
		})
	}

	res := h.post(t, "/", []byte(`{"method":"ledger_info","params":[{"ledger":42}]}`))
	request := res["request"].(map[string]interface{})
	assert.Equal(t, "ledger_info", request["command"])
	assert.Equal(t, float64(42), request["ledger"])
}

func TestServer_GetAndHealth(t *testing.T) {
	h := newHarness(t)
	h.env.Approve(h.env.Account("alice"))

	resp, err := h.srv.Client().Get(h.srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out struct {
		Result struct {
			Status string `json:"status"`
			Info   struct {
				Version  string `json:"version"`
				Sequence uint64 `json:"sequence"`
			} `json:"info"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "success", out.Result.Status)
	assert.NotEmpty(t, out.Result.Info.Version)
	assert.Equal(t, h.env.Service().Engine().Sequence(), out.Result.Info.Sequence)

	for path, want := range map[string]string{"/health": `"status":"ok"`, "/metrics": "payloadd_up 1"} {
		resp, err := h.srv.Client().Get(h.srv.URL + path)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Contains(t, string(body), want, path)
	}
}

func dial(t *testing.T, h *harness) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_Commands(t *testing.T) {
	h := newHarness(t)
	conn := dial(t, h)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"command": "server_info", "id": 1}))
	msg := readJSON(t, conn)
	assert.Equal(t, "response", msg["type"])
	assert.Equal(t, "success", msg["status"])
	assert.Equal(t, float64(1), msg["id"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"command": "nope", "id": 2}))
	msg = readJSON(t, conn)
	assert.Equal(t, "error", msg["status"])
	assert.Equal(t, "unknownCmd", msg["error"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"command": "subscribe", "id": 3, "streams": []string{"ledger:x"}}))
	msg = readJSON(t, conn)
	assert.Equal(t, "malformedStream", msg["error"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"id": 4}))
	msg = readJSON(t, conn)
	assert.Equal(t, "missingCommand", msg["error"])
}

func TestWebSocket_Streams(t *testing.T) {
	h := newHarness(t)
	alice := h.env.Account("alice")
	h.env.Approve(alice)
	ledger := h.env.CreateLedger(alice, 0)

	conn := dial(t, h)
	stream := fmt.Sprintf("ledger:%d", ledger)
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"command": "subscribe", "id": 1, "streams": []string{stream}}))
	msg := readJSON(t, conn)
	require.Equal(t, "success", msg["status"], msg)

	// Transactions not touching the ledger are filtered out.
	h.env.MustSubmit(compliancetx.NewRegistryCreate(alice.Address))
	h.env.CreateAsset(alice, ledger, "hold", jtx.Units(3))

	msg = readJSON(t, conn)
	assert.Equal(t, "transaction", msg["type"])
	assert.Equal(t, "AssetCreate", msg["tx_type"])
	assert.Equal(t, "tesSUCCESS", msg["result"])
	events := msg["events"].([]interface{})
	require.NotEmpty(t, events)

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"command": "unsubscribe", "id": 2, "streams": []string{stream}}))
	msg = readJSON(t, conn)
	assert.Equal(t, "success", msg["status"])

	require.NoError(t, conn.WriteJSON(map[string]interface{}{"command": "subscribe", "id": 3, "streams": []string{"events"}}))
	readJSON(t, conn)
	h.env.Submit(compliancetx.NewRegistrySetApproved(alice.Address, h.env.Registry(), alice.Address, true))
	msg = readJSON(t, conn)
	assert.Equal(t, "RegistrySetApproved", msg["tx_type"])
	assert.Equal(t, "tecNO_PERMISSION", msg["result"])
	assert.Equal(t, false, msg["applied"])
}
