package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goPayloadd/internal/rpc"
)

var (
	rpcURL     string
	rpcTimeout time.Duration
)

// rpcCmd calls a method on a running node
var rpcCmd = &cobra.Command{
	Use:   "rpc <method> [params-json]",
	Short: "Call a JSON-RPC method on a running node",
	Long: `Send one JSON-RPC request to a running node and print the result.

Examples:
    payloadd rpc server_info
    payloadd rpc balance '{"ledger":1,"asset_id":1,"owner":"<address>"}'
    payloadd rpc submit '{"tx_json":{"TransactionType":"RegistryCreate","Account":"<address>"}}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := rpcURL
		if url == "" {
			url = "http://" + cfg.Server.RPCAddr + "/"
		}
		var params json.RawMessage
		if len(args) > 1 {
			params = json.RawMessage(args[1])
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), rpcTimeout)
		defer cancel()
		return callRPC(ctx, http.DefaultClient, url, args[0], params, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(rpcCmd)

	rpcCmd.Flags().StringVar(&rpcURL, "url", "", "node URL (default http://<rpc_addr>/)")
	rpcCmd.Flags().DurationVar(&rpcTimeout, "timeout", 30*time.Second, "request timeout")
}

// callRPC posts one request and pretty-prints the result object. A
// result with status "error" is returned as an error.
func callRPC(ctx context.Context, client *http.Client, url, method string, params json.RawMessage, out io.Writer) error {
	request := rpc.Request{Method: method}
	if len(params) > 0 {
		if !json.Valid(params) {
			return fmt.Errorf("params are not valid JSON")
		}
		request.Params = []json.RawMessage{params}
	}
	body, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("node returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	var response struct {
		Result map[string]interface{} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	pretty, err := json.MarshalIndent(response.Result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(pretty))

	if response.Result["status"] == "error" {
		return fmt.Errorf("RPC error [%v]: %v", response.Result["error"], response.Result["error_message"])
	}
	return nil
}
