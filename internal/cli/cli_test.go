package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goPayloadd/internal/config"
	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
	jtx "github.com/LeJamon/goPayloadd/internal/testing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c, err := config.LoadConfig("")
	require.NoError(t, err)
	c.Database.Backend = database.BackendMemory
	c.Journal.Driver = journal.DriverSQLite
	c.Journal.DSN = filepath.Join(t.TempDir(), "journal", "journal.db")
	return c
}

func TestSetupLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	setupLogging(config.LoggingConfig{Level: "error", Format: "json"}, false, false, false)
	assert.Equal(t, log.ErrorLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	setupLogging(config.LoggingConfig{Level: "info"}, true, false, true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	setupLogging(config.LoggingConfig{Level: "bogus", Format: "json"}, false, true, true)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
	assert.IsType(t, &log.TextFormatter{}, log.StandardLogger().Formatter)
}

// TestServeReplayCompare runs a node, submits over JSON-RPC, stops it and
// rebuilds its state from the journal.
func TestServeReplayCompare(t *testing.T) {
	c := testConfig(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	url := fmt.Sprintf("http://%s/", ln.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, c, ln) }()

	alice := jtx.NewAccount("alice")
	var out bytes.Buffer
	for i := 0; i < 2; i++ {
		params := json.RawMessage(fmt.Sprintf(`{"tx_json":{"TransactionType":"RegistryCreate","Account":%q}}`, alice.Address))
		require.NoError(t, callRPC(ctx, http.DefaultClient, url, "submit", params, &out))
	}
	assert.Contains(t, out.String(), `"engine_result": "tesSUCCESS"`)

	out.Reset()
	err = callRPC(ctx, http.DefaultClient, url, "ledger_info", json.RawMessage(`{"ledger":7}`), &out)
	assert.ErrorContains(t, err, "entryNotFound")
	assert.ErrorContains(t, callRPC(ctx, http.DefaultClient, url, "submit", json.RawMessage(`{`), &out), "not valid JSON")

	cancel()
	require.NoError(t, <-done)

	out.Reset()
	res, err := replayJournal(context.Background(), c, c.Database, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stats.Entries)
	assert.Equal(t, 2, res.Stats.Applied)
	assert.Equal(t, 2, res.Stats.Results["tesSUCCESS"])
	assert.Contains(t, out.String(), "Replayed:   2 entries (2 applied)")

	out.Reset()
	require.NoError(t, compareReplays(context.Background(), c, false, &out))
	assert.Contains(t, out.String(), "OK")
}

func TestReplay_NoJournal(t *testing.T) {
	c := testConfig(t)
	c.Journal.Driver = journal.DriverNone

	_, err := replayJournal(context.Background(), c, c.Database, &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrNoJournal)
	assert.ErrorIs(t, compareReplays(context.Background(), c, false, &bytes.Buffer{}), ErrNoJournal)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	versionCmd.Run(versionCmd, nil)
	assert.Contains(t, out.String(), "payloadd version")
}
