package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goPayloadd/internal/config"
	"github.com/LeJamon/goPayloadd/internal/node"
	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
)

var (
	replayBackend string
	replayPath    string
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild state from the journal",
	Long: `Replay re-applies every journaled transaction, in sequence order, to a
fresh state store and reports how many were replayed, the result tallies
and the digest of the rebuilt state. Entries whose replayed result differs
from the journaled one are counted as mismatches.

By default the state is rebuilt in memory. Use --backend and --path to
write it to disk instead.

Example:
    payloadd replay
    payloadd replay --backend pebble --path ./data/rebuilt`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dc := cfg.Database
		dc.Backend = replayBackend
		dc.Path = replayPath
		_, err := replayJournal(cmd.Context(), cfg, dc, cmd.OutOrStdout())
		return err
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayBackend, "backend", database.BackendMemory, "backend for the rebuilt state")
	replayCmd.Flags().StringVar(&replayPath, "path", "", "directory for the rebuilt state (on-disk backends)")
}

// ErrNoJournal is returned when replaying with journaling disabled
var ErrNoJournal = fmt.Errorf("journal driver is %q; nothing to replay", journal.DriverNone)

// ErrReplayMismatch is returned when replayed results differ from the journal
var ErrReplayMismatch = errors.New("replayed results differ from the journal")

// replayResult is what one replay produced.
type replayResult struct {
	Stats   node.ReplayStats
	Digest  [32]byte
	Entries int
}

// replayJournal replays the configured journal into the store described by dc.
func replayJournal(ctx context.Context, c *config.Config, dc config.DatabaseConfig, out io.Writer) (replayResult, error) {
	if c.Journal.Driver == journal.DriverNone || c.Journal.Driver == "" {
		return replayResult{}, ErrNoJournal
	}
	src, err := openJournal(ctx, c.Journal)
	if err != nil {
		return replayResult{}, err
	}
	defer src.Close()

	res, err := replayInto(ctx, c, dc, src)
	if err != nil {
		return res, err
	}

	fmt.Fprintf(out, "Replayed:   %d entries (%d applied)\n", res.Stats.Entries, res.Stats.Applied)
	fmt.Fprintf(out, "Mismatches: %d\n", res.Stats.Mismatches)
	fmt.Fprintf(out, "State:      %d entries, digest %s\n", res.Entries, hex.EncodeToString(res.Digest[:]))
	fmt.Fprintln(out, "Results:")
	results := make([]string, 0, len(res.Stats.Results))
	for r := range res.Stats.Results {
		results = append(results, r)
	}
	sort.Strings(results)
	for _, r := range results {
		fmt.Fprintf(out, "  %-32s %d\n", r, res.Stats.Results[r])
	}

	if res.Stats.Mismatches > 0 {
		return res, fmt.Errorf("%w: %d entries", ErrReplayMismatch, res.Stats.Mismatches)
	}
	return res, nil
}

// replayInto rebuilds state from src in a new store and returns its digest.
func replayInto(ctx context.Context, c *config.Config, dc config.DatabaseConfig, src journal.Journal) (replayResult, error) {
	store, closeStore, err := openStore(ctx, dc)
	if err != nil {
		return replayResult{}, err
	}
	defer closeStore()

	svc, err := node.New(store, nil, node.Options{Engine: c.TxEngineConfig()})
	if err != nil {
		return replayResult{}, err
	}
	if seq := svc.Engine().Sequence(); seq != 0 {
		return replayResult{}, fmt.Errorf("target state is not empty (sequence %d)", seq)
	}

	stats, err := svc.Replay(ctx, src)
	if err != nil {
		return replayResult{Stats: stats}, fmt.Errorf("replay: %w", err)
	}
	digest, count, err := store.Digest()
	if err != nil {
		return replayResult{Stats: stats}, fmt.Errorf("digest: %w", err)
	}
	return replayResult{Stats: stats, Digest: digest, Entries: count}, nil
}
