package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goPayloadd/internal/config"
	"github.com/LeJamon/goPayloadd/internal/rpc"
)

// shutdownTimeout bounds the graceful HTTP shutdown
const shutdownTimeout = 10 * time.Second

var listenAddr string

// serverCmd represents the server command (default action)
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the payloadd node",
	Long: `Start the payloadd node which provides:
- HTTP JSON-RPC on / and /rpc
- a websocket event stream
- /health and, when enabled, /metrics

This is the default command when no subcommand is specified.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	rootCmd.RunE = runServer

	serverCmd.Flags().StringVar(&listenAddr, "listen", "", "override [server] rpc_addr")
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := cfg.Server.RPCAddr
	if listenAddr != "" {
		addr = listenAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return serve(ctx, cfg, ln)
}

// serve runs the node on ln until ctx is canceled.
func serve(ctx context.Context, c *config.Config, ln net.Listener) error {
	h, err := openNode(ctx, c)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer h.Close()

	rpcServer := rpc.NewServer(h.Service, c.Server.WriteTimeout)
	wsServer := rpc.NewWebSocketServer(rpcServer)
	h.Service.AddPublisher(wsServer)

	opts := rpc.RouterOptions{WSPath: c.Server.WSPath}
	if h.Metrics != nil {
		opts.Metrics = h.Metrics.Handler()
	}
	httpServer := &http.Server{
		Handler:      rpc.NewRouter(rpcServer, wsServer, opts),
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
	}

	log.WithFields(log.Fields{
		"addr":     ln.Addr().String(),
		"ws":       c.Server.WSPath,
		"backend":  c.Database.Backend,
		"journal":  c.Journal.Driver,
		"sequence": h.Service.Engine().Sequence(),
		"methods":  len(rpcServer.Methods()),
	}).Info("payloadd listening")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")
		wsServer.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
