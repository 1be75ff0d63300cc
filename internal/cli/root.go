// Package cli implements the payloadd command line.
package cli

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goPayloadd/internal/config"
	"github.com/LeJamon/goPayloadd/internal/node"
)

var (
	// Global flags
	configFile string
	debug      bool
	verbose    bool
	quiet      bool

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "payloadd",
	Short: "payloadd - payload capacity tokenization node",
	Long: `payloadd runs a ledger of payload-capacity assets: compliance-gated
asset ledgers, weight division, a royalty-paying marketplace and money
tokens. Every accepted transaction is journaled so state can be replayed.`,
	Version:           node.Version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default ./payloadd.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable normally suppressed debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging with timestamps")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
}

// initConfig loads the configuration and sets up logging.
func initConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configFile)
	if err != nil {
		return err
	}
	cfg = loaded
	setupLogging(cfg.Logging, debug, verbose, quiet)

	if path := cfg.GetConfigPath(); path != "" {
		log.WithField("path", path).Debug("loaded configuration")
	}
	return nil
}

// setupLogging applies the [logging] section. Flags override the level.
func setupLogging(lc config.LoggingConfig, debug, verbose, quiet bool) {
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		level = log.InfoLevel
	}
	switch {
	case debug:
		level = log.DebugLevel
	case quiet:
		level = log.WarnLevel
	}
	log.SetLevel(level)

	switch {
	case verbose:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	case lc.Format == "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}
}
