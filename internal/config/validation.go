package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/storage/compression"
	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/sirupsen/logrus"
)

var (
	ErrRateBudget = errors.New("max_fee_rate + royalty_depth * max_royalty_rate exceeds 10000 bps")
)

// ValidateConfig performs validation on the complete configuration
func ValidateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}
	if err := validateEngineConfig(&config.Engine); err != nil {
		return fmt.Errorf("engine config validation failed: %w", err)
	}
	if err := validateDatabaseConfig(&config.Database); err != nil {
		return fmt.Errorf("database config validation failed: %w", err)
	}
	if err := config.Journal.Validate(); err != nil {
		return fmt.Errorf("journal config validation failed: %w", err)
	}
	if err := validateLoggingConfig(&config.Logging); err != nil {
		return fmt.Errorf("logging config validation failed: %w", err)
	}
	return nil
}

func validateServerConfig(s *ServerConfig) error {
	if s.RPCAddr == "" {
		return fmt.Errorf("rpc_addr is required")
	}
	if !strings.HasPrefix(s.WSPath, "/") {
		return fmt.Errorf("ws_path must start with '/': %q", s.WSPath)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 {
		return fmt.Errorf("timeouts must be >= 0")
	}
	return nil
}

// validateEngineConfig keeps a full royalty cascade plus the operator fee
// within the sale total.
func validateEngineConfig(e *EngineConfig) error {
	if e.RoyaltyDepth < 1 {
		return fmt.Errorf("royalty_depth must be >= 1, got %d", e.RoyaltyDepth)
	}
	if e.MaxRoyaltyRate > tx.BasisPoints || e.MaxFeeRate > tx.BasisPoints {
		return fmt.Errorf("rates must be <= %d bps", tx.BasisPoints)
	}
	if e.MaxDivisions == 0 {
		return fmt.Errorf("max_divisions must be positive")
	}
	budget := uint64(e.MaxFeeRate) + uint64(e.RoyaltyDepth)*uint64(e.MaxRoyaltyRate)
	if budget > tx.BasisPoints {
		return fmt.Errorf("%w: %d", ErrRateBudget, budget)
	}
	return nil
}

func validateDatabaseConfig(d *DatabaseConfig) error {
	switch d.Backend {
	case database.BackendPebble, database.BackendBbolt, database.BackendLevelDB:
		if d.Path == "" {
			return fmt.Errorf("path is required for the %s backend", d.Backend)
		}
	case database.BackendMemory:
	default:
		return fmt.Errorf("%w: %q", database.ErrUnknownBackend, d.Backend)
	}
	if d.CacheSize < 0 || d.StateCache < 0 {
		return fmt.Errorf("cache sizes must be >= 0")
	}
	if _, err := compression.Get(d.Compression); err != nil {
		return err
	}
	return nil
}

func validateLoggingConfig(l *LoggingConfig) error {
	if _, err := logrus.ParseLevel(l.Level); err != nil {
		return err
	}
	switch l.Format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}
}
