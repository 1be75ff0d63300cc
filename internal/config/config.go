package config

import (
	"time"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
)

// Config represents the complete payloadd configuration
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Engine   EngineConfig   `toml:"engine" mapstructure:"engine"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Journal  journal.Config `toml:"journal" mapstructure:"journal"`
	Logging  LoggingConfig  `toml:"logging" mapstructure:"logging"`

	configPath string `toml:"-" mapstructure:"-"`
}

// ServerConfig configures the RPC, websocket and metrics listener
type ServerConfig struct {
	RPCAddr       string        `toml:"rpc_addr" mapstructure:"rpc_addr"`
	WSPath        string        `toml:"ws_path" mapstructure:"ws_path"`
	ReadTimeout   time.Duration `toml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `toml:"write_timeout" mapstructure:"write_timeout"`
	EnableMetrics bool          `toml:"enable_metrics" mapstructure:"enable_metrics"`
}

// EngineConfig bounds the economic parameters of the transaction engine
type EngineConfig struct {
	RoyaltyDepth   int    `toml:"royalty_depth" mapstructure:"royalty_depth"`
	MaxRoyaltyRate uint32 `toml:"max_royalty_rate" mapstructure:"max_royalty_rate"`
	MaxFeeRate     uint32 `toml:"max_fee_rate" mapstructure:"max_fee_rate"`
	MaxDivisions   uint32 `toml:"max_divisions" mapstructure:"max_divisions"`
}

// DatabaseConfig selects the key-value backend holding ledger state
type DatabaseConfig struct {
	Backend     string `toml:"backend" mapstructure:"backend"`
	Path        string `toml:"path" mapstructure:"path"`
	CacheSize   int    `toml:"cache_size" mapstructure:"cache_size"`
	StateCache  int    `toml:"state_cache" mapstructure:"state_cache"`
	Compression string `toml:"compression" mapstructure:"compression"`
}

// LoggingConfig configures logrus
type LoggingConfig struct {
	Level  string `toml:"level" mapstructure:"level"`
	Format string `toml:"format" mapstructure:"format"`
}

// GetConfigPath returns the path the configuration was loaded from, or
// "" when only defaults and environment were used.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// TxEngineConfig converts the [engine] section. The gate resolver is
// wired by the caller.
func (c *Config) TxEngineConfig() tx.EngineConfig {
	return tx.EngineConfig{
		RoyaltyDepth:   c.Engine.RoyaltyDepth,
		MaxRoyaltyRate: c.Engine.MaxRoyaltyRate,
		MaxFeeRate:     c.Engine.MaxFeeRate,
		MaxDivisions:   c.Engine.MaxDivisions,
	}
}
