package config

import (
	"time"

	"github.com/LeJamon/goPayloadd/internal/core/tx"
	"github.com/LeJamon/goPayloadd/internal/storage/database"
	"github.com/LeJamon/goPayloadd/internal/storage/journal"
	"github.com/spf13/viper"
)

// DefaultConfigFile is looked up in the working directory when --conf is
// not given
const DefaultConfigFile = "payloadd.toml"

// setDefaults sets all default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.rpc_addr", "127.0.0.1:5005")
	v.SetDefault("server.ws_path", "/ws")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.enable_metrics", true)

	v.SetDefault("engine.royalty_depth", tx.DefaultRoyaltyDepth)
	v.SetDefault("engine.max_royalty_rate", tx.DefaultMaxRoyaltyRate)
	v.SetDefault("engine.max_fee_rate", tx.DefaultMaxFeeRate)
	v.SetDefault("engine.max_divisions", tx.DefaultMaxDivisions)

	v.SetDefault("database.backend", database.BackendPebble)
	v.SetDefault("database.path", "data/state")
	v.SetDefault("database.cache_size", 64<<20)
	v.SetDefault("database.state_cache", 4096)
	v.SetDefault("database.compression", "lz4")

	v.SetDefault("journal.driver", journal.DriverSQLite)
	v.SetDefault("journal.dsn", "data/journal.db")
	v.SetDefault("journal.max_open_conns", 4)
	v.SetDefault("journal.max_idle_conns", 2)
	v.SetDefault("journal.conn_max_lifetime", time.Hour)
	v.SetDefault("journal.timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
