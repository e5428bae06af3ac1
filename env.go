package scanngo

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment variable LoadEnvConfig reads.
const EnvPrefix = "SCANNGO"

// EnvConfig holds searcher defaults read from the environment:
//
//	SCANNGO_MAX_RESULTS
//	SCANNGO_PARTITION_CACHE_SIZE
//	SCANNGO_PRELOAD
//	SCANNGO_LOG_LEVEL    debug, info, warn or error
//	SCANNGO_LOG_FORMAT   text or json
//	SCANNGO_LIMITS_MAX_CONCURRENT_SEARCHES
//	SCANNGO_LIMITS_IO_LIMIT_BYTES_PER_SEC
//	SCANNGO_LIMITS_MEMORY_LIMIT_BYTES
type EnvConfig struct {
	MaxResults         int            `envconfig:"MAX_RESULTS" default:"5"`
	PartitionCacheSize int            `envconfig:"PARTITION_CACHE_SIZE" default:"0"`
	Preload            bool           `envconfig:"PRELOAD" default:"false"`
	LogLevel           string         `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat          string         `envconfig:"LOG_FORMAT" default:"text"`
	Limits             ResourceLimits `envconfig:"LIMITS"`
}

// LoadEnvConfig reads EnvConfig from the environment. Variables from the
// given dotenv files fill in what the environment leaves unset.
func LoadEnvConfig(dotenvFiles ...string) (EnvConfig, error) {
	if len(dotenvFiles) > 0 {
		if err := godotenv.Load(dotenvFiles...); err != nil {
			return EnvConfig{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	var cfg EnvConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return cfg, nil
}

// WithEnvConfig applies cfg. Options given after it take precedence.
func WithEnvConfig(cfg EnvConfig) Option {
	return func(o *options) {
		o.maxResults = cfg.MaxResults
		o.partitionCacheSize = cfg.PartitionCacheSize
		o.preload = cfg.Preload
		o.limits = cfg.Limits
		o.logger = parseLogger(cfg.LogLevel, cfg.LogFormat)
	}
}
