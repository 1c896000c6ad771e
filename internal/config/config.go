// Package config manages partitioner configuration using Viper: a typed
// wrapper around *viper.Viper with defaults set up front and plain getter
// methods.
package config

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/hgpartition/pkg/partition"
)

// Config wraps a *viper.Viper carrying the refinement engine's tunables.
type Config struct {
	v *viper.Viper
}

// NewConfig creates a configuration with defaults set for every key the
// core consumes.
func NewConfig() *Config {
	v := viper.New()

	v.SetDefault("partition.k", 2)
	v.SetDefault("partition.epsilon", 0.03)
	v.SetDefault("partition.objective", "km1")
	v.SetDefault("partition.random_seed", time.Now().UnixNano())

	v.SetDefault("fm.max_rounds", 10)
	v.SetDefault("fm.max_non_improving_moves", 50)
	v.SetDefault("fm.max_moves_per_search", 0)
	v.SetDefault("fm.accept_zero_gain", false)
	v.SetDefault("fm.release_nodes", true)

	v.SetDefault("performance.num_workers", runtime.NumCPU())
	v.SetDefault("performance.time_limit_ms", 0)

	v.SetDefault("logging.level", "info")

	return &Config{v: v}
}

// LoadFromFile overlays a config file (any format viper supports) onto
// the defaults.
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

func (c *Config) K() int             { return c.v.GetInt("partition.k") }
func (c *Config) Epsilon() float64   { return c.v.GetFloat64("partition.epsilon") }
func (c *Config) RandomSeed() int64  { return c.v.GetInt64("partition.random_seed") }
func (c *Config) NumWorkers() int    { return c.v.GetInt("performance.num_workers") }
func (c *Config) TimeLimitMS() int   { return c.v.GetInt("performance.time_limit_ms") }
func (c *Config) LogLevel() string   { return c.v.GetString("logging.level") }

func (c *Config) MaxRounds() int               { return c.v.GetInt("fm.max_rounds") }
func (c *Config) MaxNonImprovingMoves() int    { return c.v.GetInt("fm.max_non_improving_moves") }
func (c *Config) MaxMovesPerSearch() int       { return c.v.GetInt("fm.max_moves_per_search") }
func (c *Config) AcceptZeroGain() bool         { return c.v.GetBool("fm.accept_zero_gain") }
func (c *Config) ReleaseNodes() bool           { return c.v.GetBool("fm.release_nodes") }

// Objective maps the configured objective string onto partition.Objective,
// defaulting to km1 on anything unrecognized.
func (c *Config) Objective() partition.Objective {
	switch c.v.GetString("partition.objective") {
	case "cut":
		return partition.ObjectiveCut
	default:
		return partition.ObjectiveKm1
	}
}

// Set allows dynamic configuration changes, e.g. from CLI flags.
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// CreateLogger builds a zerolog.Logger from the configured level, using
// a human-readable console writer.
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "hgpartition").Logger()
}
