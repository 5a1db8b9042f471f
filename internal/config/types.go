package config

import "time"

// Default values.
const (
	DefaultAddr              = ":8080"
	DefaultWorkers           = 10
	DefaultItemPostCreates   = true
	DefaultMaxBodyBytes      = 1 << 20
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultReadTimeout       = 5 * time.Second
	DefaultReadHeaderTimeout = 2 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultShutdownTimeout   = 5 * time.Second

	DefaultConfigFile = "todos.toml"
	EnvPrefix         = "TODOS_"
)

// Config holds the full configuration for the todo server.
type Config struct {
	// Listen address, host:port.
	Addr string `toml:"addr"`

	// Number of requests handled concurrently.
	Workers int `toml:"workers"`

	// ItemPostCreates keeps POST /todos/{id} creating a new, unrelated
	// todo. When false the route answers 405.
	ItemPostCreates bool `toml:"item_post_creates"`

	MaxBodyBytes int64 `toml:"max_body_bytes"`

	// Logging configuration
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// HTTP server timeouts
	ReadTimeout       time.Duration `toml:"read_timeout"`
	ReadHeaderTimeout time.Duration `toml:"read_header_timeout"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	IdleTimeout       time.Duration `toml:"idle_timeout"`
	ShutdownTimeout   time.Duration `toml:"shutdown_timeout"`

	// File the config was read from, if any.
	ConfigFile string `toml:"-"`
}
