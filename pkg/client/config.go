package client

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devicehive/hive-go/pkg/log"
	"github.com/devicehive/hive-go/pkg/subscription"
)

// Config configures a Client.
type Config struct {
	// PoolSize is the number of concurrently running watch tasks.
	PoolSize int

	// PollWait is the server-side wait hint for long-polling requests.
	PollWait time.Duration

	// ReapInterval is how often stale duplex registrations are evicted.
	ReapInterval time.Duration

	// SweepInterval is how often tracked command updates are checked for
	// results. Zero disables the sweep loop.
	SweepInterval time.Duration

	// QueueCapacity bounds the command-update delivery queue.
	QueueCapacity int

	// ShutdownGrace is how long Shutdown waits for watch tasks to finish
	// before cancelling them.
	ShutdownGrace time.Duration

	// AutoReconnect enables automatic duplex-channel reconnection.
	AutoReconnect bool

	// Headers are sent with every long-polling request (authentication).
	Headers map[string]string

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// EventLogger receives the machine-readable event trace.
	// If nil, tracing is disabled.
	EventLogger log.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PoolSize:      subscription.DefaultPoolSize,
		PollWait:      30 * time.Second,
		ReapInterval:  subscription.DefaultReapInterval,
		SweepInterval: 10 * time.Second,
		QueueCapacity: 128,
		ShutdownGrace: subscription.DefaultShutdownGrace,
		AutoReconnect: true,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool size must be positive, got %d", c.PoolSize)
	}
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", c.QueueCapacity)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("reap interval must be positive, got %v", c.ReapInterval)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("sweep interval must not be negative, got %v", c.SweepInterval)
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown grace must not be negative, got %v", c.ShutdownGrace)
	}
	return nil
}

// yamlConfig represents the YAML structure of a config file.
// Durations are strings in time.ParseDuration format.
type yamlConfig struct {
	PoolSize      *int              `yaml:"pool_size"`
	PollWait      string            `yaml:"poll_wait"`
	ReapInterval  string            `yaml:"reap_interval"`
	SweepInterval *string           `yaml:"sweep_interval"`
	QueueCapacity *int              `yaml:"queue_capacity"`
	ShutdownGrace string            `yaml:"shutdown_grace"`
	AutoReconnect *bool             `yaml:"auto_reconnect"`
	Headers       map[string]string `yaml:"headers"`
}

// LoadConfig reads a YAML config file and overlays it on DefaultConfig.
// Absent keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (Config, error) {
	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return Config{}, fmt.Errorf("YAML parse error: %w", err)
	}

	cfg := DefaultConfig()

	if y.PoolSize != nil {
		cfg.PoolSize = *y.PoolSize
	}
	if y.QueueCapacity != nil {
		cfg.QueueCapacity = *y.QueueCapacity
	}
	if y.AutoReconnect != nil {
		cfg.AutoReconnect = *y.AutoReconnect
	}
	if len(y.Headers) > 0 {
		cfg.Headers = y.Headers
	}

	if err := overlayDuration(&cfg.PollWait, "poll_wait", y.PollWait); err != nil {
		return Config{}, err
	}
	if err := overlayDuration(&cfg.ReapInterval, "reap_interval", y.ReapInterval); err != nil {
		return Config{}, err
	}
	if y.SweepInterval != nil {
		// Explicit "0" disables the sweep loop
		if err := overlayDuration(&cfg.SweepInterval, "sweep_interval", *y.SweepInterval); err != nil {
			return Config{}, err
		}
	}
	if err := overlayDuration(&cfg.ShutdownGrace, "shutdown_grace", y.ShutdownGrace); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayDuration(dst *time.Duration, key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
