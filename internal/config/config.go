// Package config loads the daemon and CLI's on-disk configuration: which
// network to run against, where the account store lives, how to reach the
// daemon RPC, and how the REST API and scanner are tuned.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Network selects which CryptoNote network parameters to load from
// internal/netparams.
type Network string

const (
	NetworkMain Network = "main"
	NetworkTest Network = "test"
	NetworkDev  Network = "dev"
)

// Config holds every setting the daemon (and the admin CLI, for the
// subset it needs) reads at startup.
type Config struct {
	Network Network `yaml:"network"`

	Store   StoreConfig   `yaml:"store"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	REST    RESTConfig    `yaml:"rest"`
	Scanner ScannerConfig `yaml:"scanner"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig configures the account store's backing MDBX environment.
type StoreConfig struct {
	// DataDir is the path to the account store's database file.
	DataDir string `yaml:"data_dir"`

	// MaxSizeMB is the MDBX environment's maximum map size.
	MaxSizeMB int `yaml:"max_size_mb"`
}

// DaemonConfig configures the upstream CryptoNote daemon RPC connection.
type DaemonConfig struct {
	// URL is the daemon's RPC base URL, e.g. "http://127.0.0.1:18081".
	URL string `yaml:"url"`

	// Timeout bounds every individual daemon RPC call.
	Timeout time.Duration `yaml:"timeout"`
}

// RESTConfig configures the wallet-facing HTTP API.
type RESTConfig struct {
	// Addr is the listen address, e.g. "0.0.0.0:8443".
	Addr string `yaml:"addr"`

	// RequestTimeout bounds how long a single REST request may run.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	DisableLogin         bool `yaml:"disable_login"`
	DisableImportRequest bool `yaml:"disable_import_request"`
	DisableGetRandomOuts bool `yaml:"disable_get_random_outs"`
	DisableSubmitRawTx   bool `yaml:"disable_submit_raw_tx"`
}

// ScannerConfig configures the multi-threaded chain scanner.
type ScannerConfig struct {
	// Workers is the number of concurrent scan workers.
	Workers int `yaml:"workers"`

	// PollInterval is how often the scanner supervisor re-reads the
	// active account set.
	PollInterval time.Duration `yaml:"poll_interval"`

	// BatchSize is loaded and saved with the config file. No component
	// reads it; each get_blocks_fast call returns as many blocks as the
	// node sends.
	BatchSize int `yaml:"batch_size"`
}

// LoggingConfig configures the process-wide logger.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `yaml:"level"`

	// File is the log file path; empty means stdout.
	File string `yaml:"file"`
}

// DefaultConfig returns a Config with sensible defaults for a mainnet
// deployment reading/writing ./data.
func DefaultConfig() *Config {
	return &Config{
		Network: NetworkMain,
		Store: StoreConfig{
			DataDir:   "./data/lws.mdbx",
			MaxSizeMB: 1 << 16, // 64 GiB
		},
		Daemon: DaemonConfig{
			URL:     "http://127.0.0.1:18081",
			Timeout: 30 * time.Second,
		},
		REST: RESTConfig{
			Addr:           "0.0.0.0:8443",
			RequestTimeout: 20 * time.Second,
		},
		Scanner: ScannerConfig{
			Workers:      4,
			PollInterval: 5 * time.Second,
			BatchSize:    100,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from path. If path does not exist, it writes
// a default configuration there and returns it, the same first-run
// bootstrap every deployment of this daemon relies on.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("config: writing default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating its parent directory if
// needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}

	header := []byte("# lws daemon configuration\n# Generated automatically on first run.\n\n")
	if err := os.WriteFile(path, append(header, data...), 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
