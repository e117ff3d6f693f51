package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Network != NetworkMain {
		t.Errorf("expected NetworkMain, got %s", cfg.Network)
	}
	if cfg.Store.DataDir != "./data/lws.mdbx" {
		t.Errorf("unexpected default DataDir: %s", cfg.Store.DataDir)
	}
	if cfg.Store.MaxSizeMB != 1<<16 {
		t.Errorf("unexpected default MaxSizeMB: %d", cfg.Store.MaxSizeMB)
	}
	if cfg.Daemon.URL != "http://127.0.0.1:18081" {
		t.Errorf("unexpected default daemon URL: %s", cfg.Daemon.URL)
	}
	if cfg.Daemon.Timeout != 30*time.Second {
		t.Errorf("unexpected default daemon timeout: %s", cfg.Daemon.Timeout)
	}
	if cfg.REST.Addr != "0.0.0.0:8443" {
		t.Errorf("unexpected default REST addr: %s", cfg.REST.Addr)
	}
	if cfg.REST.RequestTimeout != 20*time.Second {
		t.Errorf("unexpected default REST request timeout: %s", cfg.REST.RequestTimeout)
	}
	if cfg.Scanner.Workers != 4 {
		t.Errorf("unexpected default scanner workers: %d", cfg.Scanner.Workers)
	}
	if cfg.Scanner.PollInterval != 5*time.Second {
		t.Errorf("unexpected default scanner poll interval: %s", cfg.Scanner.PollInterval)
	}
	if cfg.Scanner.BatchSize != 100 {
		t.Errorf("unexpected default scanner batch size: %d", cfg.Scanner.BatchSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unexpected default logging level: %s", cfg.Logging.Level)
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lws.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	if cfg.Network != NetworkMain {
		t.Errorf("expected NetworkMain, got %s", cfg.Network)
	}
	if cfg.Daemon.URL != "http://127.0.0.1:18081" {
		t.Errorf("expected default daemon URL, got %s", cfg.Daemon.URL)
	}
}

func TestLoadReadsExisting(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lws.yaml")

	custom := `network: test
store:
  data_dir: /var/lib/lws/accounts.mdbx
  max_size_mb: 4096
daemon:
  url: http://127.0.0.1:28081
  timeout: 10s
rest:
  addr: 127.0.0.1:9000
  disable_submit_raw_tx: true
scanner:
  workers: 8
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(custom), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Network != NetworkTest {
		t.Errorf("expected NetworkTest, got %s", cfg.Network)
	}
	if cfg.Store.DataDir != "/var/lib/lws/accounts.mdbx" {
		t.Errorf("unexpected data dir: %s", cfg.Store.DataDir)
	}
	if cfg.Store.MaxSizeMB != 4096 {
		t.Errorf("unexpected max size: %d", cfg.Store.MaxSizeMB)
	}
	if cfg.Daemon.URL != "http://127.0.0.1:28081" {
		t.Errorf("unexpected daemon URL: %s", cfg.Daemon.URL)
	}
	if cfg.Daemon.Timeout != 10*time.Second {
		t.Errorf("unexpected daemon timeout: %s", cfg.Daemon.Timeout)
	}
	if cfg.REST.Addr != "127.0.0.1:9000" {
		t.Errorf("unexpected REST addr: %s", cfg.REST.Addr)
	}
	if !cfg.REST.DisableSubmitRawTx {
		t.Error("expected DisableSubmitRawTx to be true")
	}
	if cfg.Scanner.Workers != 8 {
		t.Errorf("unexpected scanner workers: %d", cfg.Scanner.Workers)
	}
	// Fields left unset in the custom YAML keep DefaultConfig's values,
	// since Load unmarshals onto a default-populated struct.
	if cfg.Scanner.BatchSize != 100 {
		t.Errorf("expected default batch size to survive partial override, got %d", cfg.Scanner.BatchSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected logging level: %s", cfg.Logging.Level)
	}
}

func TestSaveWritesReadableYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "lws.yaml")

	cfg := DefaultConfig()
	cfg.Network = NetworkDev
	cfg.Store.DataDir = "/tmp/lws-dev.mdbx"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save() error = %v", err)
	}

	if reloaded.Network != NetworkDev {
		t.Errorf("expected NetworkDev, got %s", reloaded.Network)
	}
	if reloaded.Store.DataDir != "/tmp/lws-dev.mdbx" {
		t.Errorf("unexpected data dir after round-trip: %s", reloaded.Store.DataDir)
	}
}
