package walletconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPathMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wallet.yaml")
	content := `
wallet:
  network: mainnet
  ledgerEndpoint: wss://example.test:51233
  submitTimeout: 10s
  reserveBaseXRP: "20"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := LoadFromPath(path)
	if cfg.Network != "mainnet" {
		t.Fatalf("network = %s", cfg.Network)
	}
	if cfg.LedgerEndpoint != "wss://example.test:51233" {
		t.Fatalf("endpoint = %s", cfg.LedgerEndpoint)
	}
	if cfg.SubmitTimeout != 10*time.Second {
		t.Fatalf("timeout = %s", cfg.SubmitTimeout)
	}
	if cfg.ReserveBaseXRP != "20" {
		t.Fatalf("base reserve = %s", cfg.ReserveBaseXRP)
	}
	// Unset fields keep defaults.
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("cache ttl = %s", cfg.CacheTTL)
	}
	if cfg.ReserveIncXRP != "2" {
		t.Fatalf("inc reserve = %s", cfg.ReserveIncXRP)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	def := DefaultConfig()
	if cfg.LedgerEndpoint != def.LedgerEndpoint || cfg.SubmitTimeout != def.SubmitTimeout {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEDGERLINE_NETWORK", "devnet")
	t.Setenv("LEDGERLINE_SUBMIT_TIMEOUT", "7s")
	t.Setenv("LEDGERLINE_STORE_PASSPHRASE", "from-env")

	cfg := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Network != "devnet" {
		t.Fatalf("network = %s", cfg.Network)
	}
	if cfg.SubmitTimeout != 7*time.Second {
		t.Fatalf("timeout = %s", cfg.SubmitTimeout)
	}
	if cfg.StorePassphrase != "from-env" {
		t.Fatal("store passphrase must come from env")
	}
}
