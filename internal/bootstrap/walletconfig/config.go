// Package walletconfig loads daemon configuration from a yaml file with
// environment overrides merged on top of built-in defaults.
package walletconfig

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration of the wallet daemon.
type Config struct {
	DataDir         string
	Network         string
	LedgerEndpoint  string
	SubmitTimeout   time.Duration
	CacheTTL        time.Duration
	ReserveBaseXRP  string
	ReserveIncXRP   string
	SubmitRPS       float64
	SubmitBurst     int
	StorePassphrase string
}

// DefaultConfig targets the public testnet with mainnet reserve constants.
func DefaultConfig() Config {
	return Config{
		DataDir:        "data",
		Network:        "testnet",
		LedgerEndpoint: "wss://s.altnet.rippletest.net:51233",
		SubmitTimeout:  30 * time.Second,
		CacheTTL:       5 * time.Minute,
		ReserveBaseXRP: "10",
		ReserveIncXRP:  "2",
		SubmitRPS:      2,
		SubmitBurst:    5,
	}
}

type fileConfig struct {
	Wallet walletSection `yaml:"wallet"`
}

type walletSection struct {
	DataDir        string        `yaml:"dataDir"`
	Network        string        `yaml:"network"`
	LedgerEndpoint string        `yaml:"ledgerEndpoint"`
	SubmitTimeout  time.Duration `yaml:"submitTimeout"`
	CacheTTL       time.Duration `yaml:"cacheTTL"`
	ReserveBaseXRP string        `yaml:"reserveBaseXRP"`
	ReserveIncXRP  string        `yaml:"reserveIncXRP"`
	SubmitRPS      *float64      `yaml:"submitRPS"`
	SubmitBurst    *int          `yaml:"submitBurst"`
}

// LoadFromPath reads configPath if given, otherwise the default candidate
// locations; missing or unreadable files fall back to defaults. The store
// passphrase comes from the environment only, never from the file.
func LoadFromPath(configPath string) Config {
	cfg := DefaultConfig()

	candidates := make([]string, 0, 2)
	if configPath != "" {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates,
			"go-backend/configs/wallet.yaml",
			"configs/wallet.yaml",
		)
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			continue
		}
		merged := cfg
		merge(&merged, parsed.Wallet)
		applyEnvOverrides(&merged)
		return merged
	}

	applyEnvOverrides(&cfg)
	return cfg
}

func merge(dst *Config, src walletSection) {
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
	}
	if src.Network != "" {
		dst.Network = src.Network
	}
	if src.LedgerEndpoint != "" {
		dst.LedgerEndpoint = src.LedgerEndpoint
	}
	if src.SubmitTimeout > 0 {
		dst.SubmitTimeout = src.SubmitTimeout
	}
	if src.CacheTTL > 0 {
		dst.CacheTTL = src.CacheTTL
	}
	if src.ReserveBaseXRP != "" {
		dst.ReserveBaseXRP = src.ReserveBaseXRP
	}
	if src.ReserveIncXRP != "" {
		dst.ReserveIncXRP = src.ReserveIncXRP
	}
	if src.SubmitRPS != nil {
		dst.SubmitRPS = *src.SubmitRPS
	}
	if src.SubmitBurst != nil {
		dst.SubmitBurst = *src.SubmitBurst
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LEDGERLINE_DATA_DIR")); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("LEDGERLINE_NETWORK")); v != "" {
		cfg.Network = v
	}
	if v := strings.TrimSpace(os.Getenv("LEDGERLINE_LEDGER_ENDPOINT")); v != "" {
		cfg.LedgerEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("LEDGERLINE_SUBMIT_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SubmitTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("LEDGERLINE_CACHE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.CacheTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("LEDGERLINE_SUBMIT_RPS")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.SubmitRPS = f
		}
	}
	cfg.StorePassphrase = os.Getenv("LEDGERLINE_STORE_PASSPHRASE")
}
