// Package config loads screener configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xbxaxd26/pump-swap-screen/internal/pumpswap"
)

// Duration wraps time.Duration so YAML values like "200ms" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config holds all application configuration.
type Config struct {
	RPC struct {
		HTTPURL string `yaml:"http_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"rpc"`
	Scan struct {
		TargetMint   string   `yaml:"target_mint"`
		MinLiquidity float64  `yaml:"min_liquidity"`
		PoolDelay    Duration `yaml:"pool_delay"`
		Cron         string   `yaml:"cron"`
		Subscribe    bool     `yaml:"subscribe"`
	} `yaml:"scan"`
	Volume struct {
		SignatureLimit        int     `yaml:"signature_limit"`
		SignificanceThreshold float64 `yaml:"significance_threshold"`
		TopPools              int     `yaml:"top_pools"`
		Cron                  string  `yaml:"cron"`
	} `yaml:"volume"`
	Pricing struct {
		ReferenceMint string   `yaml:"reference_mint"`
		FetchDelay    Duration `yaml:"fetch_delay"`
	} `yaml:"pricing"`
	Storage struct {
		DataDir       string `yaml:"data_dir"`
		PostgresDSN   string `yaml:"postgres_dsn"`
		ClickHouseDSN string `yaml:"clickhouse_dsn"`
	} `yaml:"storage"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error; env vars and
// defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SOLANA_RPC_URL"); v != "" {
		cfg.RPC.HTTPURL = v
	}
	if v := os.Getenv("SOLANA_WS_URL"); v != "" {
		cfg.RPC.WSURL = v
	}
	if v := os.Getenv("TARGET_MINT"); v != "" {
		cfg.Scan.TargetMint = v
	}
	if v := os.Getenv("MIN_LIQUIDITY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scan.MinLiquidity = f
		}
	}
	if v := os.Getenv("SCAN_CRON"); v != "" {
		cfg.Scan.Cron = v
	}
	if v := os.Getenv("VOLUME_CRON"); v != "" {
		cfg.Volume.Cron = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := os.Getenv("CLICKHOUSE_DSN"); v != "" {
		cfg.Storage.ClickHouseDSN = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	// Defaults
	if cfg.RPC.HTTPURL == "" {
		cfg.RPC.HTTPURL = "https://api.mainnet-beta.solana.com"
	}
	if cfg.RPC.WSURL == "" {
		cfg.RPC.WSURL = "wss://api.mainnet-beta.solana.com"
	}
	if cfg.Scan.MinLiquidity == 0 {
		cfg.Scan.MinLiquidity = 1.0
	}
	if cfg.Scan.PoolDelay == 0 {
		cfg.Scan.PoolDelay = Duration(200 * time.Millisecond)
	}
	if cfg.Scan.Cron == "" {
		cfg.Scan.Cron = "@every 5m"
	}
	if cfg.Volume.SignatureLimit == 0 {
		cfg.Volume.SignatureLimit = 20
	}
	if cfg.Volume.SignificanceThreshold == 0 {
		cfg.Volume.SignificanceThreshold = 0.05
	}
	if cfg.Volume.TopPools == 0 {
		cfg.Volume.TopPools = 10
	}
	if cfg.Volume.Cron == "" {
		cfg.Volume.Cron = "@every 3m"
	}
	if cfg.Pricing.ReferenceMint == "" {
		cfg.Pricing.ReferenceMint = pumpswap.WSOLMint
	}
	if cfg.Pricing.FetchDelay == 0 {
		cfg.Pricing.FetchDelay = Duration(100 * time.Millisecond)
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.RPC.HTTPURL == "" {
		return fmt.Errorf("rpc.http_url is required")
	}
	if c.Scan.Subscribe && c.RPC.WSURL == "" {
		return fmt.Errorf("rpc.ws_url is required when scan.subscribe is set")
	}
	if c.Scan.MinLiquidity < 0 {
		return fmt.Errorf("scan.min_liquidity must not be negative")
	}
	if c.Volume.SignificanceThreshold <= 0 {
		return fmt.Errorf("volume.significance_threshold must be positive")
	}
	return nil
}
