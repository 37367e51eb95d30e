package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.RPC.HTTPURL != "https://api.mainnet-beta.solana.com" {
		t.Errorf("unexpected default RPC URL: %s", cfg.RPC.HTTPURL)
	}
	if cfg.Scan.MinLiquidity != 1.0 {
		t.Errorf("expected default min liquidity 1.0, got %v", cfg.Scan.MinLiquidity)
	}
	if cfg.Scan.PoolDelay.Std() != 200*time.Millisecond {
		t.Errorf("unexpected default pool delay: %v", cfg.Scan.PoolDelay)
	}
	if cfg.Scan.Cron != "@every 5m" {
		t.Errorf("unexpected default scan cron: %s", cfg.Scan.Cron)
	}
	if cfg.Volume.SignatureLimit != 20 {
		t.Errorf("unexpected default signature limit: %d", cfg.Volume.SignatureLimit)
	}
	if cfg.Volume.SignificanceThreshold != 0.05 {
		t.Errorf("unexpected default significance threshold: %v", cfg.Volume.SignificanceThreshold)
	}
	if cfg.Pricing.ReferenceMint != "So11111111111111111111111111111111111111112" {
		t.Errorf("unexpected default reference mint: %s", cfg.Pricing.ReferenceMint)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("unexpected default server addr: %s", cfg.Server.Addr)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rpc:
  http_url: https://rpc.example.com
scan:
  target_mint: SomeMint
  min_liquidity: 5
  pool_delay: 50ms
  subscribe: true
volume:
  signature_limit: 40
storage:
  data_dir: /var/lib/screener
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.RPC.HTTPURL != "https://rpc.example.com" {
		t.Errorf("unexpected RPC URL: %s", cfg.RPC.HTTPURL)
	}
	if cfg.Scan.TargetMint != "SomeMint" {
		t.Errorf("unexpected target mint: %s", cfg.Scan.TargetMint)
	}
	if cfg.Scan.MinLiquidity != 5 {
		t.Errorf("unexpected min liquidity: %v", cfg.Scan.MinLiquidity)
	}
	if cfg.Scan.PoolDelay.Std() != 50*time.Millisecond {
		t.Errorf("unexpected pool delay: %v", cfg.Scan.PoolDelay)
	}
	if !cfg.Scan.Subscribe {
		t.Error("expected subscribe enabled")
	}
	if cfg.Volume.SignatureLimit != 40 {
		t.Errorf("unexpected signature limit: %d", cfg.Volume.SignatureLimit)
	}
	if cfg.Storage.DataDir != "/var/lib/screener" {
		t.Errorf("unexpected data dir: %s", cfg.Storage.DataDir)
	}

	// Untouched sections still get defaults.
	if cfg.Volume.Cron != "@every 3m" {
		t.Errorf("unexpected volume cron: %s", cfg.Volume.Cron)
	}
	if cfg.RPC.WSURL != "wss://api.mainnet-beta.solana.com" {
		t.Errorf("unexpected WS URL: %s", cfg.RPC.WSURL)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
rpc:
  http_url: https://rpc.example.com
scan:
  min_liquidity: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SOLANA_RPC_URL", "https://rpc.override.com")
	t.Setenv("MIN_LIQUIDITY", "2.5")
	t.Setenv("TARGET_MINT", "EnvMint")
	t.Setenv("SERVER_ADDR", ":9090")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.RPC.HTTPURL != "https://rpc.override.com" {
		t.Errorf("env override lost: %s", cfg.RPC.HTTPURL)
	}
	if cfg.Scan.MinLiquidity != 2.5 {
		t.Errorf("env override lost: %v", cfg.Scan.MinLiquidity)
	}
	if cfg.Scan.TargetMint != "EnvMint" {
		t.Errorf("env override lost: %s", cfg.Scan.TargetMint)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("env override lost: %s", cfg.Server.Addr)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("rpc: [not a mapping"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	cfg.Scan.MinLiquidity = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative min liquidity")
	}

	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Scan.Subscribe = true
	cfg.RPC.WSURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for subscribe without ws url")
	}

	cfg, _ = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	cfg.Volume.SignificanceThreshold = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero significance threshold")
	}
}
