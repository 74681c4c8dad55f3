package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleTOML = `
mode = "serve"
log_level = "debug"

[chain]
rpc_url = "http://localhost:8545"
chain_id = 31337

[contract]
address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
deploy_block = 42

[poll]
market = "3s"
list = "15s"

[server]
enabled = true
port = 9090
cors_origins = ["https://ipredict.example"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMergesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Mode != "serve" || cfg.LogLevel != "debug" {
		t.Errorf("top-level = (%q, %q)", cfg.Mode, cfg.LogLevel)
	}
	if cfg.Chain.ChainID != 31337 {
		t.Errorf("chain id = %d", cfg.Chain.ChainID)
	}
	if cfg.Contract.DeployBlock != 42 {
		t.Errorf("deploy block = %d", cfg.Contract.DeployBlock)
	}
	if cfg.Poll.Market.Duration != 3*time.Second {
		t.Errorf("poll.market = %v", cfg.Poll.Market.Duration)
	}
	if cfg.Poll.List.Duration != 15*time.Second {
		t.Errorf("poll.list = %v", cfg.Poll.List.Duration)
	}
	// Unset in file, should keep the default.
	if cfg.Poll.Account.Duration != 30*time.Second {
		t.Errorf("poll.account default = %v", cfg.Poll.Account.Duration)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis addr default = %q", cfg.Redis.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "https://ipredict.example" {
		t.Errorf("cors = %v", cfg.Server.CORSOrigins)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("IPREDICT_CHAIN_RPC_URL", "wss://env.example")
	t.Setenv("IPREDICT_SERVER_PORT", "7070")
	t.Setenv("IPREDICT_POLL_MARKET", "1s")
	t.Setenv("IPREDICT_INDEXER_ENABLED", "false")
	t.Setenv("IPREDICT_NOTIFY_EVENTS", "market_resolved, market_cancelled")

	cfg, err := Load(writeConfig(t, sampleTOML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Chain.RPCURL != "wss://env.example" {
		t.Errorf("rpc url = %q", cfg.Chain.RPCURL)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Poll.Market.Duration != time.Second {
		t.Errorf("poll.market = %v", cfg.Poll.Market.Duration)
	}
	if cfg.Indexer.Enabled {
		t.Error("indexer should be disabled via env")
	}
	want := []string{"market_resolved", "market_cancelled"}
	if len(cfg.Notify.Events) != len(want) {
		t.Fatalf("events = %v", cfg.Notify.Events)
	}
	for i := range want {
		if cfg.Notify.Events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, cfg.Notify.Events[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Defaults()
		cfg.Contract.Address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
		return cfg
	}

	if cfg := valid(); cfg.Validate() != nil {
		t.Fatalf("valid config rejected: %v", cfg.Validate())
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "daemon" }},
		{"empty rpc url", func(c *Config) { c.Chain.RPCURL = "" }},
		{"zero chain id", func(c *Config) { c.Chain.ChainID = 0 }},
		{"bad address", func(c *Config) { c.Contract.Address = "not-an-address" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"zero batch blocks", func(c *Config) { c.Indexer.BatchBlocks = 0 }},
		{"zero poll interval", func(c *Config) { c.Poll.Market.Duration = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if cfg.Validate() == nil {
				t.Error("expected validation error")
			}
		})
	}
}
