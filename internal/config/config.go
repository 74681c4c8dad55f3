// Package config defines the top-level configuration for the iPredict
// backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by IPREDICT_* environment
// variables.
type Config struct {
	Chain    ChainConfig    `toml:"chain"`
	Contract ContractConfig `toml:"contract"`
	Wallet   WalletConfig   `toml:"wallet"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Poll     PollConfig     `toml:"poll"`
	Indexer  IndexerConfig  `toml:"indexer"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// ChainConfig holds RPC endpoint and chain parameters.
type ChainConfig struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID int64  `toml:"chain_id"`
}

// ContractConfig pins the deployed iPredict contract.
type ContractConfig struct {
	// Address is the hex address of the deployed contract.
	Address string `toml:"address"`
	// DeployBlock is where the indexer starts when no checkpoint exists.
	DeployBlock uint64 `toml:"deploy_block"`
}

// WalletConfig holds the operator wallet used for admin transactions.
type WalletConfig struct {
	PrivateKey  string `toml:"private_key"`
	KeyfilePath string `toml:"keyfile_path"`
	KeyPassword string `toml:"key_password"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	PoolSize        int    `toml:"pool_size"`
	MaxRetries      int    `toml:"max_retries"`
	TLSEnabled      bool   `toml:"tls_enabled"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
	StreamMaxLen    int    `toml:"stream_max_len"`
}

// S3Config holds S3-compatible object storage parameters for activity
// archival.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// PollConfig sets the refresh interval for each class of contract read.
type PollConfig struct {
	// Market is the interval for single-market reads.
	Market duration `toml:"market"`
	// List is the interval for market-list reads.
	List duration `toml:"list"`
	// Account is the interval for account-level aggregates (stats,
	// claimables).
	Account duration `toml:"account"`
}

// IndexerConfig holds event-indexer parameters.
type IndexerConfig struct {
	Enabled bool `toml:"enabled"`
	// PollInterval is how often the indexer looks for new blocks.
	PollInterval duration `toml:"poll_interval"`
	// BatchBlocks caps the block span of a single log filter query.
	BatchBlocks uint64 `toml:"batch_blocks"`
	// Confirmations lag applied behind the chain head to avoid reorgs.
	Confirmations uint64 `toml:"confirmations"`
	// RetentionDays is how long activity stays in Postgres before moving
	// to S3. Zero disables archival.
	RetentionDays   int      `toml:"retention_days"`
	ArchiveInterval duration `toml:"archive_interval"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	// AdminAPIKey guards the admin endpoints. Empty disables them.
	AdminAPIKey string `toml:"admin_api_key"`
	// RateLimit caps requests per client IP per minute. Zero disables.
	RateLimit int `toml:"rate_limit"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// duration wraps time.Duration so the TOML decoder can parse strings like
// "5s" or "2m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values. These
// match config.example.toml.
func Defaults() Config {
	return Config{
		Chain: ChainConfig{
			RPCURL:  "https://k8s.testnet.json-rpc.injective.network",
			ChainID: 1439,
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "ipredict",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			PoolSize:        20,
			MaxRetries:      3,
			CacheTTLSeconds: 30,
			StreamMaxLen:    10000,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "ipredict-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Poll: PollConfig{
			Market:  duration{5 * time.Second},
			List:    duration{10 * time.Second},
			Account: duration{30 * time.Second},
		},
		Indexer: IndexerConfig{
			Enabled:         true,
			PollInterval:    duration{5 * time.Second},
			BatchBlocks:     2000,
			Confirmations:   2,
			RetentionDays:   90,
			ArchiveInterval: duration{6 * time.Hour},
		},
		Server: ServerConfig{
			Enabled:   true,
			Port:      8080,
			RateLimit: 300,
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// Validate checks the configuration for obviously broken values. It is
// called once at startup after Load.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Mode) {
	case "serve", "index", "full":
	default:
		return fmt.Errorf("config: unsupported mode %q (want serve, index, or full)", c.Mode)
	}

	if strings.TrimSpace(c.Chain.RPCURL) == "" {
		return fmt.Errorf("config: chain.rpc_url is required")
	}
	if c.Chain.ChainID <= 0 {
		return fmt.Errorf("config: chain.chain_id must be positive, got %d", c.Chain.ChainID)
	}

	if !common.IsHexAddress(c.Contract.Address) {
		return fmt.Errorf("config: contract.address %q is not a valid address", c.Contract.Address)
	}

	if c.Server.Enabled && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}

	if c.Indexer.Enabled && c.Indexer.BatchBlocks == 0 {
		return fmt.Errorf("config: indexer.batch_blocks must be positive")
	}

	for _, p := range []struct {
		name string
		d    time.Duration
	}{
		{"poll.market", c.Poll.Market.Duration},
		{"poll.list", c.Poll.List.Duration},
		{"poll.account", c.Poll.Account.Duration},
	} {
		if p.d <= 0 {
			return fmt.Errorf("config: %s must be positive", p.name)
		}
	}

	return nil
}

// ContractAddress returns the parsed contract address. Call Validate first.
func (c *Config) ContractAddress() common.Address {
	return common.HexToAddress(c.Contract.Address)
}
